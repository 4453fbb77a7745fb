package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othmanee23/oraxonoptic/internal/authz"
)

func TestDefaultPermissionsExhaustive(t *testing.T) {
	for _, role := range authz.Roles() {
		set := authz.DefaultPermissions(role)
		require.NotEmpty(t, set, "role %s must have a non-empty default permission set", role)
		for module, actions := range set {
			assert.NotEmpty(t, actions, "role %s module %s has an empty action list", role, module)
		}
	}
}

func TestDefaultPermissionsUnknownRoleDeniesEverything(t *testing.T) {
	set := authz.DefaultPermissions(authz.Role("stagiaire"))
	assert.Empty(t, set)
	assert.False(t, set.Allows(authz.ModuleDashboard, authz.ActionView))
}

func TestCanAccessUnknownModuleFailsClosed(t *testing.T) {
	for _, role := range authz.Roles() {
		assert.False(t, authz.CanAccess(role, nil, "nonexistent-module", authz.ActionView),
			"role %s must be denied on unknown modules", role)
	}
}

func TestCanAccessUnknownActionFailsClosed(t *testing.T) {
	assert.False(t, authz.CanAccess(authz.RoleVendeur, nil, authz.ModuleVentes, authz.Action("export")))
}

func TestEffectiveOverrideReplacesDefault(t *testing.T) {
	override := authz.PermissionSet{
		authz.ModuleStock: {authz.ActionView},
	}
	effective := authz.Effective(authz.RoleAdmin, override)

	assert.True(t, effective.Allows(authz.ModuleStock, authz.ActionView))
	// The override replaces the admin default wholesale: nothing else remains.
	assert.False(t, effective.Allows(authz.ModuleStock, authz.ActionDelete))
	assert.False(t, effective.Allows(authz.ModuleVentes, authz.ActionView))
}

func TestEffectiveWithoutOverrideUsesRoleDefault(t *testing.T) {
	effective := authz.Effective(authz.RoleVendeur, nil)
	assert.True(t, effective.Allows(authz.ModuleVentes, authz.ActionCreate))
	assert.False(t, effective.Allows(authz.ModuleUtilisateurs, authz.ActionView))
}

func TestEffectiveReturnsACopy(t *testing.T) {
	first := authz.Effective(authz.RoleVendeur, nil)
	first[authz.ModuleUtilisateurs] = []authz.Action{authz.ActionDelete}

	second := authz.Effective(authz.RoleVendeur, nil)
	assert.False(t, second.Allows(authz.ModuleUtilisateurs, authz.ActionDelete))
}

func TestParseRole(t *testing.T) {
	for _, role := range authz.Roles() {
		parsed, err := authz.ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}
	_, err := authz.ParseRole("root")
	assert.Error(t, err)
}

func TestStringsRoundTrip(t *testing.T) {
	set := authz.DefaultPermissions(authz.RoleManager)
	rebuilt := authz.FromStrings(set.Strings())
	assert.Equal(t, set, rebuilt)
}
