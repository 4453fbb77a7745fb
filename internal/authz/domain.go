// Package authz implements the role and permission model gating every
// management endpoint.
package authz

import "fmt"

// Role is the fixed set of account categories. A user's role only changes
// through an explicit admin update.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleVendeur    Role = "vendeur"
	RoleTechnicien Role = "technicien"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleVendeur, RoleTechnicien}
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	for _, r := range Roles() {
		if role == r {
			return role, nil
		}
	}
	return "", fmt.Errorf("authz: unknown role %q", raw)
}

// Action is an atomic capability on a module.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Module keys mirror the screens of the back office.
const (
	ModuleDashboard    = "dashboard"
	ModuleUtilisateurs = "utilisateurs"
	ModuleStock        = "stock"
	ModuleVentes       = "ventes"
	ModuleAtelier      = "atelier"
	ModuleClients      = "clients"
	ModuleMessages     = "messages"
	ModuleParametres   = "parametres"
)

// PermissionSet maps a module key to the actions granted on it.
type PermissionSet map[string][]Action

// Allows reports whether the set grants action on module. Unknown modules
// and unknown actions deny.
func (p PermissionSet) Allows(module string, action Action) bool {
	actions, ok := p[module]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (p PermissionSet) Clone() PermissionSet {
	if p == nil {
		return nil
	}
	out := make(PermissionSet, len(p))
	for module, actions := range p {
		out[module] = append([]Action(nil), actions...)
	}
	return out
}

// Strings converts the set into the plain string map carried by sessions
// and JSON payloads.
func (p PermissionSet) Strings() map[string][]string {
	if p == nil {
		return nil
	}
	out := make(map[string][]string, len(p))
	for module, actions := range p {
		ss := make([]string, len(actions))
		for i, a := range actions {
			ss[i] = string(a)
		}
		out[module] = ss
	}
	return out
}

// FromStrings rebuilds a PermissionSet from its wire representation.
func FromStrings(raw map[string][]string) PermissionSet {
	if raw == nil {
		return nil
	}
	out := make(PermissionSet, len(raw))
	for module, actions := range raw {
		as := make([]Action, len(actions))
		for i, s := range actions {
			as[i] = Action(s)
		}
		out[module] = as
	}
	return out
}
