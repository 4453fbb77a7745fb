package auth

import (
	"time"

	"github.com/othmanee23/oraxonoptic/internal/authz"
)

// User represents an account of the back office.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	Role         authz.Role
	// Permissions is the explicit per-user override. Nil means the role
	// default applies.
	Permissions     authz.PermissionSet
	IsActive        bool
	EmailVerifiedAt *time.Time
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Verified reports whether the account completed email verification.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// EffectivePermissions resolves the permissions in force for the user.
func (u *User) EffectivePermissions() authz.PermissionSet {
	return authz.Effective(u.Role, u.Permissions)
}
