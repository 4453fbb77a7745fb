package users

import (
	"time"

	"github.com/othmanee23/oraxonoptic/internal/authz"
)

// User is an account as seen from the management screens.
type User struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Role      authz.Role
	// Permissions is the explicit override; nil means the role default.
	Permissions     authz.PermissionSet
	IsActive        bool
	StoreIDs        []int64
	EmailVerifiedAt *time.Time
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Effective resolves the permissions in force for this user.
func (u *User) Effective() authz.PermissionSet {
	return authz.Effective(u.Role, u.Permissions)
}
