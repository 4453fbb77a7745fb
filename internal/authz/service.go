package authz

// Effective resolves the permissions in force for a user: the explicit
// override when one exists, else the role default.
func Effective(role Role, override PermissionSet) PermissionSet {
	if override != nil {
		return override.Clone()
	}
	return DefaultPermissions(role)
}

// CanAccess reports whether a user with the given role and override may
// perform action on module. Unknown modules deny.
func CanAccess(role Role, override PermissionSet, module string, action Action) bool {
	return Effective(role, override).Allows(module, action)
}
