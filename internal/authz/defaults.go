package authz

var allActions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

var allModules = []string{
	ModuleDashboard,
	ModuleUtilisateurs,
	ModuleStock,
	ModuleVentes,
	ModuleAtelier,
	ModuleClients,
	ModuleMessages,
	ModuleParametres,
}

// defaultPermissions is the per-role baseline. Every enumerated role has a
// non-empty entry; an explicit per-user override replaces (never merges with)
// this table.
var defaultPermissions = map[Role]PermissionSet{
	RoleSuperAdmin: fullAccess(),
	RoleAdmin:      fullAccess(),
	RoleManager: {
		ModuleDashboard:    {ActionView},
		ModuleUtilisateurs: {ActionView},
		ModuleStock:        {ActionView, ActionCreate, ActionEdit},
		ModuleVentes:       {ActionView, ActionCreate, ActionEdit, ActionDelete},
		ModuleAtelier:      {ActionView, ActionEdit},
		ModuleClients:      {ActionView, ActionCreate, ActionEdit},
		ModuleMessages:     {ActionView, ActionEdit},
	},
	RoleVendeur: {
		ModuleDashboard: {ActionView},
		ModuleStock:     {ActionView},
		ModuleVentes:    {ActionView, ActionCreate, ActionEdit},
		ModuleClients:   {ActionView, ActionCreate, ActionEdit},
	},
	RoleTechnicien: {
		ModuleDashboard: {ActionView},
		ModuleStock:     {ActionView},
		ModuleAtelier:   {ActionView, ActionEdit},
	},
}

func fullAccess() PermissionSet {
	set := make(PermissionSet, len(allModules))
	for _, module := range allModules {
		set[module] = append([]Action(nil), allActions...)
	}
	return set
}

// DefaultPermissions returns the baseline permission set for a role. The
// table is exhaustive over Roles(); an unknown role gets an empty set, which
// denies everything.
func DefaultPermissions(role Role) PermissionSet {
	set, ok := defaultPermissions[role]
	if !ok {
		return PermissionSet{}
	}
	return set.Clone()
}
