package domain

// GuardRule maps a URL path prefix onto the set of roles allowed to view it.
// An empty role set means any authenticated role. Rules are fixed at build
// time and never persisted.
type GuardRule struct {
	PathPrefix string
	Roles      []Role
}

// GuardRules is the complete route guard table. Each role's dashboard
// subtree is reachable only by that role; profile and settings are shared by
// every authenticated user.
var GuardRules = []GuardRule{
	{PathPrefix: "/admin", Roles: []Role{RoleAdmin}},
	{PathPrefix: "/doctor", Roles: []Role{RoleDoctor}},
	{PathPrefix: "/patient", Roles: []Role{RolePatient}},
	{PathPrefix: "/receptionist", Roles: []Role{RoleReceptionist}},
	{PathPrefix: "/pharmacist", Roles: []Role{RolePharmacist}},
	{PathPrefix: "/cashier", Roles: []Role{RoleCashier}},
	{PathPrefix: "/profile", Roles: nil},
	{PathPrefix: "/settings", Roles: nil},
}

// Allows reports whether the rule admits the given role.
func (g GuardRule) Allows(role Role) bool {
	if len(g.Roles) == 0 {
		return true
	}
	for _, r := range g.Roles {
		if r == role {
			return true
		}
	}
	return false
}
