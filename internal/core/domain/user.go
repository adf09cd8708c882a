package domain

import "encoding/json"

// Role is one of the fixed set of user categories determining which screens
// and routes are reachable.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RolePatient      Role = "patient"
	RoleReceptionist Role = "receptionist"
	RolePharmacist   Role = "pharmacist"
	RoleCashier      Role = "cashier"
)

// AllRoles lists every known role in a stable order.
var AllRoles = []Role{
	RoleAdmin,
	RoleDoctor,
	RolePatient,
	RoleReceptionist,
	RolePharmacist,
	RoleCashier,
}

// ParseRole maps a raw role string onto the fixed enumeration. Unrecognized
// or absent roles resolve to RolePatient, the lowest-privilege role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RolePatient, RoleReceptionist, RolePharmacist, RoleCashier:
		return Role(s)
	default:
		return RolePatient
	}
}

// Root returns the role's dashboard root path, e.g. "/doctor".
func (r Role) Root() string {
	return "/" + string(r)
}

func (r Role) String() string {
	return string(r)
}

// UserProfile is the backend's view of an authenticated user. The portal
// never mutates individual fields; profiles are always replaced wholesale
// with whatever the backend last returned.
type UserProfile struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email,omitempty"`
	FirstName   string          `json:"first_name,omitempty"`
	LastName    string          `json:"last_name,omitempty"`
	FullName    string          `json:"full_name,omitempty"`
	Role        Role            `json:"role"`
	Phone       string          `json:"phone,omitempty"`
	Address     string          `json:"address,omitempty"`
	PhotoURL    string          `json:"photo_url,omitempty"`
	IsActive    bool            `json:"is_active"`
	DateJoined  string          `json:"date_joined,omitempty"`
	RoleProfile json.RawMessage `json:"profile_detail,omitempty"`
}

// DisplayName returns the best human-readable name available.
func (u *UserProfile) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	return u.Username
}
