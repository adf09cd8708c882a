package domain

// MenuItem is a single navigation entry rendered in the dashboard sidebar.
type MenuItem struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Path  string `json:"path"`
}

// MenuFor resolves a role to its ordered navigation entries. It is a pure
// lookup: no I/O, deterministic, and total over the role enumeration. Roles
// outside the enumeration fall back to the patient menu via ParseRole, so a
// malformed role never yields elevated navigation.
func MenuFor(role Role) []MenuItem {
	switch ParseRole(role.String()) {
	case RoleAdmin:
		return []MenuItem{
			{Label: "Dashboard", Icon: "layout-dashboard", Path: "/admin"},
			{Label: "User Management", Icon: "users", Path: "/admin/users"},
			{Label: "Clinic Services", Icon: "activity", Path: "/admin/services"},
			{Label: "Medications", Icon: "pill", Path: "/admin/medications"},
		}
	case RoleDoctor:
		return []MenuItem{
			{Label: "Dashboard", Icon: "layout-dashboard", Path: "/doctor"},
			{Label: "Practice Schedule", Icon: "calendar", Path: "/doctor/schedule"},
			{Label: "My Patients", Icon: "users", Path: "/doctor/patients"},
			{Label: "Appointments", Icon: "clipboard-list", Path: "/doctor/appointments"},
			{Label: "Medical Records", Icon: "file-text", Path: "/doctor/records"},
		}
	case RoleReceptionist:
		return []MenuItem{
			{Label: "Dashboard", Icon: "layout-dashboard", Path: "/receptionist"},
			{Label: "Patient Registration", Icon: "user-plus", Path: "/receptionist/patients"},
			{Label: "Appointments", Icon: "clipboard-list", Path: "/receptionist/appointments"},
			{Label: "Queue", Icon: "clock", Path: "/receptionist/queue"},
		}
	case RolePharmacist:
		return []MenuItem{
			{Label: "Dashboard", Icon: "layout-dashboard", Path: "/pharmacist"},
			{Label: "Pending Prescriptions", Icon: "receipt", Path: "/pharmacist/prescriptions"},
			{Label: "Medication Stock", Icon: "package", Path: "/pharmacist/medications"},
		}
	case RoleCashier:
		return []MenuItem{
			{Label: "Dashboard", Icon: "layout-dashboard", Path: "/cashier"},
			{Label: "Payments", Icon: "credit-card", Path: "/cashier/payments"},
			{Label: "Finance Reports", Icon: "receipt", Path: "/cashier/reports"},
		}
	case RolePatient:
		fallthrough
	default:
		return []MenuItem{
			{Label: "Dashboard", Icon: "layout-dashboard", Path: "/patient"},
			{Label: "Book Appointment", Icon: "calendar", Path: "/patient/appointments"},
			{Label: "Appointment History", Icon: "clipboard-list", Path: "/patient/history"},
			{Label: "My Medical Records", Icon: "file-text", Path: "/patient/records"},
			{Label: "Payment History", Icon: "credit-card", Path: "/patient/payments"},
		}
	}
}
