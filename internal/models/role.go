package models

// Role is the account class an OTP challenge or session is scoped to.
// The same mobile number may hold independent accounts (and challenges)
// per role.
const (
	RoleCustomer = "customer"
	RoleDriver   = "driver"
)

// ValidRole reports whether s is a recognised account role.
func ValidRole(s string) bool {
	return s == RoleCustomer || s == RoleDriver
}
