package constants

// Site-wide user roles (users.role). Travel membership roles live in domain.
const (
	User  = "user"
	Admin = "admin"
)

var ValidRoles = []string{User, Admin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
