package constants

const (
	SearchUsers = "search_users"
	ListUsers   = "list_users"
)

// PermissionRoles maps each permission to the site roles allowed to perform it.
var PermissionRoles = map[string][]string{
	SearchUsers: {User, Admin},
	ListUsers:   {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
