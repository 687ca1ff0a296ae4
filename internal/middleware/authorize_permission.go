package middleware

import (
	"travel-backend/internal/pkg/constants"
	"travel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission checks the session user's site role against constants.PermissionRoles.
// Unknown site role or unconfigured permission -> 500; role not allowed -> 403.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := CurrentActor(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !constants.IsValidRole(actor.Role) {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		roles, ok := constants.PermissionRoles[permission]
		if !ok || len(roles) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, actor.Role) {
			return response.Error(c, "You are not allowed to perform this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
