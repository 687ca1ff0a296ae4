package middleware

import (
	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentActor(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentActor converts the session user into the explicit actor passed to services.
func CurrentActor(c *fiber.Ctx) (policies.Actor, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return policies.Actor{}, false
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return policies.Actor{}, false
	}
	email, _ := m["email"].(string)
	name, _ := m["name"].(string)
	role, _ := m["role"].(string)
	return policies.Actor{UserID: id, Email: email, Name: name, Role: role}, true
}
