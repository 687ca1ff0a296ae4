package user

import (
	usersvc "travel-backend/internal/application/user"
	"travel-backend/internal/middleware"
	"travel-backend/internal/pkg/response"
	"travel-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds the user service.
type Handlers struct {
	Service *usersvc.Service
}

// Me GET /users/me: the full profile of the session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.ViewUser(c.UserContext(), actor.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User fetched", fiber.Map{"user": u}, nil)
}

// UpdateMe PATCH /users/me. The session copy of the name is refreshed too.
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in usersvc.UpdateProfileInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateProfile(c.UserContext(), actor, middleware.GetSessionID(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID: u.UserID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	})
	return response.Success(c, "User updated successfully", fiber.Map{"user": u}, nil)
}

// View GET /users/:id: a public profile.
func (h *Handlers) View(c *fiber.Ctx) error {
	id, err := validation.ParseUUID("id", c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.ViewUser(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User fetched", fiber.Map{"user": u.Profile()}, nil)
}

// Search GET /users/search?q=
func (h *Handlers) Search(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	users, err := h.Service.Search(c.UserContext(), actor, c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Users fetched", fiber.Map{"users": users}, nil)
}

// List GET /users (site admins).
func (h *Handlers) List(c *fiber.Ctx) error {
	limit, offset := c.QueryInt("limit", 50), c.QueryInt("offset", 0)
	users, total, err := h.Service.ListUsers(c.UserContext(), limit, offset)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Users fetched", fiber.Map{"users": users}, fiber.Map{
		"total": total, "limit": limit, "offset": offset,
	})
}
