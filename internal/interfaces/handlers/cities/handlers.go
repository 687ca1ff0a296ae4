package cities

import (
	citysvc "travel-backend/internal/application/cities"
	"travel-backend/internal/middleware"
	"travel-backend/internal/pkg/response"
	"travel-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *citysvc.Service
}

func ids(c *fiber.Ctx, withCity bool) (uuid.UUID, uuid.UUID, error) {
	travelID, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil || !withCity {
		return travelID, uuid.Nil, err
	}
	cityID, err := validation.ParseUUID("city", c.Params("city"))
	return travelID, cityID, err
}

// List GET /travels/:travel/cities
func (h *Handlers) List(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, _, err := ids(c, false)
	if err != nil {
		return response.FromError(c, err)
	}
	list, err := h.Service.List(c.UserContext(), actor, travelID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cities fetched", fiber.Map{"cities": list}, nil)
}

// Create POST /travels/:travel/cities
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, _, err := ids(c, false)
	if err != nil {
		return response.FromError(c, err)
	}
	var in citysvc.CityInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	city, err := h.Service.Create(c.UserContext(), actor, travelID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "City added", fiber.Map{"city": city}, nil)
}

// Update PUT /travels/:travel/cities/:city
func (h *Handlers) Update(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, cityID, err := ids(c, true)
	if err != nil {
		return response.FromError(c, err)
	}
	var in citysvc.CityInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	city, err := h.Service.Update(c.UserContext(), actor, travelID, cityID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "City updated", fiber.Map{"city": city}, nil)
}

// Delete DELETE /travels/:travel/cities/:city
func (h *Handlers) Delete(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, cityID, err := ids(c, true)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), actor, travelID, cityID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "City deleted", nil, nil)
}
