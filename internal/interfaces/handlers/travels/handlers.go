package travels

import (
	travelsvc "travel-backend/internal/application/travels"
	"travel-backend/internal/middleware"
	"travel-backend/internal/pkg/response"
	"travel-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes travels, their members and their audit trail.
type Handlers struct {
	Service *travelsvc.Service
}

// RoleRequest is the body of the member role change.
type RoleRequest struct {
	Role string `json:"role"`
}

// Create POST /travels
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in travelsvc.TravelInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	travel, err := h.Service.CreateTravel(c.UserContext(), actor, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Travel created", fiber.Map{"travel": travel}, nil)
}

// ListMine GET /travels
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ListMyTravels(c.UserContext(), actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Travels fetched", fiber.Map{"travels": list}, nil)
}

// ListPublic GET /travels/public
func (h *Handlers) ListPublic(c *fiber.Ctx) error {
	limit, offset := c.QueryInt("limit", 20), c.QueryInt("offset", 0)
	list, total, err := h.Service.ListPublicTravels(c.UserContext(), limit, offset)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Travels fetched", fiber.Map{"travels": list}, fiber.Map{
		"total": total, "limit": limit, "offset": offset,
	})
}

// Get GET /travels/:travel
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	travel, err := h.Service.GetTravel(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Travel fetched", fiber.Map{"travel": travel}, nil)
}

// Update PUT /travels/:travel
func (h *Handlers) Update(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	var in travelsvc.TravelInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	travel, err := h.Service.UpdateTravel(c.UserContext(), actor, id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Travel updated", fiber.Map{"travel": travel}, nil)
}

// Delete DELETE /travels/:travel
func (h *Handlers) Delete(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteTravel(c.UserContext(), actor, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Travel deleted", nil, nil)
}

// Members GET /travels/:travel/members
func (h *Handlers) Members(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	members, err := h.Service.ListMembers(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Members fetched", fiber.Map{"members": members}, nil)
}

// AddFriend POST /travels/:travel/add/:friendId
func (h *Handlers) AddFriend(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	friendID, err := validation.ParseUUID("friendId", c.Params("friendId"))
	if err != nil {
		return response.FromError(c, err)
	}
	member, err := h.Service.AddFriendToTravel(c.UserContext(), actor, travelID, friendID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Friend added to travel", fiber.Map{"member": member}, nil)
}

// RemoveMember DELETE /travels/:travel/members/:user
func (h *Handlers) RemoveMember(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	userID, err := validation.ParseUUID("user", c.Params("user"))
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.RemoveMember(c.UserContext(), actor, travelID, userID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Member removed", nil, nil)
}

// UpdateMemberRole PATCH /travels/:travel/members/:user
func (h *Handlers) UpdateMemberRole(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	userID, err := validation.ParseUUID("user", c.Params("user"))
	if err != nil {
		return response.FromError(c, err)
	}
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	member, err := h.Service.UpdateMemberRole(c.UserContext(), actor, travelID, userID, req.Role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Member role updated", fiber.Map{"member": member}, nil)
}

// Leave DELETE /travels/:travel/leave
func (h *Handlers) Leave(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Leave(c.UserContext(), actor, travelID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "You left the travel", nil, nil)
}

// Events GET /travels/:travel/events
func (h *Handlers) Events(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	events, err := h.Service.ListEvents(c.UserContext(), actor, travelID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Events fetched", fiber.Map{"events": events}, nil)
}
