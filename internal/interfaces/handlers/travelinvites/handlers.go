package travelinvites

import (
	invitesvc "travel-backend/internal/application/travelinvites"
	"travel-backend/internal/middleware"
	"travel-backend/internal/pkg/response"
	"travel-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the travel invite workflow.
type Handlers struct {
	Service *invitesvc.Service
}

// CreateRequest is the body of POST /travels/:travel/invites.
type CreateRequest struct {
	Email string `json:"email"`
}

// Create POST /travels/:travel/invites
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	inv, err := h.Service.CreateInvite(c.UserContext(), actor, travelID, req.Email)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Invite sent", fiber.Map{"invite": inv}, nil)
}

// Accept POST /travels/invites/:token/accept
func (h *Handlers) Accept(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	inv, err := h.Service.AcceptInvite(c.UserContext(), actor, c.Params("token"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invite accepted", fiber.Map{"invite": inv, "travel_id": inv.TravelID}, nil)
}

// Decline POST /travels/invites/:token/decline
func (h *Handlers) Decline(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	inv, err := h.Service.DeclineInvite(c.UserContext(), actor, c.Params("token"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invite declined", fiber.Map{"invite": inv}, nil)
}

// Cancel DELETE /travels/invites/:invite
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	inviteID, err := validation.ParseUUID("invite", c.Params("invite"))
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.CancelInvite(c.UserContext(), actor, inviteID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invite cancelled", nil, nil)
}

// Resend POST /travels/invites/:invite/resend
func (h *Handlers) Resend(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	inviteID, err := validation.ParseUUID("invite", c.Params("invite"))
	if err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.ResendInvite(c.UserContext(), actor, inviteID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invite resent", fiber.Map{"invite": inv}, nil)
}

// ListForTravel GET /travels/:travel/invites
func (h *Handlers) ListForTravel(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	travelID, err := validation.ParseUUID("travel", c.Params("travel"))
	if err != nil {
		return response.FromError(c, err)
	}
	list, err := h.Service.ListForTravel(c.UserContext(), actor, travelID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invites fetched", list, nil)
}

// ListReceived GET /invites
func (h *Handlers) ListReceived(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ListReceived(c.UserContext(), actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invites fetched", fiber.Map{"invites": list}, nil)
}

// Preview GET /travels/invites/:token (public)
func (h *Handlers) Preview(c *fiber.Ctx) error {
	preview, err := h.Service.PreviewByToken(c.UserContext(), c.Params("token"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invite fetched", fiber.Map{"invite": preview}, nil)
}
