package friends

import (
	friendsvc "travel-backend/internal/application/friends"
	"travel-backend/internal/middleware"
	"travel-backend/internal/pkg/response"
	"travel-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the friend graph and friend invites.
type Handlers struct {
	Service *friendsvc.Service
}

// SendInvite POST /friends/invite/send/:receiverId
func (h *Handlers) SendInvite(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	receiverID, err := validation.ParseUUID("receiverId", c.Params("receiverId"))
	if err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.SendInvite(c.UserContext(), actor, receiverID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Friend invite sent", fiber.Map{"invite": inv}, nil)
}

// AcceptInvite POST /friends/invite/accept/:inviteId
func (h *Handlers) AcceptInvite(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	inviteID, err := validation.ParseUUID("inviteId", c.Params("inviteId"))
	if err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.AcceptInvite(c.UserContext(), actor, inviteID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Friend invite accepted", fiber.Map{"invite": inv}, nil)
}

// RejectInvite POST /friends/invite/reject/:inviteId
func (h *Handlers) RejectInvite(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	inviteID, err := validation.ParseUUID("inviteId", c.Params("inviteId"))
	if err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.RejectInvite(c.UserContext(), actor, inviteID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Friend invite rejected", fiber.Map{"invite": inv}, nil)
}

// List GET /friends
func (h *Handlers) List(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	friends, err := h.Service.ListFriends(c.UserContext(), actor.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Friends fetched", fiber.Map{"friends": friends}, nil)
}

// Invites GET /friends/invites: pending invites in both directions.
func (h *Handlers) Invites(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	pending, err := h.Service.ListPendingInvites(c.UserContext(), actor.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Friend invites fetched", pending, nil)
}

// Status GET /friends/:userId/status
func (h *Handlers) Status(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	other, err := validation.ParseUUID("userId", c.Params("userId"))
	if err != nil {
		return response.FromError(c, err)
	}
	friends, err := h.Service.IsFriendsWith(c.UserContext(), actor.UserID, other)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Friendship status", fiber.Map{"is_friend": friends}, nil)
}

// Remove DELETE /friends/:userId
func (h *Handlers) Remove(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	other, err := validation.ParseUUID("userId", c.Params("userId"))
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.RemoveFriend(c.UserContext(), actor, other); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Friend removed", nil, nil)
}
