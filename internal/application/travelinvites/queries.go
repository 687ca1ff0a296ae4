package travelinvites

import (
	"context"
	"errors"
	"time"

	invitepolicy "travel-backend/internal/application/policies/invitations"
	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/application/travels"
	"travel-backend/internal/domain"
	"travel-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TravelInvites groups a travel's invites by direction relative to the actor.
type TravelInvites struct {
	Sent     []domain.TravelInvite `json:"sent"`
	Received []domain.TravelInvite `json:"received"`
}

// ReceivedInvite is a pending invite addressed to the actor, with its travel.
type ReceivedInvite struct {
	InviteID    uuid.UUID `json:"invite_id"`
	TravelID    uuid.UUID `json:"travel_id"`
	TravelTitle string    `json:"travel_title"`
	SenderName  string    `json:"sender_name"`
	Token       string    `json:"token"`
	SentAt      time.Time `json:"sent_at"`
}

// Preview is what the public landing page shows for a token.
type Preview struct {
	TravelID    uuid.UUID `json:"travel_id"`
	TravelTitle string    `json:"travel_title"`
	SenderName  string    `json:"sender_name"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
}

// ListForTravel returns the travel's invites: those sent by the actor and those
// addressed to the actor's email. Creators and admins see every invite as sent.
func (s *Service) ListForTravel(ctx context.Context, actor policies.Actor, travelID uuid.UUID) (*TravelInvites, error) {
	db := s.DB.WithContext(ctx)
	_, access, err := travels.LoadAccess(db, actor.UserID, travelID)
	if err != nil {
		return nil, err
	}
	if !invitepolicy.CanViewInvites(access) {
		return nil, ErrNotAuthorized
	}
	var all []domain.TravelInvite
	if err := db.Where("travel_id = ?", travelID).Order("created_at DESC").Find(&all).Error; err != nil {
		return nil, err
	}
	email := validation.NormalizeEmail(actor.Email)
	out := &TravelInvites{Sent: []domain.TravelInvite{}, Received: []domain.TravelInvite{}}
	for _, inv := range all {
		switch {
		case inv.Email == email:
			out.Received = append(out.Received, inv)
		case inv.SenderID == actor.UserID || invitepolicy.CanInvite(access):
			out.Sent = append(out.Sent, inv)
		}
	}
	return out, nil
}

// ListReceived returns pending invites addressed to the actor's email across all travels.
func (s *Service) ListReceived(ctx context.Context, actor policies.Actor) ([]ReceivedInvite, error) {
	out := []ReceivedInvite{}
	err := s.DB.WithContext(ctx).Table("travel_invites").
		Select("travel_invites.invite_id, travel_invites.travel_id, travels.title AS travel_title, users.name AS sender_name, travel_invites.token, travel_invites.sent_at").
		Joins("JOIN travels ON travels.travel_id = travel_invites.travel_id").
		Joins("LEFT JOIN users ON users.user_id = travel_invites.sender_id").
		Where("travel_invites.email = ? AND travel_invites.status = ?", validation.NormalizeEmail(actor.Email), domain.InviteStatusPending).
		Order("travel_invites.sent_at DESC").
		Scan(&out).Error
	return out, err
}

// PreviewByToken describes the invite behind token without requiring a session.
func (s *Service) PreviewByToken(ctx context.Context, token string) (*Preview, error) {
	if token == "" {
		return nil, ErrInviteNotFound
	}
	db := s.DB.WithContext(ctx)
	var inv domain.TravelInvite
	if err := db.Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	var travel domain.Travel
	if err := db.Where("travel_id = ?", inv.TravelID).First(&travel).Error; err != nil {
		return nil, err
	}
	var sender domain.User
	if err := db.Select("name").Where("user_id = ?", inv.SenderID).First(&sender).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &Preview{
		TravelID:    travel.TravelID,
		TravelTitle: travel.Title,
		SenderName:  sender.Name,
		Email:       inv.Email,
		Status:      inv.Status,
	}, nil
}
