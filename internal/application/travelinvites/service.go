package travelinvites

import (
	"context"
	"errors"
	"strings"
	"time"

	"travel-backend/internal/application/emails"
	invitepolicy "travel-backend/internal/application/policies/invitations"
	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/application/travels"
	"travel-backend/internal/domain"
	"travel-backend/internal/infrastructure/database"
	"travel-backend/internal/pkg/apperr"
	"travel-backend/internal/pkg/captoken"
	"travel-backend/internal/pkg/metrics"
	"travel-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const resendInterval = 24 * time.Hour

// Service implements the email-addressed, token-redeemed travel invite workflow.
type Service struct {
	DB            *gorm.DB
	Email         emails.Sender
	InviteBaseURL string
	TokenAttempts int
}

// Link is the landing page URL carrying token.
func (s *Service) Link(token string) string {
	return strings.TrimRight(s.InviteBaseURL, "/") + "/invites/" + token
}

// CreateInvite creates a pending invite for email on the travel and emails the link.
func (s *Service) CreateInvite(ctx context.Context, actor policies.Actor, travelID uuid.UUID, email string) (*domain.TravelInvite, error) {
	email = validation.NormalizeEmail(email)
	if !validation.IsValidEmail(email) {
		return nil, apperr.Invalid("Validation failed", map[string]string{"email": "must be a valid email address"})
	}

	var (
		inv    *domain.TravelInvite
		travel *domain.Travel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, access, err := travels.LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		if !invitepolicy.CanInvite(access) {
			return ErrNotAuthorized
		}
		travel = t

		member, err := isMemberByEmail(tx, travelID, email)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyMember
		}
		pending, err := hasPending(tx, travelID, email)
		if err != nil {
			return err
		}
		if pending {
			return ErrDuplicatePendingInvite
		}

		_, err = captoken.Issue(s.TokenAttempts, func(token string) error {
			candidate := &domain.TravelInvite{
				TravelID: travelID,
				SenderID: actor.UserID,
				Email:    email,
				Token:    token,
				Status:   domain.InviteStatusPending,
				SentAt:   time.Now(),
			}
			// Savepoint, so a failed insert leaves the outer transaction usable.
			err := tx.Transaction(func(sp *gorm.DB) error {
				return sp.Create(candidate).Error
			})
			if err != nil && database.IsUniqueViolation(err) {
				// Either the token collided or a concurrent request won the pending slot.
				if dup, checkErr := hasPending(tx, travelID, email); checkErr == nil && dup {
					return ErrDuplicatePendingInvite
				}
			}
			if err == nil {
				inv = candidate
			}
			return err
		})
		if err != nil {
			return err
		}
		return travels.RecordEvent(tx, travelID, actor.UserID, domain.EventInviteCreated, map[string]interface{}{
			"invite_id": inv.InviteID,
			"email":     email,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.Invite(metrics.KindTravel, metrics.OutcomeCreated)
	log.Info().Str("invite_id", inv.InviteID.String()).Str("travel_id", travelID.String()).Msg("travel invite created")
	s.sendEmail(ctx, inv, travel, actor.Name, false)
	return inv, nil
}

// AcceptInvite redeems token for actor, attaching them as an accepted member.
func (s *Service) AcceptInvite(ctx context.Context, actor policies.Actor, token string) (*domain.TravelInvite, error) {
	inv, err := s.respond(ctx, actor, token, domain.InviteStatusAccepted, func(tx *gorm.DB, inv *domain.TravelInvite) error {
		now := time.Now()
		if err := travels.AttachMember(tx, &domain.TravelUser{
			TravelID:  inv.TravelID,
			UserID:    actor.UserID,
			Status:    domain.MembershipAccepted,
			Role:      domain.MemberRoleMember,
			InvitedAt: &now,
		}); err != nil {
			return err
		}
		return travels.RecordEvent(tx, inv.TravelID, actor.UserID, domain.EventInviteAccepted, map[string]interface{}{
			"invite_id": inv.InviteID,
			"email":     inv.Email,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.Invite(metrics.KindTravel, metrics.OutcomeAccepted)
	return inv, nil
}

// DeclineInvite marks the invite declined. Membership is not touched.
func (s *Service) DeclineInvite(ctx context.Context, actor policies.Actor, token string) (*domain.TravelInvite, error) {
	inv, err := s.respond(ctx, actor, token, domain.InviteStatusDeclined, func(tx *gorm.DB, inv *domain.TravelInvite) error {
		return travels.RecordEvent(tx, inv.TravelID, actor.UserID, domain.EventInviteDeclined, map[string]interface{}{
			"invite_id": inv.InviteID,
			"email":     inv.Email,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.Invite(metrics.KindTravel, metrics.OutcomeDeclined)
	return inv, nil
}

// respond loads the invite by token, checks the recipient and state, and moves it
// to status. then runs in the same transaction.
func (s *Service) respond(ctx context.Context, actor policies.Actor, token, status string, then func(tx *gorm.DB, inv *domain.TravelInvite) error) (*domain.TravelInvite, error) {
	if token == "" {
		return nil, ErrInviteNotFound
	}
	actor.Email = validation.NormalizeEmail(actor.Email)
	var inv domain.TravelInvite
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", token).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return err
		}
		if !invitepolicy.CanRespondToInvite(actor, &inv) {
			return ErrWrongRecipient
		}
		if inv.Status != domain.InviteStatusPending {
			return ErrInviteNotPending
		}
		if err := captoken.Transition(tx, &domain.TravelInvite{}, domain.InviteStatusPending, status, "invite_id = ?", inv.InviteID); err != nil {
			if errors.Is(err, captoken.ErrNotPending) {
				return ErrInviteNotPending
			}
			return err
		}
		inv.Status = status
		return then(tx, &inv)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("invite_id", inv.InviteID.String()).Str("status", status).Msg("travel invite resolved")
	return &inv, nil
}

// CancelInvite deletes a pending invite. Sender or travel admin only.
func (s *Service) CancelInvite(ctx context.Context, actor policies.Actor, inviteID uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, access, err := loadInvite(tx, actor, inviteID)
		if err != nil {
			return err
		}
		if !invitepolicy.CanDeleteInvite(access, inv) {
			return ErrNotAuthorized
		}
		if inv.Status != domain.InviteStatusPending {
			return ErrInviteNotPending
		}
		res := tx.Where("invite_id = ? AND status = ?", inviteID, domain.InviteStatusPending).Delete(&domain.TravelInvite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteNotPending
		}
		return travels.RecordEvent(tx, inv.TravelID, actor.UserID, domain.EventInviteCancelled, map[string]interface{}{
			"invite_id": inv.InviteID,
			"email":     inv.Email,
		})
	})
	if err != nil {
		return err
	}
	metrics.Invite(metrics.KindTravel, metrics.OutcomeCancelled)
	return nil
}

// ResendInvite emails a pending invite again, at most once per day.
func (s *Service) ResendInvite(ctx context.Context, actor policies.Actor, inviteID uuid.UUID) (*domain.TravelInvite, error) {
	var (
		inv    *domain.TravelInvite
		travel domain.Travel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		i, access, err := loadInvite(tx, actor, inviteID)
		if err != nil {
			return err
		}
		if !invitepolicy.CanDeleteInvite(access, i) {
			return ErrNotAuthorized
		}
		if i.Status != domain.InviteStatusPending {
			return ErrInviteNotPending
		}
		if time.Since(i.SentAt) < resendInterval {
			return ErrResendTooSoon
		}
		i.SentAt = time.Now()
		if err := tx.Model(i).Update("sent_at", i.SentAt).Error; err != nil {
			return err
		}
		inv = i
		return tx.Where("travel_id = ?", i.TravelID).First(&travel).Error
	})
	if err != nil {
		return nil, err
	}
	s.sendEmail(ctx, inv, &travel, actor.Name, true)
	return inv, nil
}

func loadInvite(tx *gorm.DB, actor policies.Actor, inviteID uuid.UUID) (*domain.TravelInvite, policies.TravelAccess, error) {
	var inv domain.TravelInvite
	if err := tx.Where("invite_id = ?", inviteID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policies.TravelAccess{}, ErrInviteNotFound
		}
		return nil, policies.TravelAccess{}, err
	}
	_, access, err := travels.LoadAccess(tx, actor.UserID, inv.TravelID)
	if err != nil {
		return nil, policies.TravelAccess{}, err
	}
	return &inv, access, nil
}

func (s *Service) sendEmail(ctx context.Context, inv *domain.TravelInvite, travel *domain.Travel, inviterName string, reminder bool) {
	if s.Email == nil {
		return
	}
	err := s.Email.SendTravelInvite(ctx, emails.TravelInvite{
		To:          inv.Email,
		Link:        s.Link(inv.Token),
		TravelTitle: travel.Title,
		InviterName: inviterName,
		Reminder:    reminder,
	})
	if err != nil {
		log.Warn().Err(err).Str("invite_id", inv.InviteID.String()).Msg("failed to send travel invite email")
	}
}

func hasPending(tx *gorm.DB, travelID uuid.UUID, email string) (bool, error) {
	var n int64
	err := tx.Model(&domain.TravelInvite{}).
		Where("travel_id = ? AND email = ? AND status = ?", travelID, email, domain.InviteStatusPending).
		Count(&n).Error
	return n > 0, err
}

// isMemberByEmail reports whether the user owning email has a pending or accepted
// membership in the travel.
func isMemberByEmail(tx *gorm.DB, travelID uuid.UUID, email string) (bool, error) {
	var n int64
	err := tx.Table("travel_users").
		Joins("JOIN users ON users.user_id = travel_users.user_id").
		Where("travel_users.travel_id = ? AND users.email = ? AND travel_users.status IN ?",
			travelID, email, []string{domain.MembershipPending, domain.MembershipAccepted}).
		Count(&n).Error
	return n > 0, err
}
