package friends

import (
	"context"
	"errors"
	"time"

	invitepolicy "travel-backend/internal/application/policies/invitations"
	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/domain"
	"travel-backend/internal/infrastructure/database"
	"travel-backend/internal/pkg/captoken"
	"travel-backend/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service implements the friend invite workflow and the friendship graph.
type Service struct {
	DB *gorm.DB
}

// SendInvite creates a pending invite from actor to receiverID.
func (s *Service) SendInvite(ctx context.Context, actor policies.Actor, receiverID uuid.UUID) (*domain.FriendInvite, error) {
	if actor.UserID == receiverID {
		return nil, ErrSelfInvite
	}
	var inv *domain.FriendInvite
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receiver domain.User
		if err := tx.Select("user_id").Where("user_id = ?", receiverID).First(&receiver).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		friends, err := areFriends(tx, actor.UserID, receiverID)
		if err != nil {
			return err
		}
		if friends {
			return ErrAlreadyFriends
		}
		var pending int64
		if err := tx.Model(&domain.FriendInvite{}).
			Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
				actor.UserID, receiverID, receiverID, actor.UserID, domain.InviteStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrDuplicateInvite
		}
		inv = &domain.FriendInvite{SenderID: actor.UserID, ReceiverID: receiverID, Status: domain.InviteStatusPending}
		if err := tx.Create(inv).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateInvite
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Invite(metrics.KindFriend, metrics.OutcomeCreated)
	log.Info().Str("invite_id", inv.InviteID.String()).Str("sender_id", actor.UserID.String()).
		Str("receiver_id", receiverID.String()).Msg("friend invite sent")
	return inv, nil
}

// AcceptInvite accepts a pending invite addressed to actor and creates both
// friendship rows in the same transaction.
func (s *Service) AcceptInvite(ctx context.Context, actor policies.Actor, inviteID uuid.UUID) (*domain.FriendInvite, error) {
	var inv domain.FriendInvite
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.respond(tx, actor, inviteID, domain.InviteStatusAccepted, &inv); err != nil {
			return err
		}
		rows := []domain.Friendship{
			{UserID: inv.SenderID, FriendID: inv.ReceiverID},
			{UserID: inv.ReceiverID, FriendID: inv.SenderID},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	metrics.Invite(metrics.KindFriend, metrics.OutcomeAccepted)
	return &inv, nil
}

// RejectInvite rejects a pending invite addressed to actor. No friendship is created.
func (s *Service) RejectInvite(ctx context.Context, actor policies.Actor, inviteID uuid.UUID) (*domain.FriendInvite, error) {
	var inv domain.FriendInvite
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.respond(tx, actor, inviteID, domain.InviteStatusRejected, &inv)
	})
	if err != nil {
		return nil, err
	}
	metrics.Invite(metrics.KindFriend, metrics.OutcomeRejected)
	return &inv, nil
}

// respond loads the invite, checks the receiver before the state, then moves it
// out of pending with a conditional update.
func (s *Service) respond(tx *gorm.DB, actor policies.Actor, inviteID uuid.UUID, to string, inv *domain.FriendInvite) error {
	if err := tx.Where("invite_id = ?", inviteID).First(inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if !invitepolicy.CanRespondToFriendInvite(actor, inv) {
		return ErrNotAuthorized
	}
	if inv.Status != domain.InviteStatusPending {
		return ErrInviteNotPending
	}
	if err := captoken.Transition(tx, &domain.FriendInvite{}, domain.InviteStatusPending, to, "invite_id = ?", inviteID); err != nil {
		if errors.Is(err, captoken.ErrNotPending) {
			return ErrInviteNotPending
		}
		return err
	}
	inv.Status = to
	return nil
}

// IsFriendsWith reports whether a and b are friends in either direction.
func (s *Service) IsFriendsWith(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return areFriends(s.DB.WithContext(ctx), a, b)
}

func areFriends(db *gorm.DB, a, b uuid.UUID) (bool, error) {
	var n int64
	err := db.Model(&domain.Friendship{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Count(&n).Error
	return n > 0, err
}

// ListFriends returns the public profiles of userID's friends, ordered by name.
func (s *Service) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.PublicProfile, error) {
	var users []domain.User
	err := s.DB.WithContext(ctx).
		Where("user_id IN (?)", s.DB.Model(&domain.Friendship{}).Select("friend_id").Where("user_id = ?", userID)).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicProfile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out, nil
}

// InviteView is a pending invite with the other party's profile.
type InviteView struct {
	InviteID  uuid.UUID            `json:"invite_id"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	User      domain.PublicProfile `json:"user"`
}

// PendingInvites lists pending invites the user received and sent.
type PendingInvites struct {
	Received []InviteView `json:"received"`
	Sent     []InviteView `json:"sent"`
}

// ListPendingInvites returns userID's pending received and sent invites, newest first.
func (s *Service) ListPendingInvites(ctx context.Context, userID uuid.UUID) (*PendingInvites, error) {
	var invites []domain.FriendInvite
	if err := s.DB.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, domain.InviteStatusPending).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	others := make([]uuid.UUID, 0, len(invites))
	for _, inv := range invites {
		others = append(others, otherParty(inv, userID))
	}
	profiles, err := s.profiles(ctx, others)
	if err != nil {
		return nil, err
	}
	out := &PendingInvites{Received: []InviteView{}, Sent: []InviteView{}}
	for _, inv := range invites {
		view := InviteView{
			InviteID:  inv.InviteID,
			Status:    inv.Status,
			CreatedAt: inv.CreatedAt,
			User:      profiles[otherParty(inv, userID)],
		}
		if inv.ReceiverID == userID {
			out.Received = append(out.Received, view)
		} else {
			out.Sent = append(out.Sent, view)
		}
	}
	return out, nil
}

func otherParty(inv domain.FriendInvite, userID uuid.UUID) uuid.UUID {
	if inv.SenderID == userID {
		return inv.ReceiverID
	}
	return inv.SenderID
}

func (s *Service) profiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PublicProfile, error) {
	out := make(map[uuid.UUID]domain.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := s.DB.WithContext(ctx).Where("user_id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].UserID] = users[i].Profile()
	}
	return out, nil
}

// RemoveFriend deletes both directions of the friendship between actor and friendID.
func (s *Service) RemoveFriend(ctx context.Context, actor policies.Actor, friendID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			actor.UserID, friendID, friendID, actor.UserID).
			Delete(&domain.Friendship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFriends
		}
		return nil
	})
}
