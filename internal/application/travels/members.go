package travels

import (
	"context"
	"errors"
	"time"

	policies "travel-backend/internal/application/policies/travels"
	userpolicy "travel-backend/internal/application/policies/user"
	"travel-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttachMember upserts a membership keyed on (travel_id, user_id). An existing row
// gets the new status and invited_at; its role is kept.
func AttachMember(tx *gorm.DB, m *domain.TravelUser) error {
	if m.Role == "" {
		m.Role = domain.MemberRoleMember
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "travel_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "invited_at", "updated_at"}),
	}).Create(m).Error
}

// AddFriendToTravel attaches one of the creator's friends directly as an accepted member.
func (s *Service) AddFriendToTravel(ctx context.Context, actor policies.Actor, travelID, friendID uuid.UUID) (*domain.TravelUser, error) {
	if s.Friends == nil {
		return nil, errors.New("travels: friend checker not configured")
	}
	_, access, err := s.Access(ctx, actor, travelID)
	if err != nil {
		return nil, err
	}
	if !access.IsCreator() {
		return nil, ErrNotAuthorized
	}
	ok, err := s.Friends.IsFriendsWith(ctx, actor.UserID, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFriends
	}

	var member *domain.TravelUser
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findMembership(tx, travelID, friendID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == domain.MembershipAccepted {
			return ErrAlreadyMember
		}
		now := time.Now()
		member = &domain.TravelUser{
			TravelID:  travelID,
			UserID:    friendID,
			Status:    domain.MembershipAccepted,
			Role:      domain.MemberRoleMember,
			InvitedAt: &now,
		}
		if err := AttachMember(tx, member); err != nil {
			return err
		}
		return RecordEvent(tx, travelID, actor.UserID, domain.EventMemberAttached, map[string]interface{}{
			"user_id": friendID,
			"via":     "friend",
		})
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember removes target from the travel. Creator only; the creator cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actor policies.Actor, travelID, targetID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, access, err := LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		target, err := findMembership(tx, travelID, targetID)
		if err != nil {
			return err
		}
		if err := userpolicy.ValidateMemberRemoval(access, targetID, target); err != nil {
			return err
		}
		if err := tx.Where("travel_id = ? AND user_id = ?", travelID, targetID).Delete(&domain.TravelUser{}).Error; err != nil {
			return err
		}
		log.Info().Str("travel_id", travelID.String()).Str("user_id", targetID.String()).Msg("member removed")
		return RecordEvent(tx, travelID, actor.UserID, domain.EventMemberRemoved, map[string]interface{}{
			"user_id": targetID,
		})
	})
}

// Leave removes the actor's own membership. The creator cannot leave.
func (s *Service) Leave(ctx context.Context, actor policies.Actor, travelID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, access, err := LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		if err := userpolicy.ValidateLeave(access); err != nil {
			return err
		}
		if err := tx.Where("travel_id = ? AND user_id = ?", travelID, actor.UserID).Delete(&domain.TravelUser{}).Error; err != nil {
			return err
		}
		return RecordEvent(tx, travelID, actor.UserID, domain.EventMemberRemoved, map[string]interface{}{
			"user_id": actor.UserID,
			"left":    true,
		})
	})
}

// UpdateMemberRole sets a member's role. Creator only.
func (s *Service) UpdateMemberRole(ctx context.Context, actor policies.Actor, travelID, targetID uuid.UUID, role string) (*domain.TravelUser, error) {
	var target *domain.TravelUser
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, access, err := LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		target, err = findMembership(tx, travelID, targetID)
		if err != nil {
			return err
		}
		if err := userpolicy.ValidateMemberRoleChange(access, targetID, target, role); err != nil {
			return err
		}
		if err := tx.Model(&domain.TravelUser{}).
			Where("travel_id = ? AND user_id = ?", travelID, targetID).
			Update("role", role).Error; err != nil {
			return err
		}
		target.Role = role
		return RecordEvent(tx, travelID, actor.UserID, domain.EventMemberRole, map[string]interface{}{
			"user_id": targetID,
			"role":    role,
		})
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// ListMembers returns the travel's members with their membership attributes,
// creator first. Requires the view policy; emails are only shown to members.
func (s *Service) ListMembers(ctx context.Context, actor policies.Actor, travelID uuid.UUID) ([]domain.Member, error) {
	travel, access, err := s.Access(ctx, actor, travelID)
	if err != nil {
		return nil, err
	}
	if !policies.CanViewTravel(access) {
		return nil, ErrNotAuthorized
	}
	type row struct {
		UserID    uuid.UUID
		Name      string
		Email     string
		Photo     *string
		Status    string
		Role      string
		InvitedAt *time.Time
	}
	var rows []row
	err = s.DB.WithContext(ctx).Table("travel_users").
		Select("travel_users.user_id, users.name, users.email, users.photo, travel_users.status, travel_users.role, travel_users.invited_at").
		Joins("JOIN users ON users.user_id = travel_users.user_id").
		Where("travel_users.travel_id = ?", travelID).
		Order("users.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Member, 0, len(rows))
	for _, r := range rows {
		m := domain.Member{
			UserID: r.UserID, Name: r.Name, Email: r.Email, Photo: r.Photo,
			Status: r.Status, Role: r.Role, InvitedAt: r.InvitedAt,
			IsCreator: r.UserID == travel.CreatorID,
		}
		if !access.IsMember() {
			m.Email = ""
		}
		if m.IsCreator {
			out = append([]domain.Member{m}, out...)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
