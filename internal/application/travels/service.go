package travels

import (
	"context"
	"strings"
	"time"

	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/domain"
	"travel-backend/internal/pkg/apperr"
	"travel-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// FriendChecker answers whether two users are friends.
type FriendChecker interface {
	IsFriendsWith(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// Service implements travels and their membership.
type Service struct {
	DB      *gorm.DB
	Friends FriendChecker
}

// TravelInput is the body for creating or replacing a travel. Dates are YYYY-MM-DD.
type TravelInput struct {
	Title       string  `json:"title" validate:"notblank,max=255"`
	Destination *string `json:"destination" validate:"omitempty,max=255"`
	StartDate   string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	IsPublic    bool    `json:"is_public"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft planned ongoing completed cancelled"`
	CoverImage  *string `json:"cover_image" validate:"omitempty,url"`
}

// parsed validates the input and returns its dates.
func (in TravelInput) parsed() (time.Time, time.Time, error) {
	if err := validation.Struct(in); err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, _ := time.Parse(dateLayout, in.StartDate)
	end, _ := time.Parse(dateLayout, in.EndDate)
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperr.Invalid("Validation failed", map[string]string{
			"end_date": "must not be before start_date",
		})
	}
	return start, end, nil
}

func (in TravelInput) apply(t *domain.Travel, start, end time.Time) {
	t.Title = strings.TrimSpace(in.Title)
	t.Destination = in.Destination
	t.StartDate = start
	t.EndDate = end
	t.Description = in.Description
	t.IsPublic = in.IsPublic
	t.CoverImage = in.CoverImage
	if in.Status != "" {
		t.Status = in.Status
	}
	if t.Status == "" {
		t.Status = domain.TravelStatusPlanned
	}
}

// CreateTravel creates a travel and attaches its creator as an accepted member in
// the same transaction.
func (s *Service) CreateTravel(ctx context.Context, actor policies.Actor, in TravelInput) (*domain.Travel, error) {
	start, end, err := in.parsed()
	if err != nil {
		return nil, err
	}
	travel := &domain.Travel{CreatorID: actor.UserID}
	in.apply(travel, start, end)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(travel).Error; err != nil {
			return err
		}
		now := time.Now()
		if err := AttachMember(tx, &domain.TravelUser{
			TravelID:  travel.TravelID,
			UserID:    actor.UserID,
			Status:    domain.MembershipAccepted,
			Role:      domain.MemberRoleMember,
			InvitedAt: &now,
		}); err != nil {
			return err
		}
		return RecordEvent(tx, travel.TravelID, actor.UserID, domain.EventTravelCreated, map[string]interface{}{
			"title": travel.Title,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("travel_id", travel.TravelID.String()).Str("creator_id", actor.UserID.String()).Msg("travel created")
	return travel, nil
}

// GetTravel returns the travel when the actor may view it.
func (s *Service) GetTravel(ctx context.Context, actor policies.Actor, travelID uuid.UUID) (*domain.Travel, error) {
	travel, access, err := s.Access(ctx, actor, travelID)
	if err != nil {
		return nil, err
	}
	if !policies.CanViewTravel(access) {
		return nil, ErrNotAuthorized
	}
	return travel, nil
}

// UpdateTravel replaces the editable fields of a travel. Creator only.
func (s *Service) UpdateTravel(ctx context.Context, actor policies.Actor, travelID uuid.UUID, in TravelInput) (*domain.Travel, error) {
	start, end, err := in.parsed()
	if err != nil {
		return nil, err
	}
	var travel *domain.Travel
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, access, err := LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		if !policies.CanUpdateTravel(access) {
			return ErrNotAuthorized
		}
		in.apply(t, start, end)
		travel = t
		return tx.Save(t).Error
	})
	if err != nil {
		return nil, err
	}
	return travel, nil
}

// DeleteTravel deletes a travel and everything it owns. Creator only.
func (s *Service) DeleteTravel(ctx context.Context, actor policies.Actor, travelID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, access, err := LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		if !policies.CanDeleteTravel(access) {
			return ErrNotAuthorized
		}
		for _, model := range []interface{}{
			&domain.TravelEvent{}, &domain.City{}, &domain.TravelInvite{}, &domain.TravelUser{},
		} {
			if err := tx.Where("travel_id = ?", travelID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("travel_id = ?", travelID).Delete(&domain.Travel{}).Error
	})
}

// ListMyTravels returns travels the actor created or is an accepted member of.
func (s *Service) ListMyTravels(ctx context.Context, actor policies.Actor) ([]domain.Travel, error) {
	db := s.DB.WithContext(ctx)
	memberOf := db.Model(&domain.TravelUser{}).Select("travel_id").
		Where("user_id = ? AND status = ?", actor.UserID, domain.MembershipAccepted)
	var out []domain.Travel
	err := db.Where("creator_id = ? OR travel_id IN (?)", actor.UserID, memberOf).
		Order("start_date ASC").
		Find(&out).Error
	return out, err
}

// ListPublicTravels returns public travels, most recent start first.
func (s *Service) ListPublicTravels(ctx context.Context, limit, offset int) ([]domain.Travel, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	q := s.DB.WithContext(ctx).Model(&domain.Travel{}).Where("is_public = ?", true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Travel
	err := s.DB.WithContext(ctx).Where("is_public = ?", true).
		Order("start_date DESC").Limit(limit).Offset(offset).
		Find(&out).Error
	return out, total, err
}
