package travels

import (
	"context"
	"errors"

	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoadAccess loads a travel and the actor's membership row and evaluates them into
// the access value the policies take. Runs on db, which may be a transaction.
func LoadAccess(db *gorm.DB, actorID, travelID uuid.UUID) (*domain.Travel, policies.TravelAccess, error) {
	var travel domain.Travel
	if err := db.Where("travel_id = ?", travelID).First(&travel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policies.TravelAccess{}, ErrTravelNotFound
		}
		return nil, policies.TravelAccess{}, err
	}
	membership, err := findMembership(db, travelID, actorID)
	if err != nil {
		return nil, policies.TravelAccess{}, err
	}
	return &travel, policies.NewTravelAccess(actorID, &travel, membership), nil
}

// Access is LoadAccess outside a transaction.
func (s *Service) Access(ctx context.Context, actor policies.Actor, travelID uuid.UUID) (*domain.Travel, policies.TravelAccess, error) {
	return LoadAccess(s.DB.WithContext(ctx), actor.UserID, travelID)
}

func findMembership(db *gorm.DB, travelID, userID uuid.UUID) (*domain.TravelUser, error) {
	var m domain.TravelUser
	err := db.Where("travel_id = ? AND user_id = ?", travelID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
