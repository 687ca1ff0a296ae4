package travels

import (
	"context"
	"encoding/json"

	invitepolicy "travel-backend/internal/application/policies/invitations"
	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordEvent appends an audit event for the travel on tx.
func RecordEvent(tx *gorm.DB, travelID, actorID uuid.UUID, eventType string, payload map[string]interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&domain.TravelEvent{
		TravelID:  travelID,
		ActorID:   actorID,
		EventType: eventType,
		Payload:   datatypes.JSON(b),
	}).Error
}

// ListEvents returns the travel's audit trail, oldest first. Events mention invitee
// emails, so they follow the invite visibility rule.
func (s *Service) ListEvents(ctx context.Context, actor policies.Actor, travelID uuid.UUID) ([]domain.TravelEvent, error) {
	_, access, err := s.Access(ctx, actor, travelID)
	if err != nil {
		return nil, err
	}
	if !invitepolicy.CanViewInvites(access) {
		return nil, ErrNotAuthorized
	}
	var events []domain.TravelEvent
	if err := s.DB.WithContext(ctx).Where("travel_id = ?", travelID).Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
