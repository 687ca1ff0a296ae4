package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Travel event types.
const (
	EventTravelCreated   = "travel_created"
	EventMemberAttached  = "member_attached"
	EventMemberRemoved   = "member_removed"
	EventMemberRole      = "member_role_changed"
	EventInviteCreated   = "invite_created"
	EventInviteAccepted  = "invite_accepted"
	EventInviteDeclined  = "invite_declined"
	EventInviteCancelled = "invite_cancelled"
)

// TravelEvent is an append-only audit record of membership and invite transitions.
type TravelEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	TravelID  uuid.UUID      `gorm:"column:travel_id;type:uuid;not null;index" json:"travel_id"`
	ActorID   uuid.UUID      `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`
	EventType string         `gorm:"column:event_type;not null" json:"event_type"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func (TravelEvent) TableName() string {
	return "travel_events"
}

func (e *TravelEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
