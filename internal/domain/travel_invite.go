package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TravelInvite is an email-addressed invitation to join a travel, redeemed by Token.
// At most one pending invite may exist per (travel_id, email).
type TravelInvite struct {
	InviteID  uuid.UUID `gorm:"column:invite_id;type:uuid;primaryKey" json:"invite_id"`
	TravelID  uuid.UUID `gorm:"column:travel_id;type:uuid;not null;uniqueIndex:idx_travel_invites_pending,where:status = 'pending'" json:"travel_id"`
	SenderID  uuid.UUID `gorm:"column:sender_id;type:uuid;not null" json:"sender_id"`
	Email     string    `gorm:"column:email;not null;index;uniqueIndex:idx_travel_invites_pending,where:status = 'pending'" json:"email"`
	Token     string    `gorm:"column:token;type:varchar(32);not null;uniqueIndex" json:"-"`
	Status    string    `gorm:"column:status;not null;default:pending" json:"status"`
	SentAt    time.Time `gorm:"column:sent_at" json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TravelInvite) TableName() string {
	return "travel_invites"
}

func (i *TravelInvite) BeforeCreate(tx *gorm.DB) error {
	if i.InviteID == uuid.Nil {
		i.InviteID = uuid.New()
	}
	return nil
}
