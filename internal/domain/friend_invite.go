package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendInvite is a friend request from Sender to Receiver.
// At most one pending invite may exist per ordered (sender_id, receiver_id).
type FriendInvite struct {
	InviteID   uuid.UUID `gorm:"column:invite_id;type:uuid;primaryKey" json:"invite_id"`
	SenderID   uuid.UUID `gorm:"column:sender_id;type:uuid;not null;uniqueIndex:idx_friend_invites_pending,where:status = 'pending'" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"column:receiver_id;type:uuid;not null;index;uniqueIndex:idx_friend_invites_pending,where:status = 'pending'" json:"receiver_id"`
	Status     string    `gorm:"column:status;not null;default:pending" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FriendInvite) TableName() string {
	return "friend_invites"
}

func (i *FriendInvite) BeforeCreate(tx *gorm.DB) error {
	if i.InviteID == uuid.Nil {
		i.InviteID = uuid.New()
	}
	return nil
}
