package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSelfFriendship = errors.New("a user cannot be friends with themselves")

// Friendship is one direction of a mutual friendship; a friendship is always two rows.
type Friendship struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FriendID  uuid.UUID `gorm:"column:friend_id;type:uuid;primaryKey;index" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Friendship) TableName() string {
	return "friendships"
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.UserID == f.FriendID {
		return ErrSelfFriendship
	}
	return nil
}
