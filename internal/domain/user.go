package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account. Users are soft-deleted so travels they created keep a valid creator.
type User struct {
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Nickname     *string        `gorm:"column:nickname" json:"nickname"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Photo        *string        `gorm:"column:photo" json:"photo"`
	Role         string         `gorm:"column:role;not null;default:user" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

// PublicProfile is the subset of a user other users may see.
type PublicProfile struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Nickname *string   `json:"nickname"`
	Email    string    `json:"email"`
	Photo    *string   `json:"photo"`
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{UserID: u.UserID, Name: u.Name, Nickname: u.Nickname, Email: u.Email, Photo: u.Photo}
}
