package domain

import (
	"time"

	"github.com/google/uuid"
)

// TravelUser is the membership of a user in a travel. (travel_id, user_id) is the key.
type TravelUser struct {
	TravelID  uuid.UUID  `gorm:"column:travel_id;type:uuid;primaryKey" json:"travel_id"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey;index" json:"user_id"`
	Status    string     `gorm:"column:status;not null;default:pending" json:"status"`
	Role      string     `gorm:"column:role;not null;default:member" json:"role"`
	InvitedAt *time.Time `gorm:"column:invited_at" json:"invited_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (TravelUser) TableName() string {
	return "travel_users"
}

// IsMember reports whether the row counts as belonging to the travel.
func (m *TravelUser) IsMember() bool {
	return m != nil && m.Status != MembershipRejected
}

// IsAdmin reports whether the row grants the admin role.
func (m *TravelUser) IsAdmin() bool {
	return m != nil && m.Role == MemberRoleAdmin && m.Status == MembershipAccepted
}

// Member is a membership joined with the member's public profile.
type Member struct {
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Photo     *string    `json:"photo"`
	Status    string     `json:"status"`
	Role      string     `json:"role"`
	InvitedAt *time.Time `json:"invited_at"`
	IsCreator bool       `json:"is_creator"`
}
