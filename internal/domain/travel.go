package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Travel is a trip owned by its creator.
type Travel struct {
	TravelID    uuid.UUID `gorm:"column:travel_id;type:uuid;primaryKey" json:"travel_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Destination *string   `gorm:"column:destination" json:"destination"`
	StartDate   time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate     time.Time `gorm:"column:end_date;not null" json:"end_date"`
	Description *string   `gorm:"column:description" json:"description"`
	IsPublic    bool      `gorm:"column:is_public;not null;default:false" json:"is_public"`
	Status      string    `gorm:"column:status;not null;default:planned" json:"status"`
	CoverImage  *string   `gorm:"column:cover_image" json:"cover_image"`
	CreatorID   uuid.UUID `gorm:"column:creator_id;type:uuid;not null;index" json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Travel) TableName() string {
	return "travels"
}

func (t *Travel) BeforeCreate(tx *gorm.DB) error {
	if t.TravelID == uuid.Nil {
		t.TravelID = uuid.New()
	}
	return nil
}
