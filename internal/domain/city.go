package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// City is a stop of a travel. Cities are owned by their travel and deleted with it.
type City struct {
	CityID        uuid.UUID  `gorm:"column:city_id;type:uuid;primaryKey" json:"city_id"`
	TravelID      uuid.UUID  `gorm:"column:travel_id;type:uuid;not null;index" json:"travel_id"`
	Name          string     `gorm:"column:name;not null" json:"name"`
	Country       *string    `gorm:"column:country" json:"country"`
	ArrivalDate   *time.Time `gorm:"column:arrival_date" json:"arrival_date"`
	DepartureDate *time.Time `gorm:"column:departure_date" json:"departure_date"`
	Notes         *string    `gorm:"column:notes" json:"notes"`
	ImageURL      *string    `gorm:"column:image_url" json:"image_url"`
	Position      int        `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (City) TableName() string {
	return "cities"
}

func (c *City) BeforeCreate(tx *gorm.DB) error {
	if c.CityID == uuid.Nil {
		c.CityID = uuid.New()
	}
	return nil
}
