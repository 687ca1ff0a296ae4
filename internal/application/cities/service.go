package cities

import (
	"context"
	"errors"
	"strings"
	"time"

	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/application/travels"
	"travel-backend/internal/domain"
	"travel-backend/internal/pkg/apperr"
	"travel-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCityNotFound  = apperr.New(apperr.NotFound, "City not found")
	ErrNotAuthorized = apperr.New(apperr.NotAuthorized, "You are not allowed to perform this action")
)

// Service manages the cities of a travel.
type Service struct {
	DB *gorm.DB
}

// CityInput is the create/update body. Dates are YYYY-MM-DD.
type CityInput struct {
	Name          string  `json:"name" validate:"notblank,max=255"`
	Country       *string `json:"country" validate:"omitempty,max=255"`
	ArrivalDate   *string `json:"arrival_date" validate:"omitempty,datetime=2006-01-02"`
	DepartureDate *string `json:"departure_date" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string `json:"notes" validate:"omitempty,max=5000"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
	Position      int     `json:"position" validate:"gte=0"`
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}

func (in CityInput) apply(c *domain.City) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	arrival, departure := parseDate(in.ArrivalDate), parseDate(in.DepartureDate)
	if arrival != nil && departure != nil && departure.Before(*arrival) {
		return apperr.Invalid("Validation failed", map[string]string{
			"departure_date": "must not be before arrival_date",
		})
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Country = in.Country
	c.ArrivalDate = arrival
	c.DepartureDate = departure
	c.Notes = in.Notes
	c.ImageURL = in.ImageURL
	c.Position = in.Position
	return nil
}

// List returns the travel's cities in itinerary order.
func (s *Service) List(ctx context.Context, actor policies.Actor, travelID uuid.UUID) ([]domain.City, error) {
	db := s.DB.WithContext(ctx)
	_, access, err := travels.LoadAccess(db, actor.UserID, travelID)
	if err != nil {
		return nil, err
	}
	if !policies.CanViewCities(access) {
		return nil, ErrNotAuthorized
	}
	out := []domain.City{}
	err = db.Where("travel_id = ?", travelID).Order("position ASC, arrival_date ASC").Find(&out).Error
	return out, err
}

func (s *Service) Create(ctx context.Context, actor policies.Actor, travelID uuid.UUID, in CityInput) (*domain.City, error) {
	city := &domain.City{TravelID: travelID}
	if err := in.apply(city); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, access, err := travels.LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		if !policies.CanCreateCity(access) {
			return ErrNotAuthorized
		}
		return tx.Create(city).Error
	})
	if err != nil {
		return nil, err
	}
	return city, nil
}

func (s *Service) Update(ctx context.Context, actor policies.Actor, travelID, cityID uuid.UUID, in CityInput) (*domain.City, error) {
	var city domain.City
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, access, err := travels.LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		if !policies.CanUpdateCity(access) {
			return ErrNotAuthorized
		}
		if err := findCity(tx, travelID, cityID, &city); err != nil {
			return err
		}
		if err := in.apply(&city); err != nil {
			return err
		}
		return tx.Save(&city).Error
	})
	if err != nil {
		return nil, err
	}
	return &city, nil
}

func (s *Service) Delete(ctx context.Context, actor policies.Actor, travelID, cityID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, access, err := travels.LoadAccess(tx, actor.UserID, travelID)
		if err != nil {
			return err
		}
		if !policies.CanDeleteCity(access) {
			return ErrNotAuthorized
		}
		var city domain.City
		if err := findCity(tx, travelID, cityID, &city); err != nil {
			return err
		}
		return tx.Delete(&city).Error
	})
}

func findCity(tx *gorm.DB, travelID, cityID uuid.UUID, out *domain.City) error {
	err := tx.Where("city_id = ? AND travel_id = ?", cityID, travelID).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCityNotFound
	}
	return err
}
