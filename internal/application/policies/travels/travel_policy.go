package policies

import (
	"travel-backend/internal/domain"

	"github.com/google/uuid"
)

// Actor is the authenticated user a request acts on behalf of.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   string
}

// TravelAccess is everything the travel policies need about one actor and one travel.
// It is loaded once per request and passed by value.
type TravelAccess struct {
	ActorID    uuid.UUID
	CreatorID  uuid.UUID
	IsPublic   bool
	Membership *domain.TravelUser
}

// NewTravelAccess builds the access value; membership is nil when the actor has no row.
func NewTravelAccess(actorID uuid.UUID, travel *domain.Travel, membership *domain.TravelUser) TravelAccess {
	return TravelAccess{
		ActorID:    actorID,
		CreatorID:  travel.CreatorID,
		IsPublic:   travel.IsPublic,
		Membership: membership,
	}
}

func (a TravelAccess) IsCreator() bool {
	return a.ActorID != uuid.Nil && a.ActorID == a.CreatorID
}

// IsMember is true for the creator and for any non-rejected membership row.
func (a TravelAccess) IsMember() bool {
	return a.IsCreator() || a.Membership.IsMember()
}

func (a TravelAccess) IsAcceptedMember() bool {
	return a.Membership != nil && a.Membership.Status == domain.MembershipAccepted
}

func (a TravelAccess) IsAdmin() bool {
	return a.Membership.IsAdmin()
}

func CanViewTravel(a TravelAccess) bool {
	return a.IsMember() || a.IsPublic
}

func CanUpdateTravel(a TravelAccess) bool {
	return a.IsCreator()
}

func CanDeleteTravel(a TravelAccess) bool {
	return a.IsCreator()
}

// CanManageTravel gates membership management (removing members, changing roles).
func CanManageTravel(a TravelAccess) bool {
	return a.IsCreator()
}

func CanViewCities(a TravelAccess) bool {
	return a.IsMember()
}

func CanCreateCity(a TravelAccess) bool {
	return a.IsMember()
}

func CanUpdateCity(a TravelAccess) bool {
	return a.IsCreator()
}

func CanDeleteCity(a TravelAccess) bool {
	return a.IsCreator()
}
