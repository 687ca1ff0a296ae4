package policies

import (
	travelpolicy "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/domain"

	"github.com/google/uuid"
)

// ValidateMemberRoleChange checks that the actor may set targetUserID's membership
// role in the travel described by access. target is the target's membership row.
func ValidateMemberRoleChange(access travelpolicy.TravelAccess, targetUserID uuid.UUID, target *domain.TravelUser, newRole string) error {
	if !travelpolicy.CanManageTravel(access) {
		return ErrNotAllowed
	}
	if !domain.IsValidMemberRole(newRole) {
		return ErrInvalidMemberRole
	}
	if targetUserID == access.CreatorID {
		return ErrCreatorRoleIsFixed
	}
	if target == nil || !target.IsMember() {
		return ErrTargetNotMember
	}
	return nil
}

// ValidateMemberRemoval checks that the actor may remove targetUserID from the travel.
// Removing the creator is refused for every actor.
func ValidateMemberRemoval(access travelpolicy.TravelAccess, targetUserID uuid.UUID, target *domain.TravelUser) error {
	if targetUserID == access.CreatorID {
		return ErrCannotRemoveCreator
	}
	if !travelpolicy.CanManageTravel(access) {
		return ErrNotAllowed
	}
	if target == nil {
		return ErrTargetNotMember
	}
	return nil
}

// ValidateLeave checks that the actor may remove themselves from the travel.
func ValidateLeave(access travelpolicy.TravelAccess) error {
	if access.IsCreator() {
		return ErrCannotRemoveCreator
	}
	if access.Membership == nil {
		return ErrTargetNotMember
	}
	return nil
}
