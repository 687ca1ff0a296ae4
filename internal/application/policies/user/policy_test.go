package policies

import (
	"testing"

	travelpolicy "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateMemberRemoval(t *testing.T) {
	creator, member, stranger := uuid.New(), uuid.New(), uuid.New()
	travel := &domain.Travel{CreatorID: creator}
	row := &domain.TravelUser{TravelID: uuid.New(), UserID: member, Status: domain.MembershipAccepted, Role: domain.MemberRoleMember}

	byCreator := travelpolicy.NewTravelAccess(creator, travel, nil)
	byMember := travelpolicy.NewTravelAccess(member, travel, row)

	assert.NoError(t, ValidateMemberRemoval(byCreator, member, row))
	assert.ErrorIs(t, ValidateMemberRemoval(byCreator, creator, nil), ErrCannotRemoveCreator)
	assert.ErrorIs(t, ValidateMemberRemoval(byMember, creator, nil), ErrCannotRemoveCreator)
	assert.ErrorIs(t, ValidateMemberRemoval(byMember, member, row), ErrNotAllowed)
	assert.ErrorIs(t, ValidateMemberRemoval(byCreator, stranger, nil), ErrTargetNotMember)
}

func TestValidateMemberRoleChange(t *testing.T) {
	creator, member := uuid.New(), uuid.New()
	travel := &domain.Travel{CreatorID: creator}
	row := &domain.TravelUser{UserID: member, Status: domain.MembershipAccepted, Role: domain.MemberRoleMember}
	byCreator := travelpolicy.NewTravelAccess(creator, travel, nil)

	assert.NoError(t, ValidateMemberRoleChange(byCreator, member, row, domain.MemberRoleAdmin))
	assert.ErrorIs(t, ValidateMemberRoleChange(byCreator, member, row, "owner"), ErrInvalidMemberRole)
	assert.ErrorIs(t, ValidateMemberRoleChange(byCreator, creator, nil, domain.MemberRoleAdmin), ErrCreatorRoleIsFixed)
	assert.ErrorIs(t, ValidateMemberRoleChange(byCreator, uuid.New(), nil, domain.MemberRoleAdmin), ErrTargetNotMember)
	assert.ErrorIs(t, ValidateMemberRoleChange(travelpolicy.NewTravelAccess(member, travel, row), member, row, domain.MemberRoleAdmin), ErrNotAllowed)
}

func TestValidateLeave(t *testing.T) {
	creator, member := uuid.New(), uuid.New()
	travel := &domain.Travel{CreatorID: creator}
	row := &domain.TravelUser{UserID: member, Status: domain.MembershipAccepted}

	assert.NoError(t, ValidateLeave(travelpolicy.NewTravelAccess(member, travel, row)))
	assert.ErrorIs(t, ValidateLeave(travelpolicy.NewTravelAccess(creator, travel, nil)), ErrCannotRemoveCreator)
	assert.ErrorIs(t, ValidateLeave(travelpolicy.NewTravelAccess(uuid.New(), travel, nil)), ErrTargetNotMember)
}
