package policies

import "travel-backend/internal/pkg/apperr"

var (
	ErrNotAllowed          = apperr.New(apperr.NotAuthorized, "You are not allowed to perform this action")
	ErrCannotRemoveCreator = apperr.New(apperr.InvalidState, "The travel creator cannot be removed")
	ErrCreatorRoleIsFixed  = apperr.New(apperr.InvalidState, "The travel creator's role cannot be changed")
	ErrTargetNotMember     = apperr.New(apperr.NotFound, "User is not a member of this travel")
	ErrInvalidMemberRole   = apperr.Invalid("Validation failed", map[string]string{"role": "must be one of: member admin"})
)
