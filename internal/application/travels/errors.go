package travels

import (
	userpolicy "travel-backend/internal/application/policies/user"
	"travel-backend/internal/pkg/apperr"
)

var (
	ErrTravelNotFound = apperr.New(apperr.NotFound, "Travel not found")
	ErrNotAuthorized  = apperr.New(apperr.NotAuthorized, "You are not allowed to perform this action")
	ErrNotFriends     = apperr.New(apperr.NotAuthorized, "You can only add your friends to a travel")
	ErrAlreadyMember  = apperr.New(apperr.Duplicate, "User is already a member of this travel")

	// Membership rule violations are shared with the role governance policy.
	ErrCannotRemoveCreator = userpolicy.ErrCannotRemoveCreator
	ErrNotMember           = userpolicy.ErrTargetNotMember
)
