package travelinvites

import "travel-backend/internal/pkg/apperr"

var (
	ErrAlreadyMember          = apperr.New(apperr.Duplicate, "User is already a member of this travel")
	ErrDuplicatePendingInvite = apperr.New(apperr.Duplicate, "A pending invite already exists for this email")
	ErrWrongRecipient         = apperr.New(apperr.NotAuthorized, "This invite was sent to another email address")
	ErrInviteNotFound         = apperr.New(apperr.NotFound, "Invite not found")
	ErrInviteNotPending       = apperr.New(apperr.InvalidState, "Invite is no longer pending")
	ErrNotAuthorized          = apperr.New(apperr.NotAuthorized, "You are not allowed to perform this action")
	ErrResendTooSoon          = apperr.New(apperr.InvalidState, "Invite can only be resent once per day")
)
