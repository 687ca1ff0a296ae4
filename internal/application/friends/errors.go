package friends

import "travel-backend/internal/pkg/apperr"

var (
	ErrSelfInvite       = apperr.New(apperr.Duplicate, "You cannot send a friend invite to yourself")
	ErrAlreadyFriends   = apperr.New(apperr.Duplicate, "You are already friends with this user")
	ErrDuplicateInvite  = apperr.New(apperr.Duplicate, "A pending friend invite already exists between you and this user")
	ErrUserNotFound     = apperr.New(apperr.NotFound, "User not found")
	ErrInviteNotFound   = apperr.New(apperr.NotFound, "Friend invite not found")
	ErrNotAuthorized    = apperr.New(apperr.NotAuthorized, "You are not allowed to perform this action")
	ErrInviteNotPending = apperr.New(apperr.InvalidState, "This friend invite has already been answered")
	ErrNotFriends       = apperr.New(apperr.NotFound, "You are not friends with this user")
)
