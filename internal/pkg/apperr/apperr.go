package apperr

import "errors"

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	NotAuthorized
	Duplicate
	InvalidState
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case NotAuthorized:
		return "not_authorized"
	case Duplicate:
		return "duplicate"
	case InvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error is a user-facing error. Fields carries per-field messages for validation errors.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Is makes sentinel comparison work on identity, so two sentinels with the same
// kind stay distinguishable with errors.Is.
func (e *Error) Is(target error) bool {
	return e == target
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalid builds a validation error with per-field details.
func Invalid(message string, fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: message, Fields: fields}
}

// KindOf returns the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
