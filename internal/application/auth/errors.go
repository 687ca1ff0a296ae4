package auth

import "travel-backend/internal/pkg/apperr"

var (
	ErrEmailPasswordRequired = apperr.Invalid("Email and password are required", map[string]string{
		"email":    "is required",
		"password": "is required",
	})
	ErrInvalidCredentials = apperr.New(apperr.NotAuthorized, "Invalid email or password")
	ErrNotAuthenticated   = apperr.New(apperr.NotAuthorized, "Not authenticated")
)
