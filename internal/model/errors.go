package model

import "errors"

// Common errors used across the application
var (
	// Input errors
	ErrValidation = errors.New("validation failed")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateIdentity = errors.New("username or email already exists")

	// Credential errors
	ErrMissingCredential = errors.New("access token required")
	ErrInvalidCredential = errors.New("invalid token")

	// Score errors. Not-found and not-owned share one error.
	ErrScoreNotFound = errors.New("score not found or unauthorized")

	// Backend errors
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)
