package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/services/auth"
	"github.com/mcoot/scoreboard/internal/services/token"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeMissingCredential  = "MISSING_CREDENTIAL"
	CodeInvalidCredential  = "INVALID_CREDENTIAL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, ve.Message}}
	}

	switch {
	// Input errors
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Invalid request"}}
	case errors.Is(err, model.ErrDuplicateIdentity):
		return &httpError{http.StatusBadRequest, APIError{CodeDuplicateIdentity, "User already exists"}}

	// Credential errors
	case errors.Is(err, model.ErrMissingCredential):
		return &httpError{http.StatusUnauthorized, APIError{CodeMissingCredential, "Access token required"}}
	case errors.Is(err, model.ErrInvalidCredential), errors.Is(err, token.ErrInvalidToken):
		return &httpError{http.StatusForbidden, APIError{CodeInvalidCredential, "Invalid token"}}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid credentials"}}

	// Lookup errors
	case errors.Is(err, model.ErrScoreNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Score not found or unauthorized"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "User not found"}}

	// Backend errors
	case errors.Is(err, model.ErrBackendUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeBackendUnavailable, "Storage backend unavailable"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewMethodNotAllowedError creates a method not allowed error
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
