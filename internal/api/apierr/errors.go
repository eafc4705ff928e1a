package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/services/auth"
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
	CodeInvalidReference   = "INVALID_REFERENCE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeTeamNotFound       = "TEAM_NOT_FOUND"
	CodeTrackNotFound      = "TRACK_NOT_FOUND"
	CodeResultNotFound     = "RESULT_NOT_FOUND"
	CodeDuplicateResult    = "DUPLICATE_RESULT"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeNotFound           = "NOT_FOUND"
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

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Map auth errors
	case errors.Is(err, auth.ErrMissingToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Missing token"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid token"}}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}

	// Map model errors
	case errors.Is(err, model.ErrMissingField):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Missing required field"}}
	case errors.Is(err, model.ErrInvalidReference):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidReference, "Malformed identifier"}}
	case errors.Is(err, model.ErrInvalidTrackLength):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Track length must be positive"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrTeamNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTeamNotFound, "Team not found"}}
	case errors.Is(err, model.ErrTrackNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTrackNotFound, "Track not found"}}
	case errors.Is(err, model.ErrResultNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeResultNotFound, "Race result not found"}}
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Race result belongs to another user"}}
	case errors.Is(err, model.ErrDuplicateResult):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateResult, "Race result already exists"}}
	case errors.Is(err, model.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email already registered"}}

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
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Route not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
