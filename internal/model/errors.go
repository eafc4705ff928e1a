package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")

	// Catalog errors
	ErrTeamNotFound       = errors.New("team not found")
	ErrTrackNotFound      = errors.New("track not found")
	ErrInvalidTrackLength = errors.New("track length must be positive")

	// Race result errors
	ErrResultNotFound  = errors.New("race result not found")
	ErrNotOwner        = errors.New("race result belongs to another user")
	ErrDuplicateResult = errors.New("race result already exists for user, team and track")

	// Input errors
	ErrMissingField     = errors.New("required field missing")
	ErrInvalidReference = errors.New("malformed identifier")
)
