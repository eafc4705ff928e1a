package model

import (
	"strings"
	"time"
)

// UserID uniquely identifies a registered user
type UserID string

// User is a registered account. Immutable after registration.
type User struct {
	ID           UserID
	Username     string // display name
	Email        string // unique, stored lower-cased
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}

// Identity returns the caller identity carried in access tokens
func (u *User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// Identity is the authenticated caller resolved from a bearer token
type Identity struct {
	ID       UserID
	Username string
	Email    string
}

// NormalizeEmail lower-cases and trims an email for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
