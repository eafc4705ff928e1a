package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh random identifier
func NewID() string {
	return uuid.NewString()
}

// NormalizeID parses a client-supplied identifier into canonical form.
// Blank input yields ErrMissingField, anything that is not a UUID yields ErrInvalidReference.
func NormalizeID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingField
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}
	return id.String(), nil
}
