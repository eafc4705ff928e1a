package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fritkotgp/raceapi/internal/dependencies/clock"
	"github.com/fritkotgp/raceapi/internal/model"
)

// Claims is the signed payload of an access token
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier issues and checks HS256 access tokens
type Verifier struct {
	secret    []byte
	expiresIn time.Duration
	clock     clock.Clock
}

// NewVerifier creates a Verifier signing with secret
func NewVerifier(secret string, expiresIn time.Duration, clock clock.Clock) *Verifier {
	if expiresIn <= 0 {
		expiresIn = DefaultConfig().TokenExpiresIn
	}
	return &Verifier{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		clock:     clock,
	}
}

// Issue signs a token for identity, returning it with its expiry
func (v *Verifier) Issue(identity model.Identity) (string, time.Time, error) {
	now := v.clock.Now()
	expiresAt := now.Add(v.expiresIn)

	claims := Claims{
		UserID:   string(identity.ID),
		Username: identity.Username,
		Email:    identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks signature, algorithm and expiry of a raw token
func (v *Verifier) Verify(token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrInvalidToken
	}

	return &model.Identity{
		ID:       model.UserID(claims.UserID),
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// VerifyHeader resolves an Authorization header of the form "Bearer <token>"
func (v *Verifier) VerifyHeader(authorization string) (*model.Identity, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, ErrMissingToken
	}
	return v.Verify(strings.TrimSpace(token))
}
