package middleware

import (
	"context"
	"net/http"

	"github.com/fritkotgp/raceapi/internal/api/apierr"
	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/services/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Auth creates authentication middleware resolving the bearer token to a caller identity
func Auth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.VerifyHeader(r.Header.Get("Authorization"))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// GetIdentity returns the authenticated caller from the request context
func GetIdentity(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(identityContextKey).(*model.Identity)
	return identity
}

// MustGetIdentity returns the authenticated caller or panics
func MustGetIdentity(ctx context.Context) *model.Identity {
	identity := GetIdentity(ctx)
	if identity == nil {
		panic("no identity in context - auth middleware not applied?")
	}
	return identity
}
