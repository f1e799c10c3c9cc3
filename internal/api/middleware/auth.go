package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mcoot/scoreboard/internal/api/apierr"
	"github.com/mcoot/scoreboard/internal/model"
)

type contextKey string

const identityContextKey contextKey = "identity"

// TokenVerifier checks a bearer token and returns the identity it carries
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// UserLookup resolves the account a verified token names
type UserLookup interface {
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
}

// Auth creates the authorization gate for protected routes. A missing
// credential is answered with 401. A credential that fails verification,
// or whose subject no longer exists, is answered with 403.
func Auth(verifier TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, model.ErrMissingCredential)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, fmt.Errorf("%w: %w", model.ErrInvalidCredential, err))
				return
			}

			user, err := users.GetUser(r.Context(), identity.SubjectID)
			if errors.Is(err, model.ErrUserNotFound) {
				apierr.WriteError(w, fmt.Errorf("%w: unknown subject", model.ErrInvalidCredential))
				return
			}
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			identity.Username = user.Username

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetIdentity returns the authenticated identity from the request context
func GetIdentity(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

// MustGetIdentity returns the authenticated identity or panics
func MustGetIdentity(ctx context.Context) model.Identity {
	identity, ok := GetIdentity(ctx)
	if !ok {
		panic("no identity in context - auth middleware not applied?")
	}
	return identity
}
