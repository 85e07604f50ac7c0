package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// IdentityContextKey is the context key for the authenticated caller
	IdentityContextKey contextKey = "identity"
)

// Identity is the authenticated caller.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// AuthMiddleware validates an optional bearer token and injects the caller's
// identity into the context. Requests without a valid token continue
// anonymously; RequireAuth decides whether that is acceptable.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				log.Debug().Err(err).Msg("Invalid session token")
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{ID: claims.UserID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth is middleware that requires authentication
// Returns 401 if the user is not authenticated
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserID(r.Context()) == uuid.Nil {
			apperrors.WriteUnauthorized(w, r, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// GetUserID retrieves the user ID from the request context
// Returns uuid.Nil if no user is authenticated
func GetUserID(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(IdentityContextKey).(Identity)
	if !ok {
		return uuid.Nil
	}
	return id.ID
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
