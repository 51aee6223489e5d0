package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/prn-tf/bookhive/internal/domain"
)

// contextKey is a private type to avoid collisions in request contexts.
type contextKey string

// identityContextKey is the context key under which the caller identity is
// stored.
const identityContextKey contextKey = "bookhive-identity"

// Identity describes the authenticated caller of a request.
type Identity struct {
	// UserID is the subject claim of the verified token.
	UserID string

	// Role is the normalized role claim.
	Role domain.Role
}

// IsAdmin returns true for administrative callers.
func (i *Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

// Middleware verifies the Authorization bearer token and stores the caller
// identity in the request context. A missing or structurally broken token
// yields 401, a token that fails verification yields 403.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractBearer(r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err)
				return
			}

			identity, err := tokens.Verify(tokenString)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("token verification failed")
				status := http.StatusForbidden
				if errors.Is(err, domain.ErrTokenMalformed) {
					status = http.StatusUnauthorized
				}
				writeAuthError(w, status, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PresenceOnly checks that a structurally valid bearer header is present
// without verifying the token contents. The favorites delete route keeps
// this weaker gate.
func PresenceOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := extractBearer(r); err != nil {
			writeAuthError(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// Must be mounted after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentity(r.Context())
		if identity == nil || !identity.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, errors.New("admin privileges required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetIdentity retrieves the caller identity from a request context.
// Returns nil when the request was not authenticated.
func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityContextKey).(*Identity); ok {
		return identity
	}
	return nil
}

// RequireIdentity returns the caller identity or an error when the request
// reached a protected handler without passing the middleware.
func RequireIdentity(ctx context.Context) (*Identity, error) {
	identity := GetIdentity(ctx)
	if identity == nil {
		return nil, domain.ErrTokenMissing
	}
	return identity, nil
}

// extractBearer pulls the token out of the Authorization header.
func extractBearer(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrTokenMissing
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", domain.ErrTokenMalformed
	}

	return parts[1], nil
}

// writeAuthError writes a JSON error response in the API envelope.
func writeAuthError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": err.Error(),
	})
}
