// Package middleware provides the HTTP middleware stack: bearer-token
// authentication, request logging and request metrics.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/divvyhq/divvy/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// principalKey is the context key for the authenticated principal.
const principalKey contextKey = "principal"

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil if the request did not pass RequireAuth.
func GetPrincipal(ctx context.Context) *auth.Principal {
	principal, _ := ctx.Value(principalKey).(*auth.Principal)
	return principal
}

// RequireAuth returns middleware that authenticates the bearer credential
// and stores the resulting principal in the request context. A missing or
// invalid credential terminates the request with 401; capability checks
// happen later, per operation, in the service layer.
func RequireAuth(authority *auth.Authority) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authority.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": errorLabel(err)})
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func errorLabel(err error) string {
	if errors.Is(err, auth.ErrMissingToken) {
		return auth.ErrMissingToken.Error()
	}
	return auth.ErrInvalidToken.Error()
}
