package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ecopay/ecoledger/internal/infrastructure/auth"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// PrincipalContextKey is the context key for the authenticated caller.
	PrincipalContextKey ContextKey = "principal"
)

// AuthMiddleware creates an authentication middleware. Every API route
// requires a bearer token carrying the caller's payment handle.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			principal := auth.Principal{
				Handle: claims.Handle,
				Role:   claims.Role,
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipal(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if principal.Role != auth.RoleAdmin {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetPrincipal extracts the authenticated caller from context.
func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	principal, ok := ctx.Value(PrincipalContextKey).(auth.Principal)
	return principal, ok
}
