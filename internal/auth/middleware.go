package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/meridianx/backoffice/internal/models"
	pkghttp "github.com/meridianx/backoffice/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// AdminContextKey is the key for storing admin claims in context
	AdminContextKey contextKey = "admin"
)

// AdminFetcher looks up the current account record behind a set of claims.
type AdminFetcher interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}

// AuthMiddleware validates bearer tokens and injects admin claims into
// context. Access tokens are stateless: only the signature and expiry are
// checked here, there is no per-request revocation lookup.
func AuthMiddleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces role-based access control. The role is read from the
// database rather than the token so demotions take effect immediately.
func RequireRole(adminRepo AdminFetcher, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetAdminFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			admin, err := adminRepo.GetByID(r.Context(), claims.AdminID())
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "account not found")
					return
				}
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			if !admin.IsActive {
				pkghttp.WriteUnauthorized(w, "account is deactivated")
				return
			}

			if admin.Role != role {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetAdminFromContext extracts admin claims from request context
func GetAdminFromContext(r *http.Request) *models.AccessClaims {
	claims, ok := r.Context().Value(AdminContextKey).(*models.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}
