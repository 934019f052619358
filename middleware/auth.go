package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-storefront/models"
	"go-storefront/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// UserLoader finds the account behind a token
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ClaimsFromContext returns the claims attached by AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// WithClaims attaches claims to a context the way AuthMiddleware does
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// bearerToken returns the second word of the Authorization header. The scheme
// itself is not checked, so "Basic abc" yields a token that fails to verify.
func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// AuthMiddleware verifies JWT tokens and attaches user information to the context.
// A missing token is 401, a token that does not verify is 403.
func AuthMiddleware(tokens *utils.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r.Header.Get("Authorization"))
			if tokenStr == "" {
				utils.WriteError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := tokens.ParseJWT(tokenStr)
			if err != nil {
				utils.WriteError(w, http.StatusForbidden, "Invalid token")
				return
			}

			// Attach user information to the request context
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BusinessOwnerMiddleware ensures that the user sells on the storefront
func BusinessOwnerMiddleware(users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil || !user.IsBusinessOwner() {
				utils.WriteError(w, http.StatusForbidden, "Business owner access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
