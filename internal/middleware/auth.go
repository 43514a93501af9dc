package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"shop-api/internal/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	IsAdminKey contextKey = "is_admin"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// PublicRoute lets requests through without a token. Prefix matches the path
// itself and anything below it.
type PublicRoute struct {
	Methods []string
	Prefix  string
}

// AllowList is the set of routes reachable without authentication.
type AllowList []PublicRoute

// Allows reports whether method and path match a public route.
func (a AllowList) Allows(method, path string) bool {
	for _, route := range a {
		if !matchesPrefix(path, route.Prefix) {
			continue
		}
		for _, m := range route.Methods {
			if strings.EqualFold(m, method) {
				return true
			}
		}
	}
	return false
}

func matchesPrefix(path, prefix string) bool {
	path = strings.TrimSuffix(path, "/")
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// AuthMiddleware validates bearer tokens on every request not covered by
// allow and stores the caller's identity in the request context.
func AuthMiddleware(tokens TokenParser, allow AllowList, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allow.Allows(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, auth.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.IsAdmin)

			logger.Debug("User authenticated",
				zap.String("user_id", claims.UserID.String()),
				zap.Bool("is_admin", claims.IsAdmin),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns a context carrying the authenticated caller.
func WithUser(ctx context.Context, userID uuid.UUID, isAdmin bool) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, IsAdminKey, isAdmin)
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// IsAdmin reports whether the authenticated caller is an administrator
func IsAdmin(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(IsAdminKey).(bool)
	return isAdmin
}
