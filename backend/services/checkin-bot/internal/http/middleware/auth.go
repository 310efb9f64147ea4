package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/service"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenValidator decodes admin tokens.
type TokenValidator interface {
	ValidateToken(token string) (*service.Claims, error)
}

// AdminAuth accepts a bearer token, or a token query parameter for websocket clients that
// cannot set headers. The token must carry the admin role and an id from admins.
func AdminAuth(tokens TokenValidator, admins service.AdminSet, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := tokenFromRequest(r)
			if !ok {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.Role != service.RoleAdmin || !admins.Contains(claims.UserID) {
				logger.Info("admin api access denied", zap.Int64("user_id", claims.UserID), zap.String("path", r.URL.Path))
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}
	token := r.URL.Query().Get("token")
	return token, token != ""
}

// WithUserID stores the authenticated admin id in ctx.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the admin id from request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
