package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"metacognition/internal/model"
	"metacognition/internal/service"
)

type contextKey string

const (
	UserIDKey contextKey = "userId"
	ClaimsKey contextKey = "claims"
)

// TokenValidator resolves a bearer token to the learner it belongs to
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.UserClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	auth TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(auth TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireUser validates a learner JWT from the Authorization header or the token query param
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.auth.ValidateToken(r.Context(), token)
		if errors.Is(err, service.ErrInvalidToken) {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"authentication unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the learner ID from context
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetClaims extracts the token claims from context
func GetClaims(ctx context.Context) *model.UserClaims {
	if v := ctx.Value(ClaimsKey); v != nil {
		return v.(*model.UserClaims)
	}
	return nil
}

// WithUser returns a context carrying the given claims, as RequireUser would
func WithUser(ctx context.Context, claims *model.UserClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, ClaimsKey, claims)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
