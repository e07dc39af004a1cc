package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"notification-service/internal/response"
)

type contextKey string

const (
	ContextUserID   contextKey = "user_id"
	ContextTenantID contextKey = "tenant_id"
)

// RequireAuth validates the bearer token issued by the platform gateway and
// places the recipient and tenant identifiers on the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if tokenStr == "" || tokenStr == header {
				response.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				response.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, _ := claims["sub"].(string)
			tenantID, _ := claims["tid"].(string)
			if userID == "" || tenantID == "" {
				response.Error(w, http.StatusUnauthorized, "token missing subject or tenant")
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, userID)
			ctx = context.WithValue(ctx, ContextTenantID, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserID(ctx context.Context) string {
	v, _ := ctx.Value(ContextUserID).(string)
	return v
}

func TenantID(ctx context.Context) string {
	v, _ := ctx.Value(ContextTenantID).(string)
	return v
}
