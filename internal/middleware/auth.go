// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// WidgetIDKey is the context key for the embedding widget ID.
	WidgetIDKey ContextKey = "widget_id"
	// OrgIDKey is the context key for the organization ID.
	OrgIDKey ContextKey = "org_id"
)

// Claims represents the widget-token JWT claims. Tokens are minted by the
// dashboard backend when embed code is generated; this service only verifies.
type Claims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"org_id"`
}

// Auth creates JWT authentication middleware.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil || !token.Valid {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), WidgetIDKey, claims.Subject)
			ctx = context.WithValue(ctx, OrgIDKey, claims.OrganizationID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetWidgetID gets the widget ID from context.
func GetWidgetID(ctx context.Context) string {
	if v := ctx.Value(WidgetIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetOrgID gets the organization ID from context.
func GetOrgID(ctx context.Context) string {
	if v := ctx.Value(OrgIDKey); v != nil {
		return v.(string)
	}
	return ""
}
