// Package middleware provides the bearer-token authentication layer
// for the HTTP surface. The authenticated user id travels in the
// request context; handlers and services receive it as an explicit
// parameter from there on.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wghub/wg-backend/internal/auth"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID extracts the authenticated user id from the context.
// Returns 0 if the request was not authenticated.
func UserID(ctx context.Context) uint {
	id, _ := ctx.Value(userIDKey).(uint)
	return id
}

// WithUserID returns a context carrying the given user id. Exported
// for handler tests.
func WithUserID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// RequireAuth validates the Authorization bearer token and stores the
// user id in the request context. Missing or invalid tokens end the
// request with 401.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
