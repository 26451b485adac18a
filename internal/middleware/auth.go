package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"event-scheduler-api/internal/auth"
)

type ctxKey string

const userIDKey ctxKey = "uid"

// TokenHeader is the custom header the API reads tokens from; this service
// predates its clients' bearer-auth support and keeps the original header.
const TokenHeader = "x-access-tokens"

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// Auth rejects requests without a valid token and stores the user id in the
// request context before the handler runs.
func Auth(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(TokenHeader)
		if raw == "" {
			unauthorized(w, "a valid token is missing")
			return
		}
		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			unauthorized(w, "token is invalid")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous (or bad-token) requests through — reads need no authentication.
func OptionalAuth(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(TokenHeader); raw != "" {
			if claims, err := auth.ParseToken(raw, secret); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, claims.UserID))
			}
		}
		next(w, r)
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
