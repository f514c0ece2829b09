package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amaumene/goflicks/internal/services/auth"
	"github.com/sirupsen/logrus"
)

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID returns a context carrying the verified user ID
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// UserID returns the verified user ID attached by the auth middleware, or ""
// when the request never passed through it.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// Auth verifies the bearer credential on every request and attaches the
// resolved user ID to the request context. A missing or malformed header is
// 401; a token that fails verification is 403.
func Auth(verifier auth.Verifier, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				authError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				authError(w, http.StatusUnauthorized, "Invalid ID token")
				return
			}

			uid, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.WithError(err).Debug("Rejected request with unverifiable token")
				authError(w, http.StatusForbidden, "Invalid ID token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}

func authError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": "Auth Error: " + message})
}
