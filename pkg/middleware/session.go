package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/helloivanco/fanrc/pkg/logger"
)

type contextKeyType string

const sessionIDKey contextKeyType = "session_id"

// SessionHeader carries the wishlist session for clients that do not keep cookies.
const SessionHeader = "X-Wishlist-Session"

// SessionResolver extracts and verifies the wishlist session of a request.
// It returns "" with a nil error when the request carries no session at all.
type SessionResolver func(r *http.Request) (string, error)

// RequireSession resolves the caller's wishlist session and stores it in the
// request context. Requests without a valid session are rejected with 401.
func RequireSession(resolve SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolve(r)
			if err != nil {
				writeSessionError(w, "invalid wishlist session")
				return
			}
			if id == "" {
				writeSessionError(w, "wishlist session required")
				return
			}

			if scope := scopeFromContext(r.Context()); scope != nil {
				scope.sessionID = id
			}
			ctx := context.WithValue(r.Context(), sessionIDKey, id)
			if logger.SessionIDFromContext(ctx) != id {
				ctx = logger.WithSessionID(ctx, id)
				ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("session_id", id))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext extracts the wishlist session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

func writeSessionError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
