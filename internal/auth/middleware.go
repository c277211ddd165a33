package auth

import (
	"context"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID extracts the authenticated user id from the request context.
func UserID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", core.ErrUnauthenticated
	}
	return id, nil
}

// WithUserID returns a context carrying the authenticated user id. Exposed
// for handler tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Middleware verifies the Authorization bearer token and injects the
// resolved user id into the request context. Requests without a valid
// credential are rejected before reaching the handler.
func Middleware(tm *TokenManager, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				onError(w, r, core.ErrUnauthenticated)
				return
			}

			userID, err := tm.Verify(token)
			if err != nil {
				onError(w, r, core.ErrUnauthenticated)
				return
			}

			next(w, r.WithContext(WithUserID(r.Context(), userID)))
		}
	}
}
