package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"formdeck/internal/debug"
)

var log = debug.Scope("userservice")

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// UserFromContext returns the user resolved by Middleware.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey).(User)
	return u, ok
}

// TokenFromContext returns the caller token seen by Middleware.
func TokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(tokenContextKey).(string)
	return s
}

// requestToken reads the caller's token from the Authorization header.
func requestToken(r *http.Request) string {
	return r.Header.Get("Authorization")
}

// Middleware resolves the caller's token to a user record before calling
// next. Any failure answers 401 with the upstream error body. Nothing is
// retried.
func (c *Client) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		user, err := c.GetUser(r.Context(), token)
		if err != nil {
			writeUnauthorized(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeUnauthorized relays an upstream error body with status 401. Errors
// that never reached the service are wrapped in a message envelope.
func writeUnauthorized(w http.ResponseWriter, err error) {
	log.Logf("unauthorized: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	var upstream *UpstreamError
	if errors.As(err, &upstream) && len(upstream.Body) > 0 {
		_, _ = w.Write(upstream.Body)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"message": err.Error()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
