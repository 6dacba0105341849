package middleware

import (
	"context"
	"log/slog"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"

	"github.com/andrewpaige1/cardbox-api/auth"
)

// Identify attaches the validated session claims to the request context.
// A missing or invalid token leaves the request anonymous; it never fails it.
func Identify(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessions.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sessions.VerifyToken(r.Context(), token)
			if err != nil {
				slog.DebugContext(r.Context(), "ignoring invalid session token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), jwtmiddleware.ContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
