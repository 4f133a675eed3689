package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"eval360/internal/domain/auth"
	"eval360/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// SessionChecker rejects tokens whose session was revoked by logout.
type SessionChecker interface {
	SessionActive(ctx context.Context, userID, sessionID string) (bool, error)
}

// Auth attaches the caller to the context when a valid bearer token is
// present. Requests without one pass through anonymous; RequireAuth and
// RequirePermission decide what anonymous callers may reach.
func Auth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if sessions != nil {
				active, err := sessions.SessionActive(r.Context(), claims.UserID, claims.SessionID)
				if err != nil {
					slog.Warn("session lookup failed", "err", err)
					api.Fail(w, http.StatusInternalServerError, "session_error", "session check failed", GetRequestID(r.Context()))
					return
				}
				if !active {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := WithUser(r.Context(), auth.UserContext{
				UserID:    claims.UserID,
				Role:      claims.Role,
				SessionID: claims.SessionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
