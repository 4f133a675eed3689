package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"eval360/internal/requestctx"
)

// RequestID also stores the client address so audit records can use it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		ctx = requestctx.WithClientIP(ctx, clientIPKey(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}

func GetClientIP(ctx context.Context) string {
	return requestctx.GetClientIP(ctx)
}
