package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"inkpress-backend/pkg/api"
)

// Timeout bounds each request with a deadline. Handlers observe the
// cancellation through the request context; if one overruns anyway, the
// client gets a 408 once instead of hanging.
func Timeout(timeout time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				// The handler runs off the middleware goroutine, so the
				// outer recoverer cannot see its panics.
				defer func() {
					if err := recover(); err != nil {
						logger.Error("Panic in request handler",
							zap.Any("panic", err),
							zap.String("request_id", GetRequestIDFromRequest(r)))
						if w.Header().Get("Content-Type") == "" {
							api.Error(w, http.StatusInternalServerError, "internal server error")
						}
					}
				}()
				next.ServeHTTP(w, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("Request timed out",
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestIDFromRequest(r)))
				if w.Header().Get("Content-Type") == "" {
					api.Error(w, http.StatusRequestTimeout, "request timeout")
				}
			}
		})
	}
}
