package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader is honored on the way in and always set on the way
// out, so log lines can be correlated across a proxy chain.
const requestIDHeader = "X-Request-ID"

type contextKey string

const RequestIDKey contextKey = "requestID"

// RequestID attaches a request id to the context and the response. A
// client-supplied id is kept; otherwise a fresh one is minted.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id stored in ctx, or "" when the
// middleware did not run.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetRequestIDFromRequest is a convenience for handlers holding only
// the request.
func GetRequestIDFromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}
