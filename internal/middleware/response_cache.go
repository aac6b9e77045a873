// Package middleware holds the HTTP middleware stack, including the
// response-cache boundary of the cache-consistency core.
package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"inkpress-backend/internal/cache"
)

// ResponseCacheConfig controls the cache boundary.
type ResponseCacheConfig struct {
	Enabled bool
}

// bodyBuffer captures the downstream handler's response so a 200 result
// can be stored before being replayed to the client.
type bodyBuffer struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (b *bodyBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
	b.ResponseWriter.WriteHeader(status)
}

func (b *bodyBuffer) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	b.body.Write(p)
	return b.ResponseWriter.Write(p)
}

// ResponseCache is the HTTP-boundary integration of the response cache.
// Cacheable GETs are answered from L1 when possible; on a miss the
// downstream handler runs inside a fresh dependency-collector scope and
// a 200 result is stored and registered with the collected entity set.
// Everything else passes through untouched.
func ResponseCache(
	cfg ResponseCacheConfig,
	l1 *cache.L1Store,
	registry *cache.Registry,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || !cacheable(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cache.L1Key{
				Format: formatFor(r),
				Path:   r.URL.Path,
				Query:  cache.HashQuery(r.URL.Query().Encode()),
			}

			if cached, ok := l1.Get(key); ok {
				serveCached(w, cached)
				return
			}

			ctx, collector := cache.WithCollector(r.Context())
			buf := &bodyBuffer{ResponseWriter: w}
			w.Header().Set("X-Cache", "MISS")

			next.ServeHTTP(buf, r.WithContext(ctx))

			if buf.status != http.StatusOK {
				return
			}

			resp := cache.NewCachedResponse(buf.status, w.Header(), buf.body.Bytes())
			if !l1.Set(key, resp) {
				// Declined (oversized); edges for an absent entry would
				// only make the consumer purge nothing.
				return
			}
			registry.Register(key, collector.Entities())

			logger.Debug("Response cached",
				zap.String("key", key.String()),
				zap.Int("deps", collector.Len()),
				zap.Int("size", buf.body.Len()))
		})
	}
}

// cacheable reports whether the request may be answered from or stored
// into the response cache. Streaming endpoints must never be cached;
// their responses are unbounded and connection-bound.
func cacheable(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return false
	}
	// Authenticated admin reads vary per caller and are not cacheable.
	if r.Header.Get("Authorization") != "" || r.Header.Get("X-API-Key") != "" {
		return false
	}
	return true
}

// formatFor derives the output-format component of the L1 key so the
// same path rendered as HTML and JSON occupies distinct entries.
func formatFor(r *http.Request) string {
	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "application/json"):
		return "json"
	case strings.Contains(accept, "application/xml"),
		strings.Contains(accept, "application/rss+xml"),
		strings.HasSuffix(r.URL.Path, ".xml"):
		return "xml"
	default:
		return "html"
	}
}

// serveCached replays a stored response verbatim.
func serveCached(w http.ResponseWriter, resp *cache.CachedResponse) {
	header := w.Header()
	for name, values := range resp.Header {
		header[name] = values
	}
	header.Set("X-Cache", "HIT")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}
