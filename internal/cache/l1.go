package cache

import (
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"inkpress-backend/internal/observability"
)

// L1Config bounds the response cache.
type L1Config struct {
	Enabled       bool
	ResponseLimit int
	MaxBodyBytes  int
}

// DefaultL1Config returns the bounds used when configuration is absent.
func DefaultL1Config() L1Config {
	return L1Config{
		Enabled:       true,
		ResponseLimit: 1024,
		MaxBodyBytes:  2 << 20, // 2 MiB
	}
}

// headers never copied into a cached response: they are per-request or
// per-connection, not part of the rendered output.
var uncacheableHeaders = map[string]struct{}{
	"Set-Cookie":        {},
	"X-Request-Id":      {},
	"Date":              {},
	"Connection":        {},
	"Keep-Alive":        {},
	"Transfer-Encoding": {},
}

// CachedResponse is one stored rendered response: status, a filtered
// header set, and the body bytes.
type CachedResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewCachedResponse copies status, headers, and body into a cacheable
// value, dropping per-request headers.
func NewCachedResponse(status int, header http.Header, body []byte) *CachedResponse {
	filtered := make(http.Header, len(header))
	for name, values := range header {
		if _, skip := uncacheableHeaders[http.CanonicalHeaderKey(name)]; skip {
			continue
		}
		copied := make([]string, len(values))
		copy(copied, values)
		filtered[name] = copied
	}

	stored := make([]byte, len(body))
	copy(stored, body)

	return &CachedResponse{Status: status, Header: filtered, Body: stored}
}

// L1Store is the bounded in-memory cache of fully rendered HTTP
// responses. Only successful GET responses are stored; oversized bodies
// are excluded rather than truncated.
type L1Store struct {
	mu      sync.Mutex
	cache   *lru[L1Key, *CachedResponse]
	enabled atomic.Bool
	maxBody int

	metrics *observability.Collector
	logger  *zap.Logger
}

// NewL1Store creates the response cache with the configured bounds.
func NewL1Store(cfg L1Config, metrics *observability.Collector, logger *zap.Logger) *L1Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.ResponseLimit
	if limit < 1 {
		limit = DefaultL1Config().ResponseLimit
	}
	store := &L1Store{
		cache:   newLRU[L1Key, *CachedResponse](limit),
		maxBody: cfg.MaxBodyBytes,
		metrics: metrics,
		logger:  logger,
	}
	store.enabled.Store(cfg.Enabled)
	return store
}

// SetEnabled flips the response cache on or off at runtime, for
// configuration reloads. Purges still apply while disabled, so
// re-enabling never serves a response a write already invalidated.
func (s *L1Store) SetEnabled(enabled bool) {
	if s.enabled.Swap(enabled) != enabled {
		s.logger.Info("Response cache toggled", zap.Bool("enabled", enabled))
	}
}

// Get returns the cached response for the key, if present.
func (s *L1Store) Get(key L1Key) (*CachedResponse, bool) {
	if !s.enabled.Load() {
		return nil, false
	}

	s.mu.Lock()
	resp, ok := s.cache.get(key)
	s.mu.Unlock()

	if s.metrics != nil {
		if ok {
			s.metrics.L1Hits.Inc()
		} else {
			s.metrics.L1Misses.Inc()
		}
	}
	return resp, ok
}

// Set stores a response under the key. Non-200 responses and bodies
// over the configured limit are skipped; skipping is a policy choice,
// never a truncation. It reports whether the response was stored so
// callers only register dependency edges for entries that exist.
func (s *L1Store) Set(key L1Key, resp *CachedResponse) bool {
	if !s.enabled.Load() || resp == nil {
		return false
	}
	if resp.Status != http.StatusOK {
		return false
	}
	if s.maxBody > 0 && len(resp.Body) > s.maxBody {
		if s.metrics != nil {
			s.metrics.L1Oversized.Inc()
		}
		s.logger.Debug("Response body too large for cache",
			zap.String("key", key.String()),
			zap.Int("size", len(resp.Body)),
			zap.Int("max", s.maxBody))
		return false
	}

	s.mu.Lock()
	evicted := s.cache.set(key, resp)
	s.mu.Unlock()

	if evicted > 0 && s.metrics != nil {
		s.metrics.L1Evictions.Add(float64(evicted))
	}
	return true
}

// Purge removes the exact key named and reports whether it was cached.
func (s *L1Store) Purge(key L1Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.remove(key)
}

// Clear drops every cached response.
func (s *L1Store) Clear() {
	s.mu.Lock()
	s.cache.clear()
	s.mu.Unlock()
	s.logger.Debug("Response cache cleared")
}

// Len reports the number of cached responses.
func (s *L1Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.len()
}

// Keys returns the cached keys from most to least recently used. The
// warm job uses this to decide which pages are worth re-rendering.
func (s *L1Store) Keys() []L1Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.keys()
}
