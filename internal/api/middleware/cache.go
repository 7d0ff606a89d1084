package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/kiranshivaraju/logtrends/internal/cache"
	"github.com/kiranshivaraju/logtrends/internal/metrics"
)

// ResponseCache serves repeated GET requests from Redis for a short TTL.
// Only 200 responses are stored. Any cache failure falls through to the handler.
type ResponseCache struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewResponseCache creates a new ResponseCache middleware.
func NewResponseCache(c cache.Cache, ttl time.Duration) *ResponseCache {
	return &ResponseCache{cache: c, ttl: ttl}
}

func (rc *ResponseCache) Cache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || rc.ttl <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := cache.ResponseKey(r.URL.Path, r.URL.RawQuery)
		body, found, err := rc.cache.Get(r.Context(), key)
		switch {
		case err != nil:
			metrics.ResponseCacheTotal.WithLabelValues("error").Inc()
			slog.Warn("response cache read failed", "error", err, "path", r.URL.Path)
		case found:
			metrics.ResponseCacheTotal.WithLabelValues("hit").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		default:
			metrics.ResponseCacheTotal.WithLabelValues("miss").Inc()
		}

		w.Header().Set("X-Cache", "MISS")
		rec := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK {
			return
		}
		if err := rc.cache.Set(r.Context(), key, rec.body.Bytes(), rc.ttl); err != nil {
			slog.Warn("response cache write failed", "error", err, "path", r.URL.Path)
		}
	})
}

// bodyRecorder tees the response body so it can be stored after the handler returns.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
