package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	webctx "github.com/partytracker/partytracker/internal/web/context"
)

// CacheStatusHeader reports HIT or MISS on cached routes
const CacheStatusHeader = "X-Cache"

// MiddlewareConfig holds configuration for the cache middleware
type MiddlewareConfig struct {
	Cache        Cache
	KeyGenerator *KeyGenerator
	// TTL is the time-to-live for cached responses. Zero uses the backend default.
	TTL time.Duration
	// CacheControl is the Cache-Control header to set on cached responses
	CacheControl string
}

// DefaultMiddlewareConfig returns a default cache middleware configuration
func DefaultMiddlewareConfig(cache Cache) MiddlewareConfig {
	return MiddlewareConfig{
		Cache:        cache,
		KeyGenerator: DefaultKeyGenerator(),
		CacheControl: "no-cache",
	}
}

// cachedResponse represents a cached HTTP response
type cachedResponse struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	ETag       string      `json:"etag"`
}

// Middleware caches successful GET responses and answers conditional
// requests with 304 Not Modified. Every cacheable response carries an ETag.
// Backend failures are logged and the request is served uncached.
func Middleware(config MiddlewareConfig) func(http.Handler) http.Handler {
	if config.KeyGenerator == nil {
		config.KeyGenerator = DefaultKeyGenerator()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			logger := webctx.Logger(ctx)
			key := config.KeyGenerator.GenerateKey(r)

			data, err := config.Cache.Get(ctx, key)
			switch {
			case err == nil:
				var cached cachedResponse
				if err := json.Unmarshal(data, &cached); err == nil {
					w.Header().Set(CacheStatusHeader, "HIT")
					serve(w, r, &cached, config.CacheControl)
					return
				}
				logger.Warn("discarding undecodable cache entry", zap.String("key", key))
			case !IsCacheMiss(err):
				logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
			}

			rec := &responseRecorder{header: make(http.Header), statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			resp := &cachedResponse{
				StatusCode: rec.statusCode,
				Header:     rec.header,
				Body:       rec.body.Bytes(),
			}
			if resp.StatusCode == http.StatusOK {
				resp.ETag = GenerateETag(resp.Body)
				if data, err := json.Marshal(resp); err == nil {
					if err := config.Cache.Set(ctx, key, data, config.TTL); err != nil {
						logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
					}
				}
			}

			w.Header().Set(CacheStatusHeader, "MISS")
			serve(w, r, resp, config.CacheControl)
		})
	}
}

// serve writes resp to w, or 304 when the request already holds its ETag
func serve(w http.ResponseWriter, r *http.Request, resp *cachedResponse, cacheControl string) {
	for key, values := range resp.Header {
		w.Header()[key] = values
	}

	if resp.ETag != "" {
		SetCacheHeaders(w, resp.ETag, cacheControl)
		if NotModified(r, resp.ETag) {
			w.Header().Del("Content-Type")
			w.Header().Del("Content-Length")
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

// responseRecorder buffers a handler's response so its ETag can be set
// before anything reaches the client.
type responseRecorder struct {
	header      http.Header
	statusCode  int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

// WriteHeader records the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
}

// Write records the response body
func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(b)
}
