package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	webctx "github.com/partytracker/partytracker/internal/web/context"
	"github.com/partytracker/partytracker/internal/web/ratelimit"
	"github.com/partytracker/partytracker/internal/web/response"
)

// Rate limit response headers
const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"
)

// RateLimitConfig holds configuration for the rate limit middleware
type RateLimitConfig struct {
	Limiter ratelimit.Limiter
	// KeyFunc extracts the limit key from a request. An empty key skips
	// limiting for that request.
	KeyFunc func(*http.Request) string
	// FailOpen lets requests through when the limiter errors; otherwise
	// they get a 503.
	FailOpen bool
	// Now is the clock used for Retry-After
	Now func() time.Time
}

// DefaultRateLimitConfig limits by the connection's address and fails open
func DefaultRateLimitConfig(limiter ratelimit.Limiter) RateLimitConfig {
	return RateLimitConfig{
		Limiter:  limiter,
		KeyFunc:  ClientIP,
		FailOpen: true,
		Now:      time.Now,
	}
}

// RateLimit creates a middleware limiting requests per client IP
func RateLimit(limiter ratelimit.Limiter) Middleware {
	return RateLimitWithConfig(DefaultRateLimitConfig(limiter))
}

// RateLimitWithConfig creates a rate limit middleware with custom
// configuration. Limited requests get a JSON 429 with Retry-After.
func RateLimitWithConfig(config RateLimitConfig) Middleware {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIP
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := config.KeyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			info, err := config.Limiter.Allow(r.Context(), key)
			if err != nil {
				webctx.Logger(r.Context()).Warn("rate limit check failed",
					zap.String("key", key),
					zap.Bool("fail_open", config.FailOpen),
					zap.Error(err),
				)
				if config.FailOpen {
					next.ServeHTTP(w, r)
					return
				}
				response.RenderError(w, http.StatusServiceUnavailable, err)
				return
			}

			h := w.Header()
			h.Set(RateLimitLimitHeader, strconv.Itoa(info.Limit))
			h.Set(RateLimitRemainingHeader, strconv.Itoa(info.Remaining))
			h.Set(RateLimitResetHeader, strconv.FormatInt(info.ResetAt.Unix(), 10))

			if !info.Allowed {
				retry := info.RetryAfter(config.Now())
				h.Set("Retry-After", strconv.Itoa(int(retry/time.Second)))
				response.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded").
					WithDetails(map[string]any{"retry_after_seconds": int(retry / time.Second)}).
					Render(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are
// ignored since any client can set them.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedClientIP returns the first X-Forwarded-For address, then
// X-Real-IP, then ClientIP. Use it only behind a reverse proxy that
// overwrites those headers.
func ForwardedClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return ClientIP(r)
}
