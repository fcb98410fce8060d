package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for CORS middleware
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins. Use "*" for all origins.
	AllowedOrigins []string
	AllowedMethods []string
	// AllowedHeaders is a list of allowed request headers. Use "*" to mirror
	// whatever the preflight asks for.
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge indicates how long preflight results can be cached (in seconds)
	MaxAge int
}

// PermissiveCORSConfig allows any origin, method and header. The schema API
// is read-only and unauthenticated, and the web client may be served from a
// separate dev server.
func PermissiveCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"*"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{RequestIDHeader, "ETag", RateLimitRemainingHeader, "Retry-After"},
		MaxAge:         86400,
	}
}

// CORS creates a permissive CORS middleware
func CORS() Middleware {
	return CORSWithConfig(PermissiveCORSConfig())
}

// CORSWithConfig creates a CORS middleware with custom configuration
func CORSWithConfig(config CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && isOriginAllowed(origin, config.AllowedOrigins)

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				if len(config.ExposedHeaders) > 0 {
					w.Header().Set("Access-Control-Expose-Headers", strings.Join(config.ExposedHeaders, ", "))
				}
			}

			// Only a true preflight is answered here. Plain OPTIONS requests
			// fall through to the router.
			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods",
					mirror(config.AllowedMethods, r.Header.Get("Access-Control-Request-Method")))
				if h := mirror(config.AllowedHeaders, r.Header.Get("Access-Control-Request-Headers")); h != "" {
					w.Header().Set("Access-Control-Allow-Headers", h)
				}
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// mirror returns the requested value when the allowed list is "*", otherwise
// the joined list.
func mirror(allowed []string, requested string) string {
	if len(allowed) == 1 && allowed[0] == "*" {
		return requested
	}
	return strings.Join(allowed, ", ")
}

// isOriginAllowed checks if an origin is allowed
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		// Wildcard subdomains like *.example.com, not matching the domain itself
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, allowed[1:]) {
			return true
		}
	}
	return false
}
