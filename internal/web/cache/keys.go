package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
)

// KeyGenerator generates cache keys from HTTP requests
type KeyGenerator struct {
	// IncludeQuery includes query parameters in the cache key
	IncludeQuery bool
	// IncludeHeaders includes specified headers in the cache key
	IncludeHeaders []string
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultKeyGenerator returns a default key generator
func DefaultKeyGenerator() *KeyGenerator {
	return &KeyGenerator{
		IncludeQuery:   true,
		IncludeHeaders: []string{"Accept"},
		Prefix:         "http:",
	}
}

// GenerateKey returns Prefix followed by a hash of the method, path, sorted
// query and selected headers. Query parameter order does not matter.
func (kg *KeyGenerator) GenerateKey(r *http.Request) string {
	parts := []string{r.Method, r.URL.Path}

	if kg.IncludeQuery && r.URL.RawQuery != "" {
		var query []string
		for key, values := range r.URL.Query() {
			for _, value := range values {
				query = append(query, key+"="+value)
			}
		}
		sort.Strings(query)
		parts = append(parts, strings.Join(query, "&"))
	}

	for _, header := range kg.IncludeHeaders {
		if value := r.Header.Get(header); value != "" {
			parts = append(parts, header+"="+value)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return kg.Prefix + hex.EncodeToString(hash[:16])
}
