package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(calls *int32, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func doGet(h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareMissThenHit(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	var calls int32
	h := Middleware(DefaultMiddlewareConfig(c))(countingHandler(&calls, http.StatusOK, `{"ok":true}`))

	first := doGet(h, "/api/input/schema", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get(CacheStatusHeader))
	assert.Equal(t, `{"ok":true}`, first.Body.String())
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "no-cache", first.Header().Get("Cache-Control"))

	second := doGet(h, "/api/input/schema", nil)
	assert.Equal(t, "HIT", second.Header().Get(CacheStatusHeader))
	assert.Equal(t, `{"ok":true}`, second.Body.String())
	assert.Equal(t, etag, second.Header().Get("ETag"))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestMiddlewareNotModified(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	var calls int32
	h := Middleware(DefaultMiddlewareConfig(c))(countingHandler(&calls, http.StatusOK, `{"ok":true}`))

	etag := doGet(h, "/api/input/schema", nil).Header().Get("ETag")

	rec := doGet(h, "/api/input/schema", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, etag, rec.Header().Get("ETag"))

	rec = doGet(h, "/api/input/schema", http.Header{"If-None-Match": {`"stale"`}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareNotModifiedOnMiss(t *testing.T) {
	var calls int32
	h := Middleware(DefaultMiddlewareConfig(Noop{}))(countingHandler(&calls, http.StatusOK, `{}`))

	rec := doGet(h, "/x", http.Header{"If-None-Match": {GenerateETag([]byte(`{}`))}})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get(CacheStatusHeader))
}

func TestMiddlewareSkipsErrorsAndNonGET(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	var calls int32
	h := Middleware(DefaultMiddlewareConfig(c))(countingHandler(&calls, http.StatusNotFound, `{"error":"not_found"}`))

	for i := 0; i < 2; i++ {
		rec := doGet(h, "/api/types/Zelda", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("ETag"))
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/types", nil))
	assert.Empty(t, rec.Header().Get(CacheStatusHeader))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

type failingCache struct{ Noop }

func (failingCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestMiddlewareBackendFailureServesUncached(t *testing.T) {
	var calls int32
	h := Middleware(DefaultMiddlewareConfig(failingCache{}))(countingHandler(&calls, http.StatusOK, `{}`))

	rec := doGet(h, "/x", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{}`, rec.Body.String())
}

func TestMiddlewareCorruptEntry(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	kg := DefaultKeyGenerator()
	key := kg.GenerateKey(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, c.Set(context.Background(), key, []byte("not json"), 0))

	var calls int32
	h := Middleware(MiddlewareConfig{Cache: c, KeyGenerator: kg})(countingHandler(&calls, http.StatusOK, `{}`))

	rec := doGet(h, "/x", nil)
	assert.Equal(t, "MISS", rec.Header().Get(CacheStatusHeader))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
