package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouterGetAndParam(t *testing.T) {
	r := NewRouter()
	r.Get("/api/types/{name}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(Param(req, "name")))
	})

	rec := serve(r, http.MethodGet, "/api/types/MarioParty1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MarioParty1", rec.Body.String())
}

func TestRouterGroup(t *testing.T) {
	r := NewRouter()
	r.Group("/api", func(api *Router) {
		api.Get("/types", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/api/types").Code)
}

func TestRouterMiddleware(t *testing.T) {
	r := NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Test", "yes")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {})

	assert.Equal(t, "yes", serve(r, http.MethodGet, "/").Header().Get("X-Test"))
	// Middleware also wraps the not-found handler
	assert.Equal(t, "yes", serve(r, http.MethodGet, "/missing").Header().Get("X-Test"))
}

func TestRouterJSONNotFound(t *testing.T) {
	r := NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {})

	rec := serve(r, http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
	assert.Contains(t, body["message"], "/nope")
}

func TestRouterJSONMethodNotAllowed(t *testing.T) {
	r := NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {})

	rec := serve(r, http.MethodPost, "/healthz")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "method_not_allowed")
}

func TestRouterCustomNotFound(t *testing.T) {
	r := NewRouter()
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("index"))
	})

	rec := serve(r, http.MethodGet, "/some/client/route")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index", rec.Body.String())
}

func TestRouterGetRoutes(t *testing.T) {
	r := NewRouter()
	noop := func(w http.ResponseWriter, req *http.Request) {}
	r.Get("/healthz", noop)
	r.Group("/api", func(api *Router) {
		api.Get("/types", noop)
		api.Get("/types/{name}", noop)
	})

	routes := r.GetRoutes()
	require.Len(t, routes, 3)
	assert.Equal(t, RouteInfo{Method: "GET", Pattern: "/api/types"}, routes[0])
	assert.Equal(t, RouteInfo{Method: "GET", Pattern: "/api/types/{name}", Parameters: []string{"name"}}, routes[1])
	assert.Equal(t, "/healthz", routes[2].Pattern)
}

func TestExtractParameters(t *testing.T) {
	assert.Nil(t, extractParameters("/api/types"))
	assert.Equal(t, []string{"name"}, extractParameters("/api/types/{name}"))
	assert.Equal(t, []string{"id", "slug"}, extractParameters("/a/{id:[0-9]+}/{slug}"))
}
