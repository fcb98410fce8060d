// Package static serves the built web client: hashed assets under /assets
// and index.html for every other path so client-side routes resolve.
package static

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/partytracker/partytracker/internal/web/response"
	"github.com/partytracker/partytracker/internal/web/router"
)

// Config holds configuration for the static file server
type Config struct {
	// Root is the client build directory, e.g. ../client/dist
	Root string

	// AssetsPrefix is the URL prefix of the asset directory (default: "/assets")
	AssetsPrefix string

	// IndexFile is served for every path that is not an asset (default: "index.html")
	IndexFile string

	// AssetMaxAge is the Cache-Control max-age for assets in seconds.
	// Bundler output is content-hashed, so this defaults to one year.
	AssetMaxAge int
}

// DefaultConfig returns default static file server configuration
func DefaultConfig(root string) Config {
	return Config{
		Root:         root,
		AssetsPrefix: "/assets",
		IndexFile:    "index.html",
		AssetMaxAge:  31536000,
	}
}

// Validate reports whether the index file exists under Root
func (c Config) Validate() error {
	info, err := os.Stat(filepath.Join(c.Root, c.IndexFile))
	if err != nil {
		return fmt.Errorf("static dir %s: %w", c.Root, err)
	}
	if info.IsDir() {
		return fmt.Errorf("static dir %s: %s is a directory", c.Root, c.IndexFile)
	}
	return nil
}

// Mount registers the asset handler and makes index.html the router's
// fallback for unmatched paths.
func Mount(r *router.Router, cfg Config) {
	r.Handle(cfg.AssetsPrefix+"/*", Assets(cfg))
	r.NotFound(Index(cfg))
}

// Assets serves files from <Root><AssetsPrefix>. Missing files are a JSON 404.
func Assets(cfg Config) http.Handler {
	dir := filepath.Join(cfg.Root, filepath.FromSlash(strings.TrimPrefix(cfg.AssetsPrefix, "/")))
	cacheControl := fmt.Sprintf("public, max-age=%d, immutable", cfg.AssetMaxAge)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}

		rel := path.Clean("/" + strings.TrimPrefix(r.URL.Path, cfg.AssetsPrefix))
		filePath, ok := within(dir, rel)
		if !ok {
			response.RenderNotFound(w, "")
			return
		}

		info, err := os.Stat(filePath)
		if err != nil || info.IsDir() {
			response.RenderNotFound(w, "asset not found: "+rel)
			return
		}

		w.Header().Set("Cache-Control", cacheControl)
		http.ServeFile(w, r, filePath)
	})
}

// Index serves the index file for GET and HEAD
func Index(cfg Config) http.HandlerFunc {
	indexPath := filepath.Join(cfg.Root, cfg.IndexFile)

	return func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}
		if _, err := os.Stat(indexPath); err != nil {
			response.RenderNotFound(w, "")
			return
		}

		// index.html references hashed assets, so always revalidate it
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, indexPath)
	}
}

func readOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	response.RenderMethodNotAllowed(w, []string{http.MethodGet, http.MethodHead})
	return false
}

// within joins the slash-separated rel onto dir and reports whether the
// result stays inside dir.
func within(dir, rel string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	absFile, err := filepath.Abs(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return "", false
	}
	if absFile != absDir && !strings.HasPrefix(absFile, absDir+string(filepath.Separator)) {
		return "", false
	}
	return absFile, true
}
