// Package editions holds the built-in edition table and loads declaration
// files into a metadata registry.
package editions

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	compiler "github.com/partytracker/partytracker/internal/compiler/metadata"
	"github.com/partytracker/partytracker/runtime/metadata"
)

const (
	// FileName is the name reported for errors in the built-in table.
	FileName = "editions.rs.decl"
	// Root is the union that labels every edition record.
	Root = "MarioPartyData"
)

//go:embed editions.rs.decl
var source []byte

var builtin = sync.OnceValues(func() (*metadata.Registry, error) {
	return compiler.Compile(FileName, source)
})

// Source returns a copy of the built-in declaration text.
func Source() []byte {
	out := make([]byte, len(source))
	copy(out, source)
	return out
}

// Default returns the registry generated from the built-in table. It is
// generated once and shared.
func Default() (*metadata.Registry, error) {
	return builtin()
}

// Load returns the registry for path, or the built-in registry when path
// is empty.
func Load(path string) (*metadata.Registry, error) {
	if path == "" {
		return Default()
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read declarations: %w", err)
	}
	return compiler.Compile(path, src)
}
