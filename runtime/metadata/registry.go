package metadata

import (
	"fmt"
	"strings"
)

// Registry holds the generated description of every registered type.
// It is produced by Builder.Build and never mutated afterwards, so it is
// safe for concurrent use without locking. Query methods return copies to
// prevent external mutation of shared data.
type Registry struct {
	entries map[string]ObjectData
	order   []string
}

// TypeSummary names one registered type and its shape.
type TypeSummary struct {
	Name string     `json:"name" yaml:"name"`
	Kind ObjectKind `json:"kind" yaml:"kind"`
}

func newRegistry(size int) *Registry {
	return &Registry{
		entries: make(map[string]ObjectData, size),
		order:   make([]string, 0, size),
	}
}

func (r *Registry) add(name string, data ObjectData) {
	r.entries[name] = data
	r.order = append(r.order, name)
}

// Describe returns the description of the named type.
func (r *Registry) Describe(name string) (ObjectData, error) {
	data, ok := r.entries[name]
	if !ok {
		return ObjectData{}, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return data.Clone(), nil
}

// MustDescribe is like Describe but panics if the type is unknown.
func (r *Registry) MustDescribe(name string) ObjectData {
	data, err := r.Describe(name)
	if err != nil {
		panic(err)
	}
	return data
}

// Has reports whether a type with the given name was registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Type returns the describe capability of a registered type.
func (r *Registry) Type(name string) (Describer, error) {
	if !r.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return registeredType{registry: r, name: name}, nil
}

// Names returns every registered type name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Types returns a summary of every registered type in registration order.
func (r *Registry) Types() []TypeSummary {
	out := make([]TypeSummary, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, TypeSummary{Name: name, Kind: r.entries[name].Kind})
	}
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.order)
}

// Suggest returns registered names that share a case-insensitive prefix or
// substring with name, for "did you mean" hints.
func (r *Registry) Suggest(name string) []string {
	needle := strings.ToLower(name)
	if needle == "" {
		return nil
	}

	var out []string
	for _, candidate := range r.order {
		lower := strings.ToLower(candidate)
		if strings.HasPrefix(lower, needle) || strings.Contains(lower, needle) {
			out = append(out, candidate)
		}
	}
	return out
}

// registeredType binds a type name to the registry that generated it.
type registeredType struct {
	registry *Registry
	name     string
}

// Describe implements Describer
func (t registeredType) Describe() ObjectData {
	return t.registry.MustDescribe(t.name)
}

// String returns the type name
func (t registeredType) String() string {
	return t.name
}
