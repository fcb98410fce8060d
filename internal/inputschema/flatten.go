// Package inputschema presents the root tagged union as the per-edition
// input schema: an ordered mapping from variant label to that variant's
// record fields.
package inputschema

import (
	"errors"
	"fmt"

	"github.com/partytracker/partytracker/runtime/metadata"
)

var (
	// ErrRootNotUnion is returned when FlattenRoot receives a record description.
	ErrRootNotUnion = errors.New("input schema root is not a tagged union")
	// ErrDuplicateLabel is returned when two variants flatten to the same label.
	ErrDuplicateLabel = errors.New("duplicate input schema label")
)

// FlattenRoot reduces a tagged union's description to label → fields.
//
// Variants whose nested data is a field list produce one entry each, in
// variant order. Variants whose wrapped type is opaque, or is itself a union,
// produce no entry; their labels are reported by InputSchema.Skipped.
func FlattenRoot(root metadata.ObjectData) (*InputSchema, error) {
	enum, ok := root.AsEnum()
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrRootNotUnion, root.Kind)
	}

	schema := newInputSchema(enum.Name, len(enum.Variants))
	for _, v := range enum.Variants {
		if v.Nested == nil {
			schema.skip(v.Name)
			continue
		}
		fields, ok := v.Nested.AsFieldList()
		if !ok {
			schema.skip(v.Name)
			continue
		}
		if schema.Has(v.Name) {
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateLabel, v.Name, enum.Name)
		}
		schema.add(v.Name, fields)
	}
	return schema, nil
}
