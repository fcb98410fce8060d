// Package metadata describes the declared shape of record and tagged-union
// types and generates those descriptions from explicit registrations.
//
// # Overview
//
// A record is a flat, ordered list of named fields. A tagged union is an
// ordered set of named variants, each wrapping exactly one other type. The
// package turns declarations of both into an ObjectData tree that consumers
// (the input schema presenter, the HTTP API, the CLI) can traverse without
// knowing anything about the types themselves.
//
// # Core Structures
//
//   - Field: one record member, name and declared type name
//   - Variant: one union arm, its resolved name, wrapped type, and the wrapped
//     type's own description when it is registered
//   - EnumData: a union's name and variants
//   - ObjectData: either a field list or an EnumData
//   - Registry: the immutable table of generated descriptions
//
// # Example Usage
//
//	reg, err := metadata.NewBuilder().
//		Record("Edition1",
//			metadata.Field{Name: "player_name", Type: "String"},
//			metadata.Field{Name: "score", Type: "Int"},
//		).
//		Union("Root", metadata.NewArm("Edition One", "Edition1")).
//		Build()
//	if err != nil {
//		return err
//	}
//
//	root, _ := reg.Describe("Root")
//	enum, _ := root.AsEnum()
//	fmt.Println(enum.Variants[0].Nested.Fields) // [{player_name String} {score Int}]
//
// # Example JSON Output
//
// The description of Root above serializes as:
//
//	{
//	  "kind": "enum",
//	  "enum": {
//	    "name": "Root",
//	    "variants": [
//	      {
//	        "name": "Edition One",
//	        "type": "Edition1",
//	        "nested": {
//	          "kind": "fields",
//	          "fields": [
//	            {"name": "player_name", "type": "String"},
//	            {"name": "score", "type": "Int"}
//	          ]
//	        }
//	      }
//	    ]
//	  }
//	}
//
// # Validation
//
// Build rejects empty names, duplicate declarations, duplicate fields within
// a record, and duplicate variant names within a union (after renames are
// applied). Each problem is a *DeclarationError wrapping one of the sentinel
// errors, and all of them are joined into the returned error:
//
//	_, err := b.Build()
//	if errors.Is(err, metadata.ErrDuplicateVariant) {
//		// two arms resolve to the same label
//	}
//
// # Nesting
//
// A variant's Nested data is the wrapped type's description if that type is
// registered, and nil otherwise. Generation is one level deep: when an arm
// wraps another union, the nested EnumData lists that union's variants
// without their own nested data.
//
// # Thread Safety
//
// A Builder must be used from one goroutine. A Registry is read-only once
// built and may be shared freely.
package metadata
