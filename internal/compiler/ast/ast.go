// Package ast defines the syntax tree produced by the declaration parser.
// It holds record and tagged-union declarations with their members, resolved
// names, and source positions.
package ast

import "fmt"

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	Line   int `json:"line"`   // Line number (1-indexed)
	Column int `json:"column"` // Column number (1-indexed)
}

// String returns "line:column"
func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// DeclKind distinguishes records from tagged unions
type DeclKind int

const (
	// DeclRecord is a `struct` declaration
	DeclRecord DeclKind = iota
	// DeclUnion is an `enum` declaration whose arms each wrap one type
	DeclUnion
)

// String returns the keyword the declaration was written with
func (k DeclKind) String() string {
	switch k {
	case DeclRecord:
		return "struct"
	case DeclUnion:
		return "enum"
	default:
		return "unknown"
	}
}

// File is the root node for one parsed source file
type File struct {
	Name         string
	Declarations []*Declaration
}

func (f *File) node() {}

// Location returns the position of the first declaration.
func (f *File) Location() SourceLocation {
	if len(f.Declarations) > 0 {
		return f.Declarations[0].Loc
	}
	return SourceLocation{Line: 1, Column: 1}
}

// Declaration is one record or tagged-union type.
// Fields is set for records, Variants for unions.
type Declaration struct {
	Kind     DeclKind
	Name     string
	Fields   []*FieldDecl
	Variants []*VariantDecl
	Loc      SourceLocation
}

func (d *Declaration) node() {}

// Location returns the source location of the declaration.
func (d *Declaration) Location() SourceLocation {
	return d.Loc
}

// FieldDecl is one record member
type FieldDecl struct {
	Ident  string // Identifier as written
	Rename string // Value of a rename attribute, empty when absent
	Type   *TypeRef
	Loc    SourceLocation
}

func (f *FieldDecl) node() {}

// Location returns the source location of the field.
func (f *FieldDecl) Location() SourceLocation {
	return f.Loc
}

// Name returns the rename if present, else the identifier.
func (f *FieldDecl) Name() string {
	if f.Rename != "" {
		return f.Rename
	}
	return f.Ident
}

// VariantDecl is one tagged-union arm
type VariantDecl struct {
	Ident  string
	Rename string
	Type   *TypeRef
	Loc    SourceLocation
}

func (v *VariantDecl) node() {}

// Location returns the source location of the variant.
func (v *VariantDecl) Location() SourceLocation {
	return v.Loc
}

// Name returns the rename if present, else the identifier.
func (v *VariantDecl) Name() string {
	if v.Rename != "" {
		return v.Rename
	}
	return v.Ident
}

// TypeRef is a declared type after unwrapping at most one container.
// For `Vec<MarioPartyDS>` Name is "MarioPartyDS" and Container is "Vec".
type TypeRef struct {
	Name      string
	Container string
	Path      []string // Full path of the named type, e.g. ["crate", "games", "Foo"]
	Loc       SourceLocation
}

func (t *TypeRef) node() {}

// Location returns the source location of the type.
func (t *TypeRef) Location() SourceLocation {
	return t.Loc
}

// String renders the type the way it was declared.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	if t.Container != "" {
		return t.Container + "<" + t.Name + ">"
	}
	return t.Name
}
