// Package parser reads Rust-style record and tagged-union declarations into
// the AST. Attributes and visibility modifiers are recognized and skipped,
// except for rename directives, and a single-argument container type is
// unwrapped one level.
package parser

import (
	stderrors "errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/partytracker/partytracker/internal/compiler/ast"
	"github.com/partytracker/partytracker/internal/compiler/errors"
)

// Parse parses a declaration file. On failure the error is an errors.ErrorList
// whose entries carry file, position, and source context.
func Parse(filename string, src []byte) (*ast.File, error) {
	return ParseString(filename, string(src))
}

// ParseString is like Parse but takes the source as a string.
func ParseString(filename, src string) (*ast.File, error) {
	parsed, err := declParser.ParseString(filename, src)
	if err != nil {
		list := errors.ErrorList{syntaxError(src, err)}
		return nil, list.WithFile(filename).WithSource(src)
	}

	c := &converter{}
	file := c.file(filename, parsed)
	if len(c.errs) > 0 {
		return nil, c.errs.WithFile(filename).WithSource(src)
	}
	return file, nil
}

// converter turns the grammar tree into AST nodes, collecting every shape
// error instead of stopping at the first.
type converter struct {
	errs errors.ErrorList
}

func (c *converter) file(name string, src *sourceFile) *ast.File {
	out := &ast.File{Name: name, Declarations: make([]*ast.Declaration, 0, len(src.Items))}
	for _, it := range src.Items {
		switch {
		case it.Struct != nil:
			out.Declarations = append(out.Declarations, c.record(it.Struct))
		case it.Enum != nil:
			out.Declarations = append(out.Declarations, c.union(it.Enum))
		}
	}
	return out
}

func (c *converter) record(s *structDecl) *ast.Declaration {
	decl := &ast.Declaration{
		Kind:   ast.DeclRecord,
		Name:   s.Name,
		Fields: make([]*ast.FieldDecl, 0, len(s.Fields)),
		Loc:    location(s.Pos),
	}
	for _, f := range s.Fields {
		decl.Fields = append(decl.Fields, &ast.FieldDecl{
			Ident:  f.Name,
			Rename: c.rename(f.Name, f.Attrs),
			Type:   c.typeRef(f.Type),
			Loc:    location(f.Pos),
		})
	}
	return decl
}

func (c *converter) union(e *enumDecl) *ast.Declaration {
	decl := &ast.Declaration{
		Kind:     ast.DeclUnion,
		Name:     e.Name,
		Variants: make([]*ast.VariantDecl, 0, len(e.Variants)),
		Loc:      location(e.Pos),
	}
	for _, v := range e.Variants {
		decl.Variants = append(decl.Variants, &ast.VariantDecl{
			Ident:  v.Name,
			Rename: c.rename(v.Name, v.Attrs),
			Type:   c.typeRef(v.Type),
			Loc:    location(v.Pos),
		})
	}
	return decl
}

// rename returns the value of the last rename directive among attrs.
// Both `#[rename = "X"]` and `#[serde(rename = "X")]` forms are recognized.
func (c *converter) rename(ident string, attrs []*attribute) string {
	var (
		value string
		found *meta
	)
	for _, a := range attrs {
		if m, v := findRename(a.Meta); m != nil {
			found = m
			value = v
		}
	}
	if found != nil && value == "" {
		c.errs = append(c.errs, errors.NewEmptyRename(location(found.Pos), ident))
	}
	return value
}

// findRename returns the last `rename = "..."` item in the meta tree and its
// value. A rename whose value is not a string literal is not a directive.
func findRename(m *meta) (*meta, string) {
	if m == nil {
		return nil, ""
	}
	if len(m.Path) == 1 && m.Path[0] == "rename" {
		if v, ok := m.stringValue(); ok {
			return m, v
		}
	}
	var (
		found *meta
		value string
	)
	for _, arg := range m.Args {
		if r, v := findRename(arg.Meta); r != nil {
			found, value = r, v
		}
	}
	return found, value
}

// typeRef resolves a declared type to its named type, unwrapping exactly one
// level of container. The last path segment is the type name.
func (c *converter) typeRef(t *typeExpr) *ast.TypeRef {
	ref := &ast.TypeRef{Name: t.last(), Path: t.Path, Loc: location(t.Pos)}
	if !t.Generic {
		return ref
	}

	container := t.last()
	switch {
	case len(t.Args) == 0:
		c.errs = append(c.errs, errors.NewMissingTypeArgument(ref.Loc, container))
	case len(t.Args) > 1:
		c.errs = append(c.errs, errors.NewTooManyTypeArguments(ref.Loc, container, len(t.Args)))
	case t.Args[0].Generic:
		c.errs = append(c.errs, errors.NewNestedTypeArgument(ref.Loc, container, t.Args[0].String()))
	default:
		inner := t.Args[0]
		ref.Name = inner.last()
		ref.Path = inner.Path
		ref.Container = container
	}
	return ref
}

func location(pos lexer.Position) ast.SourceLocation {
	return ast.SourceLocation{Line: pos.Line, Column: pos.Column}
}

// syntaxError converts a participle failure into a located DeclError.
func syntaxError(src string, err error) *errors.DeclError {
	var perr participle.Error
	if !stderrors.As(err, &perr) {
		return errors.NewSyntaxError(ast.SourceLocation{Line: 1, Column: 1}, err.Error()).WithCause(err)
	}

	pos := perr.Position()
	loc := location(pos)
	if pos.Offset >= len(strings.TrimRightFunc(src, isSpace)) {
		return errors.NewUnexpectedEOF(loc, perr.Message()).WithCause(err)
	}
	return errors.NewSyntaxError(loc, perr.Message()).WithCause(err)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
