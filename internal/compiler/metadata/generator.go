// Package metadata generates the runtime type registry from parsed
// declarations, mapping registration failures back to source positions.
package metadata

import (
	stderrors "errors"
	"fmt"

	"github.com/partytracker/partytracker/internal/compiler/ast"
	"github.com/partytracker/partytracker/internal/compiler/errors"
	"github.com/partytracker/partytracker/internal/compiler/parser"
	rtmeta "github.com/partytracker/partytracker/runtime/metadata"
)

// Generator feeds parsed declarations into a metadata builder
type Generator struct {
	filePath string // Current source file being processed
	source   string // Source text, used for error context
}

// NewGenerator creates a new metadata generator
func NewGenerator() *Generator {
	return &Generator{}
}

// SetFilePath sets the current source file path for error locations
func (g *Generator) SetFilePath(path string) {
	g.filePath = path
}

// SetSource sets the source text used to render error context
func (g *Generator) SetSource(src string) {
	g.source = src
}

// Generate registers every declaration of file, in order, and builds the
// registry. Structural problems are returned as an errors.ErrorList; each
// entry wraps the runtime sentinel error it was derived from.
func (g *Generator) Generate(file *ast.File) (*rtmeta.Registry, error) {
	b := g.builder(file)

	reg, err := b.Build()
	if err != nil {
		return nil, g.locate(file, err)
	}
	return reg, nil
}

func (g *Generator) builder(file *ast.File) *rtmeta.Builder {
	b := rtmeta.NewBuilder()
	for _, decl := range file.Declarations {
		switch decl.Kind {
		case ast.DeclRecord:
			fields := make([]rtmeta.Field, 0, len(decl.Fields))
			for _, f := range decl.Fields {
				fields = append(fields, rtmeta.Field{Name: f.Name(), Type: f.Type.Name})
			}
			b.Record(decl.Name, fields...)
		case ast.DeclUnion:
			arms := make([]rtmeta.Arm, 0, len(decl.Variants))
			for _, v := range decl.Variants {
				arms = append(arms, rtmeta.NewArm(v.Name(), v.Type.Name))
			}
			b.Union(decl.Name, arms...)
		}
	}
	return b
}

// locate converts the joined DeclarationErrors from Build into located
// DeclErrors.
func (g *Generator) locate(file *ast.File, err error) error {
	var causes []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		causes = joined.Unwrap()
	} else {
		causes = []error{err}
	}

	list := make(errors.ErrorList, 0, len(causes))
	for _, cause := range causes {
		var declErr *rtmeta.DeclarationError
		if !stderrors.As(cause, &declErr) {
			return fmt.Errorf("generate metadata: %w", err)
		}
		list = append(list, g.declError(file, declErr))
	}

	return list.WithFile(g.filePath).WithSource(g.source)
}

func (g *Generator) declError(file *ast.File, e *rtmeta.DeclarationError) *errors.DeclError {
	var (
		decl *ast.Declaration
		loc  = ast.SourceLocation{Line: 1, Column: 1}
	)
	if e.Position >= 0 && e.Position < len(file.Declarations) {
		decl = file.Declarations[e.Position]
		loc = memberLocation(decl, e.Index)
	}

	var out *errors.DeclError
	switch {
	case stderrors.Is(e, rtmeta.ErrDuplicateDeclaration):
		out = errors.NewDuplicateDeclaration(loc, e.Declaration)
	case stderrors.Is(e, rtmeta.ErrDuplicateField):
		out = errors.NewDuplicateField(loc, e.Declaration, e.Member)
	case stderrors.Is(e, rtmeta.ErrDuplicateVariant):
		out = errors.NewDuplicateVariant(loc, e.Declaration, e.Member)
	default:
		out = errors.NewEmptyName(loc, emptyNameSubject(decl, e.Index))
	}
	return out.WithCause(e)
}

func memberLocation(decl *ast.Declaration, index int) ast.SourceLocation {
	switch {
	case index < 0:
		return decl.Loc
	case decl.Kind == ast.DeclRecord && index < len(decl.Fields):
		return decl.Fields[index].Loc
	case decl.Kind == ast.DeclUnion && index < len(decl.Variants):
		return decl.Variants[index].Loc
	default:
		return decl.Loc
	}
}

func emptyNameSubject(decl *ast.Declaration, index int) string {
	switch {
	case decl == nil || index < 0:
		return "Declaration"
	case decl.Kind == ast.DeclRecord:
		return fmt.Sprintf("Field %d of '%s'", index+1, decl.Name)
	default:
		return fmt.Sprintf("Variant %d of '%s'", index+1, decl.Name)
	}
}

// Compile parses src and generates its registry in one step.
func Compile(filename string, src []byte) (*rtmeta.Registry, error) {
	file, err := parser.Parse(filename, src)
	if err != nil {
		return nil, err
	}

	g := NewGenerator()
	g.SetFilePath(filename)
	g.SetSource(string(src))
	return g.Generate(file)
}
