package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned when a declaration, field, or variant has no name.
	ErrEmptyName = errors.New("empty name")
	// ErrDuplicateDeclaration is returned when two declarations share a name.
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	// ErrDuplicateField is returned when a record declares a field name twice.
	ErrDuplicateField = errors.New("duplicate field")
	// ErrDuplicateVariant is returned when two union arms resolve to the same name.
	ErrDuplicateVariant = errors.New("duplicate variant")
	// ErrUnknownType is returned when a type name was never registered.
	ErrUnknownType = errors.New("unknown type")
)

// DeclarationError reports a structural problem with one declaration.
// Member is the offending field or variant name, empty for the declaration itself.
type DeclarationError struct {
	Declaration string
	Member      string
	Position    int // Registration order of the declaration
	Index       int // Position of the offending member, -1 for the declaration itself
	Err         error
}

// Error implements the error interface
func (e *DeclarationError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("declaration %q: %v", e.Declaration, e.Err)
	}
	return fmt.Sprintf("declaration %q: %v %q", e.Declaration, e.Err, e.Member)
}

// Unwrap returns the underlying sentinel error
func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// Arm is one tagged-union arm as registered: its resolved name and the
// name of the type it wraps.
type Arm struct {
	Name string
	Type string
}

// NewArm creates an Arm.
func NewArm(name, wrappedType string) Arm {
	return Arm{Name: name, Type: wrappedType}
}

type declaration struct {
	name   string
	kind   ObjectKind
	fields []Field
	arms   []Arm
}

// Builder collects record and union declarations and generates their
// descriptions in Build. A Builder is not safe for concurrent use.
type Builder struct {
	decls []declaration
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{decls: make([]declaration, 0)}
}

// Record declares a record type with fields in presentation order.
func (b *Builder) Record(name string, fields ...Field) *Builder {
	copied := make([]Field, len(fields))
	copy(copied, fields)
	b.decls = append(b.decls, declaration{name: name, kind: KindFieldList, fields: copied})
	return b
}

// Union declares a tagged union with arms in presentation order.
func (b *Builder) Union(name string, arms ...Arm) *Builder {
	copied := make([]Arm, len(arms))
	copy(copied, arms)
	b.decls = append(b.decls, declaration{name: name, kind: KindEnum, arms: copied})
	return b
}

// Len returns the number of declarations collected so far.
func (b *Builder) Len() int {
	return len(b.decls)
}

// Build validates every declaration and generates the registry.
// All validation failures are reported together; each is a *DeclarationError.
func (b *Builder) Build() (*Registry, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	index := make(map[string]declaration, len(b.decls))
	for _, d := range b.decls {
		index[d.name] = d
	}

	reg := newRegistry(len(b.decls))
	for _, d := range b.decls {
		switch d.kind {
		case KindFieldList:
			reg.add(d.name, FieldList(cloneFields(d.fields)...))
		case KindEnum:
			reg.add(d.name, Enum(EnumData{Name: d.name, Variants: variants(d, index)}))
		}
	}

	return reg, nil
}

// MustBuild is like Build but panics on error. Intended for package-level
// registration where a malformed declaration must abort startup.
func (b *Builder) MustBuild() *Registry {
	reg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("metadata: %v", err))
	}
	return reg
}

// variants generates one Variant per arm. Nested descriptions go one level
// deep: an arm wrapping a union gets that union's variants without their own
// nested data, so reference cycles between unions cannot recurse.
func variants(d declaration, index map[string]declaration) []Variant {
	out := make([]Variant, 0, len(d.arms))
	for _, arm := range d.arms {
		v := Variant{Name: arm.Name, Type: arm.Type}

		if wrapped, ok := index[arm.Type]; ok {
			var nested ObjectData
			switch wrapped.kind {
			case KindFieldList:
				nested = FieldList(cloneFields(wrapped.fields)...)
			case KindEnum:
				shallow := make([]Variant, 0, len(wrapped.arms))
				for _, a := range wrapped.arms {
					shallow = append(shallow, Variant{Name: a.Name, Type: a.Type})
				}
				nested = Enum(EnumData{Name: wrapped.name, Variants: shallow})
			}
			v.Nested = &nested
		}

		out = append(out, v)
	}
	return out
}

func cloneFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

func (b *Builder) validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(b.decls))

	for pos, d := range b.decls {
		if d.name == "" {
			errs = append(errs, &DeclarationError{Position: pos, Index: -1, Err: ErrEmptyName})
			continue
		}
		if _, dup := seen[d.name]; dup {
			errs = append(errs, &DeclarationError{Declaration: d.name, Position: pos, Index: -1, Err: ErrDuplicateDeclaration})
			continue
		}
		seen[d.name] = struct{}{}

		switch d.kind {
		case KindFieldList:
			names := make([]string, len(d.fields))
			for i, f := range d.fields {
				names[i] = f.Name
			}
			errs = append(errs, checkMembers(d.name, pos, names, ErrDuplicateField)...)
		case KindEnum:
			names := make([]string, len(d.arms))
			for i, a := range d.arms {
				names[i] = a.Name
			}
			errs = append(errs, checkMembers(d.name, pos, names, ErrDuplicateVariant)...)
			for i, a := range d.arms {
				if a.Type == "" {
					errs = append(errs, &DeclarationError{Declaration: d.name, Member: a.Name, Position: pos, Index: i, Err: ErrEmptyName})
				}
			}
		}
	}

	return errors.Join(errs...)
}

func checkMembers(decl string, pos int, names []string, dupErr error) []error {
	var errs []error
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if name == "" {
			errs = append(errs, &DeclarationError{Declaration: decl, Position: pos, Index: i, Err: ErrEmptyName})
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, &DeclarationError{Declaration: decl, Member: name, Position: pos, Index: i, Err: dupErr})
			continue
		}
		seen[name] = struct{}{}
	}
	return errs
}
