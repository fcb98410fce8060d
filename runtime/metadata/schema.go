// Package metadata provides the structures that describe the declared shape
// of record and tagged-union types, and the registry that generates them.
package metadata

import (
	"encoding/json"
	"fmt"
)

// ObjectKind discriminates the two shapes an ObjectData can take.
type ObjectKind int

const (
	// KindFieldList describes a plain record type.
	KindFieldList ObjectKind = iota
	// KindEnum describes a tagged union type.
	KindEnum
)

// String returns the string representation of ObjectKind
func (k ObjectKind) String() string {
	switch k {
	case KindFieldList:
		return "fields"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ObjectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ObjectKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fields":
		*k = KindFieldList
	case "enum":
		*k = KindEnum
	default:
		return fmt.Errorf("unknown object kind %q", text)
	}
	return nil
}

// Field is one named member of a record type.
type Field struct {
	Name string `json:"name" yaml:"name"` // Field name after rename resolution
	Type string `json:"type" yaml:"type"` // Declared type name, verbatim
}

// Variant is one arm of a tagged union.
//
// Nested is the wrapped type's description, or nil when the type is not
// declared. It is one level deep: when the wrapped type is itself a union,
// Nested lists that union's variants with their own Nested left nil.
type Variant struct {
	Name   string      `json:"name" yaml:"name"`                         // Rename if present, else the identifier
	Type   string      `json:"type" yaml:"type"`                         // Wrapped type name, container unwrapped
	Nested *ObjectData `json:"nested,omitempty" yaml:"nested,omitempty"` // Wrapped type's description, nil for opaque types
}

// EnumData describes a tagged union type.
type EnumData struct {
	Name     string    `json:"name" yaml:"name"`
	Variants []Variant `json:"variants" yaml:"variants"`
}

// ObjectData is the description of one registered type. Exactly one of
// Fields (KindFieldList) or Enum (KindEnum) is meaningful.
type ObjectData struct {
	Kind   ObjectKind `json:"kind" yaml:"kind"`
	Fields []Field    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Enum   *EnumData  `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// Describer is implemented by anything that can describe its own shape.
type Describer interface {
	Describe() ObjectData
}

// FieldList builds the description of a record type.
func FieldList(fields ...Field) ObjectData {
	if fields == nil {
		fields = []Field{}
	}
	return ObjectData{Kind: KindFieldList, Fields: fields}
}

// Enum builds the description of a tagged union type.
func Enum(data EnumData) ObjectData {
	if data.Variants == nil {
		data.Variants = []Variant{}
	}
	return ObjectData{Kind: KindEnum, Enum: &data}
}

// AsFieldList returns the field list if o describes a record.
func (o ObjectData) AsFieldList() ([]Field, bool) {
	if o.Kind != KindFieldList {
		return nil, false
	}
	return o.Fields, true
}

// AsEnum returns the union description if o describes a tagged union.
func (o ObjectData) AsEnum() (*EnumData, bool) {
	if o.Kind != KindEnum || o.Enum == nil {
		return nil, false
	}
	return o.Enum, true
}

// IsEnum reports whether o describes a tagged union.
func (o ObjectData) IsEnum() bool {
	_, ok := o.AsEnum()
	return ok
}

// Clone returns a deep copy of o.
func (o ObjectData) Clone() ObjectData {
	out := ObjectData{Kind: o.Kind}
	if o.Fields != nil {
		out.Fields = make([]Field, len(o.Fields))
		copy(out.Fields, o.Fields)
	}
	if o.Enum != nil {
		e := o.Enum.Clone()
		out.Enum = &e
	}
	return out
}

// Clone returns a deep copy of e.
func (e EnumData) Clone() EnumData {
	out := EnumData{Name: e.Name}
	if e.Variants != nil {
		out.Variants = make([]Variant, len(e.Variants))
		for i, v := range e.Variants {
			out.Variants[i] = v.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of v.
func (v Variant) Clone() Variant {
	out := Variant{Name: v.Name, Type: v.Type}
	if v.Nested != nil {
		nested := v.Nested.Clone()
		out.Nested = &nested
	}
	return out
}

// String renders o as compact JSON for logs and test failure messages.
func (o ObjectData) String() string {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf("ObjectData(%s)", o.Kind)
	}
	return string(data)
}
