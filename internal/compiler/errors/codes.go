package errors

import (
	"fmt"

	"github.com/partytracker/partytracker/internal/compiler/ast"
)

// Syntax error codes (DCL101-199)
const (
	// ErrSyntax indicates the source does not match the declaration grammar
	ErrSyntax ErrorCode = "DCL101"
	// ErrUnexpectedEOF indicates the source ended inside a declaration
	ErrUnexpectedEOF ErrorCode = "DCL102"
	// ErrMissingTypeArgument indicates a container type with no argument
	ErrMissingTypeArgument ErrorCode = "DCL103"
	// ErrTooManyTypeArguments indicates a container type with more than one argument
	ErrTooManyTypeArguments ErrorCode = "DCL104"
	// ErrNestedTypeArgument indicates a container whose argument is itself generic
	ErrNestedTypeArgument ErrorCode = "DCL105"
	// ErrEmptyRename indicates a rename attribute with an empty value
	ErrEmptyRename ErrorCode = "DCL106"
)

// Semantic error codes (DCL201-299)
const (
	// ErrDuplicateDeclaration indicates two declarations share a name
	ErrDuplicateDeclaration ErrorCode = "DCL201"
	// ErrDuplicateField indicates a record declares the same field twice
	ErrDuplicateField ErrorCode = "DCL202"
	// ErrDuplicateVariant indicates two union arms resolve to the same name
	ErrDuplicateVariant ErrorCode = "DCL203"
	// ErrEmptyName indicates a declaration, field, or variant without a name
	ErrEmptyName ErrorCode = "DCL204"
)

// NewSyntaxError creates a DCL101 error
func NewSyntaxError(loc ast.SourceLocation, message string) *DeclError {
	return newError(
		ErrSyntax,
		"syntax_error",
		CategorySyntax,
		message,
		loc,
	)
}

// NewUnexpectedEOF creates a DCL102 error
func NewUnexpectedEOF(loc ast.SourceLocation, message string) *DeclError {
	return newError(
		ErrUnexpectedEOF,
		"unexpected_eof",
		CategorySyntax,
		message,
		loc,
	).WithSuggestion("Check for a missing closing brace or parenthesis")
}

// NewMissingTypeArgument creates a DCL103 error
func NewMissingTypeArgument(loc ast.SourceLocation, container string) *DeclError {
	return newError(
		ErrMissingTypeArgument,
		"missing_type_argument",
		CategoryShape,
		fmt.Sprintf("Container type '%s' has no type argument", container),
		loc,
	).WithSuggestion("Wrap exactly one named type").
		WithExamples(fmt.Sprintf("%s<MarioParty1>", container))
}

// NewTooManyTypeArguments creates a DCL104 error
func NewTooManyTypeArguments(loc ast.SourceLocation, container string, count int) *DeclError {
	return newError(
		ErrTooManyTypeArguments,
		"too_many_type_arguments",
		CategoryShape,
		fmt.Sprintf("Container type '%s' has %d type arguments, expected 1", container, count),
		loc,
	).WithSuggestion("Only single-argument containers can be unwrapped")
}

// NewNestedTypeArgument creates a DCL105 error
func NewNestedTypeArgument(loc ast.SourceLocation, container, argument string) *DeclError {
	return newError(
		ErrNestedTypeArgument,
		"nested_type_argument",
		CategoryShape,
		fmt.Sprintf("Container type '%s' wraps generic type '%s'", container, argument),
		loc,
	).WithSuggestion("Only one level of container is unwrapped; declare the inner type separately")
}

// NewEmptyRename creates a DCL106 error
func NewEmptyRename(loc ast.SourceLocation, ident string) *DeclError {
	return newError(
		ErrEmptyRename,
		"empty_rename",
		CategoryShape,
		fmt.Sprintf("Rename for '%s' is empty", ident),
		loc,
	).WithSuggestion("Remove the rename attribute or give it a value").
		WithExamples(`#[serde(rename = "Mario Party DS")]`)
}

// NewDuplicateDeclaration creates a DCL201 error
func NewDuplicateDeclaration(loc ast.SourceLocation, name string) *DeclError {
	return newError(
		ErrDuplicateDeclaration,
		"duplicate_declaration",
		CategorySemantic,
		fmt.Sprintf("Type '%s' is declared more than once", name),
		loc,
	)
}

// NewDuplicateField creates a DCL202 error
func NewDuplicateField(loc ast.SourceLocation, record, field string) *DeclError {
	return newError(
		ErrDuplicateField,
		"duplicate_field",
		CategorySemantic,
		fmt.Sprintf("Field '%s' is declared more than once in '%s'", field, record),
		loc,
	)
}

// NewDuplicateVariant creates a DCL203 error
func NewDuplicateVariant(loc ast.SourceLocation, union, variant string) *DeclError {
	return newError(
		ErrDuplicateVariant,
		"duplicate_variant",
		CategorySemantic,
		fmt.Sprintf("Variant name '%s' is used more than once in '%s'", variant, union),
		loc,
	).WithSuggestion("Variant names are compared after renames are applied")
}

// NewEmptyName creates a DCL204 error
func NewEmptyName(loc ast.SourceLocation, what string) *DeclError {
	return newError(
		ErrEmptyName,
		"empty_name",
		CategorySemantic,
		fmt.Sprintf("%s has an empty name", what),
		loc,
	)
}
