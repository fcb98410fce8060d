// Package errors provides structured errors for the declaration compiler.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"
	"strings"

	"github.com/partytracker/partytracker/internal/compiler/ast"
)

// ErrorCode represents a unique declaration error code
type ErrorCode string

// ErrorCategory represents the category of a declaration error
type ErrorCategory string

const (
	// CategorySyntax represents malformed source text (DCL101-102)
	CategorySyntax ErrorCategory = "syntax"
	// CategoryShape represents well-formed source whose type or attribute
	// shape is unsupported (DCL103-199)
	CategoryShape ErrorCategory = "shape"
	// CategorySemantic represents errors found while generating metadata (DCL201-299)
	CategorySemantic ErrorCategory = "semantic"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that prevents generation
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a warning that suggests potential issues
	SeverityWarning ErrorSeverity = "warning"
)

// ErrorContext provides source code context for an error
type ErrorContext struct {
	// Current is the line of code where the error occurred
	Current string `json:"current"`
	// SourceLines is a snippet of source code (before, error line, after)
	SourceLines []string `json:"source_lines"`
}

// DeclError is a structured, located error about a declaration file
type DeclError struct {
	// Code is the unique error code (e.g., "DCL101")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Location is the source location of the error
	Location ast.SourceLocation `json:"location"`
	// File is the source file name (optional)
	File string `json:"file,omitempty"`
	// Context provides source code context
	Context *ErrorContext `json:"context,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
	// Examples provides example fixes (optional)
	Examples []string `json:"examples,omitempty"`

	cause error
}

// Error implements the error interface
func (e *DeclError) Error() string {
	return FormatCompact(e)
}

// Unwrap returns the error this one was derived from, if any
func (e *DeclError) Unwrap() error {
	return e.cause
}

// Format returns a human-readable error message for terminal output
func (e *DeclError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as an indented JSON string
func (e *DeclError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithFile sets the source file name for the error
func (e *DeclError) WithFile(file string) *DeclError {
	e.File = file
	return e
}

// WithSource extracts the error line and its neighbours from src
func (e *DeclError) WithSource(src string) *DeclError {
	if src == "" || e.Location.Line < 1 {
		return e
	}
	lines := strings.Split(src, "\n")
	idx := e.Location.Line - 1
	if idx >= len(lines) {
		return e
	}

	// SourceLines always has the error line at index 1 so the formatter can
	// number it; an empty first entry stands in for line 0.
	snippet := []string{""}
	if idx > 0 {
		snippet[0] = lines[idx-1]
	}
	snippet = append(snippet, lines[idx])
	if idx+1 < len(lines) {
		snippet = append(snippet, lines[idx+1])
	}

	e.Context = &ErrorContext{Current: lines[idx], SourceLines: snippet}
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *DeclError) WithSuggestion(suggestion string) *DeclError {
	e.Suggestion = suggestion
	return e
}

// WithExamples sets example fixes for the error
func (e *DeclError) WithExamples(examples ...string) *DeclError {
	e.Examples = examples
	return e
}

// WithCause records the underlying error for errors.Is / errors.As
func (e *DeclError) WithCause(err error) *DeclError {
	e.cause = err
	return e
}

// ErrorList is a collection of declaration errors
type ErrorList []*DeclError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// Unwrap exposes every error in the list to errors.Is / errors.As
func (el ErrorList) Unwrap() []error {
	out := make([]error, len(el))
	for i, e := range el {
		out[i] = e
	}
	return out
}

// HasErrors returns true if the list contains any errors (excludes warnings)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// WithFile sets the file name on every error that has none
func (el ErrorList) WithFile(file string) ErrorList {
	for _, e := range el {
		if e.File == "" {
			e.File = file
		}
	}
	return el
}

// WithSource attaches source context to every error
func (el ErrorList) WithSource(src string) ErrorList {
	for _, e := range el {
		e.WithSource(src)
	}
	return el
}

// Err returns the list as an error, or nil when it is empty
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return
}

// newError creates a new DeclError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	message string,
	loc ast.SourceLocation,
) *DeclError {
	return &DeclError{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Location: loc,
	}
}
