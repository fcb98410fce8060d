package parser

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partytracker/partytracker/internal/compiler/ast"
	"github.com/partytracker/partytracker/internal/compiler/errors"
)

// parseSource parses source and fails the test on any error
func parseSource(t *testing.T, source string) *ast.File {
	t.Helper()

	file, err := ParseString("test.rs.decl", source)
	require.NoError(t, err)
	require.NotNil(t, file)
	return file
}

// parseErrors parses source and returns the resulting error list
func parseErrors(t *testing.T, source string) errors.ErrorList {
	t.Helper()

	_, err := ParseString("test.rs.decl", source)
	require.Error(t, err)

	var list errors.ErrorList
	require.True(t, stderrors.As(err, &list), "expected ErrorList, got %T", err)
	return list
}

func TestParseRecord(t *testing.T) {
	file := parseSource(t, `
#[derive(Deserialize, Clone)]
pub struct MarioPartyDS {
    pub player_name: String,
    pub character: String,
    pub stars: i32,
    pub coins: i32,
}`)

	require.Len(t, file.Declarations, 1)
	decl := file.Declarations[0]

	assert.Equal(t, ast.DeclRecord, decl.Kind)
	assert.Equal(t, "MarioPartyDS", decl.Name)
	assert.Equal(t, 3, decl.Loc.Line)

	var names, types []string
	for _, f := range decl.Fields {
		names = append(names, f.Name())
		types = append(types, f.Type.Name)
	}
	assert.Equal(t, []string{"player_name", "character", "stars", "coins"}, names)
	assert.Equal(t, []string{"String", "String", "i32", "i32"}, types)
}

func TestParseRecordWithoutTrailingComma(t *testing.T) {
	file := parseSource(t, `struct Edition1 { player_name: String, score: Int }`)

	require.Len(t, file.Declarations[0].Fields, 2)
	assert.Equal(t, "score", file.Declarations[0].Fields[1].Name())
}

func TestParseEmptyRecord(t *testing.T) {
	file := parseSource(t, `pub struct Empty {}`)

	require.Len(t, file.Declarations, 1)
	assert.Empty(t, file.Declarations[0].Fields)
}

func TestParseUnion(t *testing.T) {
	file := parseSource(t, `
#[derive(Deserialize)]
#[serde(tag = "game", content = "player_data")]
pub enum MarioPartyData {
    #[serde(rename = "Mario Party DS")]
    MarioPartyDS(Vec<MarioPartyDS>),
    MarioParty1(Vec<MarioParty1>),
}`)

	require.Len(t, file.Declarations, 1)
	decl := file.Declarations[0]
	assert.Equal(t, ast.DeclUnion, decl.Kind)
	require.Len(t, decl.Variants, 2)

	ds := decl.Variants[0]
	assert.Equal(t, "MarioPartyDS", ds.Ident)
	assert.Equal(t, "Mario Party DS", ds.Rename)
	assert.Equal(t, "Mario Party DS", ds.Name())
	assert.Equal(t, "MarioPartyDS", ds.Type.Name)
	assert.Equal(t, "Vec", ds.Type.Container)
	assert.Equal(t, "Vec<MarioPartyDS>", ds.Type.String())

	mp1 := decl.Variants[1]
	assert.Equal(t, "MarioParty1", mp1.Name())
	assert.Empty(t, mp1.Rename)
}

func TestParseRenameForms(t *testing.T) {
	file := parseSource(t, `
enum Root {
    #[rename = "Edition One"]
    A(Edition1),
    #[schema(rename = "Edition Two")]
    B(Edition2),
    #[serde(default, rename = "Edition Three")]
    C(Edition3),
}
struct Edition1 {
    #[serde(rename = "name")] pub player_name: String,
}`)

	root := file.Declarations[0]
	assert.Equal(t, "Edition One", root.Variants[0].Name())
	assert.Equal(t, "Edition Two", root.Variants[1].Name())
	assert.Equal(t, "Edition Three", root.Variants[2].Name())

	field := file.Declarations[1].Fields[0]
	assert.Equal(t, "player_name", field.Ident)
	assert.Equal(t, "name", field.Name())
}

func TestParseSkipsNoise(t *testing.T) {
	file := parseSource(t, `
//! crate docs
use serde::{Deserialize, Serialize};
use crate::games::*;

/// A record with doc comments
/* and a block comment */
#[derive(Debug)]
#[cfg_attr(feature = "x", allow(dead_code))]
#[doc = r"raw docs"]
pub(crate) struct Edition1 {
    #[validate(range(min = -1, max = 10))]
    pub(in crate::games) stars: i32,
    #[serde(default = 1.5)]
    #[schema(example = r#"{"coins": 3}"#, pattern = [1, 2])]
    coins: f64,
    // trailing comment
}`)

	require.Len(t, file.Declarations, 1)
	require.Len(t, file.Declarations[0].Fields, 2)
	assert.Equal(t, "stars", file.Declarations[0].Fields[0].Name())
	assert.Equal(t, "coins", file.Declarations[0].Fields[1].Name())
}

func TestParseAttributeArguments(t *testing.T) {
	tests := []struct {
		name string
		attr string
	}{
		{"negative number", `#[validate(range(min = -1))]`},
		{"float", `#[serde(default = 1.5)]`},
		{"exponent", `#[serde(default = 2.5e-3)]`},
		{"raw string", `#[doc = r"raw"]`},
		{"hashed raw string", `#[doc = r#"say "hi""#]`},
		{"expression", `#[validate(length(min = 1 + 2))]`},
		{"bracketed list", `#[schema(values = [1, 2, 3])]`},
		{"braced tokens", `#[cfg_attr(test, derive(Default), doc = {x})]`},
		{"bare literal argument", `#[doc("text", 3)]`},
		{"path value", `#[serde(default = crate::defaults::stars)]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := parseSource(t, tt.attr+"\nstruct Edition1 { stars: i32 }")
			require.Len(t, file.Declarations, 1)
			assert.Equal(t, "Edition1", file.Declarations[0].Name)
		})
	}
}

func TestParseRawStringRename(t *testing.T) {
	file := parseSource(t, `
enum Root {
    #[serde(rename = r"Mario Party")]
    MarioParty1(Edition1),
    #[rename = r#"Mario "Party" 2"#]
    MarioParty2(Edition2),
}`)

	v := file.Declarations[0].Variants
	assert.Equal(t, "Mario Party", v[0].Name())
	assert.Equal(t, `Mario "Party" 2`, v[1].Name())
}

func TestParseNonStringRenameIgnored(t *testing.T) {
	file := parseSource(t, `
enum Root {
    #[serde(rename = 3, default = -1)]
    MarioParty1(Edition1),
}`)

	assert.Equal(t, "MarioParty1", file.Declarations[0].Variants[0].Name())
}

func TestParseUnbalancedAttribute(t *testing.T) {
	list := parseErrors(t, "#[validate(range(min = -1]\nstruct Edition1 { stars: i32 }")

	require.Len(t, list, 1)
	assert.Equal(t, errors.CategorySyntax, list[0].Category)
}

func TestParsePathTypes(t *testing.T) {
	file := parseSource(t, `
enum Root {
    A(crate::games::Edition1),
    B(std::vec::Vec<games::Edition2>),
    C(::core::String),
}`)

	v := file.Declarations[0].Variants
	assert.Equal(t, "Edition1", v[0].Type.Name)
	assert.Equal(t, []string{"crate", "games", "Edition1"}, v[0].Type.Path)
	assert.Equal(t, "Edition2", v[1].Type.Name)
	assert.Equal(t, "Vec", v[1].Type.Container)
	assert.Equal(t, "String", v[2].Type.Name)
}

func TestParseMultipleDeclarationsKeepOrder(t *testing.T) {
	file := parseSource(t, `
struct Edition1 { score: Int }
enum Root { A(Edition1) }
struct Edition2 { stars: i32 }`)

	var names []string
	for _, d := range file.Declarations {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Edition1", "Root", "Edition2"}, names)
}

func TestParseTypeShapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   errors.ErrorCode
	}{
		{"zero arguments", `enum Root { A(Vec<>) }`, errors.ErrMissingTypeArgument},
		{"two arguments", `enum Root { A(HashMap<String, Edition1>) }`, errors.ErrTooManyTypeArguments},
		{"nested generic", `enum Root { A(Vec<Option<Edition1>>) }`, errors.ErrNestedTypeArgument},
		{"field with two arguments", `struct R { m: HashMap<K, V> }`, errors.ErrTooManyTypeArguments},
		{"empty rename", `enum Root { #[serde(rename = "")] A(Edition1) }`, errors.ErrEmptyRename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := parseErrors(t, tt.source)
			require.Len(t, list, 1)
			assert.Equal(t, tt.code, list[0].Code)
			assert.Equal(t, "test.rs.decl", list[0].File)
			assert.Equal(t, 1, list[0].Location.Line)
			require.NotNil(t, list[0].Context)
		})
	}
}

func TestParseCollectsAllShapeErrors(t *testing.T) {
	list := parseErrors(t, `
enum Root {
    A(Vec<>),
    B(Map<K, V>),
}`)

	require.Len(t, list, 2)
	assert.Equal(t, errors.ErrMissingTypeArgument, list[0].Code)
	assert.Equal(t, 3, list[0].Location.Line)
	assert.Equal(t, errors.ErrTooManyTypeArguments, list[1].Code)
	assert.Equal(t, 4, list[1].Location.Line)
	for _, e := range list {
		assert.Equal(t, errors.CategoryShape, e.Category)
		assert.Contains(t, e.Format(), "Type Shape Error")
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"reference type", `enum Root { A(&str) }`},
		{"tuple type", `enum Root { A((i32, i32)) }`},
		{"unit variant", `enum Root { A, B(Edition1) }`},
		{"struct variant", `enum Root { A { x: i32 } }`},
		{"two wrapped types", `enum Root { A(Edition1, Edition2) }`},
		{"generic declaration", `struct Wrapper<T> { inner: T }`},
		{"tuple struct", `struct Edition1(i32);`},
		{"missing colon", `struct Edition1 { stars i32 }`},
		{"unknown item", `fn main() {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := parseErrors(t, tt.source)
			require.Len(t, list, 1)
			assert.Equal(t, errors.ErrSyntax, list[0].Code)
			assert.Equal(t, errors.CategorySyntax, list[0].Category)
			assert.NotEmpty(t, list[0].Message)
		})
	}
}

func TestParseUnexpectedEOF(t *testing.T) {
	list := parseErrors(t, "struct Edition1 {\n    stars: i32,\n")

	require.Len(t, list, 1)
	assert.Equal(t, errors.ErrUnexpectedEOF, list[0].Code)
}

func TestParseEmptySource(t *testing.T) {
	file := parseSource(t, "  \n// nothing here\n")
	assert.Empty(t, file.Declarations)
}

func TestParseBytes(t *testing.T) {
	file, err := Parse("bytes.decl", []byte(`struct A { x: i32 }`))
	require.NoError(t, err)
	assert.Equal(t, "bytes.decl", file.Name)
}
