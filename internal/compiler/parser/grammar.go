package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// declLexer tokenizes Rust-style type declarations.
// Order matters: raw strings before identifiers, floats before integers,
// and "::" before single-character punctuation.
var declLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "RawString", Pattern: `r##"(?s:.*?)"##|r#"(?s:.*?)"#|r"[^"]*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Float", Pattern: `[0-9][0-9_]*\.[0-9][0-9_]*([eE][+-]?[0-9]+)?`},
	{Name: "Number", Pattern: `[0-9][0-9_]*`},
	{Name: "PathSep", Pattern: `::`},
	{Name: "Punct", Pattern: `[#!\[\](){}<>,:;=&*'.\-+|/?@$]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// declParser is the participle parser for declaration files.
var declParser = participle.MustBuild[sourceFile](
	participle.Lexer(declLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

//nolint:govet // participle grammar tags are not standard struct tags
type sourceFile struct {
	Items []*item `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type item struct {
	Pos    lexer.Position
	Attrs  []*attribute `@@*`
	Vis    *visibility  `@@?`
	Use    *useDecl     `( @@`
	Struct *structDecl  `| @@`
	Enum   *enumDecl    `| @@ )`
}

// useDecl accepts and discards import lines.
//
//nolint:govet // participle grammar tags are not standard struct tags
type useDecl struct {
	Path []string `"use" ( @Ident | @"::" | @"{" | @"}" | @"," | @"*" )+ ";"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attribute struct {
	Pos   lexer.Position
	Inner bool  `"#" @"!"?`
	Meta  *meta `"[" @@ "]"`
}

// meta is one attribute item: a path optionally followed by `= value` or a
// parenthesized list of further items. Anything the structured form does not
// describe is kept as balanced token trees so arbitrary attribute arguments
// still parse.
//
//nolint:govet // participle grammar tags are not standard struct tags
type meta struct {
	Pos   lexer.Position
	Path  []string     `@Ident ( "::" @Ident )*`
	Value []*tokenTree `( "=" @@+`
	Args  []*metaArg   `| "(" ( @@ ( "," @@ )* ","? )? ")" )?`
	Rest  []*tokenTree `@@*`
}

// stringValue returns the value of `path = "..."` when the value is a single
// string literal.
func (m *meta) stringValue() (string, bool) {
	if len(m.Value) != 1 || len(m.Rest) != 0 {
		return "", false
	}
	switch v := m.Value[0]; {
	case v.Str != nil:
		return *v.Str, true
	case v.Raw != nil:
		return unquoteRaw(*v.Raw), true
	}
	return "", false
}

// metaArg is one comma-separated argument of a meta list.
//
//nolint:govet // participle grammar tags are not standard struct tags
type metaArg struct {
	Meta   *meta        `  @@`
	Tokens []*tokenTree `| @@+`
}

// tokenTree is a single token or a bracketed group. Separators and closing
// brackets end a run of trees.
//
//nolint:govet // participle grammar tags are not standard struct tags
type tokenTree struct {
	Group *tokenGroup `  @@`
	Str   *string     `| @String`
	Raw   *string     `| @RawString`
	Other *string     `| @!( "," | ")" | "]" | "}" )`
}

//nolint:govet // participle grammar tags are not standard struct tags
type tokenGroup struct {
	Items []*groupItem `( "(" @@* ")" | "[" @@* "]" | "{" @@* "}" )`
}

//nolint:govet // participle grammar tags are not standard struct tags
type groupItem struct {
	Tree  *tokenTree `  @@`
	Comma bool       `| @","`
}

// unquoteRaw strips the r, hashes and quotes from a raw string literal.
func unquoteRaw(s string) string {
	s = strings.TrimPrefix(s, "r")
	hashes := len(s) - len(strings.TrimLeft(s, "#"))
	s = s[hashes : len(s)-hashes]
	return strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
}

//nolint:govet // participle grammar tags are not standard struct tags
type visibility struct {
	Pub   bool     `@"pub"`
	Scope []string `( "(" ( @Ident | @"::" )+ ")" )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type structDecl struct {
	Pos    lexer.Position
	Name   string       `"struct" @Ident`
	Fields []*fieldDecl `"{" ( @@ ( "," @@ )* ","? )? "}"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fieldDecl struct {
	Pos   lexer.Position
	Attrs []*attribute `@@*`
	Vis   *visibility  `@@?`
	Name  string       `@Ident ":"`
	Type  *typeExpr    `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type enumDecl struct {
	Pos      lexer.Position
	Name     string         `"enum" @Ident`
	Variants []*variantDecl `"{" ( @@ ( "," @@ )* ","? )? "}"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type variantDecl struct {
	Pos   lexer.Position
	Attrs []*attribute `@@*`
	Name  string       `@Ident`
	Type  *typeExpr    `"(" @@ ")"`
}

// typeExpr is a path type with optional angle-bracketed arguments.
// Argument count and nesting are checked after parsing so they can be
// reported with their own error codes.
//
//nolint:govet // participle grammar tags are not standard struct tags
type typeExpr struct {
	Pos     lexer.Position
	Path    []string    `"::"? @Ident ( "::" @Ident )*`
	Generic bool        `( @"<"`
	Args    []*typeExpr `  ( @@ ( "," @@ )* ","? )? ">" )?`
}

func (t *typeExpr) last() string {
	return t.Path[len(t.Path)-1]
}

// String renders the type as written, minus whitespace.
func (t *typeExpr) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Path, "::"))
	if !t.Generic {
		return b.String()
	}
	b.WriteString("<")
	for i, a := range t.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteString(">")
	return b.String()
}
