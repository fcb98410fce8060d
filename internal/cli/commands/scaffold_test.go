package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compiler "github.com/partytracker/partytracker/internal/compiler/metadata"
	"github.com/partytracker/partytracker/internal/inputschema"
	"github.com/partytracker/partytracker/runtime/metadata"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		in      string
		want    metadata.Field
		wantErr bool
	}{
		{in: "stars:i32", want: metadata.Field{Name: "stars", Type: "i32"}},
		{in: " player_name : String ", want: metadata.Field{Name: "player_name", Type: "String"}},
		{in: "winner:crate::games::Player", want: metadata.Field{Name: "winner", Type: "crate::games::Player"}},
		{in: "stars", wantErr: true},
		{in: "stars:", wantErr: true},
		{in: "1st:i32", wantErr: true},
		{in: ":i32", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseField(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEditionSnippetCompiles(t *testing.T) {
	e := edition{
		Ident:  "MarioPartyJamboree",
		Label:  `Mario Party "Jamboree"`,
		Fields: []metadata.Field{{Name: "player_name", Type: "String"}, {Name: "stars", Type: "i32"}},
	}

	reg, err := compiler.Compile("snippet", []byte(e.snippet("MarioPartyData")))
	require.NoError(t, err)

	svc, err := inputschema.NewService(reg, "MarioPartyData", nil)
	require.NoError(t, err)
	fields, ok := svc.GetInputSchema().Fields(`Mario Party "Jamboree"`)
	require.True(t, ok)
	assert.Equal(t, e.Fields, fields)
}

func TestInsertEdition(t *testing.T) {
	e := edition{Ident: "C", Label: "Edition C", Fields: []metadata.Field{{Name: "score", Type: "i32"}}}

	tests := []struct {
		name string
		src  string
	}{
		{"no trailing comma", "enum Root {\n    A(A),\n    B(B)\n}\nstruct A { x: i32 }\n"},
		{"trailing comma", "enum Root {\n    A(A),\n    B(B),\n}\n"},
		{"empty enum", "enum Root {}\n"},
		{"braces in strings and comments", "pub enum Root {\n    // } not the end\n    /* { */ #[serde(rename = \"}{\")]\n    A(A)\n}\n"},
		{"root not first", "struct B { y: i32 }\n#[serde(tag = \"game\")]\npub enum Root { B(B) }\nstruct A { x: i32 }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := insertEdition([]byte(tt.src), "Root", e)
			require.NoError(t, err)

			reg, err := compiler.Compile("out", out)
			require.NoError(t, err, string(out))

			root, ok := reg.MustDescribe("Root").AsEnum()
			require.True(t, ok)
			last := root.Variants[len(root.Variants)-1]
			assert.Equal(t, "Edition C", last.Name)
			assert.Equal(t, "C", last.Type)
			require.NotNil(t, last.Nested)
			assert.Equal(t, e.Fields, last.Nested.Fields)
		})
	}
}

func TestInsertEditionErrors(t *testing.T) {
	e := edition{Ident: "C", Label: "C", Fields: []metadata.Field{{Name: "x", Type: "i32"}}}

	_, err := insertEdition([]byte("enum Other { A(A) }"), "Root", e)
	assert.ErrorContains(t, err, "enum Root not found")

	_, err = insertEdition([]byte("enum Root { A(A)"), "Root", e)
	assert.ErrorContains(t, err, "missing closing brace")

	_, err = insertEdition([]byte("enum RootData { A(A) }"), "Root", e)
	assert.ErrorContains(t, err, "enum Root not found")
}

func TestScaffoldPrintsSnippet(t *testing.T) {
	out, _, err := execute(t, "scaffold", "edition", "MarioPartyJamboree",
		"--label", "Mario Party Jamboree",
		"--field", "player_name:String",
		"--field", "stars:i32",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "pub struct MarioPartyJamboree {\n    pub player_name: String,\n    pub stars: i32\n}")
	assert.Contains(t, out, "pub enum MarioPartyData {\n    #[serde(rename = \"Mario Party Jamboree\")]\n    MarioPartyJamboree(Vec<MarioPartyJamboree>)\n}")
}

func TestScaffoldWritesEdition(t *testing.T) {
	path := editionsFile(t)

	out, _, err := execute(t, "scaffold", "edition", "MarioPartyJamboree",
		"--label", "Mario Party Jamboree",
		"--field", "player_name:String",
		"--field", "stars:i32",
		"--write", path,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Added MarioPartyJamboree")

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	reg, err := compiler.Compile(path, src)
	require.NoError(t, err)

	svc, err := inputschema.NewService(reg, "MarioPartyData", nil)
	require.NoError(t, err)
	labels := svc.GetInputSchema().Labels()
	require.Len(t, labels, 17)
	assert.Equal(t, "Mario Party Superstars", labels[15])
	assert.Equal(t, "Mario Party Jamboree", labels[16])
}

func TestScaffoldRejectsDuplicateWithoutWriting(t *testing.T) {
	path := editionsFile(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, errOut, err := execute(t, "scaffold", "edition", "MarioPartyDS",
		"--field", "stars:i32",
		"--write", path,
	)
	require.Error(t, err)
	assert.Contains(t, errOut, "DCL201")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after), "file was modified")
}

func TestScaffoldValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad ident", []string{"scaffold", "edition", "Mario-Party", "--field", "x:i32"}, "invalid type name"},
		{"bad field", []string{"scaffold", "edition", "M", "--field", "x"}, "want name:type"},
		{"bad root", []string{"scaffold", "edition", "M", "--field", "x:i32", "--root", "Not A Root"}, "invalid root union name"},
		{"missing file", []string{"scaffold", "edition", "M", "--field", "x:i32", "--write", "/nonexistent/x.rs.decl"}, "no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScaffoldRequiresFieldsWithoutTerminal(t *testing.T) {
	cmd := newScaffoldEditionCommand(NewGlobalOptions(), &scaffoldOptions{
		interactive: func() bool { return false },
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"MarioPartyJamboree"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one --field is required")
}
