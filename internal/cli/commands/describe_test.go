package commands

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partytracker/partytracker/runtime/metadata"
)

func TestDescribeList(t *testing.T) {
	path := writeFile(t, "games.rs.decl", gamesDecl)

	out, _, err := execute(t, "describe", "--schema", path, "--root", "GameData")
	require.NoError(t, err)

	want := "" +
		"NAME      KIND    MEMBERS\n" +
		"────────  ──────  ───────\n" +
		"Chess     record  2\n" +
		"Go        record  2\n" +
		"GameData  enum    2\n"
	assert.Equal(t, want, out)
}

func TestDescribeListJSON(t *testing.T) {
	out, _, err := execute(t, "describe", "-f", "json")
	require.NoError(t, err)

	var types []metadata.TypeSummary
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	require.Len(t, types, 17)
	assert.Equal(t, metadata.TypeSummary{Name: "MarioParty", Kind: metadata.KindFieldList}, types[0])
	assert.Equal(t, metadata.TypeSummary{Name: "MarioPartyData", Kind: metadata.KindEnum}, types[16])
}

func TestDescribeUnionTree(t *testing.T) {
	path := writeFile(t, "games.rs.decl", gamesDecl)

	out, _, err := execute(t, "describe", "GameData", "--schema", path, "--root", "GameData")
	require.NoError(t, err)

	want := "" +
		"GameData (enum)\n" +
		"├── Chess → Chess\n" +
		"│   ├── winner String\n" +
		"│   └── moves u32\n" +
		"└── Go (19x19) → Go\n" +
		"    ├── winner String\n" +
		"    └── captures u32\n"
	assert.Equal(t, want, out)
}

func TestDescribeRecordJSON(t *testing.T) {
	out, _, err := execute(t, "describe", "MarioPartyDS", "--format", "json")
	require.NoError(t, err)

	var data metadata.ObjectData
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, metadata.KindFieldList, data.Kind)
	assert.Equal(t, []metadata.Field{
		{Name: "player_name", Type: "String"},
		{Name: "character", Type: "String"},
		{Name: "stars", Type: "i32"},
		{Name: "coins", Type: "i32"},
	}, data.Fields)
}

func TestDescribeRecordYAML(t *testing.T) {
	out, _, err := execute(t, "describe", "MarioPartyIslandTour", "--format", "yaml")
	require.NoError(t, err)

	assert.Equal(t, "kind: fields\nfields:\n  - name: stickers_used\n    type: i32\n", out)
}

func TestDescribeUnknownType(t *testing.T) {
	out, errOut, err := execute(t, "describe", "MarioPartyDs")
	require.Error(t, err)

	var reported *reportedError
	assert.True(t, errors.As(err, &reported))
	assert.True(t, errors.Is(err, metadata.ErrUnknownType))
	assert.Empty(t, out)
	assert.Contains(t, errOut, "TYPE NOT FOUND")
	assert.Contains(t, errOut, "Did you mean: MarioPartyDS")
}

func TestSuggestTypesMergesWithoutDuplicates(t *testing.T) {
	reg := metadata.NewBuilder().
		Record("MarioParty2").
		Record("MarioParty3").
		Record("MarioPartyDS").
		MustBuild()

	assert.Equal(t, []string{"MarioPartyDS"}, suggestTypes(reg, "partyds"))
	assert.Equal(t, []string{"MarioParty2", "MarioParty3", "MarioPartyDS"}, suggestTypes(reg, "MarioPrty2"))
	assert.Equal(t, []string{"MarioParty2", "MarioParty3", "MarioPartyDS"}, suggestTypes(reg, "marioparty2"))
	assert.Empty(t, suggestTypes(reg, "Zelda"))
}
