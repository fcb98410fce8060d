package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/partytracker/partytracker/internal/compiler/ast"
	"github.com/partytracker/partytracker/internal/compiler/parser"
)

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, err := parser.ParseString("test.rs.decl", src)
	require.NoError(t, err)
	return file
}
