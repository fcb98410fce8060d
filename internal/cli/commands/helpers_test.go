package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/partytracker/partytracker/internal/editions"
)

// execute runs the root command with args and captures its output
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	opts := NewGlobalOptions()
	opts.Logger = zap.NewNop()

	cmd := newRootCommand(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeFile writes content to name inside a fresh temp dir
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// editionsFile writes the built-in edition table to a temp file
func editionsFile(t *testing.T) string {
	t.Helper()
	return writeFile(t, editions.FileName, string(editions.Source()))
}

const gamesDecl = `
struct Chess { winner: String, moves: u32 }
struct Go { winner: String, captures: u32 }

enum GameData {
    #[serde(rename = "Chess")]
    Chess(Vec<Chess>),
    #[serde(rename = "Go (19x19)")]
    Go(Vec<Go>),
}
`
