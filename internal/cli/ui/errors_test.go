package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "type not found",
				Problem: "Cannot find type 'Nope'.",
			},
			contains: []string{"❌", "TYPE NOT FOUND: Cannot find type 'Nope'.", "   Cannot find type 'Nope'."},
		},
		{
			name: "suggestions",
			opts: ErrorOptions{
				Problem:     "Unknown edition",
				Suggestions: []string{"MarioParty2", "MarioParty3"},
			},
			contains: []string{"Did you mean: MarioParty2, MarioParty3?"},
		},
		{
			name: "help commands",
			opts: ErrorOptions{
				Problem:      "Declaration check failed",
				HelpCommands: []string{"Check again: partytracker check editions.rs.decl"},
			},
			contains: []string{"→ Check again: partytracker check editions.rs.decl"},
		},
		{
			name:     "warning",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "Static directory missing"},
			contains: []string{"⚠️", "Static directory missing"},
			excludes: []string{"❌"},
		},
		{
			name:     "info",
			opts:     ErrorOptions{Level: ErrorLevelInfo, Problem: "Using built-in editions"},
			contains: []string{"ℹ️", "Using built-in editions"},
		},
		{
			name: "consequence",
			opts: ErrorOptions{
				Context:     "check failed",
				Problem:     "bad.rs.decl has 2 declaration error(s).",
				Consequence: "The server refuses to start",
			},
			contains: []string{"bad.rs.decl has 2 declaration error(s).", "The server refuses to start"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			result := FormatError(tt.opts)

			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("FormatError() missing %q\nGot: %q", want, result)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(result, unwanted) {
					t.Errorf("FormatError() unexpectedly contains %q", unwanted)
				}
			}
		})
	}
}

func TestFormatErrorWithoutContextHasSingleProblemLine(t *testing.T) {
	result := FormatError(ErrorOptions{Problem: "once", NoColor: true})
	if strings.Count(result, "once") != 1 {
		t.Errorf("expected problem once, got %q", result)
	}
}

func TestTypeNotFoundError(t *testing.T) {
	result := TypeNotFoundError("MarioPrty2", []string{"MarioParty2"}, true)

	for _, want := range []string{
		"TYPE NOT FOUND",
		"Cannot find type 'MarioPrty2'.",
		"Did you mean: MarioParty2?",
		"See all types: partytracker describe",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("TypeNotFoundError() missing %q", want)
		}
	}
}

func TestTypeNotFoundErrorWithoutSuggestions(t *testing.T) {
	result := TypeNotFoundError("Zelda", nil, true)
	if strings.Contains(result, "Did you mean") {
		t.Errorf("unexpected suggestion line in %q", result)
	}
}

func TestCheckFailedError(t *testing.T) {
	result := CheckFailedError("bad.rs.decl", 3, true)

	for _, want := range []string{
		"CHECK FAILED",
		"bad.rs.decl has 3 declaration error(s).",
		"partytracker check --format json bad.rs.decl",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("CheckFailedError() missing %q", want)
		}
	}
}

func TestConfigError(t *testing.T) {
	result := ConfigError("server.port: must be at most 65535", true)
	if !strings.Contains(result, "CONFIGURATION ERROR") || !strings.Contains(result, "server.port") {
		t.Errorf("ConfigError() = %q", result)
	}
}

func TestWarning(t *testing.T) {
	result := Warning("static dir not found", true)
	if !strings.HasPrefix(result, "⚠️ static dir not found") {
		t.Errorf("Warning() = %q", result)
	}
}

func TestSuccess(t *testing.T) {
	if got := FormatSuccess("done", true); got != "✓ done" {
		t.Errorf("FormatSuccess() = %q", got)
	}

	var buf bytes.Buffer
	WriteSuccess(&buf, "written", true)
	if buf.String() != "✓ written\n" {
		t.Errorf("WriteSuccess() = %q", buf.String())
	}

	buf.Reset()
	WriteError(&buf, ErrorOptions{Problem: "boom", NoColor: true})
	if !strings.Contains(buf.String(), "❌ boom") {
		t.Errorf("WriteError() = %q", buf.String())
	}
}
