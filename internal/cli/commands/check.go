package commands

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/partytracker/partytracker/internal/cli/ui"
	"github.com/partytracker/partytracker/internal/compiler/errors"
	compiler "github.com/partytracker/partytracker/internal/compiler/metadata"
	"github.com/partytracker/partytracker/internal/inputschema"
	"github.com/partytracker/partytracker/runtime/metadata"
)

// checkReport is the --format json output of check
type checkReport struct {
	File          string           `json:"file"`
	Valid         bool             `json:"valid"`
	Declarations  int              `json:"declarations"`
	Root          string           `json:"root,omitempty"`
	SchemaEntries int              `json:"schema_entries,omitempty"`
	Errors        errors.ErrorList `json:"errors"`
}

// NewCheckCommand creates the check command
func NewCheckCommand(opts *GlobalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a declaration file",
		Long: `Parse a declaration file and generate its metadata without starting the
server. Every error is reported with its file, line, column, and the
surrounding source. The command exits non-zero when the file is invalid.

When the file declares the configured root union (--root), the number of
input schema entries it would produce is reported too.`,
		Example: `  partytracker check editions.rs.decl
  partytracker check --format json editions.rs.decl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "text", "json"); err != nil {
				return err
			}

			file := args[0]
			src, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read declarations: %w", err)
			}

			report := checkReport{File: file, Errors: errors.ErrorList{}}
			registry, err := compiler.Compile(file, src)
			if err != nil {
				var list errors.ErrorList
				if !stderrors.As(err, &list) {
					return err
				}
				report.Errors = list
			} else {
				report.Valid = true
				report.Declarations = registry.Len()
				if err := reportSchema(&report, registry, opts.viper.GetString("schema.root")); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				writeCheckText(out, report, opts.NoColor)
			}

			if !report.Valid {
				if format == "text" {
					fmt.Fprint(cmd.ErrOrStderr(), ui.CheckFailedError(file, len(report.Errors), opts.NoColor))
				}
				return &reportedError{err: fmt.Errorf("%s: %d declaration error(s)", file, len(report.Errors))}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")

	return cmd
}

// reportSchema fills the schema fields of report when registry declares
// root as a tagged union.
func reportSchema(report *checkReport, registry *metadata.Registry, root string) error {
	data, err := registry.Describe(root)
	if err != nil || !data.IsEnum() {
		return nil
	}
	svc, err := inputschema.NewService(registry, root, nil)
	if err != nil {
		return err
	}
	report.Root = root
	report.SchemaEntries = svc.GetInputSchema().Len()
	return nil
}

func writeCheckText(w io.Writer, report checkReport, noColor bool) {
	if !report.Valid {
		fmt.Fprint(w, errors.FormatErrorList(report.Errors))
		return
	}

	ui.WriteSuccess(w, fmt.Sprintf("%s is valid", report.File), noColor)
	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Declarations", fmt.Sprint(report.Declarations))
	if report.Root != "" {
		kv.AddRow("Root", report.Root)
		kv.AddRow("Schema entries", fmt.Sprint(report.SchemaEntries))
	}
	kv.Render()
}
