package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/partytracker/partytracker/internal/cli/ui"
	"github.com/partytracker/partytracker/internal/inputschema"
)

// NewSchemaCommand creates the schema command
func NewSchemaCommand(opts *GlobalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the flattened input schema",
		Long: `Print the input schema served at /api/input/schema: one entry per
labeled variant of the root union, with the fields of its record.

Formats:
  table  aligned label/field/type rows (default)
  json   the exact body the API serves, indented
  yaml   the same mapping as YAML`,
		Example: `  partytracker schema
  partytracker schema --format json
  partytracker schema --schema games.rs.decl --root GameData -f yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "table", "json", "yaml"); err != nil {
				return err
			}
			svc, _, err := opts.service()
			if err != nil {
				return err
			}
			return writeSchema(cmd.OutOrStdout(), svc.GetInputSchema(), format, opts.NoColor)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, yaml)")

	return cmd
}

func writeSchema(w io.Writer, schema *inputschema.InputSchema, format string, noColor bool) error {
	switch format {
	case "json":
		return writeJSON(w, schema)
	case "yaml":
		return writeYAML(w, schema)
	}

	ui.Header(w, fmt.Sprintf("%s (%d editions)", schema.Root(), schema.Len()), noColor)
	fmt.Fprintln(w)

	table := ui.NewTable(w, []string{"LABEL", "FIELD", "TYPE"}, &ui.TableOptions{NoColor: noColor})
	for _, entry := range schema.Entries() {
		if len(entry.Fields) == 0 {
			table.AddRow(entry.Label, "-", "-")
			continue
		}
		for i, field := range entry.Fields {
			label := ""
			if i == 0 {
				label = entry.Label
			}
			table.AddRow(label, field.Name, field.Type)
		}
	}
	table.Render()

	if skipped := schema.Skipped(); len(skipped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, ui.Warning(fmt.Sprintf("Variants without a record were skipped: %v", skipped), noColor))
	}
	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
