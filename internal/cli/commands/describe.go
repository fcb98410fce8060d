package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/partytracker/partytracker/internal/cli/ui"
	"github.com/partytracker/partytracker/runtime/metadata"
)

// NewDescribeCommand creates the describe command
func NewDescribeCommand(opts *GlobalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe [type]",
		Short: "Inspect declared types",
		Long: `Without arguments, list every declared type with its kind.
With a type name, print its description: the fields of a record, or the
variants of a tagged union with the records they wrap.`,
		Example: `  partytracker describe
  partytracker describe MarioPartyData
  partytracker describe MarioPartyDS --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "tree", "json", "yaml"); err != nil {
				return err
			}
			svc, _, err := opts.service()
			if err != nil {
				return err
			}
			registry := svc.Registry()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				return writeTypeList(out, registry, format, opts.NoColor)
			}

			name := args[0]
			data, err := registry.Describe(name)
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.TypeNotFoundError(name, suggestTypes(registry, name), opts.NoColor))
				return &reportedError{err: err}
			}
			return writeObject(out, name, data, format, opts.NoColor)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tree", "Output format (tree, json, yaml)")

	return cmd
}

// suggestTypes combines substring matches with near misses by edit distance,
// substring matches first.
func suggestTypes(registry *metadata.Registry, name string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{
		registry.Suggest(name),
		ui.FindSimilar(name, registry.Names(), nil),
	} {
		for _, s := range group {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func writeTypeList(w io.Writer, registry *metadata.Registry, format string, noColor bool) error {
	types := registry.Types()
	switch format {
	case "json":
		return writeJSON(w, types)
	case "yaml":
		return writeYAML(w, types)
	}

	table := ui.NewTable(w, []string{"NAME", "KIND", "MEMBERS"}, &ui.TableOptions{NoColor: noColor})
	for _, t := range types {
		data := registry.MustDescribe(t.Name)
		members := len(data.Fields)
		if e, ok := data.AsEnum(); ok {
			members = len(e.Variants)
		}
		table.AddRow(t.Name, kindName(t.Kind), strconv.Itoa(members))
	}
	table.Render()
	return nil
}

func writeObject(w io.Writer, name string, data metadata.ObjectData, format string, noColor bool) error {
	switch format {
	case "json":
		return writeJSON(w, data)
	case "yaml":
		return writeYAML(w, data)
	}

	root := &ui.Node{Label: name, Detail: "(" + kindName(data.Kind) + ")"}
	addMembers(root, data)
	ui.RenderTree(w, root, noColor)
	return nil
}

// addMembers appends fields or variants of data under n. Variants that wrap
// a described type get that type's members one level down.
func addMembers(n *ui.Node, data metadata.ObjectData) {
	if e, ok := data.AsEnum(); ok {
		for _, v := range e.Variants {
			child := n.Add(v.Name, "→ "+v.Type)
			if v.Nested != nil {
				addMembers(child, *v.Nested)
			}
		}
		return
	}
	for _, f := range data.Fields {
		n.Add(f.Name, f.Type)
	}
}

func kindName(k metadata.ObjectKind) string {
	if k == metadata.KindEnum {
		return "enum"
	}
	return "record"
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
