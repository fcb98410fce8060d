package commands

import (
	stderrors "errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/partytracker/partytracker/internal/cli/ui"
	"github.com/partytracker/partytracker/internal/compiler/errors"
	compiler "github.com/partytracker/partytracker/internal/compiler/metadata"
	"github.com/partytracker/partytracker/internal/inputschema"
	"github.com/partytracker/partytracker/runtime/metadata"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// fieldTypes are offered by the interactive prompt. Any type name is
// accepted from --field.
var fieldTypes = []string{"i32", "String", "u32", "bool", "f32"}

// edition is a record declaration plus the union arm that labels it
type edition struct {
	Ident  string
	Label  string
	Fields []metadata.Field
}

// record renders the record declaration in the edition table's style.
func (e edition) record() string {
	var b strings.Builder
	b.WriteString("#[derive(Deserialize, Clone, Debug)]\n")
	fmt.Fprintf(&b, "pub struct %s {\n", e.Ident)
	for i, f := range e.Fields {
		fmt.Fprintf(&b, "    pub %s: %s", f.Name, f.Type)
		if i < len(e.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// arm renders the union arm, indented for the body of the root enum.
func (e edition) arm() string {
	return fmt.Sprintf("    #[serde(rename = %s)]\n    %s(Vec<%s>)", strconv.Quote(e.Label), e.Ident, e.Ident)
}

// snippet renders a standalone file declaring the edition under root.
func (e edition) snippet(root string) string {
	return fmt.Sprintf("%s\n#[serde(tag = \"game\", content = \"player_data\")]\npub enum %s {\n%s\n}\n",
		e.record(), root, e.arm())
}

// parseField parses a --field value of the form name:type.
func parseField(s string) (metadata.Field, error) {
	name, typ, ok := strings.Cut(s, ":")
	name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
	if !ok || typ == "" {
		return metadata.Field{}, fmt.Errorf("invalid field %q: want name:type", s)
	}
	if !identPattern.MatchString(name) {
		return metadata.Field{}, fmt.Errorf("invalid field name %q", name)
	}
	return metadata.Field{Name: name, Type: typ}, nil
}

// insertEdition appends e's record to src and adds its arm as the last
// variant of the root enum.
func insertEdition(src []byte, root string, e edition) ([]byte, error) {
	text := string(src)

	decl := regexp.MustCompile(`\benum\s+` + regexp.QuoteMeta(root) + `\s*\{`)
	loc := decl.FindStringIndex(text)
	if loc == nil {
		return nil, fmt.Errorf("enum %s not found", root)
	}
	closing, err := matchingBrace(text, loc[1]-1)
	if err != nil {
		return nil, fmt.Errorf("enum %s: %w", root, err)
	}

	body := strings.TrimRight(text[:closing], " \t\r\n")
	if !strings.HasSuffix(body, ",") && !strings.HasSuffix(body, "{") {
		body += ","
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(e.arm())
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(text[closing:], " \t\r\n"))
	b.WriteString("\n\n")
	b.WriteString(e.record())
	return []byte(b.String()), nil
}

// matchingBrace returns the index of the brace closing the one at open,
// ignoring braces inside string literals and comments.
func matchingBrace(text string, open int) (int, error) {
	depth := 0
	for i := open; i < len(text); i++ {
		switch {
		case text[i] == '"':
			for i++; i < len(text) && text[i] != '"'; i++ {
				if text[i] == '\\' {
					i++
				}
			}
		case strings.HasPrefix(text[i:], "//"):
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return 0, stderrors.New("unterminated block comment")
			}
			i += end + 3
		case text[i] == '{':
			depth++
		case text[i] == '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, stderrors.New("missing closing brace")
}

// scaffoldOptions holds the flags of scaffold edition
type scaffoldOptions struct {
	label  string
	fields []string
	write  string

	// interactive reports whether prompting is possible.
	interactive func() bool
}

// NewScaffoldCommand creates the scaffold command
func NewScaffoldCommand(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Generate declaration boilerplate",
	}
	cmd.AddCommand(newScaffoldEditionCommand(opts, &scaffoldOptions{
		interactive: func() bool { return isatty.IsTerminal(os.Stdin.Fd()) },
	}))
	return cmd
}

func newScaffoldEditionCommand(opts *GlobalOptions, so *scaffoldOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edition <Ident>",
		Short: "Add a new edition record and its union arm",
		Long: `Render a record declaration and the arm that labels it in the root union.

The result is compiled before anything is written. Without --write the
declarations are printed; with --write they are added to the given file,
the arm as the last variant of the root enum and the record at the end.

Without any --field, and with a terminal on stdin, fields are prompted for.`,
		Example: `  partytracker scaffold edition MarioPartyJamboree --label "Mario Party Jamboree" \
      --field player_name:String --field stars:i32
  partytracker scaffold edition MarioPartyJamboree --write editions.rs.decl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ident := args[0]
			if !identPattern.MatchString(ident) {
				return fmt.Errorf("invalid type name %q", ident)
			}
			root := opts.viper.GetString("schema.root")
			if !identPattern.MatchString(root) {
				return fmt.Errorf("invalid root union name %q", root)
			}

			e := edition{Ident: ident, Label: so.label}
			for _, raw := range so.fields {
				f, err := parseField(raw)
				if err != nil {
					return err
				}
				e.Fields = append(e.Fields, f)
			}

			if len(e.Fields) == 0 {
				if !so.interactive() {
					return stderrors.New("at least one --field is required")
				}
				if err := promptEdition(&e); err != nil {
					return err
				}
			}
			if e.Label == "" {
				e.Label = ident
			}

			if so.write == "" {
				snippet := e.snippet(root)
				if err := validateEdition("<scaffold>", []byte(snippet), root, e); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), snippet)
				return nil
			}

			info, err := os.Stat(so.write)
			if err != nil {
				return err
			}
			src, err := os.ReadFile(so.write)
			if err != nil {
				return fmt.Errorf("read declarations: %w", err)
			}
			updated, err := insertEdition(src, root, e)
			if err != nil {
				return err
			}
			if err := validateEdition(so.write, updated, root, e); err != nil {
				var list errors.ErrorList
				if stderrors.As(err, &list) {
					fmt.Fprint(cmd.ErrOrStderr(), errors.FormatErrorList(list))
					return &reportedError{err: err}
				}
				return err
			}
			if err := os.WriteFile(so.write, updated, info.Mode().Perm()); err != nil {
				return err
			}

			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Added %s (%q) to %s", ident, e.Label, so.write), opts.NoColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&so.label, "label", "", "Label shown to users (default: the type name)")
	cmd.Flags().StringArrayVar(&so.fields, "field", nil, "Field as name:type (repeatable)")
	cmd.Flags().StringVarP(&so.write, "write", "w", "", "Add the edition to this declaration file")

	return cmd
}

// validateEdition compiles src and checks that the edition appears in the
// flattened schema with exactly its fields.
func validateEdition(filename string, src []byte, root string, e edition) error {
	registry, err := compiler.Compile(filename, src)
	if err != nil {
		return err
	}
	svc, err := inputschema.NewService(registry, root, nil)
	if err != nil {
		return err
	}
	fields, ok := svc.GetInputSchema().Fields(e.Label)
	if !ok || len(fields) != len(e.Fields) {
		return fmt.Errorf("edition %q did not produce the expected schema entry", e.Label)
	}
	return nil
}

// promptEdition asks for the label and fields of e.
func promptEdition(e *edition) error {
	if e.Label == "" {
		prompt := &survey.Input{
			Message: "Label:",
			Default: e.Ident,
		}
		if err := survey.AskOne(prompt, &e.Label, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	for {
		var name string
		prompt := &survey.Input{
			Message: "Field name (empty to finish):",
		}
		if err := survey.AskOne(prompt, &name, survey.WithValidator(optionalIdent)); err != nil {
			return err
		}
		if name == "" {
			if len(e.Fields) == 0 {
				return stderrors.New("an edition needs at least one field")
			}
			return nil
		}

		var typ string
		typePrompt := &survey.Select{
			Message: fmt.Sprintf("Type of %s:", name),
			Options: fieldTypes,
			Default: "i32",
		}
		if err := survey.AskOne(typePrompt, &typ); err != nil {
			return err
		}
		e.Fields = append(e.Fields, metadata.Field{Name: name, Type: typ})
	}
}

func optionalIdent(ans interface{}) error {
	s, _ := ans.(string)
	if s != "" && !identPattern.MatchString(s) {
		return fmt.Errorf("%q is not a valid field name", s)
	}
	return nil
}
