package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/partytracker/partytracker/internal/cli/config"
	"github.com/partytracker/partytracker/internal/editions"
	"github.com/partytracker/partytracker/internal/inputschema"
	"github.com/partytracker/partytracker/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// GlobalOptions is state shared by every subcommand: the persistent flags
// and the viper instance they are bound to.
type GlobalOptions struct {
	ConfigFile string
	NoColor    bool

	// Logger overrides the logger built from configuration.
	Logger *zap.Logger

	viper *viper.Viper
}

// NewGlobalOptions returns options backed by a fresh viper instance with
// configuration defaults applied.
func NewGlobalOptions() *GlobalOptions {
	return &GlobalOptions{viper: config.New()}
}

// Load reads and validates configuration, including flag overrides.
func (o *GlobalOptions) Load() (*config.Config, error) {
	return config.LoadFrom(o.viper, o.ConfigFile)
}

// logger returns the override logger or one built from cfg.
func (o *GlobalOptions) logger(cfg *config.Config) (*zap.Logger, error) {
	if o.Logger != nil {
		return o.Logger, nil
	}
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

// service loads configuration and builds the input schema service for the
// configured declaration file and root.
func (o *GlobalOptions) service() (*inputschema.Service, *zap.Logger, error) {
	cfg, err := o.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := o.logger(cfg)
	if err != nil {
		return nil, nil, err
	}

	registry, err := editions.Load(cfg.Schema.File)
	if err != nil {
		return nil, nil, err
	}
	svc, err := inputschema.NewService(registry, cfg.Schema.Root, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, logger, nil
}

// reportedError marks a failure whose details were already written for the
// user. Execute prints nothing more for it.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewGlobalOptions())
}

func newRootCommand(opts *GlobalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "partytracker",
		Short: "Mario Party results tracker schema service",
		Long: color.CyanString(`partytracker - Mario Party results tracker

Serves the input schema the web client uses to build its entry forms.
The schema is generated from Rust-style declarations: one record per
edition and a tagged union that labels them.

Commands:
  • serve     run the HTTP API and web client
  • schema    print the flattened input schema
  • describe  inspect declared types
  • check     validate a declaration file
  • scaffold  add a new edition to a declaration file`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.NoColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "Config file (default ./partytracker.yml)")
	flags.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	flags.String("schema", "", "Declaration file (default: built-in edition table)")
	flags.String("root", "", "Tagged union to flatten into the input schema")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (json, console)")

	bindFlags(opts.viper, flags.Lookup, map[string]string{
		"schema.file": "schema",
		"schema.root": "root",
		"log.level":   "log-level",
		"log.format":  "log-format",
	})

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewSchemaCommand(opts))
	rootCmd.AddCommand(NewDescribeCommand(opts))
	rootCmd.AddCommand(NewCheckCommand(opts))
	rootCmd.AddCommand(NewScaffoldCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the partytracker version, Git commit, build date, and Go version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "partytracker version: ")
			fmt.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
