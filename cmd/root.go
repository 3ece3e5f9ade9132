package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/mdschema/internal/config"
	"github.com/kyleking/mdschema/internal/errors"
	"github.com/kyleking/mdschema/internal/logging"
)

// Build information, set with -ldflags
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

type contextKey string

const configKey contextKey = "config"

// NewRootCommand assembles the command tree
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "mdschema",
		Usage: "Derive a relational schema from a markdown heading outline",
		Description: `mdschema reads markdown documents whose headings look like '## name (type)'
followed by '- key: value' property lines. Every heading becomes a record;
records sharing a type become a table, nesting becomes parent foreign keys,
and '{name}' values become references to other records.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		Commands: []*cli.Command{
			ConvertCommand(),
			InspectCommand(),
			ConfigCommand(),
		},
	}
}

// Execute runs the command line
func Execute(ctx context.Context, args []string) error {
	return NewRootCommand().Run(ctx, args)
}

// PrintError writes err and any suggestions attached to it
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	suggestions := errors.SuggestionsOf(err)
	if len(suggestions) == 0 {
		return
	}

	fmt.Fprintln(w, "\nSuggestions:")

	for _, s := range suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}

// ExitCode maps err to a process exit status. Usage problems exit 2.
func ExitCode(err error) int {
	switch errors.GetType(err) {
	case errors.ErrTypeValidation:
		return 2
	default:
		return 1
	}
}

// withConfig stores cfg for the rest of the command
func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey).(*config.Config)
	return cfg
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log every pipeline stage",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug output",
		},
	}
}

func schemaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "unique-depth",
			Usage: "Never merge records at or above this heading depth (overrides front matter)",
		},
		&cli.StringFlag{
			Name:  "id-generator",
			Usage: "Identifier generator: random, seeded, sequential",
		},
		&cli.StringFlag{
			Name:  "seed",
			Usage: "Seed for the seeded identifier generator",
		},
	}
}

// flagOverrides collects the configuration flags the user actually set
func flagOverrides(cmd *cli.Command) map[string]interface{} {
	overrides := map[string]interface{}{}

	for _, name := range []string{"id-generator", "seed", "format", "log-level"} {
		if cmd.IsSet(name) {
			overrides[name] = cmd.String(name)
		}
	}

	for _, name := range []string{"verbose", "debug"} {
		if cmd.IsSet(name) {
			overrides[name] = cmd.Bool(name)
		}
	}

	if cmd.IsSet("indent") {
		overrides["indent"] = int(cmd.Int("indent"))
	}

	return overrides
}

// uniqueDepthFlag returns the --unique-depth override, if given
func uniqueDepthFlag(cmd *cli.Command) (*int, error) {
	if !cmd.IsSet("unique-depth") {
		return nil, nil
	}

	depth := int(cmd.Int("unique-depth"))
	if depth < 0 {
		return nil, errors.Newf(errors.ErrTypeValidation, "unique depth must not be negative: %d", depth)
	}

	return &depth, nil
}

// loadConfig resolves configuration for a command and initializes logging.
// A configuration already in ctx is used as is.
func loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, *config.Config, error) {
	if cfg := getConfigFromContext(ctx); cfg != nil {
		return ctx, cfg, nil
	}

	cfg, err := config.LoadConfigWithOverrides(flagOverrides(cmd))
	if err != nil {
		return ctx, nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to load configuration").
			WithSuggestion("Run 'mdschema config' to inspect the active configuration")
	}

	if cfg.Debug.Verbose || cfg.Debug.Enabled {
		cfg.Logging.Level = "debug"
	}

	if err := logging.InitializeLogger(cfg.Logging); err != nil {
		logging.SetupFallbackLogger()
		logging.GetLogger().WithError(err).Warn("falling back to stderr logging")
	}

	return withConfig(ctx, cfg), cfg, nil
}
