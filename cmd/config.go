package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/mdschema/internal/config"
	"github.com/kyleking/mdschema/internal/errors"
)

func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:        "config",
		Usage:       "Display the active configuration",
		Description: `Show the current active configuration including all settings from file, environment variables, and command-line flags.`,
		Flags:       loggingFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, _, err := loadConfig(ctx, cmd)
			if err != nil {
				return err
			}

			return RunConfigWithConfig(os.Stdout, getConfigFromContext(ctx))
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing configuration file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return RunConfigInit(os.Stdout, cmd.Bool("force"))
				},
			},
		},
	}
}

// RunConfigWithConfig prints cfg in a readable layout
func RunConfigWithConfig(w io.Writer, cfg *config.Config) error {
	if cfg == nil {
		return errors.NewConfigError("failed to load configuration", "")
	}

	fmt.Fprintln(w, "====================")
	fmt.Fprintln(w, "Active Configuration:")
	fmt.Fprintf(w, "  File: %s\n", config.GetConfigPath())

	fmt.Fprintln(w, "\nSchema:")
	fmt.Fprintf(w, "  Unique Depth: %d\n", cfg.Schema.UniqueDepth)
	fmt.Fprintf(w, "  ID Generator: %s\n", cfg.Schema.IDGenerator)

	if cfg.Schema.IDGenerator == "seeded" {
		fmt.Fprintf(w, "  Seed: %q\n", cfg.Schema.Seed)
	}

	fmt.Fprintln(w, "\nOutput:")
	fmt.Fprintf(w, "  Default Format: %s\n", cfg.Output.DefaultFormat)
	fmt.Fprintf(w, "  Indent: %d\n", cfg.Output.Indent)
	fmt.Fprintf(w, "  Export Declarations: %t\n", cfg.Output.DeclarationExport)

	fmt.Fprintln(w, "\nLogging:")
	fmt.Fprintf(w, "  Level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  Format: %s\n", cfg.Logging.Format)
	fmt.Fprintf(w, "  Output: %s\n", cfg.Logging.Output)

	if cfg.Logging.Output == "file" {
		fmt.Fprintf(w, "  File: %s\n", cfg.Logging.File)
	}

	fmt.Fprintln(w, "\nDebug:")
	fmt.Fprintf(w, "  Enabled: %t\n", cfg.Debug.Enabled)
	fmt.Fprintf(w, "  Verbose: %t\n", cfg.Debug.Verbose)

	if cfg.Debug.Enabled {
		fmt.Fprintln(w, "\nRaw Configuration (JSON):")
		fmt.Fprintln(w, "==========================")

		jsonData, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}

		fmt.Fprintln(w, string(jsonData))
	}

	return nil
}

// RunConfigInit writes the default configuration unless a file exists
func RunConfigInit(w io.Writer, force bool) error {
	path := config.GetConfigPath()

	if _, err := os.Stat(path); err == nil && !force {
		return errors.Newf(errors.ErrTypeConfig, "configuration file already exists: %s", path).
			WithSuggestion("Pass --force to overwrite it")
	}

	if err := config.SaveConfig(config.DefaultConfig()); err != nil {
		return errors.Wrap(err, errors.ErrTypeFileSystem, "failed to write configuration")
	}

	fmt.Fprintf(w, "Wrote %s\n", path)

	return nil
}
