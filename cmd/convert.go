package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/urfave/cli/v3"

	"github.com/kyleking/mdschema/internal/convert"
	"github.com/kyleking/mdschema/internal/errors"
	"github.com/kyleking/mdschema/internal/logging"
)

func ConvertCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Destination file; the extension picks the format. Defaults to stdout",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: sql, ts, json, md, html",
		},
		&cli.IntFlag{
			Name:  "indent",
			Usage: "Spaces per indent level",
		},
	}
	flags = append(flags, schemaFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:  "convert",
		Usage: "Convert documents to SQL, TypeScript, JSON, markdown or HTML",
		Description: `Read one or more documents (.md, .markdown, .txt, .json, .html) and write
the synthesized schema (sql, ts) or the record tree (json, md, html).
Multiple sources are joined in argument order before conversion.`,
		ArgsUsage: " <source>...",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New(errors.ErrTypeValidation, "at least one source document is required").
					WithSuggestion("Usage: mdschema convert notes.md -o schema.sql")
			}

			depth, err := uniqueDepthFlag(cmd)
			if err != nil {
				return err
			}

			ctx, _, err = loadConfig(ctx, cmd)
			if err != nil {
				return err
			}

			req := convert.Request{
				Sources:     cmd.Args().Slice(),
				Destination: cmd.String("out"),
				Format:      cmd.String("format"),
				UniqueDepth: depth,
			}

			return RunConvertWithService(ctx, os.Stdout, req, nil)
		},
	}
}

// RunConvertWithService converts req. A nil service is built from the
// configuration in ctx.
func RunConvertWithService(ctx context.Context, w io.Writer, req convert.Request, svc *convert.Service) error {
	if svc == nil {
		cfg := getConfigFromContext(ctx)
		if cfg == nil {
			return errors.NewConfigError("failed to load configuration", "")
		}

		var err error

		svc, err = convert.NewService(cfg, logging.GetLogger())
		if err != nil {
			return err
		}
	}

	svc.WithOutput(w)

	// output on stdout would be corrupted by the spinner
	stop := func() {}
	if req.Destination != "" {
		stop = startSpinner("Converting " + fmt.Sprint(len(req.Sources)) + " document(s)")
	}

	result, err := svc.Run(ctx, req)

	stop()

	if err != nil {
		return err
	}

	if req.Destination != "" {
		fmt.Fprintf(w, "Wrote %s (%s, %d bytes)\n", result.Destination, result.Format, result.Bytes)
	}

	return nil
}

// startSpinner shows progress on an interactive terminal and returns the
// function that clears it
func startSpinner(message string) func() {
	if !term.FromEnv().IsTerminalOutput() {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(os.Stderr),
		spinner.WithSuffix(" "+message))
	s.Start()

	return s.Stop
}
