package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/urfave/cli/v3"

	"github.com/kyleking/mdschema/internal/convert"
	"github.com/kyleking/mdschema/internal/errors"
	"github.com/kyleking/mdschema/internal/formatter"
	"github.com/kyleking/mdschema/internal/logging"
	"github.com/kyleking/mdschema/internal/schema"
)

const defaultTerminalWidth = 80

// InspectOptions controls what inspect prints
type InspectOptions struct {
	Sources     []string
	UniqueDepth *int
	Long        bool
	Identities  bool
}

// Terminal describes where inspect output goes
type Terminal struct {
	Out   io.Writer
	IsTTY bool
	Width int
}

func InspectCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:    "long",
			Aliases: []string{"l"},
			Usage:   "Show every column, key and row count",
		},
		&cli.BoolFlag{
			Name:  "identities",
			Usage: "Also list resolved identities and where they occur",
		},
	}
	flags = append(flags, schemaFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:        "inspect",
		Usage:       "Summarize the tables a document would produce",
		Description: `Parse and resolve documents, then describe the synthesized tables without writing any output file.`,
		ArgsUsage:   " <source>...",
		Flags:       flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New(errors.ErrTypeValidation, "at least one source document is required")
			}

			depth, err := uniqueDepthFlag(cmd)
			if err != nil {
				return err
			}

			ctx, _, err = loadConfig(ctx, cmd)
			if err != nil {
				return err
			}

			t := term.FromEnv()

			width, _, err := t.Size()
			if err != nil || width <= 0 {
				width = defaultTerminalWidth
			}

			opts := InspectOptions{
				Sources:     cmd.Args().Slice(),
				UniqueDepth: depth,
				Long:        cmd.Bool("long"),
				Identities:  cmd.Bool("identities"),
			}

			return RunInspectWithService(ctx, Terminal{Out: t.Out(), IsTTY: t.IsTerminalOutput(), Width: width}, opts, nil)
		},
	}
}

// RunInspectWithService prints the inspection. A nil service is built from
// the configuration in ctx.
func RunInspectWithService(ctx context.Context, out Terminal, opts InspectOptions, svc *convert.Service) error {
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

	doc, err := svc.Load(ctx, opts.Sources)
	if err != nil {
		return err
	}

	depth := svc.UniqueDepth(doc, opts.UniqueDepth)

	res, sch, err := svc.Analyze(ctx, doc, depth)
	if err != nil {
		return err
	}

	f := formatter.NewFormatter()

	if opts.Long {
		for i, t := range sch.Tables {
			if i > 0 {
				fmt.Fprintln(out.Out)
			}

			fmt.Fprintln(out.Out, f.FormatTable(t, formatter.FormatLong))
		}
	} else if err := printTables(out, sch); err != nil {
		return err
	}

	if opts.Identities {
		fmt.Fprintf(out.Out, "\nIdentities (unique depth %d):\n", depth)

		for _, ident := range res.Identities() {
			fmt.Fprintln(out.Out, "  "+f.FormatIdentity(ident))
		}
	}

	return nil
}

func printTables(out Terminal, sch *schema.Schema) error {
	tp := tableprinter.New(out.Out, out.IsTTY, out.Width)
	tp.AddHeader([]string{"TABLE", "TYPE", "COLUMNS", "ROWS", "PARENT"})

	for _, t := range sch.Tables {
		tp.AddField(t.Name)
		tp.AddField(t.Type)
		tp.AddField(strconv.Itoa(len(t.Columns)))
		tp.AddField(strconv.Itoa(len(t.Rows)))
		tp.AddField(formatter.ParentTable(t))
		tp.EndRow()
	}

	return tp.Render()
}
