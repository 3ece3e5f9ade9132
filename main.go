package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/kyleking/mdschema/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx, os.Args); err != nil {
		cmd.PrintError(os.Stderr, err)
		stop()
		os.Exit(cmd.ExitCode(err))
	}
}
