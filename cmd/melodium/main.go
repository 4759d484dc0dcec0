package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelflow/melodium-engine/internal/logger"
	"github.com/kestrelflow/melodium-engine/internal/ports"
)

func main() {
	baseLogger, err := logger.New(logger.Options{Level: "info", Component: "cli"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "melodium: failed to create logger: %v\n", err)
		os.Exit(1)
	}

	app, err := NewAppContext(baseLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "melodium: failed to initialise: %v\n", err)
		os.Exit(1)
	}

	flags := &rootFlags{}
	rootCmd := newRootCmd(app, flags)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := "info"
		if flags.verbose {
			level = "debug"
		}
		l, err := logger.New(logger.Options{Level: level, Component: "cli", JSON: flags.jsonLog})
		if err != nil {
			return err
		}
		app.Logger = l
		return nil
	}

	correlationID := ports.GenerateCorrelationID()
	ctx := ports.WithCorrelationID(context.Background(), correlationID)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
