package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	jsonLog bool
}

func newRootCmd(app *AppContext, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "melodium",
		Short:         "Run and inspect Mélodium dataflow programs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.jsonLog, "json-log", false, "emit logs as JSON")

	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
