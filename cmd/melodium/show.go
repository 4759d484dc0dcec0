package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/fixture"
)

func newShowCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <identifier>",
		Short: "Print a registered descriptor and its transitive uses closure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, app, args[0])
		},
	}
	return cmd
}

func runShow(cmd *cobra.Command, app *AppContext, raw string) error {
	id, err := fixture.ParseIdentifier(raw)
	if err != nil {
		return fmt.Errorf("melodium: %w", err)
	}

	entry, ok := app.Collection.Lookup(id)
	if !ok {
		return fmt.Errorf("melodium: no descriptor registered for %s", id)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  (%s)\n", id.String(), entry.Kind)
	if doc, ok := describedEntry(entry); ok && doc != "" {
		fmt.Fprintf(w, "  %s\n", doc)
	}

	fmt.Fprintln(w, "\nuses closure:")
	for _, used := range app.Collection.Uses(id) {
		fmt.Fprintf(w, "  %s\n", used.String())
	}

	return nil
}

func describedEntry(e descriptor.Entry) (string, bool) {
	switch e.Kind {
	case descriptor.EntryModel:
		return e.Model.ShortDescription(), true
	case descriptor.EntryTreatment:
		return e.Treatment.ShortDescription(), true
	case descriptor.EntryFunction:
		return e.Function.ShortDescription(), true
	case descriptor.EntryData:
		return e.Data.ShortDescription(), true
	case descriptor.EntryContext:
		return e.Context.Description, true
	default:
		return "", false
	}
}
