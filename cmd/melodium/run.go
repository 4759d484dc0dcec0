package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kestrelflow/melodium-engine/internal/design"
	"github.com/kestrelflow/melodium-engine/internal/fixture"
	"github.com/kestrelflow/melodium-engine/internal/value"
	"github.com/kestrelflow/melodium-engine/internal/world"
)

type runOptions struct {
	params []string
}

func newRunCmd(app *AppContext) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <fixture.yaml>",
		Short: "Load a fixture, run genesis, and drive the program to termination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, app, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.params, "set", nil, "entrypoint parameter as name=value (repeatable)")

	return cmd
}

func parseParams(assignments []string) (map[string]value.Raw, error) {
	params := make(map[string]value.Raw, len(assignments))
	for _, a := range assignments {
		name, raw, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", a)
		}
		params[name] = value.Str(raw)
	}
	return params, nil
}

func runRun(cmd *cobra.Command, app *AppContext, path string, opts *runOptions) error {
	ctx, logger := app.CommandContext(cmd, "command.run")

	registry := design.NewRegistry()
	graph, entrypoint, err := fixture.Load(path, app.Collection)
	if err != nil {
		return fmt.Errorf("melodium: %w", err)
	}
	registry.RegisterTreatment(entrypoint, graph)

	params, err := parseParams(opts.params)
	if err != nil {
		return fmt.Errorf("melodium: %w", err)
	}

	w := world.New(app.Collection, registry, nil, logger)

	errs := w.Genesis(ctx, entrypoint, params)
	if !errs.Empty() {
		for _, e := range errs.All() {
			fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
		}
		return fmt.Errorf("melodium: genesis reported %d error(s)", len(errs.All()))
	}

	if logger != nil {
		logger.Info(ctx, "genesis complete, entering live", "entrypoint", entrypoint.String())
	}

	liveCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := w.Live(liveCtx); err != nil {
		return fmt.Errorf("melodium: %w", err)
	}
	cancel()

	if err := w.End(ctx); err != nil {
		return fmt.Errorf("melodium: %w", err)
	}

	return printTrackSummary(cmd, w.Tracks())
}

func printTrackSummary(cmd *cobra.Command, tracks []world.Track) error {
	var failed int
	for _, t := range tracks {
		if !t.AllOk() {
			failed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d track(s) completed, %d not all ok\n", len(tracks), failed)
	if failed > 0 {
		return fmt.Errorf("melodium: %d track(s) reported a failed task", failed)
	}
	return nil
}
