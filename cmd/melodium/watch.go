package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kestrelflow/melodium-engine/internal/dashboard"
	"github.com/kestrelflow/melodium-engine/internal/design"
	"github.com/kestrelflow/melodium-engine/internal/fixture"
	"github.com/kestrelflow/melodium-engine/internal/ports"
	"github.com/kestrelflow/melodium-engine/internal/world"
)

type watchOptions struct {
	params   []string
	interval time.Duration
}

func newWatchCmd(app *AppContext) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <fixture.yaml>",
		Short: "Run a fixture while rendering a live dashboard of track activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, app, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.params, "set", nil, "entrypoint parameter as name=value (repeatable)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 250*time.Millisecond, "dashboard refresh interval")

	return cmd
}

func runWatch(cmd *cobra.Command, app *AppContext, path string, opts *watchOptions) error {
	ctx, logger := app.CommandContext(cmd, "command.watch")

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

	liveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	liveErrCh := make(chan error, 1)
	go func() {
		liveErrCh <- w.Live(liveCtx)
	}()

	// Only attach the bubbletea dashboard when stdout is an actual terminal;
	// redirected/piped output (CI logs, `watch > file`) falls back to plain
	// periodic log lines so the command still reports progress without
	// emitting raw ANSI escapes.
	var liveErr error
	if term.IsTerminal(int(os.Stdout.Fd())) {
		program := tea.NewProgram(dashboard.New(w, opts.interval), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			cancel()
			return fmt.Errorf("melodium: dashboard: %w", err)
		}
		cancel()
		liveErr = <-liveErrCh
	} else {
		liveErr = watchPlain(liveCtx, logger, w, opts.interval, liveErrCh)
		cancel()
	}

	if liveErr != nil {
		return fmt.Errorf("melodium: %w", liveErr)
	}

	return w.End(ctx)
}

// watchPlain reports world track activity through the logger on a fixed
// interval instead of a bubbletea dashboard, for non-interactive stdout. It
// blocks until w.Live has returned on done, draining that result for the
// caller so done is read exactly once.
func watchPlain(ctx context.Context, logger ports.Logger, w *world.World, interval time.Duration, done <-chan error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if logger != nil {
				logger.Info(ctx, "watch finished", "tracks", len(w.Tracks()))
			}
			return err
		case <-ticker.C:
			if logger == nil {
				continue
			}
			tracks := w.Tracks()
			ok := 0
			for _, t := range tracks {
				if t.AllOk() {
					ok++
				}
			}
			logger.Info(ctx, "watch tick", "tracks", len(tracks), "ok", ok)
		}
	}
}
