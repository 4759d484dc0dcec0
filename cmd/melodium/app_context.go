package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/ports"
	"github.com/kestrelflow/melodium-engine/internal/stdlib"
)

// AppContext bundles the long-lived services every subcommand shares: the
// sealed descriptor registry and the logger, built once in main() and
// threaded through RunE closures rather than kept as globals.
type AppContext struct {
	Logger     ports.Logger
	Collection *descriptor.Collection
}

// NewAppContext builds the descriptor collection shared by every
// subcommand: the illustrative standard library registered and sealed once,
// before any command runs.
func NewAppContext(logger ports.Logger) (*AppContext, error) {
	collection := descriptor.NewCollection()
	if err := stdlib.Register(collection); err != nil {
		return nil, err
	}
	collection.Seal()

	return &AppContext{
		Logger:     logger,
		Collection: collection,
	}, nil
}

// CommandContext returns the command's context (falling back to
// Background) together with a component-scoped logger.
func (a *AppContext) CommandContext(cmd *cobra.Command, component string) (context.Context, ports.Logger) {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	return ctx, a.LoggerFor(component)
}

// LoggerFor derives a child logger scoped to component.
func (a *AppContext) LoggerFor(component string) ports.Logger {
	if a == nil || a.Logger == nil {
		return nil
	}
	return a.Logger.With("component", component)
}
