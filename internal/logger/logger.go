// Package logger adapts github.com/charmbracelet/log to the engine's
// ports.Logger contract, enriching every entry with correlation id, layer,
// and component fields the way genesis/world/builder expect to log.
package logger

import (
	"context"
	"io"
	"os"

	cblog "github.com/charmbracelet/log"

	"github.com/kestrelflow/melodium-engine/internal/ports"
)

// Options configures a Logger at construction time.
type Options struct {
	Writer    io.Writer
	Level     string
	Layer     string
	Component string
	JSON      bool
}

// Logger implements ports.Logger using charmbracelet/log.
type Logger struct {
	logger *cblog.Logger
	fields []interface{}
	layer  string
}

// New creates a Logger adapter with the supplied options.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	cbOpts := cblog.Options{
		ReportTimestamp: true,
	}
	if opts.JSON {
		cbOpts.Formatter = cblog.JSONFormatter
	}

	l := cblog.NewWithOptions(writer, cbOpts)

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(opts.Level)
		if err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	layer := opts.Layer
	if layer == "" {
		layer = "engine"
	}
	component := opts.Component
	if component == "" {
		component = "world"
	}

	return &Logger{
		logger: l,
		fields: []interface{}{"layer", layer, "component", component},
		layer:  layer,
	}, nil
}

func (l *Logger) withCorrelation(ctx context.Context, fields []interface{}) []interface{} {
	if id := ports.GetCorrelationID(ctx); id != "" {
		fields = append(fields, "correlation_id", id)
	}
	return fields
}

// Debug records a debug-level entry.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.logger.Debug(msg, l.withCorrelation(ctx, append(append([]interface{}{}, l.fields...), fields...))...)
}

// Info records an info-level entry.
func (l *Logger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.logger.Info(msg, l.withCorrelation(ctx, append(append([]interface{}{}, l.fields...), fields...))...)
}

// Warn records a warn-level entry.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...interface{}) {
	l.logger.Warn(msg, l.withCorrelation(ctx, append(append([]interface{}{}, l.fields...), fields...))...)
}

// Error records an error-level entry.
func (l *Logger) Error(ctx context.Context, msg string, fields ...interface{}) {
	l.logger.Error(msg, l.withCorrelation(ctx, append(append([]interface{}{}, l.fields...), fields...))...)
}

// With returns a derived Logger carrying additional persistent fields.
func (l *Logger) With(fields ...interface{}) ports.Logger {
	return &Logger{
		logger: l.logger,
		fields: append(append([]interface{}{}, l.fields...), fields...),
		layer:  l.layer,
	}
}
