package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/melodium-engine/internal/ports"
)

type logEntry map[string]any

func TestLoggerInfoWithFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", JSON: true, Writer: buf, Layer: "world", Component: "genesis"})
	require.NoError(t, err)

	derived := log.With("track_id", 7)
	derived.Info(context.Background(), "starting genesis")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "starting genesis", entry["msg"])
	require.Equal(t, "world", entry["layer"])
	require.Equal(t, "genesis", entry["component"])
	require.Equal(t, float64(7), entry["track_id"])
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", JSON: true, Writer: buf})
	require.NoError(t, err)

	log.Debug(context.Background(), "this should not appear")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerIncludesCorrelationID(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", JSON: true, Writer: buf})
	require.NoError(t, err)

	ctx := ports.WithCorrelationID(context.Background(), "corr-123")
	log.Error(ctx, "failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "failed", entry["msg"])
	require.Equal(t, "corr-123", entry["correlation_id"])
}
