package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/stdlib"
)

// newTestApp builds an AppContext whose collection carries the stdlib
// registration plus a Designed "host" treatment descriptor standing in for
// an entrypoint a fixture can target — fixture.Load resolves the
// entrypoint identifier against the collection, which normally happens
// once at program load time, ahead of any single run (spec.md §3's
// Collection "a referenced identifier is either already present or a
// resolution error at genesis").
func newTestApp(t *testing.T, host *descriptor.TreatmentDescriptor) *AppContext {
	t.Helper()
	collection := descriptor.NewCollection()
	require.NoError(t, stdlib.Register(collection))
	require.NoError(t, collection.Register(descriptor.Entry{Kind: descriptor.EntryTreatment, Treatment: host}))
	collection.Seal()
	return &AppContext{Collection: collection}
}

const readyFixture = `
entrypoint: test/run/Host
models:
  - name: engine
    descriptor: std/engine/Engine
treatments:
  - name: ready
    descriptor: std/engine/Ready
    model_bindings:
      engine: engine
connections:
  - from: {treatment: ready, port: trigger}
    to: {self: true, port: trigger}
`

func TestRunCommandCompletesAgainstEngineReadyFixture(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{
		ID:      descriptor.NewIdentifier("test", []string{"run"}, "Host", ""),
		Outputs: []descriptor.IO{{Name: "trigger", Type: descriptor.Simple(descriptor.Void), Flow: descriptor.FlowBlock}},
		Build:   descriptor.BuildDesigned,
	}
	app := newTestApp(t, host)

	path := filepath.Join(t.TempDir(), "ready.yaml")
	require.NoError(t, os.WriteFile(path, []byte(readyFixture), 0o644))

	cmd := newRunCmd(app)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "track(s) completed")
}

func TestRunCommandReportsGenesisErrorsForUnconnectedInput(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{
		ID:    descriptor.NewIdentifier("test", []string{"run"}, "Host", ""),
		Build: descriptor.BuildDesigned,
	}
	app := newTestApp(t, host)

	const missingConnectionFixture = `
entrypoint: test/run/Host
models:
  - name: engine
    descriptor: std/engine/Engine
treatments:
  - name: count
    descriptor: std/ops/Count
`
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(missingConnectionFixture), 0o644))

	cmd := newRunCmd(app)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{path})

	require.Error(t, cmd.Execute())
	require.Contains(t, buf.String(), "UNCONNECTED_INPUT")
}
