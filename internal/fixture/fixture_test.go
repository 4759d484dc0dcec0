package fixture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/stdlib"
)

func registerCollection(t *testing.T) *descriptor.Collection {
	c := descriptor.NewCollection()
	require.NoError(t, c.Register(descriptor.Entry{Kind: descriptor.EntryModel, Model: stdlib.EngineDescriptor()}))
	require.NoError(t, c.Register(descriptor.Entry{Kind: descriptor.EntryTreatment, Treatment: stdlib.ReadyTreatmentDescriptor("engine")}))
	require.NoError(t, c.Register(descriptor.Entry{Kind: descriptor.EntryTreatment, Treatment: stdlib.CountDescriptor()}))

	host := &descriptor.TreatmentDescriptor{ID: descriptor.NewIdentifier("app", nil, "Main", ""), Build: descriptor.BuildDesigned}
	require.NoError(t, c.Register(descriptor.Entry{Kind: descriptor.EntryTreatment, Treatment: host}))
	return c
}

const sampleDocument = `
entrypoint: app/Main
models:
  - name: engine
    descriptor: std/engine/Engine
treatments:
  - name: ready
    descriptor: std/engine/Ready
    model_bindings:
      engine: engine
  - name: tally
    descriptor: std/ops/Count
connections:
  - from: { treatment: ready, port: trigger }
    to: { self: true, port: fired }
`

func TestParse_DecodesVariableAndLiteralParams(t *testing.T) {
	doc, err := Parse([]byte(`
entrypoint: app/Main
treatments:
  - name: t
    descriptor: app/T
    params:
      count: 3
      label: hello
      ref: $upstream
`))
	require.NoError(t, err)
	require.Len(t, doc.Treatments, 1)

	p := doc.Treatments[0].Params
	require.Equal(t, int(3), p["count"].Literal)
	require.Equal(t, "hello", p["label"].Literal)
	require.True(t, p["ref"].IsVar)
	require.Equal(t, "upstream", p["ref"].Variable)
}

func TestBuild_ResolvesDescriptorsAndWiring(t *testing.T) {
	collection := registerCollection(t)
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)
	require.NoError(t, validatorInstance().Struct(doc))

	d, entrypoint, err := Build(doc, collection)
	require.NoError(t, err)
	require.Equal(t, "app", entrypoint.Package)
	require.Equal(t, "Main", entrypoint.Name)

	require.Contains(t, d.Models, "engine")
	require.Contains(t, d.Treatments, "ready")
	require.Contains(t, d.Treatments, "tally")
	require.Equal(t, "engine", d.Treatments["ready"].ModelBindings["engine"])
	require.Len(t, d.Connections, 1)
}

func TestBuild_UnknownDescriptorFails(t *testing.T) {
	collection := registerCollection(t)
	doc, err := Parse([]byte(`
entrypoint: app/Main
treatments:
  - name: t
    descriptor: app/NotRegistered
`))
	require.NoError(t, err)

	_, _, err = Build(doc, collection)
	require.Error(t, err)
}

func TestParseIdentifier_RoundTripsCanonicalForm(t *testing.T) {
	id, err := ParseIdentifier("std/ops/vec/Count@1.2.3")
	require.NoError(t, err)
	require.Equal(t, "std", id.Package)
	require.Equal(t, []string{"ops", "vec"}, id.Path)
	require.Equal(t, "Count", id.Name)
	require.Equal(t, "1.2.3", id.Version)
}
