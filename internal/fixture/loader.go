package fixture

import (
	"fmt"
	"os"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/design"
	"github.com/kestrelflow/melodium-engine/internal/value"
)

// Load reads a fixture document from path, validates it, and builds the
// treatment design it describes against descriptors already registered in
// collection. The returned design is ready for design.Registry's
// RegisterTreatment, keyed by the returned entrypoint identifier — the same
// identifier a World's Genesis call expects.
func Load(path string, collection *descriptor.Collection) (*design.TreatmentDesign, descriptor.Identifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, descriptor.Identifier{}, fmt.Errorf("fixture: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, descriptor.Identifier{}, err
	}

	if err := validatorInstance().Struct(doc); err != nil {
		return nil, descriptor.Identifier{}, fmt.Errorf("fixture: %w", err)
	}

	return Build(doc, collection)
}

// Build constructs a treatment design from an already-parsed, already
// validated Document. Exposed separately from Load so callers that already
// hold a Document in memory (tests, generated fixtures) don't need to
// round-trip through disk.
func Build(doc *Document, collection *descriptor.Collection) (*design.TreatmentDesign, descriptor.Identifier, error) {
	entrypoint, err := ParseIdentifier(doc.Entrypoint)
	if err != nil {
		return nil, descriptor.Identifier{}, fmt.Errorf("fixture: entrypoint: %w", err)
	}

	host, ok := collection.Treatment(entrypoint)
	if !ok {
		return nil, descriptor.Identifier{}, fmt.Errorf("fixture: entrypoint %s is not a registered treatment", doc.Entrypoint)
	}

	d := design.NewTreatmentDesign(host)

	for _, m := range doc.Models {
		id, err := ParseIdentifier(m.Descriptor)
		if err != nil {
			return nil, descriptor.Identifier{}, fmt.Errorf("fixture: model %s: %w", m.Name, err)
		}
		modelDescriptor, ok := collection.Model(id)
		if !ok {
			return nil, descriptor.Identifier{}, fmt.Errorf("fixture: model %s: descriptor %s not registered", m.Name, m.Descriptor)
		}
		params, err := resolveParams(modelDescriptor.Params, m.Params)
		if err != nil {
			return nil, descriptor.Identifier{}, fmt.Errorf("fixture: model %s: %w", m.Name, err)
		}
		if err := d.AddModel(design.ModelInstantiation{
			LocalName: m.Name,
			Model:     design.ModelDesign{Descriptor: modelDescriptor, Params: params},
		}); err != nil {
			return nil, descriptor.Identifier{}, fmt.Errorf("fixture: model %s: %w", m.Name, err)
		}
	}

	for _, t := range doc.Treatments {
		id, err := ParseIdentifier(t.Descriptor)
		if err != nil {
			return nil, descriptor.Identifier{}, fmt.Errorf("fixture: treatment %s: %w", t.Name, err)
		}
		treatmentDescriptor, ok := collection.Treatment(id)
		if !ok {
			return nil, descriptor.Identifier{}, fmt.Errorf("fixture: treatment %s: descriptor %s not registered", t.Name, t.Descriptor)
		}
		params, err := resolveParams(treatmentDescriptor.Params, t.Params)
		if err != nil {
			return nil, descriptor.Identifier{}, fmt.Errorf("fixture: treatment %s: %w", t.Name, err)
		}
		if err := d.AddTreatment(design.TreatmentInstantiation{
			LocalName:     t.Name,
			Descriptor:    treatmentDescriptor,
			ModelBindings: t.ModelBindings,
			Params:        params,
		}); err != nil {
			return nil, descriptor.Identifier{}, fmt.Errorf("fixture: treatment %s: %w", t.Name, err)
		}
	}

	for _, c := range doc.Connections {
		d.Connect(design.Connection{
			Output: toDesignEndpoint(c.From),
			Input:  toDesignEndpoint(c.To),
		})
	}

	return d, entrypoint, nil
}

func toDesignEndpoint(e Endpoint) design.Endpoint {
	if e.Self {
		return design.SelfEndpoint(e.Port)
	}
	return design.TreatmentEndpoint(e.Treatment, e.Port)
}

func resolveParams(declared []descriptor.Parameter, given map[string]ParamValue) (map[string]value.Value, error) {
	byName := make(map[string]descriptor.Parameter, len(declared))
	for _, p := range declared {
		byName[p.Name] = p
	}

	resolved := make(map[string]value.Value, len(given))
	for name, v := range given {
		param, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		if v.IsVar {
			resolved[name] = value.Variable(v.Variable)
			continue
		}
		raw, err := literalToRaw(param.Type, v.Literal)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		resolved[name] = value.FromRaw(raw)
	}
	return resolved, nil
}
