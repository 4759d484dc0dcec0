// Package fixture loads a treatment design from a YAML document: the set
// of model and treatment instantiations and their connections, resolved
// against descriptors already registered in a descriptor.Collection — a
// validator.v10 + yaml.v3 powered document loader with per-type custom
// UnmarshalYAML decoding, giving spec.md §3's Design graph a textual form
// to load from.
package fixture

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the full fixture: the entrypoint treatment to run, the model
// and treatment instantiations composing its design, and the connections
// wiring them together.
type Document struct {
	Entrypoint  string            `yaml:"entrypoint" validate:"required"`
	Models      []ModelEntry      `yaml:"models,omitempty" validate:"omitempty,dive"`
	Treatments  []TreatmentEntry  `yaml:"treatments" validate:"required,min=1,dive"`
	Connections []ConnectionEntry `yaml:"connections,omitempty" validate:"omitempty,dive"`
}

// ModelEntry instantiates a registered model descriptor under a local name.
type ModelEntry struct {
	Name       string               `yaml:"name" validate:"required,local_name"`
	Descriptor string               `yaml:"descriptor" validate:"required"`
	Params     map[string]ParamValue `yaml:"params,omitempty"`
}

// TreatmentEntry instantiates a registered treatment descriptor under a
// local name, binding any model slots it requires.
type TreatmentEntry struct {
	Name          string                `yaml:"name" validate:"required,local_name"`
	Descriptor    string                `yaml:"descriptor" validate:"required"`
	ModelBindings map[string]string    `yaml:"model_bindings,omitempty"`
	Params        map[string]ParamValue `yaml:"params,omitempty"`
}

// Endpoint names one side of a connection: either the hosting design's own
// boundary port (Self) or a named port of a local treatment instantiation.
type Endpoint struct {
	Self      bool   `yaml:"self,omitempty"`
	Treatment string `yaml:"treatment,omitempty" validate:"required_without=Self"`
	Port      string `yaml:"port" validate:"required"`
}

// ConnectionEntry wires one output endpoint to one input endpoint.
type ConnectionEntry struct {
	From Endpoint `yaml:"from" validate:"required"`
	To   Endpoint `yaml:"to" validate:"required"`
}

// ParamValue is a parameter expression as written in a fixture: either a
// literal scalar or a "$name" reference to a value bound in the enclosing
// scope. It decodes from a bare YAML scalar — no tagged union syntax —
// using a plain string with a leading "$" to mark a variable reference
// instead of a literal; there is no syntax for a context reference.
type ParamValue struct {
	Variable string
	Literal  interface{}
	IsVar    bool
}

// UnmarshalYAML decodes a ParamValue from a bare scalar, recognising a
// leading "$" as a variable reference.
func (p *ParamValue) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok && strings.HasPrefix(s, "$") {
		p.IsVar = true
		p.Variable = strings.TrimPrefix(s, "$")
		return nil
	}
	p.Literal = raw
	return nil
}

// Parse decodes a Document from its YAML bytes, without validating it —
// callers should run it through Load or validateDocument before relying on
// its contents (spec.md's "Parse without validation" is implicit; this
// keeps decoding and validation as two separate steps).
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fixture: decode: %w", err)
	}
	return &doc, nil
}
