// Package design implements the design graph: the concrete wiring of model
// and treatment instantiations plus their connections, and the static
// invariants checked before a design may be built (spec.md §3 "Design
// (Model)"/"Design (Treatment)", §4.2 "Design graph").
package design

import (
	"fmt"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
)

// ModelDesign is a model descriptor paired with its resolved parameter
// values (spec.md §3 "Design (Model): descriptor + resolved parameter
// values").
type ModelDesign struct {
	Descriptor *descriptor.ModelDescriptor
	Params     map[string]value.Value
}

// ModelInstantiation binds a ModelDesign to a local name within the
// enclosing treatment design.
type ModelInstantiation struct {
	LocalName string
	Model     ModelDesign
}

// TreatmentInstantiation binds an inner treatment descriptor to a local
// name, its generic substitutions, the model slots it draws from the
// enclosing treatment's model instantiations, its resolved parameter
// values, and free-form attributes (spec.md §3 "TreatmentInstantiation").
type TreatmentInstantiation struct {
	LocalName     string
	Descriptor    *descriptor.TreatmentDescriptor
	Generics      descriptor.GenericBindings
	ModelBindings map[string]string // slot name -> local model instantiation name
	Params        map[string]value.Value
	Attributes    map[string]string
}

// Endpoint names one side of a Connection: either "self" (the hosting
// treatment's own input/output, on the reversed side) or the local name of
// an inner treatment instantiation, plus the named port (spec.md §3
// "Connection... where refs are either 'sequence self' or 'treatment
// local_name'").
type Endpoint struct {
	Self bool
	Ref  string
	Port string
}

// SelfEndpoint constructs an endpoint referring to the hosting treatment's
// own boundary port.
func SelfEndpoint(port string) Endpoint { return Endpoint{Self: true, Port: port} }

// TreatmentEndpoint constructs an endpoint referring to a named port of an
// inner treatment instantiation.
func TreatmentEndpoint(ref, port string) Endpoint { return Endpoint{Ref: ref, Port: port} }

// Connection wires one output endpoint to one input endpoint.
type Connection struct {
	Output     Endpoint
	Input      Endpoint
	Attributes map[string]string
}

// TreatmentDesign is the full wiring of a treatment: its nested model and
// treatment instantiations plus the flat connection list (spec.md §3
// "Design (Treatment)").
type TreatmentDesign struct {
	Descriptor  *descriptor.TreatmentDescriptor
	Models      map[string]ModelInstantiation
	Treatments  map[string]TreatmentInstantiation
	Connections []Connection

	localNames map[string]struct{}
}

// NewTreatmentDesign constructs an empty design for the given descriptor.
func NewTreatmentDesign(d *descriptor.TreatmentDescriptor) *TreatmentDesign {
	return &TreatmentDesign{
		Descriptor: d,
		Models:     make(map[string]ModelInstantiation),
		Treatments: make(map[string]TreatmentInstantiation),
		localNames: make(map[string]struct{}),
	}
}

// AddModel registers a model instantiation under its local name. It fails
// if the name is already used by another model or treatment instantiation
// in this design (invariant 1, spec.md §4.2).
func (d *TreatmentDesign) AddModel(m ModelInstantiation) error {
	if _, used := d.localNames[m.LocalName]; used {
		return fmt.Errorf("duplicate local name %q", m.LocalName)
	}
	d.localNames[m.LocalName] = struct{}{}
	d.Models[m.LocalName] = m
	return nil
}

// AddTreatment registers an inner treatment instantiation under its local
// name. It fails under the same duplicate-name condition as AddModel.
func (d *TreatmentDesign) AddTreatment(t TreatmentInstantiation) error {
	if _, used := d.localNames[t.LocalName]; used {
		return fmt.Errorf("duplicate local name %q", t.LocalName)
	}
	d.localNames[t.LocalName] = struct{}{}
	d.Treatments[t.LocalName] = t
	return nil
}

// Connect appends a connection to the design.
func (d *TreatmentDesign) Connect(c Connection) {
	d.Connections = append(d.Connections, c)
}
