package design

import "github.com/kestrelflow/melodium-engine/internal/descriptor"

// Registry maps a Designed model or treatment's identifier to the design
// graph that implements it. descriptor.Collection stores the metadata
// shape (ModelDescriptor/TreatmentDescriptor); Registry stores the actual
// wiring a Designed descriptor points to, keeping design's dependency on
// descriptor one-directional.
type Registry struct {
	treatments map[string]*TreatmentDesign
}

// NewRegistry constructs an empty design registry.
func NewRegistry() *Registry {
	return &Registry{treatments: make(map[string]*TreatmentDesign)}
}

// RegisterTreatment associates a Designed treatment's identifier with its
// design graph.
func (r *Registry) RegisterTreatment(id descriptor.Identifier, d *TreatmentDesign) {
	r.treatments[id.Key()] = d
}

// Treatment looks up the design graph for a Designed treatment identifier.
func (r *Registry) Treatment(id descriptor.Identifier) (*TreatmentDesign, bool) {
	d, ok := r.treatments[id.Key()]
	return d, ok
}
