package stdlib

import "github.com/kestrelflow/melodium-engine/internal/descriptor"

// EngineModelSlot is the fixed model-slot name ReadyTreatmentDescriptor is
// registered under: any design that binds a local Engine model instance to
// a slot named "engine" can trigger ReadyTreatmentDescriptor's treatment from
// that model's "ready" source.
const EngineModelSlot = "engine"

// Register populates collection with every descriptor this package
// provides, so an external loader (the fixture package, or a CLI resolving
// identifiers typed by a user) can look them up by identifier the same way
// it would look up descriptors produced by a real treatment library
// (spec.md §1's "standard library of treatments" contract, given one
// conforming, registrable implementation).
func Register(collection *descriptor.Collection) error {
	entries := []descriptor.Entry{
		{Kind: descriptor.EntryModel, Model: EngineDescriptor()},
		{Kind: descriptor.EntryTreatment, Treatment: ReadyTreatmentDescriptor(EngineModelSlot)},
		{Kind: descriptor.EntryTreatment, Treatment: CountDescriptor()},
		{Kind: descriptor.EntryTreatment, Treatment: FitDescriptor()},
		{Kind: descriptor.EntryTreatment, Treatment: PatternDescriptor()},
		{Kind: descriptor.EntryTreatment, Treatment: AcceptRejectDescriptor()},
	}
	for _, e := range entries {
		if err := collection.Register(e); err != nil {
			return err
		}
	}
	return nil
}
