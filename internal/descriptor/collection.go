package descriptor

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// EntryKind tags which descriptor kind an Entry carries.
type EntryKind string

const (
	EntryContext   EntryKind = "context"
	EntryData      EntryKind = "data"
	EntryFunction  EntryKind = "function"
	EntryModel     EntryKind = "model"
	EntryTreatment EntryKind = "treatment"
)

// Entry is one registered descriptor. Exactly one of the typed fields is
// populated, selected by Kind.
type Entry struct {
	Kind      EntryKind
	Context   *ContextDescriptor
	Data      *DataDescriptor
	Function  *FunctionDescriptor
	Model     *ModelDescriptor
	Treatment *TreatmentDescriptor
}

func (e Entry) identifier() Identifier {
	switch e.Kind {
	case EntryContext:
		return e.Context.Identifier
	case EntryData:
		return e.Data.ID
	case EntryFunction:
		return e.Function.ID
	case EntryModel:
		return e.Model.ID
	case EntryTreatment:
		return e.Treatment.ID
	default:
		return Identifier{}
	}
}

// Collection is an append-only mapping from identifier to descriptor
// entry. It accepts entries during a mutable build-up phase and is then
// shared read-only for the engine's lifetime (spec.md §3, §9 "Descriptor
// registry").
type Collection struct {
	mu      sync.RWMutex
	entries map[string]Entry
	sealed  bool
}

// NewCollection creates an empty, writable Collection.
func NewCollection() *Collection {
	return &Collection{entries: make(map[string]Entry)}
}

// Register adds a descriptor entry. Duplicate registration of the same
// identifier fails, as does registration after Seal.
func (c *Collection) Register(entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sealed {
		return fmt.Errorf("collection is sealed, cannot register %s", entry.identifier())
	}

	key := entry.identifier().Key()
	if _, exists := c.entries[key]; exists {
		return mdlerrors.NewLogicError(mdlerrors.DuplicateIdentifier, key, nil, nil)
	}

	c.entries[key] = entry
	return nil
}

// Seal freezes the collection; subsequent Register calls fail. The engine
// seals the collection once loading completes and before genesis runs
// (spec.md §5 "write only during genesis; read-only during live" is a
// stricter version of the same discipline applied at registration time).
func (c *Collection) Seal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
}

// Lookup returns the entry for id, if present.
func (c *Collection) Lookup(id Identifier) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id.Key()]
	return e, ok
}

// Model is a typed convenience wrapper over Lookup for model descriptors.
func (c *Collection) Model(id Identifier) (*ModelDescriptor, bool) {
	e, ok := c.Lookup(id)
	if !ok || e.Kind != EntryModel {
		return nil, false
	}
	return e.Model, true
}

// Treatment is a typed convenience wrapper over Lookup for treatment
// descriptors.
func (c *Collection) Treatment(id Identifier) (*TreatmentDescriptor, bool) {
	e, ok := c.Lookup(id)
	if !ok || e.Kind != EntryTreatment {
		return nil, false
	}
	return e.Treatment, true
}

// Context is a typed convenience wrapper over Lookup for context
// descriptors.
func (c *Collection) Context(id Identifier) (*ContextDescriptor, bool) {
	e, ok := c.Lookup(id)
	if !ok || e.Kind != EntryContext {
		return nil, false
	}
	return e.Context, true
}

// Function is a typed convenience wrapper over Lookup for function
// descriptors.
func (c *Collection) Function(id Identifier) (*FunctionDescriptor, bool) {
	e, ok := c.Lookup(id)
	if !ok || e.Kind != EntryFunction {
		return nil, false
	}
	return e.Function, true
}

// Uses computes the transitive closure of every identifier referenced,
// directly or indirectly, starting from entry: generic constraints,
// parameter types, input/output types, context types, required model
// slots, and consumed contexts. Traversal stops at descriptors already
// visited. Order is deterministic: first-seen, depth-first (spec.md §4.1
// "Key algorithm — transitive uses closure").
func (c *Collection) Uses(entry Identifier) []Identifier {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	var order []Identifier

	var visit func(id Identifier)
	visit = func(id Identifier) {
		key := id.Key()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		order = append(order, id)

		e, ok := c.entries[key]
		if !ok {
			return
		}

		switch e.Kind {
		case EntryModel:
			for _, p := range e.Model.Params {
				visitType(p.Type, visit)
			}
			for _, name := range slices.Sorted(maps.Keys(e.Model.Sources)) {
				src := e.Model.Sources[name]
				for _, ctx := range src.Contexts {
					visit(ctx.Identifier)
				}
				for _, out := range src.Outputs {
					visitType(out.Type, visit)
				}
			}
		case EntryTreatment:
			for _, p := range e.Treatment.Params {
				visitType(p.Type, visit)
			}
			for _, in := range e.Treatment.Inputs {
				visitType(in.Type, visit)
			}
			for _, out := range e.Treatment.Outputs {
				visitType(out.Type, visit)
			}
			for _, slot := range e.Treatment.ModelSlots {
				visit(slot.Model)
			}
			for _, ctxID := range e.Treatment.ContextsUsed {
				visit(ctxID)
			}
		case EntryContext:
			for _, name := range slices.Sorted(maps.Keys(e.Context.Fields)) {
				visitType(e.Context.Fields[name], visit)
			}
		case EntryFunction:
			for _, p := range e.Function.Params {
				visitType(p.Type, visit)
			}
			visitType(e.Function.Returns, visit)
		case EntryData:
			for _, name := range slices.Sorted(maps.Keys(e.Data.Fields)) {
				visitType(e.Data.Fields[name], visit)
			}
		}
	}

	visit(entry)
	return order
}

func visitType(t DataType, visit func(Identifier)) {
	switch t.Primitive {
	case Data:
		if t.Ref != nil {
			visit(*t.Ref)
		}
	case Vec, Option:
		if t.Inner != nil {
			visitType(*t.Inner, visit)
		}
	}
}
