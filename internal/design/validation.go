package design

import (
	"strconv"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// Validate checks a treatment design against invariants 2–7 of spec.md
// §4.2 (invariant 1, unique local names, is enforced eagerly by AddModel
// and AddTreatment). Every violation is recorded as a LogicError; Validate
// never stops at the first one, so a single call reports the full set
// (spec.md §7 policy 1).
func (d *TreatmentDesign) Validate(collection *descriptor.Collection) *mdlerrors.LogicErrors {
	errs := &mdlerrors.LogicErrors{}

	d.checkConnectionEndpoints(errs)
	d.checkTypeAssignability(errs)
	d.checkRequiredInputsConnected(errs)
	d.checkModelSlotsSatisfied(errs)
	d.checkVarParametersResolvable(errs)
	d.checkNoUnbrokenCycles(errs)

	return errs
}

func (d *TreatmentDesign) resolveEndpointInput(e Endpoint) (descriptor.IO, bool) {
	if e.Self {
		return d.Descriptor.Input(e.Port)
	}
	inner, ok := d.Treatments[e.Ref]
	if !ok {
		return descriptor.IO{}, false
	}
	return inner.Descriptor.Input(e.Port)
}

func (d *TreatmentDesign) resolveEndpointOutput(e Endpoint) (descriptor.IO, bool) {
	if e.Self {
		return d.Descriptor.Output(e.Port)
	}
	inner, ok := d.Treatments[e.Ref]
	if !ok {
		return descriptor.IO{}, false
	}
	return inner.Descriptor.Output(e.Port)
}

// checkConnectionEndpoints enforces invariant 2: every connection endpoint
// resolves to an existing treatment's declared input/output, or to self on
// the reversed side (output endpoint -> self input port; input endpoint ->
// self output port, per spec.md's phrasing of the reversed self case).
func (d *TreatmentDesign) checkConnectionEndpoints(errs *mdlerrors.LogicErrors) {
	for i, c := range d.Connections {
		if _, ok := d.resolveOutputSide(c.Output); !ok {
			errs.Add(mdlerrors.NewLogicError(mdlerrors.UnconnectedInput, endpointName(c.Output),
				&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), Detail: connectionDetail(i, "output")}, nil))
		}
		if _, ok := d.resolveInputSide(c.Input); !ok {
			errs.Add(mdlerrors.NewLogicError(mdlerrors.UnconnectedInput, endpointName(c.Input),
				&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), Detail: connectionDetail(i, "input")}, nil))
		}
	}
}

// resolveOutputSide resolves an endpoint that acts as an output producer:
// self means the hosting treatment's own *input* is fed from outside (the
// reversed side), any other ref means the named inner treatment's output.
func (d *TreatmentDesign) resolveOutputSide(e Endpoint) (descriptor.IO, bool) {
	if e.Self {
		return d.Descriptor.Input(e.Port)
	}
	return d.resolveEndpointOutput(e)
}

// resolveInputSide resolves an endpoint that acts as an input consumer:
// self means the hosting treatment's own *output* is fed to the outside,
// any other ref means the named inner treatment's input.
func (d *TreatmentDesign) resolveInputSide(e Endpoint) (descriptor.IO, bool) {
	if e.Self {
		return d.Descriptor.Output(e.Port)
	}
	return d.resolveEndpointInput(e)
}

func endpointName(e Endpoint) string {
	if e.Self {
		return "self." + e.Port
	}
	return e.Ref + "." + e.Port
}

func connectionDetail(index int, side string) string {
	return "connection[" + strconv.Itoa(index) + "]." + side
}

// checkTypeAssignability enforces invariant 3: the output's described type
// must be assignable to the matching input's described type — same flow,
// equal described types after generic substitution, Undetermined matching
// anything.
func (d *TreatmentDesign) checkTypeAssignability(errs *mdlerrors.LogicErrors) {
	for i, c := range d.Connections {
		outIO, outOK := d.resolveOutputSide(c.Output)
		inIO, inOK := d.resolveInputSide(c.Input)
		if !outOK || !inOK {
			continue // already reported by checkConnectionEndpoints
		}
		if outIO.Flow != inIO.Flow {
			errs.Add(mdlerrors.NewLogicError(mdlerrors.TypeMismatch, endpointName(c.Input),
				&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), Detail: connectionDetail(i, "flow")}, nil))
			continue
		}
		if !outIO.Type.Equal(inIO.Type) {
			errs.Add(mdlerrors.NewLogicError(mdlerrors.TypeMismatch, endpointName(c.Input),
				&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), Detail: connectionDetail(i, "type")}, nil))
		}
	}
}

// checkRequiredInputsConnected enforces invariant 4: every required input
// of every inner treatment instantiation is fed by at least one connection.
func (d *TreatmentDesign) checkRequiredInputsConnected(errs *mdlerrors.LogicErrors) {
	fed := make(map[string]map[string]bool)
	for _, c := range d.Connections {
		if c.Input.Self {
			continue
		}
		if fed[c.Input.Ref] == nil {
			fed[c.Input.Ref] = make(map[string]bool)
		}
		fed[c.Input.Ref][c.Input.Port] = true
	}

	for name, inst := range d.Treatments {
		for _, in := range inst.Descriptor.RequiredInputs() {
			if in.Optional {
				continue
			}
			if !fed[name][in.Name] {
				errs.Add(mdlerrors.NewLogicError(mdlerrors.UnconnectedInput, name+"."+in.Name,
					&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), LocalName: name}, nil))
			}
		}
	}
}

// checkModelSlotsSatisfied enforces invariant 5: every required model slot
// of every inner treatment instantiation is bound to a model instantiation
// of a compatible descriptor.
func (d *TreatmentDesign) checkModelSlotsSatisfied(errs *mdlerrors.LogicErrors) {
	for name, inst := range d.Treatments {
		for _, slot := range inst.Descriptor.ModelSlots {
			boundName, ok := inst.ModelBindings[slot.Name]
			if !ok {
				errs.Add(mdlerrors.NewLogicError(mdlerrors.NoModel, slot.Name,
					&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), LocalName: name}, nil))
				continue
			}
			bound, ok := d.Models[boundName]
			if !ok {
				errs.Add(mdlerrors.NewLogicError(mdlerrors.NoModel, boundName,
					&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), LocalName: name}, nil))
				continue
			}
			if !bound.Model.Descriptor.ID.Equal(slot.Model) {
				errs.Add(mdlerrors.NewLogicError(mdlerrors.TypeMismatch, slot.Name,
					&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), LocalName: name}, nil))
			}
		}
	}
}

// checkVarParametersResolvable enforces invariant 6: every Var parameter
// must be fed by a constant, an enclosing-scope variable, a context field,
// or a pure function over those — i.e. any Value shape is acceptable
// except one left entirely unset. Const parameters must additionally be
// resolvable without a context (spec.md §3 "Variability").
func (d *TreatmentDesign) checkVarParametersResolvable(errs *mdlerrors.LogicErrors) {
	check := func(name string, params []descriptor.Parameter, bound map[string]value.Value, ref mdlerrors.DesignRef) {
		for _, p := range params {
			v, ok := bound[p.Name]
			if !ok {
				if p.Required() {
					errs.Add(mdlerrors.NewLogicError(mdlerrors.UnsetParameter, p.Name, &ref, nil))
				}
				continue
			}
			if p.Variability == descriptor.Const && !value.IsConstResolvable(v) {
				errs.Add(mdlerrors.NewLogicError(mdlerrors.UnsetParameter, p.Name, &ref, nil))
			}
		}
	}

	for name, inst := range d.Models {
		check(name, inst.Model.Descriptor.Params, inst.Model.Params,
			mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), LocalName: name})
	}
	for name, inst := range d.Treatments {
		check(name, inst.Descriptor.Params, inst.Params,
			mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), LocalName: name})
	}
}

// checkNoUnbrokenCycles enforces invariant 7: streams may feed back, but
// every cycle in the connection graph must be broken by at least one Block
// edge, otherwise termination (T6) cannot be guaranteed.
func (d *TreatmentDesign) checkNoUnbrokenCycles(errs *mdlerrors.LogicErrors) {
	type edge struct {
		to    string
		block bool
	}
	adj := make(map[string][]edge)
	nodes := make(map[string]struct{})
	for name := range d.Treatments {
		nodes[name] = struct{}{}
	}

	// Connections that cross the hosting treatment's own boundary
	// (self-as-source or self-as-sink) represent external data entering or
	// leaving the design, not a feedback path between inner treatments: each
	// gets its own throwaway node so it can never itself be part of a cycle.
	for i, c := range d.Connections {
		from := c.Output.Ref
		if c.Output.Self {
			from = "$boundary_in_" + strconv.Itoa(i)
			nodes[from] = struct{}{}
		}
		to := c.Input.Ref
		if c.Input.Self {
			to = "$boundary_out_" + strconv.Itoa(i)
			nodes[to] = struct{}{}
		}
		outIO, ok := d.resolveOutputSide(c.Output)
		block := ok && outIO.Flow == descriptor.FlowBlock
		adj[from] = append(adj[from], edge{to: to, block: block})
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(nodes))

	// path holds the current DFS stack of nodes; edgeBlock[i] records whether
	// the edge from path[i] to path[i+1] is a Block edge. When a back-edge to
	// a gray node closes a cycle, only the edges strictly inside that cycle
	// (from the gray node forward to the current node, plus the closing
	// edge) may suppress the error — a Block edge earlier on the approach to
	// the cycle, outside it, must not (a cycle is only "broken" by a Block
	// edge that is itself part of the cycle).
	var path []string
	var edgeBlock []bool

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		path = append(path, node)

		ok := true
		for _, e := range adj[node] {
			if color[e.to] == gray {
				idx := -1
				for i, n := range path {
					if n == e.to {
						idx = i
						break
					}
				}
				broken := e.block
				for i := idx; i < len(edgeBlock); i++ {
					if edgeBlock[i] {
						broken = true
						break
					}
				}
				if !broken {
					ok = false
					break
				}
				continue
			}
			if color[e.to] == white {
				edgeBlock = append(edgeBlock, e.block)
				sub := visit(e.to)
				edgeBlock = edgeBlock[:len(edgeBlock)-1]
				if !sub {
					ok = false
					break
				}
			}
		}

		color[node] = black
		path = path[:len(path)-1]
		return ok
	}

	for node := range nodes {
		if color[node] == white {
			if !visit(node) {
				errs.Add(mdlerrors.NewLogicError(mdlerrors.CycleNotBrokenByBlock, node,
					&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String()}, nil))
			}
		}
	}
}
