package builder

import (
	"errors"
	"sort"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/design"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// CheckBuild summarises one treatment reachable from the entrypoint: its
// host identifier, a human label, and which of its declared inputs are fed
// by at least one connected output (spec.md §4.4 "Check phase").
type CheckBuild struct {
	HostID    *descriptor.Identifier
	Label     string
	FedInputs map[string]bool
}

// NewCheckBuild constructs an empty CheckBuild.
func NewCheckBuild(hostID *descriptor.Identifier, label string) *CheckBuild {
	return &CheckBuild{HostID: hostID, Label: label, FedInputs: make(map[string]bool)}
}

// CheckStep orders one treatment's check within the topological traversal
// used to drive dynamic build (spec.md §4.4 "Emit a topological CheckStep
// list used to order dynamic build").
type CheckStep struct {
	Identifier descriptor.Identifier
	BuildID    BuildId
}

// CheckBuildResult is the outcome of checking one treatment design: every
// nested check performed, the check for the design itself, and the
// accumulated errors (spec.md §4.4 "Check phase").
type CheckBuildResult struct {
	CheckedBuilds []*CheckBuild
	Build         *CheckBuild
	Steps         []CheckStep
	Errors        *mdlerrors.LogicErrors
}

// Check performs the check phase over a treatment design: it traverses
// connections to propagate which declared inputs are fed, records unmet
// required inputs as errors (the design graph's own invariant 4 already
// catches this; Check additionally produces the topological CheckStep
// ordering dynamic build follows). It checks d alone: nested designed
// treatments are not recursed into, and CheckedBuilds is left empty.
func Check(collection *descriptor.Collection, d *design.TreatmentDesign) CheckBuildResult {
	result := CheckBuildResult{
		Build:  NewCheckBuild(&d.Descriptor.ID, d.Descriptor.ID.Name),
		Errors: &mdlerrors.LogicErrors{},
	}

	if errs := d.Validate(collection); !errs.Empty() {
		for _, e := range errs.All() {
			result.Errors.Add(e)
		}
	}

	for name, inst := range d.Treatments {
		for _, in := range inst.Descriptor.Inputs {
			if fed(d, name, in.Name) {
				result.Build.FedInputs[name+"."+in.Name] = true
			}
		}
	}

	steps, err := topologicalSteps(d)
	if err != nil {
		result.Errors.Add(mdlerrors.NewLogicError(mdlerrors.CycleNotBrokenByBlock, d.Descriptor.ID.String(), nil, err))
	}
	result.Steps = steps

	return result
}

func fed(d *design.TreatmentDesign, name, port string) bool {
	for _, c := range d.Connections {
		if !c.Input.Self && c.Input.Ref == name && c.Input.Port == port {
			return true
		}
	}
	return false
}

// topologicalSteps orders inner treatment instantiations so that every
// treatment appears after every treatment whose output feeds one of its
// inputs, using Kahn's algorithm exactly as the design graph's cycle check
// requires: a cycle here is only acceptable if broken by a Block edge,
// which Validate already confirms before Check runs.
func topologicalSteps(d *design.TreatmentDesign) ([]CheckStep, error) {
	indegree := make(map[string]int, len(d.Treatments))
	for name := range d.Treatments {
		indegree[name] = 0
	}

	// Block-flow edges are left out of the ordering, so a cycle broken by
	// one does not prevent a topological order.
	isBlock := func(c design.Connection) bool {
		inst, ok := d.Treatments[c.Output.Ref]
		if !ok {
			return false
		}
		out, _ := inst.Descriptor.Output(c.Output.Port)
		return out.Flow == descriptor.FlowBlock
	}

	for _, c := range d.Connections {
		if c.Output.Self || c.Input.Self || isBlock(c) {
			continue
		}
		if _, ok := d.Treatments[c.Input.Ref]; ok {
			indegree[c.Input.Ref]++
		}
	}

	var queue []string
	for name, deg := range indegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)

		var next []string
		for _, c := range d.Connections {
			if c.Output.Self || c.Input.Self || isBlock(c) {
				continue
			}
			if c.Output.Ref != name {
				continue
			}
			if _, ok := d.Treatments[c.Input.Ref]; !ok {
				continue
			}
			indegree[c.Input.Ref]--
			if indegree[c.Input.Ref] == 0 {
				next = append(next, c.Input.Ref)
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}

	steps := make([]CheckStep, 0, len(order))
	for i, name := range order {
		steps = append(steps, CheckStep{Identifier: d.Treatments[name].Descriptor.ID, BuildID: BuildId(i)})
	}

	if len(order) != len(d.Treatments) {
		return steps, errUnbrokenCycle
	}
	return steps, nil
}

var errUnbrokenCycle = errors.New("connection graph has a cycle with no topological order")
