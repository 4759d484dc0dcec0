// Package world implements the scheduler: it owns the collection, the
// statically built models, the registered source entries, and drives
// genesis, liveness and shutdown of one running graph (spec.md §4.5
// "World (scheduler)").
package world

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrelflow/melodium-engine/internal/builder"
	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/design"
	"github.com/kestrelflow/melodium-engine/internal/ports"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// World is the engine's runtime: the single authority over instantiated
// models, source entries, and tracks for one entrypoint graph (spec.md
// §4.5 "State: the collection; a vector of instantiated models indexed by
// id; a map from (model id, source name) -> list of SourceEntry; a queue
// of continuous futures; a track registry; a monotonically-increasing
// track counter").
type World struct {
	collection *descriptor.Collection
	registry   *design.Registry
	functions  value.FunctionTable
	logger     ports.Logger

	mu            sync.RWMutex
	models        []builder.ModelInstance
	indexByModel  map[builder.ModelInstance]int
	sourceEntries map[string]struct{}

	graph *design.TreatmentDesign
	built map[string]builder.ModelInstance
	dyn   *builder.Dynamic

	errs *mdlerrors.LogicErrors

	tracks *trackRegistry
}

// New constructs a World ready for Genesis. logger may be nil, in which
// case a no-op logger is used.
func New(collection *descriptor.Collection, registry *design.Registry, functions value.FunctionTable, logger ports.Logger) *World {
	if logger == nil {
		logger = noopLogger{}
	}
	w := &World{
		collection:    collection,
		registry:      registry,
		functions:     functions,
		logger:        logger,
		indexByModel:  make(map[builder.ModelInstance]int),
		sourceEntries: make(map[string]struct{}),
		tracks:        newTrackRegistry(),
	}
	w.dyn = builder.NewDynamic(collection, registry, functions)
	return w
}

// RegisterModel implements builder.WorldHandle: it appends m to the model
// vector and records its build id for later InvokeSource lookups.
func (w *World) RegisterModel(m builder.ModelInstance) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := len(w.models)
	w.models = append(w.models, m)
	w.indexByModel[m] = id
	return id
}

// Model implements builder.WorldHandle.
func (w *World) Model(buildID int) (builder.ModelInstance, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if buildID < 0 || buildID >= len(w.models) {
		return nil, false
	}
	return w.models[buildID], true
}

func sourceKey(buildID int, sourceName string) string {
	return fmt.Sprintf("%d:%s", buildID, sourceName)
}

// InvokeSource implements builder.WorldHandle: it dynamically builds the
// track rooted at the named source and runs every task it produces to
// completion before returning, wrapping them in a single WaitGroup per
// track — this engine's rendition of spec.md §4.5's "JoinAll" (spec.md
// §4.4 step 5, §4.5 "when a source is invoked by its model, dynamic-build
// a new track").
func (w *World) InvokeSource(ctx context.Context, buildID int, sourceName string, params map[string]value.Raw) error {
	w.mu.RLock()
	_, ok := w.sourceEntries[sourceKey(buildID, sourceName)]
	graph := w.graph
	built := w.built
	w.mu.RUnlock()

	if !ok {
		return mdlerrors.NewLogicError(mdlerrors.NoEntry, sourceName, nil, nil)
	}

	trackID := w.tracks.begin()
	w.logger.Debug(ctx, "source invoked", "source", sourceName, "track", trackID)

	env := value.NewEnvironment(w.functions)
	env.BindContext(sourceName, params)

	_, result, err := w.dyn.Build(ctx, graph, built, env, builder.TreatmentIO{})
	if err != nil {
		w.tracks.finish(trackID, nil, err)
		w.logger.Error(ctx, "track build failed", "track", trackID, "error", err)
		return err
	}

	statuses := runTasks(ctx, result.PreparedTasks)
	w.tracks.finish(trackID, statuses, nil)
	w.logger.Debug(ctx, "track completed", "track", trackID, "tasks", len(statuses))
	return nil
}

// runTasks drives every task of one track concurrently to completion,
// recovering any panic a task raises while running so it surfaces as an
// Errored ResultStatus instead of bringing down the whole process; the
// track's other tasks keep running to completion. A panic inside a
// treatment's Prepare happens while the track is built, before runTasks,
// and is not recovered here.
func runTasks(ctx context.Context, tasks []builder.Task) []mdlerrors.ResultStatus {
	statuses := make([]mdlerrors.ResultStatus, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task builder.Task) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					statuses[i] = mdlerrors.Errored(fmt.Errorf("task panicked: %v", r))
				}
			}()
			statuses[i] = task(ctx)
		}(i, task)
	}
	wg.Wait()
	return statuses
}

// Genesis statically builds the model closure implied by entrypoint,
// checks its treatment graph, and registers a source entry for every
// treatment whose source_from points into a known model's source (spec.md
// §4.5 "genesis(entrypoint, params)").
func (w *World) Genesis(ctx context.Context, entrypoint descriptor.Identifier, params map[string]value.Raw) *mdlerrors.LogicErrors {
	errs := &mdlerrors.LogicErrors{}

	graph, ok := w.registry.Treatment(entrypoint)
	if !ok {
		errs.Add(mdlerrors.NewLogicError(mdlerrors.NoTreatment, entrypoint.String(), nil, nil))
		w.errs = errs
		return errs
	}

	check := builder.Check(w.collection, graph)
	for _, e := range check.Errors.All() {
		errs.Add(e)
	}

	built, staticErrs := builder.StaticBuild(ctx, w, w.functions, graph)
	for _, e := range staticErrs.All() {
		errs.Add(e)
	}

	w.mu.Lock()
	w.graph = graph
	w.built = built
	for name, inst := range graph.Treatments {
		trigger := inst.Descriptor.TriggeredBy
		if trigger == nil {
			continue
		}
		modelLocal, ok := inst.ModelBindings[trigger.ModelSlot]
		if !ok {
			errs.Add(mdlerrors.NewLogicError(mdlerrors.NoModel, trigger.ModelSlot,
				&mdlerrors.DesignRef{Treatment: graph.Descriptor.ID.String(), LocalName: name}, nil))
			continue
		}
		model, ok := built[modelLocal]
		if !ok {
			continue
		}
		idx, ok := w.indexByModel[model]
		if !ok {
			continue
		}
		w.sourceEntries[sourceKey(idx, trigger.Source)] = struct{}{}
	}
	w.mu.Unlock()

	w.errs = errs
	return errs
}

// Errors returns the batch accumulated by the last Genesis call.
func (w *World) Errors() *mdlerrors.LogicErrors {
	return w.errs
}

// Live drains every model's continuous tasks into the executor and blocks
// until all of them return. Each continuous task is responsible for
// observing ctx cancellation and for driving any InvokeSource calls it
// makes to completion before returning, so Live's termination coincides
// exactly with spec.md §4.5's "every model has closed its sources and
// every live track has finished" — InvokeSource itself already blocks
// until its track's tasks are done.
func (w *World) Live(ctx context.Context) error {
	if w.errs != nil && !w.errs.Empty() {
		return fmt.Errorf("world: refusing to go live, genesis reported %d error(s)", len(w.errs.All()))
	}

	w.mu.RLock()
	models := append([]builder.ModelInstance(nil), w.models...)
	w.mu.RUnlock()

	var wg sync.WaitGroup
	for _, m := range models {
		tasks := m.Continuous(ctx)
		for _, task := range tasks {
			wg.Add(1)
			go func(task builder.Task) {
				defer wg.Done()
				status := task(ctx)
				if !status.IsOk() {
					w.logger.Error(ctx, "continuous task failed", "error", status.Detail)
				}
			}(task)
		}
	}
	wg.Wait()
	return nil
}

// End signals every model to release its continuous activity and resources
// (spec.md §4.5 "end(): signal every model to close its continuous
// activity; drains remaining tracks then returns"). Callers typically
// cancel the context passed to Live just before calling End, which is what
// actually stops any continuous loop still running; End itself runs each
// model's Shutdown to let it release resources deterministically.
func (w *World) End(ctx context.Context) error {
	w.mu.RLock()
	models := append([]builder.ModelInstance(nil), w.models...)
	w.mu.RUnlock()

	var failed []error
	for _, m := range models {
		if err := m.Shutdown(ctx); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", m.Identifier(), err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("world: %d model(s) failed to shut down: %v", len(failed), failed)
	}
	return nil
}

// Tracks returns a snapshot of every track observed so far, in the order
// the tracks were started (spec.md §3 "Track").
func (w *World) Tracks() []Track {
	return w.tracks.snapshot()
}

var _ builder.WorldHandle = (*World)(nil)

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...interface{}) {}
func (noopLogger) Info(context.Context, string, ...interface{})  {}
func (noopLogger) Warn(context.Context, string, ...interface{})  {}
func (noopLogger) Error(context.Context, string, ...interface{}) {}
func (noopLogger) With(...interface{}) ports.Logger              { return noopLogger{} }
