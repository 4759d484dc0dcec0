package world

import (
	"sync"

	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// Track is one dynamic invocation of the graph rooted at a source: an
// integer id, its lifetime's outcome, and the per-task statuses it
// produced (spec.md §3 "Track: integer id, optional parent id, ancestry
// level, set of in-flight futures"). Parent/level tracking is omitted: this
// engine never nests tracks — every InvokeSource call roots a fresh,
// independent track directly off the entrypoint graph (spec.md §4.5
// "Ordering across tracks: none").
type Track struct {
	ID       int
	Statuses []mdlerrors.ResultStatus
	Err      error
}

// AllOk reports whether every task in the track returned Ok (spec.md §7
// "the world's view of a track is AllOk(track_id) iff every task returned
// Ok").
func (t Track) AllOk() bool {
	if t.Err != nil {
		return false
	}
	for _, s := range t.Statuses {
		if !s.IsOk() {
			return false
		}
	}
	return true
}

// trackRegistry hands out monotonically increasing track ids and records
// each track's outcome once its tasks complete.
type trackRegistry struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*Track
	order  []int
}

func newTrackRegistry() *trackRegistry {
	return &trackRegistry{byID: make(map[int]*Track)}
}

func (r *trackRegistry) begin() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.byID[id] = &Track{ID: id}
	r.order = append(r.order, id)
	return id
}

func (r *trackRegistry) finish(id int, statuses []mdlerrors.ResultStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = &Track{ID: id, Statuses: statuses, Err: err}
}

func (r *trackRegistry) snapshot() []Track {
	r.mu.Lock()
	defer r.mu.Unlock()
	tracks := make([]Track, 0, len(r.order))
	for _, id := range r.order {
		tracks = append(tracks, *r.byID[id])
	}
	return tracks
}
