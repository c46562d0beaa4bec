package hole

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrSimulationActive is returned for any attempt to mutate the hole set
// while a simulation run holds the registry. Callers must stop the run and
// replan before touching the data.
var ErrSimulationActive = errors.New("simulation active: hole set is locked")

// Registry owns the hole set for one workpiece. It hands out shared
// references for planning, tracks the transient in-progress display
// overlay, and enforces the run/plan mutual exclusion: while a run is
// active the set cannot be replaced and statuses can only be written
// through the RunToken issued to the engine.
type Registry struct {
	mu        sync.RWMutex
	holes     map[string]*Hole
	overlay   map[string]bool
	runActive bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		holes:   make(map[string]*Hole),
		overlay: make(map[string]bool),
	}
}

// Replace swaps in a new hole set. Rejected while a run is active.
// Duplicate IDs are an error; the registry is left unchanged on failure.
func (r *Registry) Replace(holes []Hole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runActive {
		return ErrSimulationActive
	}

	next := make(map[string]*Hole, len(holes))
	for _, h := range holes {
		if _, dup := next[h.ID]; dup {
			return fmt.Errorf("duplicate hole id %q", h.ID)
		}
		hc := h
		next[h.ID] = &hc
	}
	r.holes = next
	r.overlay = make(map[string]bool)
	return nil
}

// Snapshot returns the live hole references in deterministic (ID) order.
// Planning works over these shared pointers so that statuses written during
// the run are visible to every holder.
func (r *Registry) Snapshot() []*Hole {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Hole, 0, len(r.holes))
	for _, h := range r.holes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of holes in the set.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.holes)
}

// Get returns a copy of the hole with the given ID. The copy's Status is
// the effective display status: InProgress while the overlay is set.
func (r *Registry) Get(id string) (Hole, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.holes[id]
	if !ok {
		return Hole{}, false
	}
	hc := *h
	if r.overlay[id] {
		hc.Status = StatusInProgress
	}
	return hc, true
}

// Holes returns display copies of every hole, in ID order.
func (r *Registry) Holes() []Hole {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Hole, 0, len(r.holes))
	for _, h := range r.holes {
		hc := *h
		if r.overlay[h.ID] {
			hc.Status = StatusInProgress
		}
		out = append(out, hc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetStatus writes a hole's persisted status from outside a run, e.g. when
// an operator manually requalifies a point. Rejected while a run is active.
func (r *Registry) SetStatus(id string, st Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runActive {
		return ErrSimulationActive
	}
	h, ok := r.holes[id]
	if !ok {
		return fmt.Errorf("no such hole %q", id)
	}
	h.Status = st
	return nil
}

// BeginRun locks the registry for a simulation run and returns the write
// handle the engine uses for overlay and finalize writes. Fails if a run
// is already active.
func (r *Registry) BeginRun() (*RunToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runActive {
		return nil, ErrSimulationActive
	}
	r.runActive = true
	return &RunToken{reg: r}, nil
}

// RunActive reports whether a simulation currently holds the registry.
func (r *Registry) RunActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.runActive
}

// RunToken is the run-scoped write handle issued by BeginRun. Statuses are
// written only through it while the run is active, which keeps the
// shared-resource policy a structural property rather than a convention.
type RunToken struct {
	reg  *Registry
	done bool
}

// MarkInProgress sets the display overlay for a hole. The persisted status
// is untouched.
func (t *RunToken) MarkInProgress(h *Hole) {
	t.reg.mu.Lock()
	defer t.reg.mu.Unlock()
	if t.done {
		return
	}
	t.reg.overlay[h.ID] = true
}

// Finalize persists a terminal status for a hole and clears its overlay.
func (t *RunToken) Finalize(h *Hole, st Status) {
	t.reg.mu.Lock()
	defer t.reg.mu.Unlock()
	if t.done {
		return
	}
	h.Status = st
	delete(t.reg.overlay, h.ID)
}

// Close releases the registry. Any overlay left behind is cleared; the
// engine guarantees holes are finalized before release, so a leftover
// overlay indicates a bug and is logged by the caller.
func (t *RunToken) Close() {
	t.reg.mu.Lock()
	defer t.reg.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	t.reg.runActive = false
	t.reg.overlay = make(map[string]bool)
}
