package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/drill.report/internal/hole"
	"github.com/banshee-data/drill.report/internal/monitoring"
	"github.com/banshee-data/drill.report/internal/plan"
	"github.com/banshee-data/drill.report/internal/timeutil"
)

// Phase is the engine's position within the current detection cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDetecting
	PhaseFinalizing
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDetecting:
		return "detecting"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseCompleted:
		return "completed"
	default:
		return "?"
	}
}

// ErrNotRunning is returned by lifecycle calls that need an active run.
var ErrNotRunning = errors.New("no simulation running")

// Config holds the engine timing and outcome parameters plus the planning
// configuration. All values are overridable; DefaultConfig matches the
// standard 10-second detection cycle.
type Config struct {
	// Quantum is the master tick period.
	Quantum time.Duration

	// DetectThreshold is the in-cycle offset at which a unit's outcome is
	// computed and applied.
	DetectThreshold time.Duration

	// Cycle is the full length of one detection cycle.
	Cycle time.Duration

	// SuccessRate is the per-hole Bernoulli qualification probability.
	SuccessRate float64

	// Seed seeds the outcome source so runs replay deterministically.
	Seed int64

	// Plan carries the geometric planning parameters.
	Plan plan.Config
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Quantum:         100 * time.Millisecond,
		DetectThreshold: 9500 * time.Millisecond,
		Cycle:           10000 * time.Millisecond,
		SuccessRate:     0.995,
		Seed:            1,
		Plan:            plan.DefaultConfig(),
	}
}

// Validate checks the timing relationships the cycle depends on.
func (c Config) Validate() error {
	if c.Quantum <= 0 {
		return fmt.Errorf("quantum must be positive, got %v", c.Quantum)
	}
	if c.DetectThreshold <= 0 || c.DetectThreshold > c.Cycle {
		return fmt.Errorf("detect threshold %v must be positive and within the %v cycle",
			c.DetectThreshold, c.Cycle)
	}
	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		return fmt.Errorf("success rate must be in [0,1], got %g", c.SuccessRate)
	}
	return nil
}

// event is a pending notification collected under the engine lock and
// delivered after it is released, so observers can call back into the
// engine without deadlocking.
type event struct {
	holeID   string
	status   hole.Status
	isStatus bool
	sector   plan.Sector
	isFocus  bool
	complete bool
}

// Engine consumes a planned path and drives the tick-driven three-phase
// detection cycle over it. All unit processing happens on the single
// master tick; suspension only ever occurs at tick boundaries.
type Engine struct {
	cfg      Config
	clock    timeutil.Clock
	reg      *hole.Registry
	outcomes OutcomeSource
	sink     StatusSink
	notifier SectorNotifier
	onDone   func(runID string)

	mu         sync.Mutex
	running    bool
	paused     bool
	stopped    bool
	path       plan.Path
	token      *hole.RunToken
	runID      string
	phase      Phase
	elapsed    time.Duration
	unitIndex  int
	current    *plan.DetectionUnit
	completed  int
	lastSector plan.Sector
	hasFocus   bool
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithClock injects the time source; tests pass a timeutil.MockClock.
func WithClock(c timeutil.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithOutcomeSource replaces the default seeded Bernoulli source.
func WithOutcomeSource(s OutcomeSource) Option {
	return func(e *Engine) { e.outcomes = s }
}

// WithStatusSink registers the status notification sink.
func WithStatusSink(s StatusSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithSectorNotifier registers the sector-focus notifier.
func WithSectorNotifier(n SectorNotifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithCompletionHandler registers a callback invoked once when a run
// finishes its whole path.
func WithCompletionHandler(f func(runID string)) Option {
	return func(e *Engine) { e.onDone = f }
}

// NewEngine builds an engine over the given registry. The registry's
// run-guard gives the plan/run mutual exclusion: while the engine holds a
// run the hole set cannot be mutated from outside.
func NewEngine(reg *hole.Registry, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg,
		clock: timeutil.RealClock{},
		reg:   reg,
		phase: PhaseIdle,
	}
	for _, o := range opts {
		o(e)
	}
	if e.outcomes == nil {
		src, err := NewBernoulliSource(cfg.SuccessRate, cfg.Seed)
		if err != nil {
			return nil, err
		}
		e.outcomes = src
	}
	return e, nil
}

// Start replaces the registry's hole set, plans the detection path and
// launches the tick driver. Fails with plan.ErrEmptyInput on an empty hole
// set and with hole.ErrSimulationActive if a run is already in flight.
func (e *Engine) Start(holes []hole.Hole) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return hole.ErrSimulationActive
	}

	if err := e.reg.Replace(holes); err != nil {
		return err
	}
	path, err := plan.Plan(e.reg.Snapshot(), e.cfg.Plan)
	if err != nil {
		return err
	}
	token, err := e.reg.BeginRun()
	if err != nil {
		return err
	}

	e.path = path
	e.token = token
	e.runID = uuid.NewString()
	e.phase = PhaseIdle
	e.elapsed = 0
	e.unitIndex = 0
	e.current = nil
	e.completed = 0
	e.hasFocus = false
	e.running = true
	e.paused = false
	e.stopped = false
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})

	monitoring.Logf("sim: run %s started: %d units over %d holes",
		e.runID, len(path), path.HoleCount())
	go e.loop(e.stopCh, e.doneCh)
	return nil
}

// loop is the tick driver. It owns the ticker; all cycle work happens in
// Tick so tests can drive the engine without the goroutine.
func (e *Engine) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := e.clock.NewTicker(e.cfg.Quantum)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			e.Tick()
		}
	}
}

// Tick advances the cycle by one quantum. Paused or stopped engines
// ignore ticks. Exported so deterministic tests can drive the state
// machine directly.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.running || e.paused {
		e.mu.Unlock()
		return
	}

	var events []event
	switch e.phase {
	case PhaseIdle:
		if e.unitIndex >= len(e.path) {
			events = e.completeLocked()
		} else {
			events = e.startUnitLocked()
		}
	case PhaseDetecting:
		e.elapsed += e.cfg.Quantum
		if e.elapsed >= e.cfg.DetectThreshold {
			events = e.finalizeUnitLocked(e.current)
			e.phase = PhaseFinalizing
		}
	case PhaseFinalizing:
		e.elapsed += e.cfg.Quantum
		if e.elapsed >= e.cfg.Cycle {
			e.phase = PhaseIdle
			e.current = nil
		}
	}
	runID := e.runID
	e.mu.Unlock()

	e.emit(runID, events)
}

// startUnitLocked begins the next detection unit: overlay the holes as
// in-progress, refocus the detail view if the sector changed, and enter
// Detecting with a fresh cycle clock.
func (e *Engine) startUnitLocked() []event {
	u := &e.path[e.unitIndex]
	var events []event
	for _, h := range u.Holes {
		e.token.MarkInProgress(h)
		events = append(events, event{holeID: h.ID, status: hole.StatusInProgress, isStatus: true})
	}
	if !e.hasFocus || u.Sector != e.lastSector {
		events = append(events, event{sector: u.Sector, isFocus: true})
		e.lastSector = u.Sector
		e.hasFocus = true
	}
	e.current = u
	e.unitIndex++
	e.elapsed = 0
	e.phase = PhaseDetecting
	return events
}

// finalizeUnitLocked computes and applies the outcome for every hole of
// the unit. A failed draw is logged and defaults to defective; one bad
// hole never halts the run.
func (e *Engine) finalizeUnitLocked(u *plan.DetectionUnit) []event {
	if u == nil {
		return nil
	}
	var events []event
	for _, h := range u.Holes {
		st := hole.StatusDefective
		ok, err := e.outcomes.Draw()
		if err != nil {
			monitoring.Logf("sim: outcome draw failed for hole %s: %v (defaulting to defective)", h.ID, err)
		} else if ok {
			st = hole.StatusQualified
		}
		e.token.Finalize(h, st)
		events = append(events, event{holeID: h.ID, status: st, isStatus: true})
	}
	e.completed++
	return events
}

// completeLocked ends a fully traversed run.
func (e *Engine) completeLocked() []event {
	monitoring.Logf("sim: run %s completed: %d/%d units", e.runID, e.completed, len(e.path))
	e.phase = PhaseCompleted
	e.haltLocked()
	return []event{{complete: true}}
}

// haltLocked releases the registry and signals the tick driver to exit.
func (e *Engine) haltLocked() {
	e.running = false
	e.paused = false
	if e.token != nil {
		e.token.Close()
		e.token = nil
	}
	if !e.stopped {
		e.stopped = true
		close(e.stopCh)
	}
}

func (e *Engine) emit(runID string, events []event) {
	for _, ev := range events {
		switch {
		case ev.isStatus:
			if e.sink != nil {
				e.sink.HoleStatusChanged(ev.holeID, ev.status)
			}
		case ev.isFocus:
			if e.notifier != nil {
				e.notifier.SectorFocused(ev.sector)
			}
		case ev.complete:
			if e.onDone != nil {
				e.onDone(runID)
			}
		}
	}
}

// Pause halts tick processing without touching the phase or elapsed time.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return ErrNotRunning
	}
	if !e.paused {
		e.paused = true
		monitoring.Debugf("sim: run %s paused in %s at %v", e.runID, e.phase, e.elapsed)
	}
	return nil
}

// Resume continues from the exact interruption point.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return ErrNotRunning
	}
	if e.paused {
		e.paused = false
		monitoring.Debugf("sim: run %s resumed in %s at %v", e.runID, e.phase, e.elapsed)
	}
	return nil
}

// Stop aborts the run. If a unit is mid-Detecting its outcome is computed
// and applied synchronously before the engine halts, so no hole is ever
// left in-progress. Stop returns once the tick driver has exited.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	var events []event
	if e.phase == PhaseDetecting && e.current != nil {
		events = e.finalizeUnitLocked(e.current)
		e.current = nil
	}
	monitoring.Logf("sim: run %s stopped: %d/%d units", e.runID, e.completed, len(e.path))
	e.phase = PhaseIdle
	e.haltLocked()
	runID := e.runID
	done := e.doneCh
	e.mu.Unlock()

	e.emit(runID, events)
	<-done
	return nil
}

// Progress reports completed and total detection units for the current
// (or last) run. Zero values before any run has been planned.
func (e *Engine) Progress() (completed, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed, len(e.path)
}

// Phase returns the engine's current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Running reports whether a run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Paused reports whether an active run is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running && e.paused
}

// RunID returns the identifier of the current (or last) run, or "" before
// any run.
func (e *Engine) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// Path returns the planned path of the current (or last) run. The slice
// is shared; callers must treat it as read-only.
func (e *Engine) Path() plan.Path {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}
