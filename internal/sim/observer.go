// Package sim drives the timed inspection simulation over a planned
// detection path: a single master tick advancing a three-phase cycle per
// detection unit, with safe pause/resume/stop semantics.
package sim

import (
	"github.com/banshee-data/drill.report/internal/hole"
	"github.com/banshee-data/drill.report/internal/plan"
)

// StatusSink receives hole status notifications. Delivery is
// fire-and-forget and may repeat; implementations must be idempotent.
// The sink sees both the transient in-progress overlay and the terminal
// outcome for each hole.
type StatusSink interface {
	HoleStatusChanged(holeID string, st hole.Status)
}

// SectorNotifier receives a notification whenever the run's focus moves to
// a different sector, so a detail view can follow the gantry.
type SectorNotifier interface {
	SectorFocused(s plan.Sector)
}

// StatusSinkFunc adapts a function to the StatusSink interface.
type StatusSinkFunc func(holeID string, st hole.Status)

// HoleStatusChanged calls f.
func (f StatusSinkFunc) HoleStatusChanged(holeID string, st hole.Status) { f(holeID, st) }

// SectorNotifierFunc adapts a function to the SectorNotifier interface.
type SectorNotifierFunc func(s plan.Sector)

// SectorFocused calls f.
func (f SectorNotifierFunc) SectorFocused(s plan.Sector) { f(s) }

// MultiSink fans status notifications out to several sinks in order.
type MultiSink []StatusSink

// HoleStatusChanged delivers to every sink.
func (m MultiSink) HoleStatusChanged(holeID string, st hole.Status) {
	for _, s := range m {
		s.HoleStatusChanged(holeID, st)
	}
}

// MultiNotifier fans sector-focus notifications out to several notifiers.
type MultiNotifier []SectorNotifier

// SectorFocused delivers to every notifier.
func (m MultiNotifier) SectorFocused(s plan.Sector) {
	for _, n := range m {
		n.SectorFocused(s)
	}
}
