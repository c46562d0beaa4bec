package plan

import (
	"errors"
	"fmt"

	"github.com/banshee-data/drill.report/internal/hole"
)

// ErrEmptyInput is returned when a plan is requested over an empty hole
// set. Recoverable: supply data and retry.
var ErrEmptyInput = errors.New("no holes to plan")

// Config holds the geometric planning parameters. The defaults match the
// standard drilling grid; workpieces with a different pitch must override
// them (see internal/config).
type Config struct {
	// RowTolerance is the y discretization used to bin holes into rows,
	// in length units.
	RowTolerance float64

	// PairingOffset is the number of positions skipped in a row's ordered
	// hole list when forming a two-hole detection unit. Must be >= 1.
	PairingOffset int

	// CenterEpsilon is the half-width of the vertical centerline dead
	// zone inside which a hole's side tag overrides its measured x sign.
	CenterEpsilon float64
}

// DefaultConfig returns the planning defaults for the standard grid.
func DefaultConfig() Config {
	return Config{
		RowTolerance:  5.0,
		PairingOffset: 2,
		CenterEpsilon: 1.0,
	}
}

// DetectionUnit is one or two holes inspected together within a single
// timed cycle. Holes are shared references into the registry, so statuses
// written during the run are visible to every holder.
type DetectionUnit struct {
	Holes  []*hole.Hole
	Paired bool
	Sector Sector
	RowKey float64
}

// Path is the ordered sequence of detection units for one registry
// snapshot. It is immutable once planned; if the hole set changes the run
// must be stopped and the path regenerated.
type Path []DetectionUnit

// HoleCount returns the total number of holes across all units.
func (p Path) HoleCount() int {
	n := 0
	for _, u := range p {
		n += len(u.Holes)
	}
	return n
}

// Plan produces the full detection path for the given holes:
//
//  1. classify holes into sectors about the bounding-box center;
//  2. bin each sector into rows and order rows along the sector's
//     traversal direction (toward the centerline for Q1/Q2, away from it
//     for Q3/Q4);
//  3. alternate row direction boustrophedon-style to minimise inter-row
//     travel;
//  4. pair holes within each row at the configured index offset, leaving
//     the remainder as singletons.
//
// Every hole appears in exactly one unit and no pairing crosses a row or
// sector boundary.
func Plan(holes []*hole.Hole, cfg Config) (Path, error) {
	if len(holes) == 0 {
		return nil, ErrEmptyInput
	}
	if cfg.PairingOffset < 1 {
		return nil, fmt.Errorf("pairing offset must be >= 1, got %d", cfg.PairingOffset)
	}
	if cfg.RowTolerance <= 0 {
		return nil, fmt.Errorf("row tolerance must be positive, got %g", cfg.RowTolerance)
	}

	bySector := Classify(holes, cfg.CenterEpsilon)

	var path Path
	for _, s := range Sectors {
		rows := BinRows(bySector[s], cfg.RowTolerance)
		if !s.Upper() {
			// Lower sectors walk rows by descending key.
			for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
				rows[i], rows[j] = rows[j], rows[i]
			}
		}
		for idx, row := range rows {
			ordered := row.Holes
			if idx%2 == 1 {
				ordered = reversed(ordered)
			}
			path = append(path, pairRow(ordered, cfg.PairingOffset, s, row.Key)...)
		}
	}
	return path, nil
}

func reversed(hs []*hole.Hole) []*hole.Hole {
	out := make([]*hole.Hole, len(hs))
	for i, h := range hs {
		out[len(hs)-1-i] = h
	}
	return out
}

// pairRow applies interval pairing to one ordered row. The first pass
// emits two-hole units {i, i+offset} over unprocessed indices; whatever
// remains becomes singleton units in original row order.
func pairRow(ordered []*hole.Hole, offset int, s Sector, rowKey float64) []DetectionUnit {
	n := len(ordered)
	processed := make([]bool, n)
	units := make([]DetectionUnit, 0, (n+1)/2)

	for i := 0; i < n; i++ {
		if processed[i] {
			continue
		}
		j := i + offset
		if j < n && !processed[j] {
			processed[i], processed[j] = true, true
			units = append(units, DetectionUnit{
				Holes:  []*hole.Hole{ordered[i], ordered[j]},
				Paired: true,
				Sector: s,
				RowKey: rowKey,
			})
		}
	}
	for i := 0; i < n; i++ {
		if processed[i] {
			continue
		}
		units = append(units, DetectionUnit{
			Holes:  []*hole.Hole{ordered[i]},
			Sector: s,
			RowKey: rowKey,
		})
	}
	return units
}
