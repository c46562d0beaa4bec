// Package plan turns a hole set into the ordered detection path the
// simulation engine consumes: sector classification, row binning,
// boustrophedon row traversal and interval pairing.
package plan

import (
	"github.com/banshee-data/drill.report/internal/hole"
)

// Sector is one of the four spatial partitions of the hole set relative to
// its bounding-box center. Traversal rank is fixed: Q1 < Q2 < Q3 < Q4, so
// both upper sectors are fully visited before either lower sector.
type Sector int

const (
	Q1 Sector = iota // dx >= 0, dy <= 0 (upper right)
	Q2               // dx <  0, dy <= 0 (upper left)
	Q3               // dx <  0, dy >  0 (lower left)
	Q4               // dx >= 0, dy >  0 (lower right)
)

func (s Sector) String() string {
	switch s {
	case Q1:
		return "Q1"
	case Q2:
		return "Q2"
	case Q3:
		return "Q3"
	case Q4:
		return "Q4"
	default:
		return "?"
	}
}

// Upper reports whether the sector lies above the horizontal centerline.
// Upper sectors are traversed from the outer edge toward the centerline,
// lower sectors the other way round.
func (s Sector) Upper() bool {
	return s == Q1 || s == Q2
}

// Sectors lists all sectors in traversal rank order.
var Sectors = [4]Sector{Q1, Q2, Q3, Q4}

// Center is the bounding-box center of a hole set.
type Center struct {
	X float64
	Y float64
}

// BoundingCenter computes the bounding-box center of the given holes.
// The second return is false for an empty set.
func BoundingCenter(holes []*hole.Hole) (Center, bool) {
	if len(holes) == 0 {
		return Center{}, false
	}
	minX, maxX := holes[0].X, holes[0].X
	minY, maxY := holes[0].Y, holes[0].Y
	for _, h := range holes[1:] {
		if h.X < minX {
			minX = h.X
		}
		if h.X > maxX {
			maxX = h.X
		}
		if h.Y < minY {
			minY = h.Y
		}
		if h.Y > maxY {
			maxY = h.Y
		}
	}
	return Center{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}, true
}

// classifyOne assigns one hole to its sector. Within epsilon of the
// vertical centerline the measured x is treated as noise and the hole's
// side tag resolves the dx sign; an untagged hole falls back to the plain
// geometric rule, which keeps the partition total and deterministic.
func classifyOne(h *hole.Hole, c Center, epsilon float64) Sector {
	dx := h.X - c.X
	dy := h.Y - c.Y

	right := dx >= 0
	if dx < epsilon && dx > -epsilon {
		switch h.Side {
		case hole.SideLeft:
			right = false
		case hole.SideRight:
			right = true
		}
	}

	if dy <= 0 {
		if right {
			return Q1
		}
		return Q2
	}
	if right {
		return Q4
	}
	return Q3
}

// Classify partitions the holes into sectors. Every hole lands in exactly
// one sector; an empty input yields an empty map. This never fails, even
// on degenerate (collinear or single-point) geometry.
func Classify(holes []*hole.Hole, epsilon float64) map[Sector][]*hole.Hole {
	out := make(map[Sector][]*hole.Hole)
	if len(holes) == 0 {
		return out
	}
	c, _ := BoundingCenter(holes)
	for _, h := range holes {
		s := classifyOne(h, c, epsilon)
		out[s] = append(out[s], h)
	}
	return out
}

// Degenerate reports whether the classification collapsed into a single
// sector. Not an error, but worth a warning upstream: it usually means the
// workpiece geometry or the center epsilon is off.
func Degenerate(bySector map[Sector][]*hole.Hole) bool {
	populated := 0
	for _, hs := range bySector {
		if len(hs) > 0 {
			populated++
		}
	}
	return populated == 1
}
