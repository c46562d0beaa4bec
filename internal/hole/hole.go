// Package hole models the inspection points on a workpiece and the
// registry that owns them for the lifetime of an inspection run.
package hole

import (
	"fmt"
	"strings"
)

// Status is the persisted inspection status of a hole.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusQualified
	StatusDefective
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusQualified:
		return "qualified"
	case StatusDefective:
		return "defective"
	default:
		return "unknown"
	}
}

// ParseStatus converts a stored status string back to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "in_progress":
		return StatusInProgress, nil
	case "qualified":
		return StatusQualified, nil
	case "defective":
		return StatusDefective, nil
	}
	return StatusPending, fmt.Errorf("unknown hole status %q", s)
}

// Terminal reports whether the status is a final inspection outcome.
func (s Status) Terminal() bool {
	return s == StatusQualified || s == StatusDefective
}

// Side identifies which physical half of the workpiece a hole was drilled
// on. It disambiguates holes that sit within the centerline dead zone,
// where the measured x coordinate is too noisy to trust.
type Side int

const (
	SideUnknown Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// SideFromID derives the side tag from the naming convention used by the
// drilling program: IDs beginning with "L" or "R" (case-insensitive)
// carry the half they belong to. Anything else is SideUnknown.
func SideFromID(id string) Side {
	if id == "" {
		return SideUnknown
	}
	switch strings.ToUpper(id[:1]) {
	case "L":
		return SideLeft
	case "R":
		return SideRight
	}
	return SideUnknown
}

// Hole is a single inspection point. X and Y are workpiece coordinates in
// length units. Status is the persisted inspection status; the transient
// in-progress display overlay lives on the Registry, not here.
type Hole struct {
	ID     string
	X      float64
	Y      float64
	Side   Side
	Status Status
}
