package plan

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarises the physical quality of a planned path. Hop distances
// are measured between the first hole of consecutive units, which tracks
// the gantry's actual travel closely enough to compare plans.
type Stats struct {
	Units      int     `json:"units"`
	Holes      int     `json:"holes"`
	Pairs      int     `json:"pairs"`
	Singletons int     `json:"singletons"`
	PairRate   float64 `json:"pair_rate"`

	TravelTotal  float64 `json:"travel_total"`
	HopMean      float64 `json:"hop_mean"`
	HopStdDev    float64 `json:"hop_std_dev"`
	HopMax       float64 `json:"hop_max"`
	SectorJumps  int     `json:"sector_jumps"`
	EstimateSecs float64 `json:"estimate_secs,omitempty"`
}

// ComputeStats derives travel metrics for a path. cycleSecs, when
// positive, adds a wall-clock estimate for the full run.
func ComputeStats(p Path, cycleSecs float64) Stats {
	st := Stats{Units: len(p), Holes: p.HoleCount()}
	if len(p) == 0 {
		return st
	}

	for _, u := range p {
		if u.Paired {
			st.Pairs++
		} else {
			st.Singletons++
		}
	}
	st.PairRate = float64(st.Pairs) / float64(len(p))

	hops := make([]float64, 0, len(p)-1)
	for i := 1; i < len(p); i++ {
		a, b := p[i-1].Holes[0], p[i].Holes[0]
		d := math.Hypot(b.X-a.X, b.Y-a.Y)
		hops = append(hops, d)
		st.TravelTotal += d
		if d > st.HopMax {
			st.HopMax = d
		}
		if p[i].Sector != p[i-1].Sector {
			st.SectorJumps++
		}
	}
	if len(hops) > 0 {
		st.HopMean = stat.Mean(hops, nil)
		st.HopStdDev = math.Sqrt(stat.Variance(hops, nil))
	}
	if cycleSecs > 0 {
		st.EstimateSecs = float64(len(p)) * cycleSecs
	}
	return st
}
