package plan

import (
	"math"
	"sort"

	"github.com/banshee-data/drill.report/internal/hole"
)

// Row is one discretized row of holes within a sector, ordered by
// ascending x. Rows are ephemeral: they are recomputed from the registry
// snapshot on every plan and never persisted.
type Row struct {
	Key   float64
	Holes []*hole.Hole
}

// BinRows groups a sector's holes into rows keyed by y discretized to the
// given tolerance, and sorts each row left to right. The tolerance must
// match the nominal row pitch of the drilling grid: too small fragments a
// physical row into synthetic ones, too large merges neighbours.
func BinRows(holes []*hole.Hole, tolerance float64) []Row {
	if len(holes) == 0 {
		return nil
	}

	byKey := make(map[float64][]*hole.Hole)
	for _, h := range holes {
		key := math.Round(h.Y/tolerance) * tolerance
		byKey[key] = append(byKey[key], h)
	}

	rows := make([]Row, 0, len(byKey))
	for key, hs := range byKey {
		sort.SliceStable(hs, func(i, j int) bool {
			if hs[i].X != hs[j].X {
				return hs[i].X < hs[j].X
			}
			return hs[i].ID < hs[j].ID
		})
		rows = append(rows, Row{Key: key, Holes: hs})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}
