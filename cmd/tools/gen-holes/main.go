// Command gen-holes seeds the sqlite store with a synthetic drilled-hole
// grid for exercising the planner and simulation without machine data.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/banshee-data/drill.report/internal/hole"
	"github.com/banshee-data/drill.report/internal/store"
)

func main() {
	dbFile := flag.String("db", "inspection_data.db", "sqlite database path")
	rows := flag.Int("rows", 10, "number of rows")
	cols := flag.Int("cols", 12, "holes per row")
	pitchX := flag.Float64("pitch-x", 10.0, "x spacing between holes")
	pitchY := flag.Float64("pitch-y", 5.0, "y spacing between rows")
	jitter := flag.Float64("jitter", 0.2, "uniform coordinate noise amplitude")
	seed := flag.Int64("seed", 42, "noise seed")
	flag.Parse()

	st, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	rng := rand.New(rand.NewSource(*seed))
	holes := make([]hole.Hole, 0, *rows**cols)
	midCol := float64(*cols-1) * *pitchX / 2
	for r := 0; r < *rows; r++ {
		for c := 0; c < *cols; c++ {
			x := float64(c) * *pitchX
			side := hole.SideRight
			prefix := "R"
			if x < midCol {
				side = hole.SideLeft
				prefix = "L"
			}
			holes = append(holes, hole.Hole{
				ID:   fmt.Sprintf("%s%02d-%02d", prefix, r, c),
				X:    x + (rng.Float64()*2-1)**jitter,
				Y:    float64(r)**pitchY + (rng.Float64()*2-1)**jitter,
				Side: side,
			})
		}
	}

	if err := st.UpsertHoles(holes); err != nil {
		log.Fatalf("failed to write holes: %v", err)
	}
	log.Printf("✓ Seeded %d holes into %s", len(holes), *dbFile)
}
