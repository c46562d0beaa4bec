package plan

import (
	"testing"

	"github.com/banshee-data/drill.report/internal/hole"
)

func mkHole(id string, x, y float64) *hole.Hole {
	return &hole.Hole{ID: id, X: x, Y: y, Side: hole.SideFromID(id)}
}

func TestBoundingCenter(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, ok := BoundingCenter(nil); ok {
			t.Fatal("expected ok=false for empty input")
		}
	})

	t.Run("square", func(t *testing.T) {
		holes := []*hole.Hole{
			mkHole("a", 0, 0), mkHole("b", 10, 0),
			mkHole("c", 0, 20), mkHole("d", 10, 20),
		}
		c, ok := BoundingCenter(holes)
		if !ok {
			t.Fatal("expected ok=true")
		}
		if c.X != 5 || c.Y != 10 {
			t.Errorf("center = (%v, %v), want (5, 10)", c.X, c.Y)
		}
	})
}

func TestClassifyQuadrants(t *testing.T) {
	// Center lands at (45, 50). Epsilon small enough not to interfere.
	holes := []*hole.Hole{
		mkHole("ur", 90, 10),  // dx>0 dy<0 -> Q1
		mkHole("ul", 10, 10),  // dx<0 dy<0 -> Q2
		mkHole("ll", 10, 90),  // dx<0 dy>0 -> Q3
		mkHole("lr", 90, 90),  // dx>0 dy>0 -> Q4
		mkHole("c", 50, 100),  // dx>0 dy>0 -> Q4
		mkHole("cu", 50, 0),   // dx>0 dy<0 -> Q1
		mkHole("mid", 50, 50), // dx>0 dy=0 -> Q1 (dy<=0 rule)
		mkHole("e", 0, 50),    // dx<0 dy=0 -> Q2
	}
	want := map[string]Sector{
		"ur": Q1, "ul": Q2, "ll": Q3, "lr": Q4,
		"c": Q4, "cu": Q1, "mid": Q1, "e": Q2,
	}

	bySector := Classify(holes, 0.001)
	got := make(map[string]Sector)
	for s, hs := range bySector {
		for _, h := range hs {
			got[h.ID] = s
		}
	}
	if len(got) != len(holes) {
		t.Fatalf("classified %d holes, want %d", len(got), len(holes))
	}
	for id, ws := range want {
		if got[id] != ws {
			t.Errorf("hole %s classified %v, want %v", id, got[id], ws)
		}
	}
}

func TestClassifySideTagResolvesCenterline(t *testing.T) {
	// Holes straddle the centerline within epsilon; the measured dx sign
	// disagrees with the side tag and must lose.
	holes := []*hole.Hole{
		mkHole("a", 0, 0),
		mkHole("b", 100, 0),
		mkHole("L1", 50.4, 10), // dx=+0.4 but tagged left -> Q3 side
		mkHole("R1", 49.6, 10), // dx=-0.4 but tagged right -> Q4 side
	}

	bySector := Classify(holes, 1.0)
	sectorOf := func(id string) Sector {
		for s, hs := range bySector {
			for _, h := range hs {
				if h.ID == id {
					return s
				}
			}
		}
		t.Fatalf("hole %s not classified", id)
		return Q1
	}

	if s := sectorOf("L1"); s != Q3 {
		t.Errorf("L1 classified %v, want Q3", s)
	}
	if s := sectorOf("R1"); s != Q4 {
		t.Errorf("R1 classified %v, want Q4", s)
	}
}

func TestClassifyUntaggedInDeadZone(t *testing.T) {
	// An untagged hole in the dead zone keeps the plain geometric rule,
	// so the partition stays total and deterministic.
	holes := []*hole.Hole{
		mkHole("a", 0, 0),
		mkHole("b", 100, 0),
		mkHole("x1", 50.2, 10),
	}
	bySector := Classify(holes, 1.0)
	for s, hs := range bySector {
		for _, h := range hs {
			if h.ID == "x1" && s != Q4 {
				t.Errorf("x1 classified %v, want Q4 (dx>=0 fallback)", s)
			}
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	bySector := Classify(nil, 1.0)
	if len(bySector) != 0 {
		t.Errorf("expected empty map, got %d sectors", len(bySector))
	}
}

func TestDegenerate(t *testing.T) {
	t.Run("collinear set collapses", func(t *testing.T) {
		// All holes on one horizontal line right of center except none:
		// identical coordinates put everything in Q1.
		holes := []*hole.Hole{mkHole("a", 5, 5), mkHole("b", 5, 5)}
		bySector := Classify(holes, 0.001)
		if !Degenerate(bySector) {
			t.Error("expected degenerate classification")
		}
	})

	t.Run("spread set is not degenerate", func(t *testing.T) {
		holes := []*hole.Hole{
			mkHole("a", 0, 0), mkHole("b", 100, 0),
			mkHole("c", 0, 100), mkHole("d", 100, 100),
		}
		if Degenerate(Classify(holes, 0.001)) {
			t.Error("unexpected degenerate classification")
		}
	})
}
