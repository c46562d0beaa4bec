package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/drill.report/internal/hole"
)

func rowIDs(r Row) []string {
	ids := make([]string, len(r.Holes))
	for i, h := range r.Holes {
		ids[i] = h.ID
	}
	return ids
}

func TestBinRows(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if rows := BinRows(nil, 5.0); rows != nil {
			t.Errorf("expected nil rows, got %v", rows)
		}
	})

	t.Run("bins by tolerance and sorts by x", func(t *testing.T) {
		holes := []*hole.Hole{
			mkHole("a2", 20, 0.4),
			mkHole("a1", 10, -0.3), // same physical row as a2 under T=5
			mkHole("b1", 10, 9.8),
			mkHole("b2", 0, 10.2),
		}
		rows := BinRows(holes, 5.0)
		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(rows))
		}
		if diff := cmp.Diff([]string{"a1", "a2"}, rowIDs(rows[0])); diff != "" {
			t.Errorf("row 0 mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"b2", "b1"}, rowIDs(rows[1])); diff != "" {
			t.Errorf("row 1 mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("tolerance too small fragments a physical row", func(t *testing.T) {
		holes := []*hole.Hole{
			mkHole("a", 0, 0.0),
			mkHole("b", 10, 0.6),
		}
		if rows := BinRows(holes, 1.0); len(rows) != 2 {
			t.Errorf("T=1.0: got %d rows, want 2 (fragmented)", len(rows))
		}
		if rows := BinRows(holes, 5.0); len(rows) != 1 {
			t.Errorf("T=5.0: got %d rows, want 1 (merged)", len(rows))
		}
	})

	t.Run("equal x falls back to id order", func(t *testing.T) {
		holes := []*hole.Hole{
			mkHole("b", 10, 0),
			mkHole("a", 10, 0),
		}
		rows := BinRows(holes, 5.0)
		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(rows))
		}
		if diff := cmp.Diff([]string{"a", "b"}, rowIDs(rows[0])); diff != "" {
			t.Errorf("tie order mismatch (-want +got):\n%s", diff)
		}
	})
}
