package hole

import (
	"errors"
	"testing"
)

func testHoles() []Hole {
	return []Hole{
		{ID: "L00-00", X: 0, Y: 0, Side: SideLeft},
		{ID: "L00-01", X: 10, Y: 0, Side: SideLeft},
		{ID: "R00-02", X: 20, Y: 0, Side: SideRight},
	}
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry()
	if err := r.Replace(testHoles()); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}

	// Duplicate IDs reject the whole batch and leave the set unchanged.
	err := r.Replace([]Hole{{ID: "a"}, {ID: "a"}})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	if r.Len() != 3 {
		t.Errorf("len = %d after failed replace, want 3", r.Len())
	}
}

func TestRegistrySnapshotOrderAndSharing(t *testing.T) {
	r := NewRegistry()
	if err := r.Replace(testHoles()); err != nil {
		t.Fatal(err)
	}

	snap := r.Snapshot()
	wantIDs := []string{"L00-00", "L00-01", "R00-02"}
	for i, id := range wantIDs {
		if snap[i].ID != id {
			t.Fatalf("snapshot[%d] = %s, want %s", i, snap[i].ID, id)
		}
	}

	// Snapshot hands out the live pointers: a write through one is
	// visible on a later read.
	tok, err := r.BeginRun()
	if err != nil {
		t.Fatal(err)
	}
	tok.Finalize(snap[0], StatusQualified)
	tok.Close()

	h, ok := r.Get("L00-00")
	if !ok || h.Status != StatusQualified {
		t.Errorf("L00-00 status = %v, want qualified", h.Status)
	}
}

func TestRegistryRunGuards(t *testing.T) {
	r := NewRegistry()
	if err := r.Replace(testHoles()); err != nil {
		t.Fatal(err)
	}

	tok, err := r.BeginRun()
	if err != nil {
		t.Fatal(err)
	}
	if !r.RunActive() {
		t.Error("RunActive = false during run")
	}

	if err := r.Replace(testHoles()); !errors.Is(err, ErrSimulationActive) {
		t.Errorf("Replace during run: err = %v, want ErrSimulationActive", err)
	}
	if err := r.SetStatus("L00-00", StatusDefective); !errors.Is(err, ErrSimulationActive) {
		t.Errorf("SetStatus during run: err = %v, want ErrSimulationActive", err)
	}
	if _, err := r.BeginRun(); !errors.Is(err, ErrSimulationActive) {
		t.Errorf("second BeginRun: err = %v, want ErrSimulationActive", err)
	}

	tok.Close()
	if r.RunActive() {
		t.Error("RunActive = true after Close")
	}
	if err := r.SetStatus("L00-00", StatusDefective); err != nil {
		t.Errorf("SetStatus after run: %v", err)
	}
}

func TestRegistryOverlay(t *testing.T) {
	r := NewRegistry()
	if err := r.Replace(testHoles()); err != nil {
		t.Fatal(err)
	}
	snap := r.Snapshot()

	tok, err := r.BeginRun()
	if err != nil {
		t.Fatal(err)
	}
	tok.MarkInProgress(snap[0])

	// The overlay shows through display reads but never touches the
	// persisted status.
	h, _ := r.Get("L00-00")
	if h.Status != StatusInProgress {
		t.Errorf("display status = %v, want in_progress", h.Status)
	}
	if snap[0].Status != StatusPending {
		t.Errorf("persisted status = %v, want pending", snap[0].Status)
	}

	tok.Finalize(snap[0], StatusDefective)
	h, _ = r.Get("L00-00")
	if h.Status != StatusDefective {
		t.Errorf("status after finalize = %v, want defective", h.Status)
	}

	tok.MarkInProgress(snap[1])
	tok.Close()
	// Close clears any leftover overlay.
	h, _ = r.Get("L00-01")
	if h.Status != StatusPending {
		t.Errorf("status after close = %v, want pending", h.Status)
	}

	// A closed token is inert.
	tok.Finalize(snap[2], StatusQualified)
	h, _ = r.Get("R00-02")
	if h.Status != StatusPending {
		t.Errorf("closed token wrote status %v", h.Status)
	}
}

func TestRegistryHolesDisplayCopies(t *testing.T) {
	r := NewRegistry()
	if err := r.Replace(testHoles()); err != nil {
		t.Fatal(err)
	}
	hs := r.Holes()
	hs[0].Status = StatusDefective
	if h, _ := r.Get(hs[0].ID); h.Status != StatusPending {
		t.Error("Holes() must return copies, not live references")
	}
}
