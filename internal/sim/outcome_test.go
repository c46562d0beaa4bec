package sim

import "testing"

func TestNewBernoulliSourceValidates(t *testing.T) {
	for _, p := range []float64{-0.1, 1.1} {
		if _, err := NewBernoulliSource(p, 1); err == nil {
			t.Errorf("p=%g: expected error", p)
		}
	}
}

func TestBernoulliSourceExtremes(t *testing.T) {
	always, err := NewBernoulliSource(1.0, 7)
	if err != nil {
		t.Fatal(err)
	}
	never, err := NewBernoulliSource(0.0, 7)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if ok, _ := always.Draw(); !ok {
			t.Fatal("p=1.0 drew false")
		}
		if ok, _ := never.Draw(); ok {
			t.Fatal("p=0.0 drew true")
		}
	}
}

func TestBernoulliSourceReplaysUnderSeed(t *testing.T) {
	a, _ := NewBernoulliSource(0.5, 99)
	b, _ := NewBernoulliSource(0.5, 99)
	for i := 0; i < 200; i++ {
		av, _ := a.Draw()
		bv, _ := b.Draw()
		if av != bv {
			t.Fatalf("draw %d diverged under identical seed", i)
		}
	}
}

func TestFixedSource(t *testing.T) {
	if ok, err := NewFixedSource(true).Draw(); !ok || err != nil {
		t.Errorf("fixed true: got %v, %v", ok, err)
	}
	if ok, err := NewFixedSource(false).Draw(); ok || err != nil {
		t.Errorf("fixed false: got %v, %v", ok, err)
	}
}
