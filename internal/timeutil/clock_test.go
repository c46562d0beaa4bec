package timeutil

import (
	"testing"
	"time"
)

func TestMockClockNowAndSince(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewMockClock(start)
	if !c.Now().Equal(start) {
		t.Fatalf("Now = %v, want %v", c.Now(), start)
	}
	c.Advance(3 * time.Second)
	if got := c.Since(start); got != 3*time.Second {
		t.Errorf("Since = %v, want 3s", got)
	}
}

func TestMockTickerFiresPerPeriod(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	tk := c.NewTicker(100 * time.Millisecond)

	c.Advance(350 * time.Millisecond)
	if got := drain(tk.C()); got != 3 {
		t.Errorf("got %d ticks after 350ms, want 3", got)
	}

	// The leftover 50ms carries into the next advance.
	c.Advance(50 * time.Millisecond)
	if got := drain(tk.C()); got != 1 {
		t.Errorf("got %d ticks after +50ms, want 1", got)
	}
}

func TestMockTickerStop(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	tk := c.NewTicker(10 * time.Millisecond)
	tk.Stop()
	c.Advance(time.Second)
	if got := drain(tk.C()); got != 0 {
		t.Errorf("stopped ticker fired %d times", got)
	}
}

func TestMockClockMultipleTickers(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	fast := c.NewTicker(10 * time.Millisecond)
	slow := c.NewTicker(25 * time.Millisecond)

	c.Advance(50 * time.Millisecond)
	if got := drain(fast.C()); got != 5 {
		t.Errorf("fast ticker fired %d times, want 5", got)
	}
	if got := drain(slow.C()); got != 2 {
		t.Errorf("slow ticker fired %d times, want 2", got)
	}
}

func drain(ch <-chan time.Time) int {
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			return n
		}
	}
}
