package sim

import (
	"fmt"
	"math/rand"
	"sync"
)

// OutcomeSource produces the per-hole inspection outcome draw. A true
// result qualifies the hole. Draw may fail (e.g. a hardware-backed source
// losing its link); the engine then applies the safe default outcome and
// keeps the run alive.
type OutcomeSource interface {
	Draw() (bool, error)
}

// BernoulliSource draws independent Bernoulli outcomes with a fixed
// success probability from a seeded generator, so a run replays
// identically under the same seed.
type BernoulliSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	p   float64
}

// NewBernoulliSource returns a seeded Bernoulli outcome source. The
// success probability must lie in [0, 1].
func NewBernoulliSource(p float64, seed int64) (*BernoulliSource, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("success rate must be in [0,1], got %g", p)
	}
	return &BernoulliSource{rng: rand.New(rand.NewSource(seed)), p: p}, nil
}

// Draw returns true with the configured probability.
func (s *BernoulliSource) Draw() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.p, nil
}

// fixedSource always returns the same outcome. Used in tests and by the
// deterministic success_rate extremes (0 and 1), where no randomness is
// involved at all.
type fixedSource struct{ ok bool }

func (f fixedSource) Draw() (bool, error) { return f.ok, nil }

// NewFixedSource returns a source that always yields ok.
func NewFixedSource(ok bool) OutcomeSource { return fixedSource{ok: ok} }
