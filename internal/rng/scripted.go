package rng

import "fmt"

// Scripted is a Source with predetermined answers, for tests that need to force
// hits, blocks or ability triggers. Queued values are consumed in order; once a
// queue is empty the fallbacks apply.
type Scripted struct {
	chances []bool
	ints    []int

	// ChanceFunc answers RollChance once queued chances run out.
	// If nil, exhausted chances return false.
	ChanceFunc func(p float64) bool

	// MaxDamage makes exhausted RollDamage calls return max instead of min.
	MaxDamage bool

	// Strict makes an exhausted queue panic instead of falling back.
	Strict bool

	ChanceCalls int
	DamageCalls int
	IntCalls    int
}

// NewScripted returns an empty Scripted source.
func NewScripted() *Scripted {
	return &Scripted{}
}

// Chances queues results for RollChance.
func (s *Scripted) Chances(v ...bool) *Scripted {
	s.chances = append(s.chances, v...)
	return s
}

// Ints queues results shared by RollDamage and RollInt. Damage results are
// clamped into the requested range, RollInt results into [0,n).
func (s *Scripted) Ints(v ...int) *Scripted {
	s.ints = append(s.ints, v...)
	return s
}

// Remaining reports how many queued chances and ints have not been consumed.
func (s *Scripted) Remaining() (chances, ints int) {
	return len(s.chances), len(s.ints)
}

// RollChance implements Source.
func (s *Scripted) RollChance(p float64) bool {
	s.ChanceCalls++
	if len(s.chances) > 0 {
		v := s.chances[0]
		s.chances = s.chances[1:]
		return v
	}
	if s.Strict {
		panic(fmt.Sprintf("rng: scripted chance queue exhausted (p=%.2f)", p))
	}
	if s.ChanceFunc != nil {
		return s.ChanceFunc(clampProbability(p))
	}
	return false
}

// RollDamage implements Source.
func (s *Scripted) RollDamage(min, max int) int {
	s.DamageCalls++
	if max < min {
		min, max = max, min
	}
	if v, ok := s.nextInt(); ok {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	}
	if s.Strict {
		panic(fmt.Sprintf("rng: scripted int queue exhausted (damage %d-%d)", min, max))
	}
	if s.MaxDamage {
		return max
	}
	return min
}

// RollInt implements Source.
func (s *Scripted) RollInt(n int) int {
	s.IntCalls++
	if n <= 0 {
		return 0
	}
	if v, ok := s.nextInt(); ok {
		if v < 0 {
			return 0
		}
		if v >= n {
			return n - 1
		}
		return v
	}
	if s.Strict {
		panic(fmt.Sprintf("rng: scripted int queue exhausted (n=%d)", n))
	}
	return 0
}

func (s *Scripted) nextInt() (int, bool) {
	if len(s.ints) == 0 {
		return 0, false
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v, true
}

// AlwaysHit answers every exhausted chance with p >= threshold as true and
// everything below as false. With threshold 0.5 it forces hits (0.6-0.8) while
// suppressing blocks and heals (0.1-0.4).
func AlwaysHit(threshold float64) func(p float64) bool {
	return func(p float64) bool {
		return p >= threshold
	}
}
