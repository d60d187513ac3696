// Package rng is the single source of randomness for the game. Every
// probabilistic decision (hit, block, ability trigger, heal, damage, placement)
// goes through a Source so that a seed plus a draw count fully determines a run.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source is the contract consumed by characters, combat and the dungeon generator.
type Source interface {
	// RollChance returns true with probability p. p is clamped to [0,1].
	RollChance(p float64) bool

	// RollDamage returns a uniform integer in [min,max]. Reversed bounds are swapped.
	RollDamage(min, max int) int

	// RollInt returns a uniform integer in [0,n). n <= 0 yields 0.
	RollInt(n int) int
}

// countingSource wraps a math/rand source and counts every draw so that the
// exact stream position can be persisted and replayed.
type countingSource struct {
	src   rand.Source64
	draws uint64
}

func (s *countingSource) Int63() int64 {
	s.draws++
	return s.src.Int63()
}

func (s *countingSource) Uint64() uint64 {
	s.draws++
	return s.src.Uint64()
}

func (s *countingSource) Seed(seed int64) {
	s.src.Seed(seed)
	s.draws = 0
}

// Seeded is a deterministic Source. Two Seeded values built from the same seed
// and asked the same sequence of questions give the same answers.
// Not safe for concurrent use; each session owns its own.
type Seeded struct {
	seed int64
	cs   *countingSource
	r    *rand.Rand
}

// NewSeeded creates a Source positioned at the start of the stream for seed.
func NewSeeded(seed int64) *Seeded {
	cs := &countingSource{src: rand.NewSource(seed).(rand.Source64)}
	return &Seeded{
		seed: seed,
		cs:   cs,
		r:    rand.New(cs),
	}
}

// Restore recreates a Source for seed advanced by draws underlying draws, as
// reported earlier by Draws. The next answer matches what the original
// Source would have produced.
func Restore(seed int64, draws uint64) *Seeded {
	s := NewSeeded(seed)
	for i := uint64(0); i < draws; i++ {
		s.cs.src.Int63()
	}
	s.cs.draws = draws
	return s
}

// Seed returns the seed the stream was created from.
func (s *Seeded) Seed() int64 {
	return s.seed
}

// Draws returns the number of underlying draws consumed so far.
func (s *Seeded) Draws() uint64 {
	return s.cs.draws
}

// RollChance implements Source.
func (s *Seeded) RollChance(p float64) bool {
	p = clampProbability(p)
	return s.r.Float64() < p
}

// RollDamage implements Source.
func (s *Seeded) RollDamage(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + s.r.Intn(max-min+1)
}

// RollInt implements Source.
func (s *Seeded) RollInt(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.Intn(n)
}

func clampProbability(p float64) float64 {
	if p != p { // NaN
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Shuffle permutes n elements with Fisher-Yates using src.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.RollInt(i + 1)
		swap(i, j)
	}
}

// NewSeed generates a random seed using crypto/rand. Used when the
// configuration asks for a fresh dungeon (seed 0).
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
