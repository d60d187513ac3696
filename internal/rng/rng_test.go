package rng

import (
	"math"
	"testing"
)

func TestRollDamageRange(t *testing.T) {
	src := NewSeeded(42)
	for i := 0; i < 500; i++ {
		result := src.RollDamage(15, 30)
		if result < 15 || result > 30 {
			t.Errorf("RollDamage(15, 30) = %d, expected 15-30", result)
		}
	}

	// Reversed bounds are swapped
	for i := 0; i < 100; i++ {
		result := src.RollDamage(30, 15)
		if result < 15 || result > 30 {
			t.Errorf("RollDamage(30, 15) = %d, expected 15-30", result)
		}
	}

	if got := src.RollDamage(7, 7); got != 7 {
		t.Errorf("RollDamage(7, 7) = %d, want 7", got)
	}
}

func TestRollIntRange(t *testing.T) {
	src := NewSeeded(7)
	for i := 0; i < 500; i++ {
		result := src.RollInt(6)
		if result < 0 || result >= 6 {
			t.Errorf("RollInt(6) = %d, expected 0-5", result)
		}
	}
	if got := src.RollInt(0); got != 0 {
		t.Errorf("RollInt(0) = %d, want 0", got)
	}
	if got := src.RollInt(-3); got != 0 {
		t.Errorf("RollInt(-3) = %d, want 0", got)
	}
}

func TestRollChanceClamps(t *testing.T) {
	src := NewSeeded(1)
	for i := 0; i < 200; i++ {
		if src.RollChance(-0.5) {
			t.Fatal("RollChance(-0.5) returned true")
		}
		if src.RollChance(0) {
			t.Fatal("RollChance(0) returned true")
		}
		if !src.RollChance(1) {
			t.Fatal("RollChance(1) returned false")
		}
		if !src.RollChance(7) {
			t.Fatal("RollChance(7) returned false")
		}
		if src.RollChance(math.NaN()) {
			t.Fatal("RollChance(NaN) returned true")
		}
	}
}

func TestRollChanceDistribution(t *testing.T) {
	src := NewSeeded(99)
	hits := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if src.RollChance(0.3) {
			hits++
		}
	}
	rate := float64(hits) / n
	if rate < 0.27 || rate > 0.33 {
		t.Errorf("RollChance(0.3) hit rate = %.3f, expected about 0.30", rate)
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a := NewSeeded(12345)
	b := NewSeeded(12345)
	for i := 0; i < 100; i++ {
		if a.RollChance(0.5) != b.RollChance(0.5) {
			t.Fatalf("RollChance diverged at call %d", i)
		}
		if a.RollDamage(1, 100) != b.RollDamage(1, 100) {
			t.Fatalf("RollDamage diverged at call %d", i)
		}
		if a.RollInt(9) != b.RollInt(9) {
			t.Fatalf("RollInt diverged at call %d", i)
		}
	}
}

func TestRestoreResumesStream(t *testing.T) {
	original := NewSeeded(2024)
	for i := 0; i < 37; i++ {
		original.RollDamage(1, 1000)
		original.RollChance(0.5)
	}

	restored := Restore(original.Seed(), original.Draws())
	if restored.Draws() != original.Draws() {
		t.Fatalf("Draws() = %d, want %d", restored.Draws(), original.Draws())
	}

	for i := 0; i < 50; i++ {
		want := original.RollDamage(1, 1000)
		got := restored.RollDamage(1, 1000)
		if got != want {
			t.Fatalf("restored RollDamage #%d = %d, want %d", i, got, want)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	src := NewSeeded(5)
	values := []int{0, 1, 2, 3, 4, 5, 6, 7}
	Shuffle(src, len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})

	seen := make(map[int]bool)
	for _, v := range values {
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Errorf("Shuffle lost elements: %v", values)
	}
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed() error = %v", err)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed() error = %v", err)
	}
	if a == b {
		t.Errorf("NewSeed() returned the same seed twice: %d", a)
	}
}

func TestScripted(t *testing.T) {
	src := NewScripted().Chances(true, false).Ints(50, -4, 3)

	if !src.RollChance(0.1) {
		t.Error("first queued chance should be true")
	}
	if src.RollChance(0.9) {
		t.Error("second queued chance should be false")
	}
	if src.RollChance(0.9) {
		t.Error("exhausted chance without ChanceFunc should be false")
	}

	if got := src.RollDamage(10, 20); got != 20 {
		t.Errorf("RollDamage clamps queued 50 to max: got %d, want 20", got)
	}
	if got := src.RollDamage(10, 20); got != 10 {
		t.Errorf("RollDamage clamps queued -4 to min: got %d, want 10", got)
	}
	if got := src.RollInt(2); got != 1 {
		t.Errorf("RollInt clamps queued 3 into [0,2): got %d, want 1", got)
	}
	if got := src.RollDamage(10, 20); got != 10 {
		t.Errorf("exhausted RollDamage = %d, want min 10", got)
	}

	src.ChanceFunc = AlwaysHit(0.5)
	if !src.RollChance(0.8) {
		t.Error("AlwaysHit(0.5) should hit at p=0.8")
	}
	if src.RollChance(0.2) {
		t.Error("AlwaysHit(0.5) should miss at p=0.2")
	}

	if src.ChanceCalls != 5 {
		t.Errorf("ChanceCalls = %d, want 5", src.ChanceCalls)
	}
}

func TestScriptedStrictPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("exhausted strict source did not panic")
		}
	}()
	src := NewScripted()
	src.Strict = true
	src.RollInt(3)
}
