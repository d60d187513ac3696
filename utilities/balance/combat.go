// Package balance provides Monte Carlo simulation tools for game balance testing.
package balance

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

// Policy names accepted by ParsePolicy.
const (
	PolicyAttack    = "attack"
	PolicySpecial   = "special"
	PolicyAlternate = "alternate"
)

// ParsePolicy maps a policy name to the hero's per-round choice.
func ParsePolicy(name string) (combat.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyAttack:
		return combat.AlwaysAttack, nil
	case PolicySpecial:
		return specialFirst, nil
	case PolicyAlternate:
		return func(e *combat.Engine) combat.HeroAction {
			if e.Round()%2 == 1 {
				return combat.Special
			}
			return combat.Attack
		}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q (want attack, special or alternate)", name)
	}
}

// specialFirst uses the ability every round, except that a healer only heals
// once below half health so the fight can end.
func specialFirst(e *combat.Engine) combat.HeroAction {
	h := e.Hero()
	if h.Class() == character.Priestess && h.HP()*2 > h.MaxHP() {
		return combat.Attack
	}
	return combat.Special
}

// CombatResult holds the outcome of a single combat simulation
type CombatResult struct {
	HeroWon      bool
	Rounds       int
	HeroHPRemain int
	DamageTaken  int
	MonsterHP    int
}

// SimulationResult holds aggregated results from many combat simulations
type SimulationResult struct {
	Class          character.HeroClass
	Monster        character.MonsterKind
	Seed           int64
	Simulations    int
	HeroWins       int
	MonsterWins    int
	WinRate        float64
	AvgRounds      float64
	AvgHPLeft      float64 // Average HP remaining when the hero wins
	AvgDamageTaken float64
	MinRounds      int
	MaxRounds      int
}

// SimulateCombat runs a single fight between a fresh hero and a fresh monster.
func SimulateCombat(defs *character.Definitions, class character.HeroClass, kind character.MonsterKind,
	policy combat.Policy, src rng.Source) (CombatResult, error) {
	hero, err := defs.NewHero(class, "")
	if err != nil {
		return CombatResult{}, err
	}
	monster, err := defs.NewMonster(kind)
	if err != nil {
		return CombatResult{}, err
	}
	engine, err := combat.NewEngine(hero, monster, src)
	if err != nil {
		return CombatResult{}, err
	}
	if _, err := engine.Run(policy); err != nil {
		return CombatResult{}, err
	}

	return CombatResult{
		HeroWon:      engine.VictorSide() == combat.SideHero,
		Rounds:       engine.Round(),
		HeroHPRemain: hero.HP(),
		DamageTaken:  hero.MaxHP() - hero.HP(),
		MonsterHP:    monster.HP(),
	}, nil
}

// RunSimulation runs iterations fights of one class against one monster kind,
// drawing every roll from a single stream seeded with seed.
func RunSimulation(defs *character.Definitions, class character.HeroClass, kind character.MonsterKind,
	policy combat.Policy, iterations int, seed int64) (SimulationResult, error) {
	if iterations < 1 {
		return SimulationResult{}, fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}
	if defs == nil {
		defs = character.DefaultDefinitions()
	}
	result := SimulationResult{
		Class:       class,
		Monster:     kind,
		Seed:        seed,
		Simulations: iterations,
		MinRounds:   combat.MaxRounds,
	}

	src := rng.NewSeeded(seed)
	totalRounds := 0
	totalHPLeft := 0
	totalDamageTaken := 0

	for i := 0; i < iterations; i++ {
		fight, err := SimulateCombat(defs, class, kind, policy, src)
		if err != nil {
			return SimulationResult{}, fmt.Errorf("%s vs %s: %w", class, kind, err)
		}

		if fight.HeroWon {
			result.HeroWins++
			totalHPLeft += fight.HeroHPRemain
		} else {
			result.MonsterWins++
		}

		totalRounds += fight.Rounds
		totalDamageTaken += fight.DamageTaken

		if fight.Rounds < result.MinRounds {
			result.MinRounds = fight.Rounds
		}
		if fight.Rounds > result.MaxRounds {
			result.MaxRounds = fight.Rounds
		}
	}

	result.WinRate = float64(result.HeroWins) / float64(iterations) * 100
	result.AvgRounds = float64(totalRounds) / float64(iterations)
	result.AvgDamageTaken = float64(totalDamageTaken) / float64(iterations)
	if result.HeroWins > 0 {
		result.AvgHPLeft = float64(totalHPLeft) / float64(result.HeroWins)
	}

	return result, nil
}

// ScaleMonster returns a copy of defs with one monster's hit points and damage
// multiplied by factor.
func ScaleMonster(defs *character.Definitions, kind character.MonsterKind, factor float64) (*character.Definitions, error) {
	def, ok := defs.Monsters[kind]
	if !ok {
		return nil, fmt.Errorf("unknown monster kind %q", kind)
	}
	if factor <= 0 {
		return nil, fmt.Errorf("scale factor must be positive, got %.2f", factor)
	}

	scaled := &character.Definitions{
		Heroes:   defs.Heroes,
		Monsters: make(map[character.MonsterKind]character.MonsterDefinition, len(defs.Monsters)),
	}
	for k, v := range defs.Monsters {
		scaled.Monsters[k] = v
	}

	def.MaxHP = max(1, int(float64(def.MaxHP)*factor))
	def.MinDamage = int(float64(def.MinDamage) * factor)
	def.MaxDamage = max(def.MinDamage, int(float64(def.MaxDamage)*factor))
	scaled.Monsters[kind] = def
	return scaled, nil
}

// ScalingResult is one row of a monster scaling sweep.
type ScalingResult struct {
	Factor float64
	SimulationResult
}

// RunScalingSim measures how a class fares as one monster kind is made tougher.
func RunScalingSim(defs *character.Definitions, class character.HeroClass, kind character.MonsterKind,
	policy combat.Policy, factors []float64, iterations int, seed int64) ([]ScalingResult, error) {
	if defs == nil {
		defs = character.DefaultDefinitions()
	}
	results := make([]ScalingResult, 0, len(factors))
	for i, f := range factors {
		scaled, err := ScaleMonster(defs, kind, f)
		if err != nil {
			return nil, err
		}
		r, err := RunSimulation(scaled, class, kind, policy, iterations, seed+int64(i))
		if err != nil {
			return nil, err
		}
		results = append(results, ScalingResult{Factor: f, SimulationResult: r})
	}
	return results, nil
}
