package character

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

// AbilityConfig parameterises a class ability.
type AbilityConfig struct {
	Name string `yaml:"name" json:"name"`

	// Chance is the trigger probability (crushing blow, surprise attack).
	Chance float64 `yaml:"chance" json:"chance"`

	// MinAmount and MaxAmount bound the ability's damage or healing roll.
	MinAmount int `yaml:"min_amount" json:"min_amount"`
	MaxAmount int `yaml:"max_amount" json:"max_amount"`

	// CaughtChance is the overall probability that a surprise attack is
	// noticed and no attack happens.
	CaughtChance float64 `yaml:"caught_chance,omitempty" json:"caught_chance,omitempty"`
}

// AbilityResult describes what a special ability did.
type AbilityResult struct {
	Name      string         `json:"name"`
	Triggered bool           `json:"triggered"`
	Strikes   []AttackResult `json:"strikes,omitempty"`
	Healing   int            `json:"healing,omitempty"`
	Caught    bool           `json:"caught,omitempty"`
	Message   string         `json:"message"`
}

// TotalDamage sums the damage of every strike.
func (r AbilityResult) TotalDamage() int {
	total := 0
	for _, s := range r.Strikes {
		total += s.Damage
	}
	return total
}

// Hit reports whether any strike connected.
func (r AbilityResult) Hit() bool {
	for _, s := range r.Strikes {
		if s.Hit && !s.Blocked {
			return true
		}
	}
	return false
}

// AbilityFunc is the strategy bound to a hero class.
type AbilityFunc func(h *Hero, target Combatant, src rng.Source) AbilityResult

var abilities = map[HeroClass]AbilityFunc{
	Warrior:   crushingBlow,
	Priestess: divineHeal,
	Thief:     surpriseAttack,
}

// crushingBlow deals heavy damage on a successful roll and misses otherwise.
func crushingBlow(h *Hero, target Combatant, src rng.Source) AbilityResult {
	cfg := h.def.Ability
	if target == nil || !target.IsAlive() {
		return AbilityResult{Message: "There is nothing to strike."}
	}
	if !src.RollChance(cfg.Chance) {
		return AbilityResult{
			Strikes: []AttackResult{{}},
			Message: cfg.Name + " misses!",
		}
	}
	damage := target.TakeDamage(src.RollDamage(cfg.MinAmount, cfg.MaxAmount))
	return AbilityResult{
		Triggered: true,
		Strikes:   []AttackResult{{Hit: true, Damage: damage, TargetDefeated: !target.IsAlive()}},
		Message:   fmt.Sprintf("%s hits for %d damage!", cfg.Name, damage),
	}
}

// divineHeal restores the hero's own HP. It never damages the target and does
// nothing at full health.
func divineHeal(h *Hero, _ Combatant, src rng.Source) AbilityResult {
	cfg := h.def.Ability
	if h.HP() >= h.MaxHP() {
		return AbilityResult{Message: "You are already at full health."}
	}
	healed := h.Heal(src.RollDamage(cfg.MinAmount, cfg.MaxAmount))
	return AbilityResult{
		Triggered: true,
		Healing:   healed,
		Message:   fmt.Sprintf("%s restores %d HP.", cfg.Name, healed),
	}
}

// surpriseAttack has three outcomes: two normal attacks, getting caught with no
// attack, or a single normal attack.
func surpriseAttack(h *Hero, target Combatant, src rng.Source) AbilityResult {
	cfg := h.def.Ability
	if target == nil || !target.IsAlive() {
		return AbilityResult{Message: "There is nothing to strike."}
	}

	if src.RollChance(cfg.Chance) {
		first := Strike(h, target, src)
		second := Strike(h, target, src)
		result := AbilityResult{Triggered: true, Strikes: []AttackResult{first, second}}
		result.Message = describeStrikes(cfg.Name, result.Strikes)
		return result
	}

	// Caught is an overall probability; condition it on the first roll failing.
	if rest := 1 - cfg.Chance; rest > 0 && src.RollChance(cfg.CaughtChance/rest) {
		return AbilityResult{Caught: true, Message: "Got caught attempting " + cfg.Name + "!"}
	}

	strike := Strike(h, target, src)
	return AbilityResult{
		Strikes: []AttackResult{strike},
		Message: describeStrikes("Normal attack", []AttackResult{strike}),
	}
}

func describeStrikes(name string, strikes []AttackResult) string {
	var parts []string
	for _, s := range strikes {
		switch {
		case s.Blocked:
			parts = append(parts, "blocked")
		case s.Hit:
			parts = append(parts, fmt.Sprintf("hits for %d", s.Damage))
		default:
			parts = append(parts, "misses")
		}
	}
	return name + ": " + strings.Join(parts, ", ") + "."
}
