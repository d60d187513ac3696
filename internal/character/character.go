// Package character implements the hero and monster capability model.
//
// Heroes and monsters share a Character core (HP, damage range, speed, hit
// chance, position). Variants are closed sets of tagged data: a HeroClass or
// MonsterKind plus a definition record, with class behaviour bound through
// strategy functions rather than type hierarchies.
package character

import (
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

// Stats holds the values every combatant carries.
type Stats struct {
	MaxHP       int     `yaml:"hp" json:"hp"`
	MinDamage   int     `yaml:"min_damage" json:"min_damage"`
	MaxDamage   int     `yaml:"max_damage" json:"max_damage"`
	AttackSpeed int     `yaml:"attack_speed" json:"attack_speed"`
	HitChance   float64 `yaml:"hit_chance" json:"hit_chance"`
}

// Validate rejects stats that cannot produce a playable combatant.
func (s Stats) Validate() error {
	switch {
	case s.MaxHP <= 0:
		return gameerr.Configurationf("hp must be positive, got %d", s.MaxHP)
	case s.MinDamage < 0:
		return gameerr.Configurationf("min_damage must not be negative, got %d", s.MinDamage)
	case s.MaxDamage < s.MinDamage:
		return gameerr.Configurationf("max_damage %d below min_damage %d", s.MaxDamage, s.MinDamage)
	case s.AttackSpeed < 1:
		return gameerr.Configurationf("attack_speed must be at least 1, got %d", s.AttackSpeed)
	case s.HitChance < 0 || s.HitChance > 1:
		return gameerr.Configurationf("hit_chance must be within [0,1], got %.2f", s.HitChance)
	}
	return nil
}

// Combatant is the capability set the combat engine needs from either side.
type Combatant interface {
	Name() string
	HP() int
	MaxHP() int
	IsAlive() bool
	AttackSpeed() int
	HitChance() float64
	DamageRange() (min, max int)
	TakeDamage(amount int) int
	Heal(amount int) int
}

// Blocker is implemented by combatants that can negate an incoming hit.
type Blocker interface {
	AttemptBlock(src rng.Source) bool
}

// DoorChecker answers whether a door leads out of a room in a direction.
type DoorChecker interface {
	HasDoor(from grid.Coord, dir grid.Direction) bool
}

// AttackResult describes a single attack roll.
type AttackResult struct {
	Hit            bool `json:"hit"`
	Blocked        bool `json:"blocked"`
	Damage         int  `json:"damage"`
	TargetDefeated bool `json:"target_defeated"`
}

// Character is the shared core of heroes and monsters.
type Character struct {
	name  string
	stats Stats
	hp    int
	pos   grid.Coord
}

func newCharacter(name string, stats Stats) Character {
	return Character{name: name, stats: stats, hp: stats.MaxHP}
}

func (c *Character) Name() string { return c.name }
func (c *Character) Stats() Stats { return c.stats }
func (c *Character) HP() int { return c.hp }
func (c *Character) MaxHP() int { return c.stats.MaxHP }
func (c *Character) AttackSpeed() int { return c.stats.AttackSpeed }
func (c *Character) HitChance() float64 { return c.stats.HitChance }
func (c *Character) Position() grid.Coord { return c.pos }

// DamageRange returns the inclusive damage bounds of a normal attack.
func (c *Character) DamageRange() (int, int) {
	return c.stats.MinDamage, c.stats.MaxDamage
}

// IsAlive reports whether HP is above zero. A defeated character takes no actions.
func (c *Character) IsAlive() bool {
	return c.hp > 0
}

// SetPosition places the character without consulting doors (spawn, restore).
func (c *Character) SetPosition(pos grid.Coord) {
	c.pos = pos
}

// SetHP sets current HP when restoring a saved character, clamped to [0,MaxHP].
func (c *Character) SetHP(hp int) {
	if hp < 0 || hp > c.stats.MaxHP {
		gameerr.Violation("restored hp out of range", "character", c.name, "hp", hp, "max_hp", c.stats.MaxHP)
	}
	c.hp = clamp(hp, 0, c.stats.MaxHP)
}

// TakeDamage applies damage and returns the amount actually removed.
// HP never drops below zero; a defeated character takes no further damage.
func (c *Character) TakeDamage(amount int) int {
	if amount < 0 {
		gameerr.Violation("negative damage", "character", c.name, "amount", amount)
		return 0
	}
	if !c.IsAlive() {
		return 0
	}
	applied := amount
	if applied > c.hp {
		applied = c.hp
	}
	c.hp -= applied
	return applied
}

// Heal restores HP up to MaxHP and returns the amount actually restored.
// A defeated character cannot be healed.
func (c *Character) Heal(amount int) int {
	if amount < 0 {
		gameerr.Violation("negative healing", "character", c.name, "amount", amount)
		return 0
	}
	if !c.IsAlive() {
		return 0
	}
	applied := amount
	if room := c.stats.MaxHP - c.hp; applied > room {
		applied = room
	}
	c.hp += applied
	return applied
}

// Move steps one room in dir if a door exists there. It reports false, leaving
// the position unchanged, when the way is blocked or the character is defeated.
func (c *Character) Move(dir grid.Direction, doors DoorChecker) bool {
	if !c.IsAlive() || !dir.IsValid() {
		return false
	}
	if doors == nil || !doors.HasDoor(c.pos, dir) {
		return false
	}
	c.pos = c.pos.Step(dir)
	return true
}

// Attack performs a normal attack against target.
func (c *Character) Attack(target Combatant, src rng.Source) AttackResult {
	return Strike(c, target, src)
}

// Strike resolves one normal attack: hit roll, then a block attempt if the
// target can block, then a damage roll applied through TakeDamage.
func Strike(attacker, target Combatant, src rng.Source) AttackResult {
	if attacker == nil || target == nil || !attacker.IsAlive() || !target.IsAlive() {
		return AttackResult{TargetDefeated: target != nil && !target.IsAlive()}
	}

	var result AttackResult
	if !src.RollChance(attacker.HitChance()) {
		return result
	}
	result.Hit = true

	if blocker, ok := target.(Blocker); ok && blocker.AttemptBlock(src) {
		result.Blocked = true
		return result
	}

	min, max := attacker.DamageRange()
	result.Damage = target.TakeDamage(src.RollDamage(min, max))
	result.TargetDefeated = !target.IsAlive()
	return result
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
