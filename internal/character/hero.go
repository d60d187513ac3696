package character

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

// HeroClass identifies a playable class
type HeroClass string

const (
	Warrior   HeroClass = "warrior"
	Priestess HeroClass = "priestess"
	Thief     HeroClass = "thief"
)

// AllHeroClasses returns all valid classes
func AllHeroClasses() []HeroClass {
	return []HeroClass{Warrior, Priestess, Thief}
}

// IsValid returns true if the class is a playable class
func (c HeroClass) IsValid() bool {
	switch c {
	case Warrior, Priestess, Thief:
		return true
	default:
		return false
	}
}

// String returns the display name of the class
func (c HeroClass) String() string {
	switch c {
	case Warrior:
		return "Warrior"
	case Priestess:
		return "Priestess"
	case Thief:
		return "Thief"
	default:
		return "Unknown"
	}
}

// ParseHeroClass parses a string into a HeroClass, case-insensitive
func ParseHeroClass(s string) (HeroClass, error) {
	c := HeroClass(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown hero class: %s", s)
	}
	return c, nil
}

// Hero is the player's character.
type Hero struct {
	Character
	class      HeroClass
	def        *HeroDefinition
	ability    AbilityFunc
	healing    int
	vision     int
	pillars    map[items.Pillar]bool
	visionLive bool
}

// Class returns the hero's class tag.
func (h *Hero) Class() HeroClass { return h.class }

// Definition returns the definition the hero was built from.
func (h *Hero) Definition() *HeroDefinition { return h.def }

// BlockChance returns the probability of negating an incoming hit.
func (h *Hero) BlockChance() float64 { return h.def.BlockChance }

// HealingPotions returns the number of healing potions carried.
func (h *Hero) HealingPotions() int { return h.healing }

// VisionPotions returns the number of vision potions carried.
func (h *Hero) VisionPotions() int { return h.vision }

// VisionActive reports whether a vision potion is in effect.
func (h *Hero) VisionActive() bool { return h.visionLive }

// ClearVision ends the effect of a vision potion.
func (h *Hero) ClearVision() { h.visionLive = false }

// AttemptBlock rolls the hero's block chance. Consulted by combat before damage
// from an incoming hit is applied.
func (h *Hero) AttemptBlock(src rng.Source) bool {
	if !h.IsAlive() {
		return false
	}
	return src.RollChance(h.def.BlockChance)
}

// UseSpecialAbility performs the class ability against target.
func (h *Hero) UseSpecialAbility(target Combatant, src rng.Source) AbilityResult {
	if !h.IsAlive() {
		return AbilityResult{Name: h.def.Ability.Name, Message: h.Name() + " is defeated and cannot act."}
	}
	result := h.ability(h, target, src)
	result.Name = h.def.Ability.Name

	logger.Debug("Special ability",
		"hero", h.Name(),
		"class", h.class,
		"ability", result.Name,
		"triggered", result.Triggered,
		"damage", result.TotalDamage(),
		"healing", result.Healing)

	return result
}

// PotionResult describes the outcome of drinking a potion.
type PotionResult struct {
	Used      bool   `json:"used"`
	Healing   int    `json:"healing,omitempty"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

// UseHealingPotion drinks a healing potion. With none left, or at full health,
// nothing is consumed and the result reports no effect.
func (h *Hero) UseHealingPotion(src rng.Source) PotionResult {
	switch {
	case h.healing == 0:
		return PotionResult{Message: "You have no healing potions."}
	case !h.IsAlive():
		return PotionResult{Remaining: h.healing, Message: h.Name() + " is defeated."}
	case h.HP() >= h.MaxHP():
		return PotionResult{Remaining: h.healing, Message: "You are already at full health."}
	}

	h.healing--
	healed := h.Heal(src.RollDamage(h.def.PotionHealMin, h.def.PotionHealMax))
	return PotionResult{
		Used:      true,
		Healing:   healed,
		Remaining: h.healing,
		Message:   fmt.Sprintf("You drink a healing potion and recover %d HP.", healed),
	}
}

// UseVisionPotion drinks a vision potion. The caller reveals the rooms.
func (h *Hero) UseVisionPotion() PotionResult {
	if h.vision == 0 {
		return PotionResult{Message: "You have no vision potions."}
	}
	if !h.IsAlive() {
		return PotionResult{Remaining: h.vision, Message: h.Name() + " is defeated."}
	}
	h.vision--
	h.visionLive = true
	return PotionResult{
		Used:      true,
		Remaining: h.vision,
		Message:   "Your sight stretches through the walls around you.",
	}
}

// AddPotion puts a collected potion in the inventory. Other kinds are ignored.
func (h *Hero) AddPotion(kind items.Kind) bool {
	switch kind {
	case items.KindHealingPotion:
		h.healing++
	case items.KindVisionPotion:
		h.vision++
	default:
		return false
	}
	return true
}

// CollectPillar adds p to the collected set. Collecting a pillar already held
// is a no-op and reports false.
func (h *Hero) CollectPillar(p items.Pillar) bool {
	if !p.IsValid() || h.pillars[p] {
		return false
	}
	h.pillars[p] = true
	return true
}

// HasPillar reports whether p has been collected.
func (h *Hero) HasPillar(p items.Pillar) bool {
	return h.pillars[p]
}

// Pillars returns the collected pillars in display order.
func (h *Hero) Pillars() []items.Pillar {
	var out []items.Pillar
	for _, p := range items.AllPillars() {
		if h.pillars[p] {
			out = append(out, p)
		}
	}
	return out
}

// HasAllPillars reports whether all four pillars are held.
func (h *Hero) HasAllPillars() bool {
	return len(h.Pillars()) == len(items.AllPillars())
}

// HeroState is the mutable part of a hero, used to restore a saved game.
type HeroState struct {
	HP             int
	Position       grid.Coord
	HealingPotions int
	VisionPotions  int
	Pillars        []items.Pillar
	VisionActive   bool
}

// Restore overwrites the mutable state of a freshly built hero.
func (h *Hero) Restore(state HeroState) error {
	if state.HealingPotions < 0 || state.VisionPotions < 0 {
		return fmt.Errorf("negative potion count")
	}
	h.SetHP(state.HP)
	h.SetPosition(state.Position)
	h.healing = state.HealingPotions
	h.vision = state.VisionPotions
	h.visionLive = state.VisionActive
	h.pillars = make(map[items.Pillar]bool)
	for _, raw := range state.Pillars {
		p, err := items.ParsePillar(string(raw))
		if err != nil {
			return err
		}
		if !h.CollectPillar(p) {
			return fmt.Errorf("pillar %q listed twice", p)
		}
	}
	return nil
}

func (h *Hero) String() string {
	return fmt.Sprintf("%s the %s (HP %d/%d, healing %d, vision %d, pillars %v)",
		h.Name(), h.class, h.HP(), h.MaxHP(), h.healing, h.vision, h.Pillars())
}
