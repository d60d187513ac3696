// Package items models what a room can contain besides monsters: collectibles
// (pillars and potions) that move into the hero's inventory, and hazards (pits)
// that fire on every entry and are never picked up.
package items

import "fmt"

// Kind identifies an item.
type Kind string

const (
	KindHealingPotion Kind = "healing_potion"
	KindVisionPotion  Kind = "vision_potion"
	KindPillar        Kind = "pillar"
	KindPit           Kind = "pit"
)

// Category splits kinds into the two disjoint refinements of Item.
type Category int

const (
	CategoryCollectible Category = iota
	CategoryHazard
)

func (c Category) String() string {
	if c == CategoryHazard {
		return "hazard"
	}
	return "collectible"
}

// Category returns the refinement this kind belongs to.
func (k Kind) Category() Category {
	if k == KindPit {
		return CategoryHazard
	}
	return CategoryCollectible
}

// AllKinds returns every item kind, collectibles first.
func AllKinds() []Kind {
	return []Kind{KindHealingPotion, KindVisionPotion, KindPillar, KindPit}
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Pillar identifies one of the four win-condition pillars.
type Pillar string

const (
	PillarAbstraction   Pillar = "A"
	PillarEncapsulation Pillar = "E"
	PillarInheritance   Pillar = "I"
	PillarPolymorphism  Pillar = "P"
)

// AllPillars returns the four pillars in display order.
func AllPillars() []Pillar {
	return []Pillar{PillarAbstraction, PillarEncapsulation, PillarInheritance, PillarPolymorphism}
}

// IsValid reports whether p is one of the four pillars.
func (p Pillar) IsValid() bool {
	switch p {
	case PillarAbstraction, PillarEncapsulation, PillarInheritance, PillarPolymorphism:
		return true
	}
	return false
}

// Name returns the long name of the pillar.
func (p Pillar) Name() string {
	switch p {
	case PillarAbstraction:
		return "Abstraction"
	case PillarEncapsulation:
		return "Encapsulation"
	case PillarInheritance:
		return "Inheritance"
	case PillarPolymorphism:
		return "Polymorphism"
	}
	return "Unknown"
}

// ParsePillar converts a letter or a long name to a Pillar.
func ParsePillar(s string) (Pillar, error) {
	for _, p := range AllPillars() {
		if s == string(p) || s == p.Name() {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown pillar: %q", s)
}

// Item is one interactable object lying in a room.
type Item struct {
	Kind        Kind   `yaml:"kind" json:"kind"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Pillar      Pillar `yaml:"pillar,omitempty" json:"pillar,omitempty"`
}

// Category returns whether the item is collectible or a hazard.
func (i *Item) Category() Category {
	return i.Kind.Category()
}

// Symbol returns the single-character map glyph for the item.
func (i *Item) Symbol() rune {
	switch i.Kind {
	case KindHealingPotion:
		return 'H'
	case KindVisionPotion:
		return 'V'
	case KindPit:
		return 'X'
	case KindPillar:
		if i.Pillar != "" {
			return rune(i.Pillar[0])
		}
	}
	return '?'
}

func (i *Item) String() string {
	return i.Name
}

// NewHealingPotion creates a healing potion.
func NewHealingPotion() *Item {
	return &Item{
		Kind:        KindHealingPotion,
		Name:        "Healing Potion",
		Description: "Restores a few hit points.",
	}
}

// NewVisionPotion creates a vision potion.
func NewVisionPotion() *Item {
	return &Item{
		Kind:        KindVisionPotion,
		Name:        "Vision Potion",
		Description: "Reveals the rooms surrounding you.",
	}
}

// NewPit creates a pit hazard.
func NewPit() *Item {
	return &Item{
		Kind:        KindPit,
		Name:        "Pit",
		Description: "A hole in the floor. It hurts every time.",
	}
}

// NewPillar creates the collectible for pillar p.
func NewPillar(p Pillar) *Item {
	return &Item{
		Kind:        KindPillar,
		Name:        "Pillar of " + p.Name(),
		Description: "One of the four pillars needed to leave the dungeon.",
		Pillar:      p,
	}
}

// Validate checks an item loaded from a snapshot.
func (i *Item) Validate() error {
	if !i.Kind.IsValid() {
		return fmt.Errorf("unknown item kind %q", i.Kind)
	}
	if i.Kind == KindPillar && !i.Pillar.IsValid() {
		return fmt.Errorf("pillar item with unknown pillar %q", i.Pillar)
	}
	if i.Kind != KindPillar && i.Pillar != "" {
		return fmt.Errorf("%s item carries pillar %q", i.Kind, i.Pillar)
	}
	return nil
}
