package character

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
	"gopkg.in/yaml.v3"
)

// HeroDefinition is the stat record and ability parameters of a hero class.
type HeroDefinition struct {
	Stats         `yaml:",inline"`
	BlockChance   float64       `yaml:"block_chance" json:"block_chance"`
	PotionHealMin int           `yaml:"potion_heal_min" json:"potion_heal_min"`
	PotionHealMax int           `yaml:"potion_heal_max" json:"potion_heal_max"`
	Ability       AbilityConfig `yaml:"ability" json:"ability"`
}

// Validate checks the definition for a class.
func (d HeroDefinition) Validate(class HeroClass) error {
	if !class.IsValid() {
		return gameerr.Configurationf("unknown hero class %q", class)
	}
	if err := d.Stats.Validate(); err != nil {
		return gameerr.Wrap(err, "hero "+string(class))
	}
	switch {
	case d.BlockChance < 0 || d.BlockChance > 1:
		return gameerr.Configurationf("hero %s: block_chance must be within [0,1], got %.2f", class, d.BlockChance)
	case d.PotionHealMin < 0 || d.PotionHealMax < d.PotionHealMin:
		return gameerr.Configurationf("hero %s: bad potion heal range %d-%d", class, d.PotionHealMin, d.PotionHealMax)
	case d.Ability.Chance < 0 || d.Ability.Chance > 1:
		return gameerr.Configurationf("hero %s: ability chance must be within [0,1], got %.2f", class, d.Ability.Chance)
	case d.Ability.CaughtChance < 0 || d.Ability.Chance+d.Ability.CaughtChance > 1:
		return gameerr.Configurationf("hero %s: ability chance plus caught chance exceeds 1", class)
	case d.Ability.MinAmount < 0 || d.Ability.MaxAmount < d.Ability.MinAmount:
		return gameerr.Configurationf("hero %s: bad ability range %d-%d", class, d.Ability.MinAmount, d.Ability.MaxAmount)
	}
	return nil
}

// MonsterDefinition is the stat record and heal parameters of a monster kind.
type MonsterDefinition struct {
	Name       string  `yaml:"name" json:"name"`
	Stats      `yaml:",inline"`
	HealChance float64 `yaml:"heal_chance" json:"heal_chance"`
	MinHeal    int     `yaml:"min_heal" json:"min_heal"`
	MaxHeal    int     `yaml:"max_heal" json:"max_heal"`

	// Weight is how often the kind spawns relative to the others. Zero
	// counts as 1 so that older definition files keep working.
	Weight int `yaml:"weight" json:"weight"`
}

// SpawnWeight returns Weight with the zero default applied.
func (d MonsterDefinition) SpawnWeight() int {
	if d.Weight == 0 {
		return 1
	}
	return d.Weight
}

// Validate checks the definition for a kind.
func (d MonsterDefinition) Validate(kind MonsterKind) error {
	if kind == "" {
		return gameerr.Configuration("monster kind must not be empty")
	}
	if err := d.Stats.Validate(); err != nil {
		return gameerr.Wrap(err, "monster "+string(kind))
	}
	switch {
	case d.HealChance < 0 || d.HealChance > 1:
		return gameerr.Configurationf("monster %s: heal_chance must be within [0,1], got %.2f", kind, d.HealChance)
	case d.MinHeal < 0 || d.MaxHeal < d.MinHeal:
		return gameerr.Configurationf("monster %s: bad heal range %d-%d", kind, d.MinHeal, d.MaxHeal)
	case d.Weight < 0:
		return gameerr.Configurationf("monster %s: weight must not be negative, got %d", kind, d.Weight)
	}
	return nil
}

// Definitions holds every hero class and monster kind available to a game.
type Definitions struct {
	Heroes   map[HeroClass]HeroDefinition     `yaml:"heroes"`
	Monsters map[MonsterKind]MonsterDefinition `yaml:"monsters"`
}

// DefaultDefinitions returns the built-in stat tables.
func DefaultDefinitions() *Definitions {
	return &Definitions{
		Heroes: map[HeroClass]HeroDefinition{
			Warrior: {
				Stats:         Stats{MaxHP: 125, MinDamage: 35, MaxDamage: 60, AttackSpeed: 4, HitChance: 0.8},
				BlockChance:   0.2,
				PotionHealMin: 5,
				PotionHealMax: 15,
				Ability:       AbilityConfig{Name: "Crushing Blow", Chance: 0.4, MinAmount: 75, MaxAmount: 175},
			},
			Priestess: {
				Stats:         Stats{MaxHP: 75, MinDamage: 25, MaxDamage: 45, AttackSpeed: 5, HitChance: 0.7},
				BlockChance:   0.3,
				PotionHealMin: 5,
				PotionHealMax: 15,
				Ability:       AbilityConfig{Name: "Heal", MinAmount: 25, MaxAmount: 50},
			},
			Thief: {
				Stats:         Stats{MaxHP: 75, MinDamage: 20, MaxDamage: 40, AttackSpeed: 6, HitChance: 0.8},
				BlockChance:   0.4,
				PotionHealMin: 5,
				PotionHealMax: 15,
				Ability:       AbilityConfig{Name: "Surprise Attack", Chance: 0.4, CaughtChance: 0.2},
			},
		},
		Monsters: map[MonsterKind]MonsterDefinition{
			Ogre: {
				Name:       "Ogre",
				Stats:      Stats{MaxHP: 200, MinDamage: 30, MaxDamage: 60, AttackSpeed: 2, HitChance: 0.6},
				HealChance: 0.1, MinHeal: 30, MaxHeal: 60,
				Weight:     3,
			},
			Skeleton: {
				Name:       "Skeleton",
				Stats:      Stats{MaxHP: 100, MinDamage: 30, MaxDamage: 50, AttackSpeed: 3, HitChance: 0.8},
				HealChance: 0.3, MinHeal: 30, MaxHeal: 50,
				Weight:     5,
			},
			Gremlin: {
				Name:       "Gremlin",
				Stats:      Stats{MaxHP: 70, MinDamage: 15, MaxDamage: 30, AttackSpeed: 5, HitChance: 0.8},
				HealChance: 0.4, MinHeal: 20, MaxHeal: 40,
				Weight:     10,
			},
			Dragon: {
				Name:       "Dragon",
				Stats:      Stats{MaxHP: 300, MinDamage: 40, MaxDamage: 70, AttackSpeed: 1, HitChance: 0.7},
				HealChance: 0.05, MinHeal: 20, MaxHeal: 40,
				Weight:     1,
			},
		},
	}
}

// LoadDefinitions reads a yaml definitions file on top of the defaults.
// An entry in the file replaces the default entry of the same class or kind.
// An empty path returns the defaults.
func LoadDefinitions(path string) (*Definitions, error) {
	defs := DefaultDefinitions()
	if path == "" {
		return defs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}

	var file Definitions
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse definitions YAML: %w", err)
	}

	for class, def := range file.Heroes {
		class = HeroClass(strings.ToLower(strings.TrimSpace(string(class))))
		if def.Ability.Name == "" {
			def.Ability.Name = defs.Heroes[class].Ability.Name
			logger.Warning("Hero ability name missing, using default",
				"class", class,
				"ability", def.Ability.Name)
		}
		defs.Heroes[class] = def
	}
	for kind, def := range file.Monsters {
		kind = NormalizeMonsterKind(string(kind))
		if def.Name == "" {
			def.Name = kind.String()
			logger.Warning("Monster name missing, using kind",
				"kind", kind,
				"name", def.Name)
		}
		defs.Monsters[kind] = def
	}

	if err := defs.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Loaded character definitions",
		"path", path,
		"heroes", len(defs.Heroes),
		"monsters", len(defs.Monsters))
	return defs, nil
}

// Validate checks every definition. The first bad entry is reported.
func (d *Definitions) Validate() error {
	if len(d.Monsters) == 0 {
		return gameerr.Configuration("at least one monster definition is required")
	}
	for _, class := range AllHeroClasses() {
		def, ok := d.Heroes[class]
		if !ok {
			return gameerr.Configurationf("missing definition for hero class %s", class)
		}
		if err := def.Validate(class); err != nil {
			return err
		}
	}
	for class := range d.Heroes {
		if !class.IsValid() {
			return gameerr.Configurationf("unknown hero class %q", class)
		}
	}
	for _, kind := range d.MonsterKinds() {
		if err := d.Monsters[kind].Validate(kind); err != nil {
			return err
		}
	}
	return nil
}

// MonsterKinds returns the defined kinds in sorted order, so that placement by
// index is stable for a seed.
func (d *Definitions) MonsterKinds() []MonsterKind {
	kinds := make([]MonsterKind, 0, len(d.Monsters))
	for k := range d.Monsters {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// PickMonsterKind draws a kind with probability proportional to its spawn
// weight. Kinds are walked in sorted order so that a seed picks the same kind
// every time.
func (d *Definitions) PickMonsterKind(src rng.Source) (MonsterKind, error) {
	kinds := d.MonsterKinds()
	total := 0
	for _, k := range kinds {
		total += d.Monsters[k].SpawnWeight()
	}
	if total <= 0 {
		return "", gameerr.Configuration("no monster definitions to place")
	}

	roll := src.RollInt(total)
	for _, k := range kinds {
		roll -= d.Monsters[k].SpawnWeight()
		if roll < 0 {
			return k, nil
		}
	}
	return kinds[len(kinds)-1], nil
}

// NewHero builds a hero of the given class at full health with an empty
// inventory.
func (d *Definitions) NewHero(class HeroClass, name string) (*Hero, error) {
	def, ok := d.Heroes[class]
	if !ok {
		return nil, gameerr.Configurationf("unknown hero class %q", class)
	}
	if err := def.Validate(class); err != nil {
		return nil, err
	}
	if name == "" {
		name = class.String()
	}
	ability, ok := abilities[class]
	if !ok {
		return nil, gameerr.Configurationf("no special ability bound to class %s", class)
	}
	return &Hero{
		Character: newCharacter(name, def.Stats),
		class:     class,
		def:       &def,
		ability:   ability,
		pillars:   make(map[items.Pillar]bool),
	}, nil
}

// NewMonster builds a monster of the given kind at full health.
func (d *Definitions) NewMonster(kind MonsterKind) (*Monster, error) {
	def, ok := d.Monsters[kind]
	if !ok {
		return nil, gameerr.NotFoundf("unknown monster kind %q", kind)
	}
	if err := def.Validate(kind); err != nil {
		return nil, err
	}
	name := def.Name
	if name == "" {
		name = kind.String()
	}
	return &Monster{
		Character: newCharacter(name, def.Stats),
		kind:      kind,
		def:       &def,
	}, nil
}
