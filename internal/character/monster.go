package character

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

// MonsterKind identifies a monster definition. The built-in kinds are listed
// below; definition files and the monster table may add more.
type MonsterKind string

const (
	Ogre     MonsterKind = "ogre"
	Skeleton MonsterKind = "skeleton"
	Gremlin  MonsterKind = "gremlin"
	Dragon   MonsterKind = "dragon"
)

// String returns the display name of the kind.
func (k MonsterKind) String() string {
	s := string(k)
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NormalizeMonsterKind lower-cases and trims a kind read from outside.
func NormalizeMonsterKind(s string) MonsterKind {
	return MonsterKind(strings.ToLower(strings.TrimSpace(s)))
}

// Monster is a hostile combatant with a chance to heal instead of attacking.
type Monster struct {
	Character
	kind MonsterKind
	def  *MonsterDefinition
}

// Kind returns the monster's kind tag.
func (m *Monster) Kind() MonsterKind { return m.kind }

// Definition returns the definition the monster was built from.
func (m *Monster) Definition() *MonsterDefinition { return m.def }

// HealChance returns the probability of a heal attempt succeeding.
func (m *Monster) HealChance() float64 { return m.def.HealChance }

// HealRange returns the inclusive bounds of a heal.
func (m *Monster) HealRange() (int, int) { return m.def.MinHeal, m.def.MaxHeal }

// TryHeal is the monster's turn decision. At full health no roll is made and
// attempted is false. Otherwise the heal chance is rolled; on success the
// monster heals and spends its action.
func (m *Monster) TryHeal(src rng.Source) (healed int, attempted bool) {
	if !m.IsAlive() || m.HP() >= m.MaxHP() {
		return 0, false
	}
	if !src.RollChance(m.def.HealChance) {
		return 0, false
	}
	return m.Heal(src.RollDamage(m.def.MinHeal, m.def.MaxHeal)), true
}

func (m *Monster) String() string {
	return fmt.Sprintf("%s (HP %d/%d)", m.Name(), m.HP(), m.MaxHP())
}
