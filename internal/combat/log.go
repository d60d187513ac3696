package combat

import (
	"fmt"
	"strings"
)

// Action is the kind of a resolved combat action.
type Action string

const (
	ActionAttack  Action = "attack"
	ActionSpecial Action = "special"
	ActionHeal    Action = "heal"
)

// Entry is one resolved action in the combat log.
type Entry struct {
	Round             int    `yaml:"round" json:"round"`
	Actor             string `yaml:"actor" json:"actor"`
	Side              Side   `yaml:"side" json:"side"`
	Target            string `yaml:"target" json:"target"`
	Action            Action `yaml:"action" json:"action"`
	Ability           string `yaml:"ability,omitempty" json:"ability,omitempty"`
	Hit               bool   `yaml:"hit" json:"hit"`
	Blocked           bool   `yaml:"blocked" json:"blocked"`
	Damage            int    `yaml:"damage" json:"damage"`
	Healing           int    `yaml:"healing,omitempty" json:"healing,omitempty"`
	TargetRemainingHP int    `yaml:"target_remaining_hp" json:"target_remaining_hp"`
	ActorRemainingHP  int    `yaml:"actor_remaining_hp" json:"actor_remaining_hp"`
	Message           string `yaml:"message,omitempty" json:"message,omitempty"`
}

// String renders the entry as a line of the combat log.
func (e Entry) String() string {
	switch e.Action {
	case ActionHeal:
		return fmt.Sprintf("%s heals for %d HP (now %d).", e.Actor, e.Healing, e.ActorRemainingHP)
	case ActionSpecial:
		if e.Message != "" {
			return fmt.Sprintf("%s uses %s: %s", e.Actor, e.Ability, e.Message)
		}
		return fmt.Sprintf("%s uses %s.", e.Actor, e.Ability)
	}
	switch {
	case !e.Hit:
		return fmt.Sprintf("%s attacks %s and misses.", e.Actor, e.Target)
	case e.Blocked:
		return fmt.Sprintf("%s attacks %s, but the blow is blocked.", e.Actor, e.Target)
	case e.TargetRemainingHP == 0:
		return fmt.Sprintf("%s hits %s for %d damage. %s is defeated!", e.Actor, e.Target, e.Damage, e.Target)
	default:
		return fmt.Sprintf("%s hits %s for %d damage (%d HP left).", e.Actor, e.Target, e.Damage, e.TargetRemainingHP)
	}
}

// RoundResult summarises one played round.
type RoundResult struct {
	Round              int     `json:"round"`
	Entries            []Entry `json:"entries"`
	HeroHP             int     `json:"hero_hp"`
	HeroMaxHP          int     `json:"hero_max_hp"`
	MonsterHP          int     `json:"monster_hp"`
	MonsterMaxHP       int     `json:"monster_max_hp"`
	HeroDamageTaken    int     `json:"hero_damage_taken"`
	MonsterDamageTaken int     `json:"monster_damage_taken"`
	AbilityLapsed      bool    `json:"ability_lapsed,omitempty"`
	Over               bool    `json:"over"`
	Victor             Side    `json:"victor"`
}

// FormatRound renders the round summary shown to players.
func FormatRound(heroName, monsterName string, r RoundResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Round %d ===\n", r.Round)
	for _, e := range r.Entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	if r.AbilityLapsed {
		b.WriteString("You find no opening for your special ability this round.\n")
	}
	fmt.Fprintf(&b, "%s: %d/%d HP (-%d)  |  %s: %d/%d HP (-%d)\n",
		heroName, r.HeroHP, r.HeroMaxHP, r.HeroDamageTaken,
		monsterName, r.MonsterHP, r.MonsterMaxHP, r.MonsterDamageTaken)
	if r.Over {
		switch r.Victor {
		case SideHero:
			fmt.Fprintf(&b, "%s is victorious!\n", heroName)
		case SideMonster:
			fmt.Fprintf(&b, "%s has fallen to the %s.\n", heroName, monsterName)
		}
	}
	return b.String()
}
