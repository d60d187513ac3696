// Package combat resolves one encounter between a hero and a monster.
//
// The Engine is a synchronous state machine advanced one round per PlayRound
// call. A round always runs to completion: initiative is computed from the two
// attack speeds, every scheduled action is resolved in order, and HP is checked
// after each action.
package combat

import (
	"fmt"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

// State is a phase of the combat state machine.
type State int

const (
	StateInit State = iota
	StateRoundStart
	StateInitiative
	StateActionResolution
	StateCheckVictory
	StateOver
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRoundStart:
		return "round_start"
	case StateInitiative:
		return "initiative"
	case StateActionResolution:
		return "action_resolution"
	case StateCheckVictory:
		return "check_victory"
	case StateOver:
		return "over"
	default:
		return "unknown"
	}
}

// HeroAction is the command for the hero's next action.
type HeroAction int

const (
	Attack HeroAction = iota
	Special
)

func (a HeroAction) String() string {
	if a == Special {
		return "special"
	}
	return "attack"
}

// MaxRounds bounds Run so that a pathological configuration (every roll a miss)
// cannot loop forever.
const MaxRounds = 1000

// Engine owns the state of one encounter. It borrows the hero and monster for
// the encounter's lifetime and must not be shared between goroutines.
type Engine struct {
	hero    *character.Hero
	monster *character.Monster
	src     rng.Source

	state        State
	round        int
	log          []Entry
	victor       Side
	lastDefender Side
}

// NewEngine binds a hero and a monster. Either one missing or already defeated
// is a configuration error.
func NewEngine(hero *character.Hero, monster *character.Monster, src rng.Source) (*Engine, error) {
	switch {
	case hero == nil || monster == nil:
		return nil, gameerr.Configuration("combat needs both a hero and a monster")
	case src == nil:
		return nil, gameerr.Configuration("combat needs a random source")
	case !hero.IsAlive():
		return nil, gameerr.Configurationf("%s is already defeated", hero.Name())
	case !monster.IsAlive():
		return nil, gameerr.Configurationf("%s is already defeated", monster.Name())
	}

	logger.Debug("Combat started",
		"hero", hero.Name(),
		"hero_hp", hero.HP(),
		"monster", monster.Name(),
		"monster_hp", monster.HP())

	return &Engine{
		hero:    hero,
		monster: monster,
		src:     src,
		state:   StateInit,
	}, nil
}

// Hero returns the hero in this encounter.
func (e *Engine) Hero() *character.Hero { return e.hero }

// Monster returns the monster in this encounter.
func (e *Engine) Monster() *character.Monster { return e.monster }

// State returns the current phase. Between rounds it is StateRoundStart (or
// StateInit before the first round); after the final round it is StateOver.
func (e *Engine) State() State { return e.state }

// Round returns the number of the last round played.
func (e *Engine) Round() int { return e.round }

// Over reports whether the encounter has ended.
func (e *Engine) Over() bool { return e.state == StateOver }

// Log returns a copy of the full combat log.
func (e *Engine) Log() []Entry {
	out := make([]Entry, len(e.log))
	copy(out, e.log)
	return out
}

// VictorSide returns the winning side, or SideNone while combat continues.
func (e *Engine) VictorSide() Side { return e.victor }

// Victor returns the winning combatant, or nil while combat continues.
func (e *Engine) Victor() character.Combatant {
	switch e.victor {
	case SideHero:
		return e.hero
	case SideMonster:
		return e.monster
	default:
		return nil
	}
}

// PlayRound plays one full round. A Special action replaces the hero's first
// scheduled action this round; if the hero has no action this round the
// request lapses. Calling PlayRound after the encounter ended is an illegal
// action.
func (e *Engine) PlayRound(action HeroAction) (RoundResult, error) {
	if e.state == StateOver {
		return RoundResult{}, gameerr.IllegalAction("combat is already over")
	}

	// ROUND_START
	e.state = StateRoundStart
	e.round++
	result := RoundResult{Round: e.round}
	if !e.hero.IsAlive() || !e.monster.IsAlive() {
		e.finish(SideNone)
		return e.summarise(result), nil
	}

	// INITIATIVE
	e.state = StateInitiative
	order := Schedule(e.hero.AttackSpeed(), e.monster.AttackSpeed(), e.round)
	logger.Debug("Initiative",
		"round", e.round,
		"order", fmt.Sprint(order))

	// ACTION_RESOLUTION, with CHECK_VICTORY after every action
	e.state = StateActionResolution
	specialPending := action == Special
	for _, side := range order {
		var entry Entry
		var opposed bool
		if side == SideHero {
			if specialPending {
				entry, opposed = e.heroSpecial()
				specialPending = false
			} else {
				entry, opposed = e.heroAttack()
			}
		} else {
			entry, opposed = e.monsterTurn()
		}
		if opposed {
			e.lastDefender = side.Opponent()
		}
		e.log = append(e.log, entry)
		result.Entries = append(result.Entries, entry)

		e.state = StateCheckVictory
		if e.checkVictory() {
			return e.summarise(result), nil
		}
		e.state = StateActionResolution
	}
	result.AbilityLapsed = specialPending

	e.state = StateCheckVictory
	if !e.checkVictory() {
		e.state = StateRoundStart
	}
	return e.summarise(result), nil
}

// Policy chooses the hero's action for the coming round.
type Policy func(e *Engine) HeroAction

// AlwaysAttack is the Policy that never uses the special ability.
func AlwaysAttack(*Engine) HeroAction { return Attack }

// Run plays rounds until the encounter ends and returns the victor.
func (e *Engine) Run(policy Policy) (character.Combatant, error) {
	if policy == nil {
		policy = AlwaysAttack
	}
	for !e.Over() {
		if e.round >= MaxRounds {
			return nil, fmt.Errorf("combat did not finish within %d rounds", MaxRounds)
		}
		if _, err := e.PlayRound(policy(e)); err != nil {
			return nil, err
		}
	}
	return e.Victor(), nil
}

// Restore positions a freshly built engine at a saved round with its log.
func (e *Engine) Restore(round int, log []Entry) error {
	if e.state != StateInit {
		return gameerr.IllegalAction("restore requires a fresh engine")
	}
	if round < 0 || (round == 0 && len(log) > 0) {
		return gameerr.Configurationf("invalid saved combat round %d", round)
	}
	e.round = round
	e.log = append([]Entry(nil), log...)
	if round > 0 {
		e.state = StateRoundStart
	}
	return nil
}

// heroAttack, heroSpecial and monsterTurn resolve one action. The bool reports
// whether the action was aimed at the opponent.
func (e *Engine) heroAttack() (Entry, bool) {
	res := e.hero.Attack(e.monster, e.src)
	logger.Debug("Hero attack",
		"round", e.round,
		"hit", res.Hit,
		"damage", res.Damage,
		"monster_hp", e.monster.HP())
	return Entry{
		Round:             e.round,
		Actor:             e.hero.Name(),
		Side:              SideHero,
		Target:            e.monster.Name(),
		Action:            ActionAttack,
		Hit:               res.Hit,
		Blocked:           res.Blocked,
		Damage:            res.Damage,
		TargetRemainingHP: e.monster.HP(),
		ActorRemainingHP:  e.hero.HP(),
	}, true
}

func (e *Engine) heroSpecial() (Entry, bool) {
	res := e.hero.UseSpecialAbility(e.monster, e.src)
	entry := Entry{
		Round:             e.round,
		Actor:             e.hero.Name(),
		Side:              SideHero,
		Target:            e.monster.Name(),
		Action:            ActionSpecial,
		Ability:           res.Name,
		Hit:               res.Hit(),
		Damage:            res.TotalDamage(),
		Healing:           res.Healing,
		TargetRemainingHP: e.monster.HP(),
		ActorRemainingHP:  e.hero.HP(),
		Message:           res.Message,
	}
	for _, s := range res.Strikes {
		if s.Blocked {
			entry.Blocked = true
		}
	}
	if res.Healing > 0 && len(res.Strikes) == 0 {
		entry.Target = e.hero.Name()
		entry.TargetRemainingHP = e.hero.HP()
		return entry, false
	}
	return entry, true
}

func (e *Engine) monsterTurn() (Entry, bool) {
	if healed, ok := e.monster.TryHeal(e.src); ok {
		logger.Debug("Monster heal",
			"round", e.round,
			"monster", e.monster.Name(),
			"healed", healed,
			"monster_hp", e.monster.HP())
		return Entry{
			Round:             e.round,
			Actor:             e.monster.Name(),
			Side:              SideMonster,
			Target:            e.monster.Name(),
			Action:            ActionHeal,
			Healing:           healed,
			TargetRemainingHP: e.monster.HP(),
			ActorRemainingHP:  e.monster.HP(),
		}, false
	}

	res := e.monster.Attack(e.hero, e.src)
	logger.Debug("Monster attack",
		"round", e.round,
		"monster", e.monster.Name(),
		"hit", res.Hit,
		"blocked", res.Blocked,
		"damage", res.Damage,
		"hero_hp", e.hero.HP())
	return Entry{
		Round:             e.round,
		Actor:             e.monster.Name(),
		Side:              SideMonster,
		Target:            e.hero.Name(),
		Action:            ActionAttack,
		Hit:               res.Hit,
		Blocked:           res.Blocked,
		Damage:            res.Damage,
		TargetRemainingHP: e.hero.HP(),
		ActorRemainingHP:  e.monster.HP(),
	}, true
}

// checkVictory ends combat once either side is at 0 HP. When both are down
// the defender of the last resolved action wins.
func (e *Engine) checkVictory() bool {
	heroUp, monsterUp := e.hero.IsAlive(), e.monster.IsAlive()
	switch {
	case heroUp && monsterUp:
		return false
	case heroUp:
		e.finish(SideHero)
	case monsterUp:
		e.finish(SideMonster)
	default:
		e.finish(e.lastDefender)
	}
	return true
}

func (e *Engine) finish(victor Side) {
	if victor == SideNone {
		switch {
		case e.hero.IsAlive():
			victor = SideHero
		case e.monster.IsAlive():
			victor = SideMonster
		default:
			victor = e.lastDefender
		}
	}
	e.victor = victor
	e.state = StateOver
	logger.Debug("Combat over",
		"victor", victor,
		"rounds", e.round,
		"hero_hp", e.hero.HP(),
		"monster_hp", e.monster.HP())
}

func (e *Engine) summarise(r RoundResult) RoundResult {
	r.HeroHP, r.HeroMaxHP = e.hero.HP(), e.hero.MaxHP()
	r.MonsterHP, r.MonsterMaxHP = e.monster.HP(), e.monster.MaxHP()
	for _, entry := range r.Entries {
		switch entry.Side {
		case SideHero:
			r.MonsterDamageTaken += entry.Damage
		case SideMonster:
			r.HeroDamageTaken += entry.Damage
		}
	}
	r.Over = e.state == StateOver
	r.Victor = e.victor
	return r
}
