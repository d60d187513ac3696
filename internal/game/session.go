// Package game is the session controller: it owns the dungeon, the hero and any
// combat in progress, and advances them one command at a time.
//
// A Session is not safe for concurrent use. Networked callers serialize all
// commands for a session through a single worker.
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

// State is the session's terminal-state machine: PLAYING until VICTORY or DEFEAT.
type State string

const (
	Playing State = "playing"
	Victory State = "victory"
	Defeat  State = "defeat"
)

// Mode tells whether the hero is exploring or locked in combat.
type Mode string

const (
	Exploring Mode = "exploring"
	InCombat  Mode = "in_combat"
)

// Pit damage range applied on every entry into a room with a pit.
const (
	PitMinDamage = 10
	PitMaxDamage = 20
)

// maxEvents bounds the event log kept for display and snapshots.
const maxEvents = 50

// Options configures a new session.
type Options struct {
	// Seed fixes the whole run. Zero draws a fresh seed.
	Seed        int64
	HeroName    string
	Class       character.HeroClass
	Dungeon     dungeon.Config
	Definitions *character.Definitions
}

// Session is one playthrough from dungeon generation to victory or defeat.
type Session struct {
	id        string
	createdAt time.Time
	defs      *character.Definitions
	src       *rng.Seeded

	dungeon *dungeon.Dungeon
	hero    *character.Hero

	state     State
	mode      Mode
	combat    *combat.Engine
	lastRound *combat.RoundResult
	events    []string
}

// New generates a dungeon and places a fresh hero at its entrance.
func New(opts Options) (*Session, error) {
	defs := opts.Definitions
	if defs == nil {
		defs = character.DefaultDefinitions()
	}
	if err := defs.Validate(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		var err error
		if seed, err = rng.NewSeed(); err != nil {
			return nil, err
		}
	}
	src := rng.NewSeeded(seed)

	d, err := dungeon.NewGenerator(opts.Dungeon, defs, src).Generate()
	if err != nil {
		return nil, err
	}

	hero, err := defs.NewHero(opts.Class, opts.HeroName)
	if err != nil {
		return nil, err
	}
	hero.SetPosition(d.Entrance())

	s := &Session{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC().Round(0),
		defs:      defs,
		src:       src,
		dungeon:   d,
		hero:      hero,
		state:     Playing,
		mode:      Exploring,
	}
	d.Room(d.Entrance()).Visited = true
	s.event(fmt.Sprintf("%s the %s enters the dungeon.", hero.Name(), hero.Class()))

	logger.Info("Session created",
		"session_id", s.id,
		"seed", seed,
		"hero", hero.Name(),
		"class", hero.Class(),
		"width", d.Width(),
		"height", d.Height())
	return s, nil
}

func (s *Session) ID() string { return s.id }
func (s *Session) Seed() int64 { return s.src.Seed() }
func (s *Session) State() State { return s.state }
func (s *Session) Mode() Mode { return s.mode }
func (s *Session) Hero() *character.Hero { return s.hero }
func (s *Session) Dungeon() *dungeon.Dungeon { return s.dungeon }

// Combat returns the engine of the fight in progress, or nil.
func (s *Session) Combat() *combat.Engine { return s.combat }

// IsOver reports whether the session reached victory or defeat.
func (s *Session) IsOver() bool { return s.state != Playing }

// CurrentRoom returns the room the hero stands in.
func (s *Session) CurrentRoom() *dungeon.Room {
	return s.dungeon.Room(s.hero.Position())
}

// Events returns the recent event log, oldest first.
func (s *Session) Events() []string {
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Session) event(msg string) {
	s.events = append(s.events, msg)
	if len(s.events) > maxEvents {
		s.events = append([]string(nil), s.events[len(s.events)-maxEvents:]...)
	}
}

func (s *Session) requirePlaying() error {
	if s.state != Playing {
		return gameerr.IllegalActionf("the game is over (%s)", s.state)
	}
	return nil
}

// MoveResult reports what happened on a move.
type MoveResult struct {
	Blocked         bool          `json:"blocked"`
	EnteredRoom     bool          `json:"entered_room"`
	Position        grid.Coord    `json:"position"`
	TriggeredHazard bool          `json:"triggered_hazard"`
	HazardDamage    int           `json:"hazard_damage,omitempty"`
	Collected       []*items.Item `json:"collected,omitempty"`
	TriggeredCombat bool          `json:"triggered_combat"`
	Monster         string        `json:"monster,omitempty"`
	Victory         bool          `json:"victory,omitempty"`
	Defeat          bool          `json:"defeat,omitempty"`
}

// MovePlayer moves the hero one room. A wall reports Blocked. Moving during
// combat or after the game ended is an illegal action.
func (s *Session) MovePlayer(dir grid.Direction) (MoveResult, error) {
	if err := s.requirePlaying(); err != nil {
		return MoveResult{}, err
	}
	if s.mode == InCombat {
		return MoveResult{}, gameerr.IllegalAction("you cannot leave while in combat")
	}
	if !dir.IsValid() {
		return MoveResult{}, gameerr.IllegalActionf("unknown direction %d", dir)
	}

	s.hero.ClearVision()
	if !s.hero.Move(dir, s.dungeon) {
		logger.Debug("Move blocked",
			"session_id", s.id,
			"from", s.hero.Position().String(),
			"direction", dir.String())
		s.event(fmt.Sprintf("There is no door to the %s.", dir))
		return MoveResult{Blocked: true, Position: s.hero.Position()}, nil
	}

	result := MoveResult{EnteredRoom: true, Position: s.hero.Position()}
	s.enterRoom(&result)
	return result, nil
}

// enterRoom applies room-entry effects in order: visit, pit, collection,
// monster, exit.
func (s *Session) enterRoom(result *MoveResult) {
	room := s.CurrentRoom()
	room.Visited = true

	if room.HasPit() {
		damage := s.hero.TakeDamage(s.src.RollDamage(PitMinDamage, PitMaxDamage))
		result.TriggeredHazard = true
		result.HazardDamage = damage
		s.event(fmt.Sprintf("You fall into a pit and take %d damage.", damage))
		if !s.hero.IsAlive() {
			s.end(Defeat, "fell into a pit")
			result.Defeat = true
			return
		}
	}

	for _, item := range items.TakeCollectibles(&room.Items) {
		switch item.Kind {
		case items.KindPillar:
			if !s.hero.CollectPillar(item.Pillar) {
				gameerr.Violation("pillar collected twice", "pillar", item.Pillar, "room", room.Coord.String())
				continue
			}
		default:
			s.hero.AddPotion(item.Kind)
		}
		result.Collected = append(result.Collected, item)
		s.event("You pick up the " + item.Name + ".")
	}

	if m := room.Monster(); m != nil {
		if err := s.startCombat(m); err != nil {
			gameerr.Violation("combat could not start", "error", err)
		} else {
			result.TriggeredCombat = true
			result.Monster = m.Name()
			return
		}
	}

	result.Victory = s.checkExit(room)
}

func (s *Session) checkExit(room *dungeon.Room) bool {
	if !room.Exit || s.state != Playing {
		return false
	}
	if !s.hero.HasAllPillars() {
		s.event(fmt.Sprintf("You found the exit, but you hold only %d of 4 pillars.", len(s.hero.Pillars())))
		return false
	}
	s.end(Victory, "escaped with all four pillars")
	return true
}

func (s *Session) startCombat(m *character.Monster) error {
	engine, err := combat.NewEngine(s.hero, m, s.src)
	if err != nil {
		return err
	}
	s.combat = engine
	s.mode = InCombat
	s.lastRound = nil
	s.event(fmt.Sprintf("A %s blocks your way!", m.Name()))
	logger.Debug("Combat triggered",
		"session_id", s.id,
		"monster", m.Kind(),
		"room", m.Position().String())
	return nil
}

func (s *Session) end(state State, reason string) {
	s.state = state
	s.mode = Exploring
	s.combat = nil
	if state == Victory {
		s.event("You escape the dungeon with all four pillars. Victory!")
	} else {
		s.event("You have been defeated.")
	}
	logger.Always("Game over",
		"session_id", s.id,
		"result", string(state),
		"reason", reason,
		"hero", s.hero.Name(),
		"class", s.hero.Class(),
		"pillars", len(s.hero.Pillars()))
}

// CombatResult reports one played round from the session's point of view.
type CombatResult struct {
	Round           combat.RoundResult `json:"round"`
	Summary         string             `json:"summary"`
	MonsterDefeated bool               `json:"monster_defeated"`
	NextMonster     string             `json:"next_monster,omitempty"`
	Victory         bool               `json:"victory,omitempty"`
	Defeat          bool               `json:"defeat,omitempty"`
}

// Attack plays one combat round with a normal attack.
func (s *Session) Attack() (CombatResult, error) {
	return s.playRound(combat.Attack)
}

// UseSpecialAbility plays one combat round opening with the class ability.
func (s *Session) UseSpecialAbility() (CombatResult, error) {
	return s.playRound(combat.Special)
}

func (s *Session) playRound(action combat.HeroAction) (CombatResult, error) {
	if err := s.requirePlaying(); err != nil {
		return CombatResult{}, err
	}
	if s.mode != InCombat || s.combat == nil {
		return CombatResult{}, gameerr.IllegalAction("there is nothing to fight")
	}

	monster := s.combat.Monster()
	round, err := s.combat.PlayRound(action)
	if err != nil {
		return CombatResult{}, err
	}
	s.lastRound = &round

	result := CombatResult{
		Round:   round,
		Summary: combat.FormatRound(s.hero.Name(), monster.Name(), round),
	}
	for _, e := range round.Entries {
		s.event(e.String())
	}

	if !round.Over {
		return result, nil
	}

	if round.Victor != combat.SideHero {
		s.end(Defeat, "slain by "+monster.Name())
		result.Defeat = true
		return result, nil
	}

	result.MonsterDefeated = true
	room := s.CurrentRoom()
	room.RemoveDefeated()
	s.event(fmt.Sprintf("The %s is defeated.", monster.Name()))

	if next := room.Monster(); next != nil {
		if err := s.startCombat(next); err != nil {
			return result, err
		}
		result.NextMonster = next.Name()
		return result, nil
	}

	s.combat = nil
	s.mode = Exploring
	result.Victory = s.checkExit(room)
	return result, nil
}

// UseHealingPotion drinks a healing potion. Allowed in and out of combat; it
// does not consume a combat round. With none left the result reports no effect.
func (s *Session) UseHealingPotion() (character.PotionResult, error) {
	if err := s.requirePlaying(); err != nil {
		return character.PotionResult{}, err
	}
	res := s.hero.UseHealingPotion(s.src)
	s.event(res.Message)
	return res, nil
}

// VisionResult reports a vision potion and the rooms it revealed.
type VisionResult struct {
	character.PotionResult
	Revealed []grid.Coord `json:"revealed,omitempty"`
}

// UseVisionPotion drinks a vision potion, revealing the up to eight rooms
// around the hero.
func (s *Session) UseVisionPotion() (VisionResult, error) {
	if err := s.requirePlaying(); err != nil {
		return VisionResult{}, err
	}
	res := VisionResult{PotionResult: s.hero.UseVisionPotion()}
	s.event(res.Message)
	if !res.Used {
		return res, nil
	}
	for _, c := range s.hero.Position().Surrounding() {
		if room := s.dungeon.Room(c); room != nil {
			room.Revealed = true
			res.Revealed = append(res.Revealed, c)
		}
	}
	return res, nil
}
