package game

import (
	"fmt"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
	"github.com/lawnchairsociety/dungeonadventure/internal/snapshot"
)

// Snapshot captures the session between commands. Restoring it yields a
// session with the same state and the same future random draws.
func (s *Session) Snapshot() *snapshot.Snapshot {
	snap := &snapshot.Snapshot{
		Version:   snapshot.Version,
		ID:        s.id,
		CreatedAt: s.createdAt,
		Seed:      s.src.Seed(),
		Draws:     s.src.Draws(),
		State:     string(s.state),
		Mode:      string(s.mode),
		Hero: snapshot.HeroData{
			Name:           s.hero.Name(),
			Class:          string(s.hero.Class()),
			HP:             s.hero.HP(),
			Position:       s.hero.Position(),
			HealingPotions: s.hero.HealingPotions(),
			VisionPotions:  s.hero.VisionPotions(),
			Pillars:        s.hero.Pillars(),
			VisionActive:   s.hero.VisionActive(),
		},
		Dungeon: snapshot.DungeonData{
			Width:    s.dungeon.Width(),
			Height:   s.dungeon.Height(),
			Entrance: s.dungeon.Entrance(),
			Exit:     s.dungeon.Exit(),
		},
		Events: s.Events(),
	}

	for _, r := range s.dungeon.Rooms() {
		rd := snapshot.RoomData{
			Coord:    r.Coord,
			Doors:    doorNames(r),
			Visited:  r.Visited,
			Revealed: r.Revealed,
		}
		for _, item := range r.Items {
			rd.Items = append(rd.Items, *item)
		}
		for _, m := range r.Monsters {
			rd.Monsters = append(rd.Monsters, snapshot.MonsterData{Kind: string(m.Kind()), HP: m.HP()})
		}
		snap.Dungeon.Rooms = append(snap.Dungeon.Rooms, rd)
	}

	if s.combat != nil {
		snap.Combat = &snapshot.CombatData{Round: s.combat.Round(), Log: s.combat.Log()}
	}
	return snap
}

// Restore rebuilds a session from a snapshot. Monster and hero stats come from
// defs; a nil defs uses the built-in tables.
func Restore(snap *snapshot.Snapshot, defs *character.Definitions) (*Session, error) {
	if snap == nil {
		return nil, gameerr.Configuration("nothing to restore")
	}
	if err := snap.Validate(); err != nil {
		return nil, gameerr.Wrap(gameerr.Configuration(err.Error()), "invalid snapshot")
	}
	if defs == nil {
		defs = character.DefaultDefinitions()
	}

	state := State(snap.State)
	mode := Mode(snap.Mode)
	switch state {
	case Playing, Victory, Defeat:
	default:
		return nil, gameerr.Configurationf("unknown session state %q", snap.State)
	}
	switch mode {
	case Exploring, InCombat:
	default:
		return nil, gameerr.Configurationf("unknown session mode %q", snap.Mode)
	}

	d, err := restoreDungeon(snap.Dungeon, defs)
	if err != nil {
		return nil, err
	}

	class, err := character.ParseHeroClass(snap.Hero.Class)
	if err != nil {
		return nil, gameerr.Configuration(err.Error())
	}
	hero, err := defs.NewHero(class, snap.Hero.Name)
	if err != nil {
		return nil, err
	}
	if !d.InBounds(snap.Hero.Position) {
		return nil, gameerr.Configurationf("hero position %s is off the map", snap.Hero.Position)
	}
	err = hero.Restore(character.HeroState{
		HP:             snap.Hero.HP,
		Position:       snap.Hero.Position,
		HealingPotions: snap.Hero.HealingPotions,
		VisionPotions:  snap.Hero.VisionPotions,
		Pillars:        snap.Hero.Pillars,
		VisionActive:   snap.Hero.VisionActive,
	})
	if err != nil {
		return nil, gameerr.Configuration(err.Error())
	}
	if err := d.CheckPillars(hero.Pillars()); err != nil {
		return nil, err
	}

	s := &Session{
		id:        snap.ID,
		createdAt: snap.CreatedAt,
		defs:      defs,
		src:       rng.Restore(snap.Seed, snap.Draws),
		dungeon:   d,
		hero:      hero,
		state:     state,
		mode:      mode,
		events:    append([]string(nil), snap.Events...),
	}

	if mode == InCombat {
		if snap.Combat == nil {
			return nil, gameerr.Configuration("snapshot is in combat but has no combat state")
		}
		m := s.CurrentRoom().Monster()
		if m == nil {
			return nil, gameerr.Configuration("snapshot is in combat but the hero's room has no monster")
		}
		engine, err := combat.NewEngine(hero, m, s.src)
		if err != nil {
			return nil, err
		}
		if err := engine.Restore(snap.Combat.Round, snap.Combat.Log); err != nil {
			return nil, err
		}
		s.combat = engine
	}

	logger.Info("Session restored",
		"session_id", s.id,
		"state", string(s.state),
		"mode", string(s.mode),
		"draws", snap.Draws)
	return s, nil
}

func restoreDungeon(data snapshot.DungeonData, defs *character.Definitions) (*dungeon.Dungeon, error) {
	d, err := dungeon.New(data.Width, data.Height)
	if err != nil {
		return nil, err
	}

	for _, rd := range data.Rooms {
		room := d.Room(rd.Coord)
		if room == nil {
			return nil, gameerr.Configurationf("room %s is off the map", rd.Coord)
		}
		for _, name := range rd.Doors {
			dir, err := grid.ParseDirection(name)
			if err != nil {
				return nil, gameerr.Configurationf("room %s: %v", rd.Coord, err)
			}
			room.Doors[dir] = true
		}
		room.Visited = rd.Visited
		room.Revealed = rd.Revealed
		for i := range rd.Items {
			item := rd.Items[i]
			items.AddItem(&room.Items, &item)
		}
		for _, md := range rd.Monsters {
			m, err := defs.NewMonster(character.NormalizeMonsterKind(md.Kind))
			if err != nil {
				return nil, fmt.Errorf("room %s: %w", rd.Coord, err)
			}
			if md.HP < 1 || md.HP > m.MaxHP() {
				return nil, gameerr.Configurationf("room %s: %s has hp %d outside 1-%d", rd.Coord, md.Kind, md.HP, m.MaxHP())
			}
			m.SetHP(md.HP)
			m.SetPosition(rd.Coord)
			room.Monsters = append(room.Monsters, m)
		}
	}

	if err := d.SetEntrance(data.Entrance); err != nil {
		return nil, err
	}
	if err := d.SetExit(data.Exit); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
