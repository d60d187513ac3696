package game

import (
	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
)

// View is the read-only state handed to display layers after every command.
type View struct {
	ID     string      `json:"id"`
	State  State       `json:"state"`
	Mode   Mode        `json:"mode"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Map    string      `json:"map"`
	Rooms  []RoomView  `json:"rooms"`
	Hero   HeroView    `json:"hero"`
	Combat *CombatView `json:"combat,omitempty"`
	Events []string    `json:"events,omitempty"`
}

// RoomView is a room as the player knows it. Unexplored rooms carry only
// their coordinate and a '?' symbol.
type RoomView struct {
	Coord    grid.Coord `json:"coord"`
	Symbol   string     `json:"symbol"`
	Visited  bool       `json:"visited"`
	Revealed bool       `json:"revealed"`
	Doors    []string   `json:"doors,omitempty"`
}

// HeroView is the hero's stats panel.
type HeroView struct {
	Name           string     `json:"name"`
	Class          string     `json:"class"`
	HP             int        `json:"hp"`
	MaxHP          int        `json:"max_hp"`
	Position       grid.Coord `json:"position"`
	HealingPotions int        `json:"healing_potions"`
	VisionPotions  int        `json:"vision_potions"`
	Pillars        []string   `json:"pillars"`
	VisionActive   bool       `json:"vision_active"`
}

// CombatView is the active fight.
type CombatView struct {
	Monster      string              `json:"monster"`
	MonsterHP    int                 `json:"monster_hp"`
	MonsterMaxHP int                 `json:"monster_max_hp"`
	Round        int                 `json:"round"`
	Log          []combat.Entry      `json:"log"`
	LastRound    *combat.RoundResult `json:"last_round,omitempty"`
}

// View builds the display snapshot of the session.
func (s *Session) View() View {
	pos := s.hero.Position()
	v := View{
		ID:     s.id,
		State:  s.state,
		Mode:   s.mode,
		Width:  s.dungeon.Width(),
		Height: s.dungeon.Height(),
		Map:    dungeon.Render(s.dungeon, dungeon.RenderOptions{Hero: &pos, Visible: dungeon.Explored}),
		Events: s.Events(),
	}

	for _, r := range s.dungeon.Rooms() {
		rv := RoomView{Coord: r.Coord, Symbol: "?", Visited: r.Visited, Revealed: r.Revealed}
		if dungeon.Explored(r) {
			rv.Symbol = string(r.Symbol())
			rv.Doors = doorNames(r)
		}
		v.Rooms = append(v.Rooms, rv)
	}

	v.Hero = HeroView{
		Name:           s.hero.Name(),
		Class:          s.hero.Class().String(),
		HP:             s.hero.HP(),
		MaxHP:          s.hero.MaxHP(),
		Position:       pos,
		HealingPotions: s.hero.HealingPotions(),
		VisionPotions:  s.hero.VisionPotions(),
		Pillars:        []string{},
		VisionActive:   s.hero.VisionActive(),
	}
	for _, p := range s.hero.Pillars() {
		v.Hero.Pillars = append(v.Hero.Pillars, string(p))
	}

	if s.combat != nil {
		m := s.combat.Monster()
		v.Combat = &CombatView{
			Monster:      m.Name(),
			MonsterHP:    m.HP(),
			MonsterMaxHP: m.MaxHP(),
			Round:        s.combat.Round(),
			Log:          s.combat.Log(),
			LastRound:    s.lastRound,
		}
	}
	return v
}

func doorNames(r *dungeon.Room) []string {
	var out []string
	for _, dir := range grid.AllDirections() {
		if r.HasDoor(dir) {
			out = append(out, dir.String())
		}
	}
	return out
}
