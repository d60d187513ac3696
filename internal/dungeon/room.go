package dungeon

import (
	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
)

// Room is one cell of the dungeon grid.
type Room struct {
	Coord    grid.Coord
	Doors    map[grid.Direction]bool
	Visited  bool
	Revealed bool
	Entrance bool
	Exit     bool
	Items    []*items.Item
	Monsters []*character.Monster
}

func newRoom(c grid.Coord) *Room {
	return &Room{
		Coord: c,
		Doors: make(map[grid.Direction]bool, 4),
	}
}

// HasDoor reports whether a door leads out of the room in dir.
func (r *Room) HasDoor(dir grid.Direction) bool {
	return r.Doors[dir]
}

// DoorCount returns the number of doors out of the room.
func (r *Room) DoorCount() int {
	n := 0
	for _, open := range r.Doors {
		if open {
			n++
		}
	}
	return n
}

// Monster returns the first live monster in the room, or nil. Stacked monsters
// engage one at a time in placement order.
func (r *Room) Monster() *character.Monster {
	for _, m := range r.Monsters {
		if m.IsAlive() {
			return m
		}
	}
	return nil
}

// LiveMonsters counts monsters still standing.
func (r *Room) LiveMonsters() int {
	n := 0
	for _, m := range r.Monsters {
		if m.IsAlive() {
			n++
		}
	}
	return n
}

// RemoveDefeated drops defeated monsters from the room and returns how many
// were removed.
func (r *Room) RemoveDefeated() int {
	kept := r.Monsters[:0]
	for _, m := range r.Monsters {
		if m.IsAlive() {
			kept = append(kept, m)
		}
	}
	removed := len(r.Monsters) - len(kept)
	for i := len(kept); i < len(r.Monsters); i++ {
		r.Monsters[i] = nil
	}
	r.Monsters = kept
	return removed
}

// Pillar returns the pillar lying in the room, if any.
func (r *Room) Pillar() (items.Pillar, bool) {
	if item, ok := items.FindPillar(r.Items); ok {
		return item.Pillar, true
	}
	return "", false
}

// HasPit reports whether the room holds a pit.
func (r *Room) HasPit() bool {
	return items.HasKind(r.Items, items.KindPit)
}

// Symbol returns the map glyph for the room: i entrance, o exit, M for a
// monster or more than one thing, the item's glyph for a single item, and a
// space when empty.
func (r *Room) Symbol() rune {
	switch {
	case r.Entrance:
		return 'i'
	case r.Exit:
		return 'o'
	}
	live := r.LiveMonsters()
	switch {
	case live > 0 || len(r.Items) > 1:
		return 'M'
	case len(r.Items) == 1:
		return r.Items[0].Symbol()
	default:
		return ' '
	}
}
