package dungeon

import (
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
)

// RenderOptions controls Render.
type RenderOptions struct {
	// Hero marks the hero's room with '@' when set.
	Hero *grid.Coord

	// Visible hides rooms it rejects behind '?'. Nil shows every room.
	Visible func(*Room) bool
}

// Render draws the dungeon as ASCII art. Rooms share walls: '*' at corners,
// '-' and '|' for walls, a gap for a door, and the room symbol in the middle.
func Render(d *Dungeon, opts RenderOptions) string {
	var b strings.Builder
	for y := 0; y < d.height; y++ {
		// north walls
		for x := 0; x < d.width; x++ {
			b.WriteByte('*')
			if d.HasDoor(grid.Coord{X: x, Y: y}, grid.North) {
				b.WriteByte(' ')
			} else {
				b.WriteByte('-')
			}
		}
		b.WriteString("*\n")

		// room row
		for x := 0; x < d.width; x++ {
			c := grid.Coord{X: x, Y: y}
			if d.HasDoor(c, grid.West) {
				b.WriteByte(' ')
			} else {
				b.WriteByte('|')
			}
			b.WriteRune(cellGlyph(d.Room(c), opts))
		}
		b.WriteString("|\n")
	}
	for x := 0; x < d.width; x++ {
		b.WriteString("*-")
	}
	b.WriteString("*\n")
	return b.String()
}

func cellGlyph(r *Room, opts RenderOptions) rune {
	if opts.Hero != nil && *opts.Hero == r.Coord {
		return '@'
	}
	if opts.Visible != nil && !opts.Visible(r) {
		return '?'
	}
	return r.Symbol()
}

// Explored is the Visible filter used by the game view: a room shows once it
// has been visited or revealed by a vision potion.
func Explored(r *Room) bool {
	return r.Visited || r.Revealed
}
