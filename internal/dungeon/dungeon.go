// Package dungeon holds the room grid and the generator that carves and
// populates it.
//
// Rooms live in an arena indexed by coordinate (y*width+x). Characters store a
// coordinate rather than a room reference.
package dungeon

import (
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
)

// Dungeon is a fixed-size grid of rooms with one entrance and one exit.
type Dungeon struct {
	width    int
	height   int
	rooms    []*Room
	entrance grid.Coord
	exit     grid.Coord
}

// New creates a width x height grid of closed rooms.
func New(width, height int) (*Dungeon, error) {
	if width < 1 || height < 1 {
		return nil, gameerr.Configurationf("dungeon dimensions must be positive, got %dx%d", width, height)
	}
	d := &Dungeon{
		width:  width,
		height: height,
		rooms:  make([]*Room, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d.rooms[y*width+x] = newRoom(grid.Coord{X: x, Y: y})
		}
	}
	return d, nil
}

func (d *Dungeon) Width() int { return d.width }
func (d *Dungeon) Height() int { return d.height }
func (d *Dungeon) Entrance() grid.Coord { return d.entrance }
func (d *Dungeon) Exit() grid.Coord { return d.exit }

// InBounds reports whether c lies on the grid.
func (d *Dungeon) InBounds(c grid.Coord) bool {
	return c.X >= 0 && c.X < d.width && c.Y >= 0 && c.Y < d.height
}

func (d *Dungeon) index(c grid.Coord) int {
	return c.Y*d.width + c.X
}

// Room returns the room at c, or nil when c is off the grid.
func (d *Dungeon) Room(c grid.Coord) *Room {
	if !d.InBounds(c) {
		return nil
	}
	return d.rooms[d.index(c)]
}

// Rooms returns every room in row-major order.
func (d *Dungeon) Rooms() []*Room {
	return d.rooms
}

// HasDoor reports whether a door leads from the room at from in dir.
func (d *Dungeon) HasDoor(from grid.Coord, dir grid.Direction) bool {
	r := d.Room(from)
	if r == nil {
		return false
	}
	return r.HasDoor(dir) && d.InBounds(from.Step(dir))
}

// Connect opens a door between c and its neighbour in dir, on both sides.
func (d *Dungeon) Connect(c grid.Coord, dir grid.Direction) bool {
	next := c.Step(dir)
	if !d.InBounds(c) || !d.InBounds(next) {
		return false
	}
	d.Room(c).Doors[dir] = true
	d.Room(next).Doors[dir.Opposite()] = true
	return true
}

// SetEntrance marks the entrance room, clearing any previous mark.
func (d *Dungeon) SetEntrance(c grid.Coord) error {
	if !d.InBounds(c) {
		return gameerr.Configurationf("entrance %s out of bounds", c)
	}
	d.Room(d.entrance).Entrance = false
	d.entrance = c
	d.Room(c).Entrance = true
	return nil
}

// SetExit marks the exit room, clearing any previous mark.
func (d *Dungeon) SetExit(c grid.Coord) error {
	if !d.InBounds(c) {
		return gameerr.Configurationf("exit %s out of bounds", c)
	}
	d.Room(d.exit).Exit = false
	d.exit = c
	d.Room(c).Exit = true
	return nil
}

// Distances returns the door-graph distance from start to every room, in arena
// order. Unreachable rooms are -1.
func (d *Dungeon) Distances(start grid.Coord) []int {
	dist := make([]int, len(d.rooms))
	for i := range dist {
		dist[i] = -1
	}
	if !d.InBounds(start) {
		return dist
	}

	queue := []grid.Coord{start}
	dist[d.index(start)] = 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dir := range grid.AllDirections() {
			if !d.HasDoor(cur, dir) {
				continue
			}
			next := cur.Step(dir)
			if dist[d.index(next)] >= 0 {
				continue
			}
			dist[d.index(next)] = dist[d.index(cur)] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// Distance returns the door-graph distance between two rooms, or -1.
func (d *Dungeon) Distance(from, to grid.Coord) int {
	if !d.InBounds(to) {
		return -1
	}
	return d.Distances(from)[d.index(to)]
}

// IsConnected reports whether every room is reachable from the entrance.
func (d *Dungeon) IsConnected() bool {
	for _, v := range d.Distances(d.entrance) {
		if v < 0 {
			return false
		}
	}
	return true
}

// PillarRooms maps each placed pillar to its room.
func (d *Dungeon) PillarRooms() map[items.Pillar]grid.Coord {
	out := make(map[items.Pillar]grid.Coord)
	for _, r := range d.rooms {
		for _, item := range r.Items {
			if item.Kind == items.KindPillar {
				out[item.Pillar] = r.Coord
			}
		}
	}
	return out
}

// CheckPillars verifies that every pillar exists exactly once, either lying in
// a room or among held, the pillars the hero already carries.
func (d *Dungeon) CheckPillars(held []items.Pillar) error {
	where := make(map[items.Pillar]string)
	for _, p := range held {
		if _, dup := where[p]; dup {
			return gameerr.Configurationf("pillar %s is held twice", p)
		}
		where[p] = "held by the hero"
	}
	for _, r := range d.rooms {
		for _, item := range r.Items {
			if item.Kind != items.KindPillar {
				continue
			}
			if prev, dup := where[item.Pillar]; dup {
				return gameerr.Configurationf("pillar %s lies in room %s but is already %s", item.Pillar, r.Coord, prev)
			}
			where[item.Pillar] = "in room " + r.Coord.String()
		}
	}
	for _, p := range items.AllPillars() {
		if _, ok := where[p]; !ok {
			return gameerr.Configurationf("pillar %s is missing from the dungeon", p)
		}
	}
	return nil
}

// Validate checks the structural invariants: doors are symmetric and stay on
// the grid, every room is reachable from the entrance, entrance and exit
// differ, and each pillar appears exactly once outside them.
func (d *Dungeon) Validate() error {
	if d.entrance == d.exit {
		return gameerr.Configuration("entrance and exit must be different rooms")
	}
	for _, r := range d.rooms {
		for dir, open := range r.Doors {
			if !open {
				continue
			}
			next := d.Room(r.Coord.Step(dir))
			if next == nil || !next.Doors[dir.Opposite()] {
				return gameerr.Configurationf("door %s from %s has no matching door", dir, r.Coord)
			}
		}
	}
	if !d.IsConnected() {
		return gameerr.Configuration("dungeon is not fully connected")
	}

	seen := make(map[items.Pillar]bool)
	for _, r := range d.rooms {
		for _, item := range r.Items {
			if item.Kind != items.KindPillar {
				continue
			}
			if seen[item.Pillar] {
				return gameerr.Configurationf("pillar %s placed twice", item.Pillar)
			}
			if r.Entrance || r.Exit {
				return gameerr.Configurationf("pillar %s placed in entrance or exit", item.Pillar)
			}
			seen[item.Pillar] = true
		}
	}
	return nil
}
