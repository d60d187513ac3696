package dungeon

import (
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
)

// Stats summarizes a generated dungeon for balancing and map tooling.
type Stats struct {
	Rooms        int
	Doors        int
	DeadEnds     int
	ExitDistance int
	Monsters     map[string]int
	Items        map[items.Kind]int
}

// Summarize counts the contents of d. Doors are counted once per pair of
// rooms.
func Summarize(d *Dungeon) Stats {
	s := Stats{
		Rooms:        len(d.rooms),
		ExitDistance: d.Distance(d.entrance, d.exit),
		Monsters:     make(map[string]int),
		Items:        make(map[items.Kind]int),
	}
	for _, r := range d.rooms {
		doors := r.DoorCount()
		s.Doors += doors
		if doors == 1 {
			s.DeadEnds++
		}
		for _, m := range r.Monsters {
			s.Monsters[m.Name()]++
		}
		for _, kind := range items.AllKinds() {
			if n := items.CountKind(r.Items, kind); n > 0 {
				s.Items[kind] += n
			}
		}
	}
	s.Doors /= 2
	return s
}
