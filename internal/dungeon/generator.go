package dungeon

import (
	"math"
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

// pillarRoomsNeeded is the number of rooms that must remain for pillars once
// the entrance, the exit and the entrance's neighbours are set aside.
const pillarRoomsNeeded = 4

// easyDoorChance is the extra door chance of the easy layout.
const easyDoorChance = 0.4

// Difficulty selects how passages are carved.
type Difficulty string

const (
	// DifficultyHard carves a random spanning tree and puts the entrance
	// and exit as far apart as the doors allow.
	DifficultyHard Difficulty = "hard"
	// DifficultyEasy fixes the entrance and exit to opposite corners joined
	// by an L-shaped corridor, with many extra doors.
	DifficultyEasy Difficulty = "easy"
)

// ParseDifficulty accepts a difficulty name in any case. Empty means hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DifficultyHard, nil
	case DifficultyHard, DifficultyEasy:
		return d, nil
	default:
		return "", gameerr.Configurationf("unknown difficulty %q, want easy or hard", s)
	}
}

// Config controls dungeon size and population.
type Config struct {
	Width  int `yaml:"width" env:"DUNGEON_WIDTH"`
	Height int `yaml:"height" env:"DUNGEON_HEIGHT"`

	Difficulty Difficulty `yaml:"difficulty" env:"DUNGEON_DIFFICULTY"`

	// ExtraDoorChance is rolled for every east and south wall after the
	// spanning tree is carved, adding loops. Easy layouts ignore it.
	ExtraDoorChance float64 `yaml:"extra_door_chance"`

	HealingPotionChance float64 `yaml:"healing_potion_chance"`
	VisionPotionChance  float64 `yaml:"vision_potion_chance"`
	PitChance           float64 `yaml:"pit_chance"`

	// MonsterCount is the total number of monsters. Zero derives the count
	// from MonsterDensity over the eligible rooms.
	MonsterCount       int     `yaml:"monster_count"`
	MonsterDensity     float64 `yaml:"monster_density"`
	MaxMonstersPerRoom int     `yaml:"max_monsters_per_room"`

	// MinExitDistance is the smallest acceptable door distance between
	// entrance and exit.
	MinExitDistance int `yaml:"min_exit_distance"`
}

// DefaultConfig returns the standard 8x8 dungeon settings.
func DefaultConfig() Config {
	return Config{
		Width:               8,
		Height:              8,
		Difficulty:          DifficultyHard,
		ExtraDoorChance:     0.15,
		HealingPotionChance: 0.1,
		VisionPotionChance:  0.1,
		PitChance:           0.1,
		MonsterDensity:      0.3,
		MaxMonstersPerRoom:  1,
		MinExitDistance:     2,
	}
}

// Validate rejects settings that cannot produce a playable dungeon.
func (c Config) Validate() error {
	switch {
	case c.Width < 1 || c.Height < 1:
		return gameerr.Configurationf("dungeon dimensions must be positive, got %dx%d", c.Width, c.Height)
	case c.Width*c.Height-2-cornerNeighbours(c.Width, c.Height) < pillarRoomsNeeded:
		return gameerr.Configurationf("a %dx%d dungeon cannot hold an entrance, an exit and four pillars", c.Width, c.Height)
	case c.MonsterCount < 0:
		return gameerr.Configurationf("monster_count must not be negative, got %d", c.MonsterCount)
	case c.MaxMonstersPerRoom < 0:
		return gameerr.Configurationf("max_monsters_per_room must not be negative, got %d", c.MaxMonstersPerRoom)
	case c.MinExitDistance < 0:
		return gameerr.Configurationf("min_exit_distance must not be negative, got %d", c.MinExitDistance)
	}
	for name, p := range map[string]float64{
		"extra_door_chance":     c.ExtraDoorChance,
		"healing_potion_chance": c.HealingPotionChance,
		"vision_potion_chance":  c.VisionPotionChance,
		"pit_chance":            c.PitChance,
		"monster_density":       c.MonsterDensity,
	} {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return gameerr.Configurationf("%s must be within [0,1], got %v", name, p)
		}
	}
	if _, err := ParseDifficulty(string(c.Difficulty)); err != nil {
		return err
	}
	return nil
}

// cornerNeighbours counts the rooms next to a corner of a w x h grid. An
// entrance in a corner leaves at least w*h-2-cornerNeighbours rooms for
// pillars whatever doors were carved.
func cornerNeighbours(w, h int) int {
	n := 0
	if w > 1 {
		n++
	}
	if h > 1 {
		n++
	}
	return n
}

// Generator carves and populates one dungeon from a random source.
type Generator struct {
	cfg  Config
	defs *character.Definitions
	src  rng.Source
	d    *Dungeon

	visited []bool
	pillars map[grid.Coord]bool
}

// NewGenerator prepares a generator. A nil defs uses the built-in monsters.
func NewGenerator(cfg Config, defs *character.Definitions, src rng.Source) *Generator {
	if defs == nil {
		defs = character.DefaultDefinitions()
	}
	return &Generator{cfg: cfg, defs: defs, src: src}
}

// Generate builds a dungeon for seed. The same seed and config always give
// the same layout and contents.
func Generate(seed int64, cfg Config, defs *character.Definitions) (*Dungeon, error) {
	return NewGenerator(cfg, defs, rng.NewSeeded(seed)).Generate()
}

// Generate carves the doors for the configured difficulty, picks the entrance
// and exit, then places pillars, potions, pits and monsters.
func (g *Generator) Generate() (*Dungeon, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	if g.src == nil {
		return nil, gameerr.Configuration("dungeon generation needs a random source")
	}

	d, err := New(g.cfg.Width, g.cfg.Height)
	if err != nil {
		return nil, err
	}
	g.d = d
	g.visited = make([]bool, len(d.rooms))
	g.pillars = make(map[grid.Coord]bool)

	difficulty, _ := ParseDifficulty(string(g.cfg.Difficulty))
	if difficulty == DifficultyEasy {
		if err := g.carveEasy(); err != nil {
			return nil, err
		}
	} else {
		start := g.src.RollInt(len(d.rooms))
		g.carveFrom(d.rooms[start].Coord)
		g.addExtraDoors(g.cfg.ExtraDoorChance)
		if err := g.placeEntranceAndExit(); err != nil {
			return nil, err
		}
	}
	if err := g.placePillars(); err != nil {
		return nil, err
	}
	g.placeItems()
	if err := g.placeMonsters(); err != nil {
		return nil, err
	}

	if err := d.Validate(); err != nil {
		gameerr.Violation("generated dungeon failed validation", "error", err)
		return nil, err
	}
	if err := d.CheckPillars(nil); err != nil {
		gameerr.Violation("generated dungeon lost a pillar", "error", err)
		return nil, err
	}

	logger.Debug("Dungeon generated",
		"width", d.width,
		"height", d.height,
		"difficulty", string(difficulty),
		"entrance", d.entrance.String(),
		"exit", d.exit.String(),
		"distance", d.Distance(d.entrance, d.exit))
	return d, nil
}

// carveFrom recursively carves passages using DFS
func (g *Generator) carveFrom(c grid.Coord) {
	g.visited[g.d.index(c)] = true

	for _, dir := range g.shuffledDirections() {
		next := c.Step(dir)
		if g.d.InBounds(next) && !g.visited[g.d.index(next)] {
			g.d.Connect(c, dir)
			g.carveFrom(next)
		}
	}
}

// shuffledDirections returns directions in random order
func (g *Generator) shuffledDirections() []grid.Direction {
	dirs := grid.AllDirections()
	rng.Shuffle(g.src, len(dirs), func(i, j int) {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	})
	return dirs
}

func (g *Generator) addExtraDoors(chance float64) {
	if chance == 0 {
		return
	}
	for _, r := range g.d.rooms {
		if r.Coord.X < g.d.width-1 && g.src.RollChance(chance) {
			g.d.Connect(r.Coord, grid.East)
		}
		if r.Coord.Y < g.d.height-1 && g.src.RollChance(chance) {
			g.d.Connect(r.Coord, grid.South)
		}
	}
}

// carveEasy opens a corridor east along the top row and south down the last
// column, from the entrance in the top-left corner to the exit in the
// bottom-right one. Extra doors are then rolled everywhere and any room they
// leave cut off is joined to the rest by the usual DFS carve.
func (g *Generator) carveEasy() error {
	entrance := grid.Coord{X: 0, Y: 0}
	exit := grid.Coord{X: g.d.width - 1, Y: g.d.height - 1}

	for c := entrance; c.X < exit.X; c = c.Step(grid.East) {
		g.d.Connect(c, grid.East)
	}
	for c := (grid.Coord{X: exit.X, Y: 0}); c.Y < exit.Y; c = c.Step(grid.South) {
		g.d.Connect(c, grid.South)
	}
	g.addExtraDoors(easyDoorChance)

	for i, dist := range g.d.Distances(entrance) {
		g.visited[i] = dist >= 0
	}
	for _, r := range g.d.rooms {
		if g.visited[g.d.index(r.Coord)] {
			g.carveFrom(r.Coord)
		}
	}

	if dist := g.d.Distance(entrance, exit); dist < g.cfg.MinExitDistance {
		return gameerr.Configurationf("min_exit_distance %d exceeds the easy path %d", g.cfg.MinExitDistance, dist)
	}
	if err := g.d.SetEntrance(entrance); err != nil {
		return err
	}
	return g.d.SetExit(exit)
}

// pillarRoomCount counts the rooms left for pillars with the entrance at
// from and the exit at to.
func (g *Generator) pillarRoomCount(from, to grid.Coord) int {
	n := len(g.d.rooms) - 2
	for _, dir := range grid.AllDirections() {
		if next := from.Step(dir); g.d.InBounds(next) && next != to {
			n--
		}
	}
	return n
}

// placeEntranceAndExit picks the pair of rooms furthest apart by door
// distance that still leaves room for every pillar. Either room of a pair
// may be the entrance. Ties keep the first pair in row-major order.
func (g *Generator) placeEntranceAndExit() error {
	best, bestFrom, bestTo := -1, 0, 0
	for i, r := range g.d.rooms {
		dist := g.d.Distances(r.Coord)
		for j := i + 1; j < len(dist); j++ {
			if dist[j] <= best {
				continue
			}
			other := g.d.rooms[j].Coord
			switch {
			case g.pillarRoomCount(r.Coord, other) >= pillarRoomsNeeded:
				best, bestFrom, bestTo = dist[j], i, j
			case g.pillarRoomCount(other, r.Coord) >= pillarRoomsNeeded:
				best, bestFrom, bestTo = dist[j], j, i
			}
		}
	}
	if best < 1 {
		return gameerr.Configuration("dungeon has no two connected rooms for entrance and exit")
	}
	if best < g.cfg.MinExitDistance {
		return gameerr.Configurationf("min_exit_distance %d exceeds the longest path %d", g.cfg.MinExitDistance, best)
	}

	if err := g.d.SetEntrance(g.d.rooms[bestFrom].Coord); err != nil {
		return err
	}
	return g.d.SetExit(g.d.rooms[bestTo].Coord)
}

// placePillars puts one of each pillar in four distinct rooms that are
// neither entrance nor exit nor next to the entrance.
func (g *Generator) placePillars() error {
	var candidates []*Room
	for _, r := range g.d.rooms {
		if r.Entrance || r.Exit || r.Coord.IsAdjacent(g.d.entrance) {
			continue
		}
		candidates = append(candidates, r)
	}

	all := items.AllPillars()
	if len(candidates) < len(all) {
		return gameerr.Configurationf("only %d rooms can hold pillars in a %dx%d dungeon, need %d",
			len(candidates), g.d.width, g.d.height, len(all))
	}

	rng.Shuffle(g.src, len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for i, p := range all {
		r := candidates[i]
		items.AddItem(&r.Items, items.NewPillar(p))
		g.pillars[r.Coord] = true
	}
	return nil
}

// reserved reports rooms that take no potions, pits or monsters.
func (g *Generator) reserved(r *Room) bool {
	return r.Entrance || r.Exit || g.pillars[r.Coord]
}

func (g *Generator) placeItems() {
	for _, r := range g.d.rooms {
		if g.reserved(r) {
			continue
		}
		if g.src.RollChance(g.cfg.HealingPotionChance) {
			items.AddItem(&r.Items, items.NewHealingPotion())
		}
		if g.src.RollChance(g.cfg.VisionPotionChance) {
			items.AddItem(&r.Items, items.NewVisionPotion())
		}
		if g.src.RollChance(g.cfg.PitChance) {
			items.AddItem(&r.Items, items.NewPit())
		}
	}
}

func (g *Generator) placeMonsters() error {
	var eligible []*Room
	for _, r := range g.d.rooms {
		if !g.reserved(r) {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 || g.cfg.MaxMonstersPerRoom == 0 {
		return nil
	}

	total := g.cfg.MonsterCount
	if total == 0 {
		total = int(math.Round(g.cfg.MonsterDensity * float64(len(eligible))))
	}
	if capacity := len(eligible) * g.cfg.MaxMonstersPerRoom; total > capacity {
		logger.Warning("Monster count exceeds room capacity, clamping",
			"requested", total,
			"capacity", capacity)
		total = capacity
	}
	if total == 0 {
		return nil
	}

	rng.Shuffle(g.src, len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	for placed := 0; placed < total; placed++ {
		r := eligible[placed%len(eligible)]
		kind, err := g.defs.PickMonsterKind(g.src)
		if err != nil {
			return err
		}
		m, err := g.defs.NewMonster(kind)
		if err != nil {
			return err
		}
		m.SetPosition(r.Coord)
		r.Monsters = append(r.Monsters, m)
	}
	return nil
}
