package test

import (
	"fmt"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/game"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/server"
)

// TestNewGame checks the opening view of a game.
func TestNewGame(serverAddr string) TestResult {
	name := "New Game"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer client.Close()

	hero := uniqueName("Ayla")
	seed := scenarioSeed(7)
	logAction(name, fmt.Sprintf("new priestess game, seed %d", seed))
	info, r, err := client.NewGame("priestess", hero, seed)
	if err != nil {
		return fail(name, "%v", err)
	}
	v := r.View
	switch {
	case info.ID == "" || info.Seed != seed:
		return fail(name, "session info %+v", info)
	case v == nil:
		return fail(name, "no view")
	case v.State != game.Playing || v.Mode != game.Exploring:
		return fail(name, "state %s mode %s", v.State, v.Mode)
	case v.Hero.Class != character.Priestess.String() || v.Hero.Name != hero:
		return fail(name, "hero %s the %s", v.Hero.Name, v.Hero.Class)
	case v.Hero.HP != v.Hero.MaxHP || len(v.Hero.Pillars) != 0:
		return fail(name, "hero does not start fresh: %+v", v.Hero)
	case v.Map == "" || len(v.Rooms) != v.Width*v.Height:
		return fail(name, "map has %d rooms for %dx%d", len(v.Rooms), v.Width, v.Height)
	}
	if room, ok := heroRoom(v); !ok || !room.Visited {
		return fail(name, "hero's starting room is not visited")
	}
	if d, err := dungeon.ParseDifficulty(Difficulty); err == nil && d == dungeon.DifficultyEasy && v.Hero.Position != (grid.Coord{}) {
		return fail(name, "easy game starts at %s, want the top-left corner", v.Hero.Position)
	}
	return pass(name, info.ID)
}

// TestDeterministicSeed checks that one seed gives one dungeon.
func TestDeterministicSeed(serverAddr string) TestResult {
	name := "Deterministic Seed"
	var maps []string
	for i := 0; i < 2; i++ {
		client, err := connect(name, serverAddr)
		if err != nil {
			return fail(name, "%v", err)
		}
		_, r, err := client.NewGame("thief", uniqueName("Twin"), scenarioSeed(1234))
		client.Close()
		if err != nil {
			return fail(name, "%v", err)
		}
		maps = append(maps, r.View.Map)
	}
	if maps[0] != maps[1] {
		return fail(name, "same seed produced different maps")
	}
	return pass(name, "")
}

// TestMovement walks through a door and into a wall.
func TestMovement(serverAddr string) TestResult {
	name := "Movement"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer client.Close()

	_, r, err := client.NewGame("warrior", uniqueName("Walker"), scenarioSeed(99))
	if err != nil {
		return fail(name, "%v", err)
	}
	start := r.View.Hero.Position
	room, _ := heroRoom(r.View)

	if wall, ok := wallDirection(room); ok {
		logAction(name, "walking into the "+wall+" wall")
		r, err = client.Move(wall)
		if err != nil {
			return fail(name, "%v", err)
		}
		var res game.MoveResult
		if err := r.Decode(&res); err != nil {
			return fail(name, "%v", err)
		}
		if !res.Blocked || r.View.Hero.Position != start {
			return fail(name, "wall did not block: %+v", res)
		}
	}

	if len(room.Doors) == 0 {
		return fail(name, "starting room has no doors")
	}
	logAction(name, "walking "+room.Doors[0])
	r, err = client.Move(room.Doors[0])
	if err != nil {
		return fail(name, "%v", err)
	}
	var res game.MoveResult
	if err := r.Decode(&res); err != nil {
		return fail(name, "%v", err)
	}
	if res.Blocked || !res.EnteredRoom || r.View.Hero.Position == start {
		return fail(name, "move through a door failed: %+v", res)
	}
	if res.TriggeredCombat && r.View.Mode != game.InCombat {
		return fail(name, "combat triggered but mode is %s", r.View.Mode)
	}
	return pass(name, "")
}

// TestPotionsWithoutStock checks that drinking nothing is not an error.
func TestPotionsWithoutStock(serverAddr string) TestResult {
	name := "Potions Without Stock"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer client.Close()

	if _, _, err := client.NewGame("", uniqueName("Dry"), scenarioSeed(0)); err != nil {
		return fail(name, "%v", err)
	}
	for _, cmd := range []string{server.CmdHeal, server.CmdVision} {
		logAction(name, cmd)
		r, err := client.Command(cmd)
		if err != nil {
			return fail(name, "%v", err)
		}
		var res character.PotionResult
		if err := r.Decode(&res); err != nil {
			return fail(name, "%s: %v", cmd, err)
		}
		if res.Used || res.Message == "" {
			return fail(name, "%s with no stock: %+v", cmd, res)
		}
	}
	return pass(name, "")
}

// TestAttackOutsideCombat checks that fight commands need a monster.
func TestAttackOutsideCombat(serverAddr string) TestResult {
	name := "Attack Outside Combat"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer client.Close()

	if _, _, err := client.NewGame("", uniqueName("Idle"), scenarioSeed(0)); err != nil {
		return fail(name, "%v", err)
	}
	for _, cmd := range []string{server.CmdAttack, server.CmdSpecial} {
		r, err := client.Command(cmd)
		if err != nil {
			return fail(name, "%v", err)
		}
		if r.OK || r.Code != illegalAction || r.View == nil {
			return fail(name, "%s: ok=%v code=%q", cmd, r.OK, r.Code)
		}
	}
	return pass(name, "")
}
