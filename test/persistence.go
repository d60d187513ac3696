package test

import (
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/server"
)

// TestSaveAndLoad saves a game, disconnects, and loads it on a new connection.
func TestSaveAndLoad(serverAddr string) TestResult {
	name := "Save And Load"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}

	hero := uniqueName("Keeper")
	_, r, err := client.NewGame("thief", hero, scenarioSeed(31))
	if err != nil {
		client.Close()
		return fail(name, "%v", err)
	}
	if room, ok := heroRoom(r.View); ok && len(room.Doors) > 0 {
		logAction(name, "moving "+room.Doors[0]+" before saving")
		if r, err = client.Move(room.Doors[0]); err != nil {
			client.Close()
			return fail(name, "%v", err)
		}
	}
	before := *r.View

	logAction(name, "saving")
	r, err = client.Command(server.CmdSave)
	client.Close()
	if err != nil {
		return fail(name, "%v", err)
	}
	if !r.OK && r.Code == string(gameerr.CodeConfiguration) {
		return pass(name, "skipped: "+r.Error)
	}
	var saved server.SessionInfo
	if err := r.Decode(&saved); err != nil {
		return fail(name, "%v", err)
	}

	other, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer other.Close()

	logAction(name, "loading "+saved.ID)
	r, err = other.Load(saved.ID)
	if err != nil {
		return fail(name, "%v", err)
	}
	if !r.OK {
		return fail(name, "load: %s", r.Error)
	}
	after := r.View
	switch {
	case after.Hero.Name != hero:
		return fail(name, "loaded hero %q, want %q", after.Hero.Name, hero)
	case after.Hero.Position != before.Hero.Position || after.Hero.HP != before.Hero.HP:
		return fail(name, "hero changed across save: %+v vs %+v", after.Hero, before.Hero)
	case after.Map != before.Map:
		return fail(name, "map changed across save")
	}
	return pass(name, saved.ID)
}

// TestJoinRunningGame checks that a second connection can share a live game.
func TestJoinRunningGame(serverAddr string) TestResult {
	name := "Join Running Game"
	host, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer host.Close()

	info, _, err := host.NewGame("", uniqueName("Host"), scenarioSeed(0))
	if err != nil {
		return fail(name, "%v", err)
	}

	guest, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer guest.Close()

	logAction(name, "guest joining "+info.ID)
	r, err := guest.Load(info.ID)
	if err != nil {
		return fail(name, "%v", err)
	}
	if !r.OK || r.View == nil || r.View.ID != info.ID {
		return fail(name, "join failed: %s", r.Error)
	}

	// Either connection sees the other's commands.
	hostView, err := host.Command(server.CmdView)
	if err != nil {
		return fail(name, "%v", err)
	}
	if hostView.View.Hero.Position != r.View.Hero.Position {
		return fail(name, "host and guest disagree on the hero's position")
	}
	return pass(name, "")
}

// TestLoadUnknownSave checks the error for a missing save.
func TestLoadUnknownSave(serverAddr string) TestResult {
	name := "Load Unknown Save"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer client.Close()

	r, err := client.Load("no-such-save")
	if err != nil {
		return fail(name, "%v", err)
	}
	if r.OK {
		return fail(name, "loaded a save that does not exist")
	}
	switch r.Code {
	case string(gameerr.CodeNotFound), string(gameerr.CodeConfiguration), illegalAction:
		return pass(name, r.Code)
	}
	return fail(name, "unexpected code %q: %s", r.Code, r.Error)
}
