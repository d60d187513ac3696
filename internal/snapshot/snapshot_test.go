package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
)

func sample() *Snapshot {
	rooms := []RoomData{
		{Coord: grid.Coord{X: 0, Y: 0}, Doors: []string{"east"}, Visited: true},
		{
			Coord:    grid.Coord{X: 1, Y: 0},
			Doors:    []string{"west"},
			Items:    []items.Item{*items.NewPillar(items.PillarEncapsulation), *items.NewPit()},
			Monsters: []MonsterData{{Kind: "ogre", HP: 150}},
		},
	}
	return &Snapshot{
		Version:   Version,
		ID:        "3f1b2c6e-0000-4000-8000-000000000001",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Seed:      42,
		Draws:     317,
		State:     "playing",
		Mode:      "in_combat",
		Hero: HeroData{
			Name:           "Ada",
			Class:          "priestess",
			HP:             61,
			Position:       grid.Coord{X: 1, Y: 0},
			HealingPotions: 2,
			Pillars:        []items.Pillar{items.PillarAbstraction},
		},
		Dungeon: DungeonData{Width: 2, Height: 1, Entrance: grid.Coord{}, Exit: grid.Coord{X: 1, Y: 0}, Rooms: rooms},
		Combat: &CombatData{
			Round: 2,
			Log: []combat.Entry{
				{Round: 1, Actor: "Ada", Side: combat.SideHero, Target: "Ogre", Action: combat.ActionAttack, Hit: true, Damage: 30, TargetRemainingHP: 170},
				{Round: 1, Actor: "Ogre", Side: combat.SideMonster, Target: "Ada", Action: combat.ActionAttack, Hit: true, Blocked: true, TargetRemainingHP: 75},
			},
		},
		Events: []string{"You enter the dungeon."},
	}
}

func TestEncodeDecodeKeepsCombatLog(t *testing.T) {
	data, err := Encode(sample())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), "side: monster") {
		t.Errorf("combat side not encoded by name:\n%s", data)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Combat == nil || len(got.Combat.Log) != 2 {
		t.Fatalf("combat log lost: %+v", got.Combat)
	}
	if got.Combat.Log[1].Side != combat.SideMonster || !got.Combat.Log[1].Blocked {
		t.Errorf("log entry = %+v", got.Combat.Log[1])
	}
	if got.Dungeon.Rooms[1].Items[0].Pillar != items.PillarEncapsulation {
		t.Errorf("pillar item = %+v", got.Dungeon.Rooms[1].Items[0])
	}
	if got.Draws != 317 || got.Seed != 42 {
		t.Errorf("rng position = %d/%d, want 42/317", got.Seed, got.Draws)
	}
	if !got.CreatedAt.Equal(sample().CreatedAt) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
}

func TestDecodeRejectsBadSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"version", func(s *Snapshot) { s.Version = 99 }},
		{"id", func(s *Snapshot) { s.ID = "" }},
		{"room count", func(s *Snapshot) { s.Dungeon.Rooms = s.Dungeon.Rooms[:1] }},
		{"item", func(s *Snapshot) { s.Dungeon.Rooms[1].Items[0].Pillar = "Z" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sample()
			tt.mutate(s)
			data, err := Encode(s)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := Decode(data); err == nil {
				t.Error("Decode accepted an invalid snapshot")
			}
		})
	}
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("hello"))
	if len(a) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(a))
	}
	if a != Checksum([]byte("hello")) {
		t.Error("checksum not stable")
	}
	if a == Checksum([]byte("hello!")) {
		t.Error("different data, same checksum")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "game.yaml")

	if FileExists(path) {
		t.Fatal("file should not exist yet")
	}
	if err := SaveFile(path, sample()); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	if !FileExists(path) {
		t.Fatal("file should exist after save")
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got.Hero.Name != "Ada" || got.Hero.HP != 61 {
		t.Errorf("hero = %+v", got.Hero)
	}
	if got.Summary().Pillars != 1 {
		t.Errorf("Summary().Pillars = %d, want 1", got.Summary().Pillars)
	}
}

func TestLoadFileDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := SaveFile(path, sample()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), "hp: 61", "hp: 75", 1)
	if tampered == string(data) {
		t.Fatal("test data did not contain the hero hp")
	}
	if err := os.WriteFile(path, []byte(tampered), 0644); err != nil {
		t.Fatal(err)
	}

	_, err = LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("LoadFile error = %v, want checksum mismatch", err)
	}
}
