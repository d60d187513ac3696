// Package snapshot defines the serializable form of a game session and its
// yaml codec. A snapshot carries everything needed to rebuild an identical
// session: the full dungeon, the hero, any combat in progress and the
// position of the random stream.
package snapshot

import (
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
)

// Version is the current snapshot format version.
const Version = 1

// Snapshot is a saved session.
type Snapshot struct {
	Version   int         `yaml:"version"`
	ID        string      `yaml:"id"`
	CreatedAt time.Time   `yaml:"created_at"`
	SavedAt   time.Time   `yaml:"saved_at,omitempty"`
	Seed      int64       `yaml:"seed"`
	Draws     uint64      `yaml:"draws"`
	State     string      `yaml:"state"`
	Mode      string      `yaml:"mode"`
	Hero      HeroData    `yaml:"hero"`
	Dungeon   DungeonData `yaml:"dungeon"`
	Combat    *CombatData `yaml:"combat,omitempty"`
	Events    []string    `yaml:"events,omitempty"`
}

// HeroData is the saved hero.
type HeroData struct {
	Name           string         `yaml:"name"`
	Class          string         `yaml:"class"`
	HP             int            `yaml:"hp"`
	Position       grid.Coord     `yaml:"position"`
	HealingPotions int            `yaml:"healing_potions"`
	VisionPotions  int            `yaml:"vision_potions"`
	Pillars        []items.Pillar `yaml:"pillars,omitempty"`
	VisionActive   bool           `yaml:"vision_active,omitempty"`
}

// DungeonData is the saved dungeon grid.
type DungeonData struct {
	Width    int        `yaml:"width"`
	Height   int        `yaml:"height"`
	Entrance grid.Coord `yaml:"entrance"`
	Exit     grid.Coord `yaml:"exit"`
	Rooms    []RoomData `yaml:"rooms"`
}

// RoomData is one saved room. Doors are direction names.
type RoomData struct {
	Coord    grid.Coord    `yaml:"coord"`
	Doors    []string      `yaml:"doors,flow"`
	Visited  bool          `yaml:"visited,omitempty"`
	Revealed bool          `yaml:"revealed,omitempty"`
	Items    []items.Item  `yaml:"items,omitempty"`
	Monsters []MonsterData `yaml:"monsters,omitempty"`
}

// MonsterData is a saved monster. Stats come from its definition.
type MonsterData struct {
	Kind string `yaml:"kind"`
	HP   int    `yaml:"hp"`
}

// CombatData is a combat in progress, saved between rounds.
type CombatData struct {
	Round int            `yaml:"round"`
	Log   []combat.Entry `yaml:"log,omitempty"`
}

// Summary is the listing view of a save.
type Summary struct {
	ID       string    `yaml:"id" json:"id"`
	HeroName string    `yaml:"hero_name" json:"hero_name"`
	Class    string    `yaml:"class" json:"class"`
	State    string    `yaml:"state" json:"state"`
	Pillars  int       `yaml:"pillars" json:"pillars"`
	SavedAt  time.Time `yaml:"saved_at" json:"saved_at"`
}

// Summary returns the listing view of s.
func (s *Snapshot) Summary() Summary {
	return Summary{
		ID:       s.ID,
		HeroName: s.Hero.Name,
		Class:    s.Hero.Class,
		State:    s.State,
		Pillars:  len(s.Hero.Pillars),
		SavedAt:  s.SavedAt,
	}
}

// Validate checks the parts of a snapshot that do not need game rules.
func (s *Snapshot) Validate() error {
	switch {
	case s.Version != Version:
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	case s.ID == "":
		return fmt.Errorf("snapshot has no id")
	case s.Dungeon.Width < 1 || s.Dungeon.Height < 1:
		return fmt.Errorf("snapshot dungeon has invalid size %dx%d", s.Dungeon.Width, s.Dungeon.Height)
	case len(s.Dungeon.Rooms) != s.Dungeon.Width*s.Dungeon.Height:
		return fmt.Errorf("snapshot dungeon has %d rooms, want %d", len(s.Dungeon.Rooms), s.Dungeon.Width*s.Dungeon.Height)
	}
	for _, r := range s.Dungeon.Rooms {
		for i := range r.Items {
			if err := r.Items[i].Validate(); err != nil {
				return fmt.Errorf("room %s: %w", r.Coord, err)
			}
		}
	}
	return nil
}

// Encode marshals a snapshot to yaml.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode unmarshals and validates a yaml snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Checksum returns the hex blake2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify decodes data after checking it against checksum.
func Verify(data []byte, checksum string) (*Snapshot, error) {
	if got := Checksum(data); got != checksum {
		return nil, fmt.Errorf("snapshot checksum mismatch: stored %s, computed %s", checksum, got)
	}
	return Decode(data)
}
