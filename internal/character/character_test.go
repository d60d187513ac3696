package character

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
)

func newTestHero(t *testing.T, class HeroClass) *Hero {
	t.Helper()
	h, err := DefaultDefinitions().NewHero(class, "Tester")
	if err != nil {
		t.Fatalf("NewHero(%s) error: %v", class, err)
	}
	return h
}

func newTestMonster(t *testing.T, kind MonsterKind) *Monster {
	t.Helper()
	m, err := DefaultDefinitions().NewMonster(kind)
	if err != nil {
		t.Fatalf("NewMonster(%s) error: %v", kind, err)
	}
	return m
}

func TestDefaultDefinitionsValid(t *testing.T) {
	if err := DefaultDefinitions().Validate(); err != nil {
		t.Fatalf("default definitions invalid: %v", err)
	}
}

func TestHeroStats(t *testing.T) {
	tests := []struct {
		class HeroClass
		hp    int
		speed int
		block float64
	}{
		{Warrior, 125, 4, 0.2},
		{Priestess, 75, 5, 0.3},
		{Thief, 75, 6, 0.4},
	}
	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			h := newTestHero(t, tt.class)
			if h.HP() != tt.hp || h.MaxHP() != tt.hp {
				t.Errorf("HP = %d/%d, want %d", h.HP(), h.MaxHP(), tt.hp)
			}
			if h.AttackSpeed() != tt.speed {
				t.Errorf("AttackSpeed = %d, want %d", h.AttackSpeed(), tt.speed)
			}
			if h.BlockChance() != tt.block {
				t.Errorf("BlockChance = %.2f, want %.2f", h.BlockChance(), tt.block)
			}
			if h.Class() != tt.class {
				t.Errorf("Class = %s, want %s", h.Class(), tt.class)
			}
		})
	}
}

func TestTakeDamageClamps(t *testing.T) {
	m := newTestMonster(t, Gremlin)

	if got := m.TakeDamage(30); got != 30 {
		t.Errorf("TakeDamage(30) = %d, want 30", got)
	}
	if got := m.TakeDamage(500); got != 40 {
		t.Errorf("TakeDamage(500) = %d, want 40", got)
	}
	if m.HP() != 0 {
		t.Errorf("HP = %d, want 0", m.HP())
	}
	if m.IsAlive() {
		t.Error("monster at 0 HP should be defeated")
	}
	if got := m.TakeDamage(10); got != 0 {
		t.Errorf("damage to defeated monster = %d, want 0", got)
	}
	if got := m.Heal(10); got != 0 {
		t.Errorf("healing a defeated monster = %d, want 0", got)
	}
}

func TestHealClamps(t *testing.T) {
	h := newTestHero(t, Priestess)
	h.TakeDamage(10)
	if got := h.Heal(50); got != 10 {
		t.Errorf("Heal(50) = %d, want 10", got)
	}
	if h.HP() != h.MaxHP() {
		t.Errorf("HP = %d, want %d", h.HP(), h.MaxHP())
	}
}

func TestNegativeAmountsAreViolations(t *testing.T) {
	h := newTestHero(t, Warrior)
	if got := h.TakeDamage(-5); got != 0 {
		t.Errorf("TakeDamage(-5) = %d, want 0", got)
	}
	if h.HP() != h.MaxHP() {
		t.Errorf("HP changed after negative damage: %d", h.HP())
	}

	gameerr.SetStrict(true)
	defer gameerr.SetStrict(false)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic in strict mode")
		}
		err, ok := r.(*gameerr.Error)
		if !ok || err.Code != gameerr.CodeInvariantViolation {
			t.Errorf("panic value = %v, want invariant violation", r)
		}
	}()
	h.Heal(-1)
}

type doors map[grid.Coord]map[grid.Direction]bool

func (d doors) HasDoor(from grid.Coord, dir grid.Direction) bool {
	return d[from][dir]
}

func TestMove(t *testing.T) {
	h := newTestHero(t, Thief)
	d := doors{{X: 0, Y: 0}: {grid.East: true}}

	if h.Move(grid.South, d) {
		t.Error("moved south through a wall")
	}
	if h.Position() != (grid.Coord{}) {
		t.Errorf("position changed on blocked move: %v", h.Position())
	}
	if !h.Move(grid.East, d) {
		t.Fatal("east move blocked")
	}
	if h.Position() != (grid.Coord{X: 1, Y: 0}) {
		t.Errorf("Position = %v, want (1,0)", h.Position())
	}
	if h.Move(grid.East, nil) {
		t.Error("move without a door checker succeeded")
	}
}

func TestStrikeHitBlockMiss(t *testing.T) {
	tests := []struct {
		name        string
		chances     []bool
		ints        []int
		wantHit     bool
		wantBlocked bool
		wantDamage  int
	}{
		{"miss", []bool{false}, nil, false, false, 0},
		{"blocked", []bool{true, true}, nil, true, true, 0},
		{"hit", []bool{true, false}, []int{25}, true, false, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMonster(t, Gremlin)
			h := newTestHero(t, Warrior)
			src := rng.NewScripted().Chances(tt.chances...).Ints(tt.ints...)
			src.Strict = true

			got := m.Attack(h, src)
			if got.Hit != tt.wantHit || got.Blocked != tt.wantBlocked || got.Damage != tt.wantDamage {
				t.Errorf("Attack = %+v, want hit=%v blocked=%v damage=%d", got, tt.wantHit, tt.wantBlocked, tt.wantDamage)
			}
			if h.HP() != h.MaxHP()-tt.wantDamage {
				t.Errorf("hero HP = %d, want %d", h.HP(), h.MaxHP()-tt.wantDamage)
			}
		})
	}
}

func TestMonstersDoNotBlock(t *testing.T) {
	h := newTestHero(t, Warrior)
	m := newTestMonster(t, Ogre)
	src := rng.NewScripted().Chances(true).Ints(40)
	src.Strict = true

	got := h.Attack(m, src)
	if !got.Hit || got.Blocked || got.Damage != 40 {
		t.Errorf("Attack = %+v, want unblocked 40", got)
	}
	if src.ChanceCalls != 1 {
		t.Errorf("ChanceCalls = %d, want 1 (no block roll for monsters)", src.ChanceCalls)
	}
}

func TestCrushingBlow(t *testing.T) {
	h := newTestHero(t, Warrior)
	m := newTestMonster(t, Ogre)

	miss := h.UseSpecialAbility(m, rng.NewScripted().Chances(false))
	if miss.Triggered || miss.TotalDamage() != 0 {
		t.Errorf("failed crushing blow = %+v", miss)
	}

	hit := h.UseSpecialAbility(m, rng.NewScripted().Chances(true).Ints(150))
	if !hit.Triggered || hit.TotalDamage() != 150 {
		t.Errorf("crushing blow = %+v, want 150 damage", hit)
	}
	if hit.Name != "Crushing Blow" {
		t.Errorf("Name = %q", hit.Name)
	}
	if m.HP() != 50 {
		t.Errorf("ogre HP = %d, want 50", m.HP())
	}
}

func TestPriestessHeal(t *testing.T) {
	h := newTestHero(t, Priestess)
	m := newTestMonster(t, Gremlin)

	full := h.UseSpecialAbility(m, rng.NewScripted())
	if full.Triggered || full.Healing != 0 {
		t.Errorf("heal at full HP = %+v, want no effect", full)
	}

	h.TakeDamage(40)
	res := h.UseSpecialAbility(m, rng.NewScripted().Ints(30))
	if !res.Triggered || res.Healing != 30 {
		t.Errorf("heal = %+v, want 30", res)
	}
	if m.HP() != m.MaxHP() {
		t.Error("priestess heal damaged the target")
	}
	if h.HP() != 65 {
		t.Errorf("HP = %d, want 65", h.HP())
	}
}

func TestSurpriseAttack(t *testing.T) {
	tests := []struct {
		name        string
		chances     []bool
		ints        []int
		wantStrikes int
		wantCaught  bool
		wantDamage  int
	}{
		{"two attacks", []bool{true, true, true}, []int{20, 30}, 2, false, 50},
		{"caught", []bool{false, true}, nil, 0, true, 0},
		{"normal", []bool{false, false, true}, []int{25}, 1, false, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHero(t, Thief)
			m := newTestMonster(t, Ogre)
			src := rng.NewScripted().Chances(tt.chances...).Ints(tt.ints...)
			src.Strict = true

			res := h.UseSpecialAbility(m, src)
			if len(res.Strikes) != tt.wantStrikes {
				t.Errorf("strikes = %d, want %d", len(res.Strikes), tt.wantStrikes)
			}
			if res.Caught != tt.wantCaught {
				t.Errorf("Caught = %v, want %v", res.Caught, tt.wantCaught)
			}
			if res.TotalDamage() != tt.wantDamage {
				t.Errorf("damage = %d, want %d", res.TotalDamage(), tt.wantDamage)
			}
			if c, i := src.Remaining(); c != 0 || i != 0 {
				t.Errorf("unconsumed rolls: %d chances, %d ints", c, i)
			}
		})
	}
}

func TestUseHealingPotion(t *testing.T) {
	h := newTestHero(t, Warrior)

	res := h.UseHealingPotion(rng.NewScripted())
	if res.Used || h.HealingPotions() != 0 {
		t.Errorf("empty inventory: used=%v count=%d", res.Used, h.HealingPotions())
	}

	h.AddPotion(items.KindHealingPotion)
	res = h.UseHealingPotion(rng.NewScripted())
	if res.Used || h.HealingPotions() != 1 {
		t.Errorf("full HP: used=%v count=%d, want unused and 1", res.Used, h.HealingPotions())
	}

	h.TakeDamage(50)
	res = h.UseHealingPotion(rng.NewScripted().Ints(12))
	if !res.Used || res.Healing != 12 {
		t.Errorf("potion = %+v, want 12 healing", res)
	}
	if h.HealingPotions() != 0 {
		t.Errorf("HealingPotions = %d, want 0", h.HealingPotions())
	}
}

func TestUseVisionPotion(t *testing.T) {
	h := newTestHero(t, Thief)
	if res := h.UseVisionPotion(); res.Used {
		t.Error("vision potion used from empty inventory")
	}
	h.AddPotion(items.KindVisionPotion)
	if res := h.UseVisionPotion(); !res.Used || !h.VisionActive() {
		t.Errorf("vision potion = %+v active=%v", res, h.VisionActive())
	}
	h.ClearVision()
	if h.VisionActive() {
		t.Error("vision still active after ClearVision")
	}
}

func TestCollectPillarIdempotent(t *testing.T) {
	h := newTestHero(t, Priestess)
	if !h.CollectPillar(items.PillarAbstraction) {
		t.Fatal("first collect rejected")
	}
	if h.CollectPillar(items.PillarAbstraction) {
		t.Error("second collect of the same pillar accepted")
	}
	if len(h.Pillars()) != 1 {
		t.Errorf("Pillars = %v, want one", h.Pillars())
	}
	for _, p := range items.AllPillars() {
		h.CollectPillar(p)
	}
	if !h.HasAllPillars() {
		t.Error("HasAllPillars = false after collecting all four")
	}
}

func TestRestoreHero(t *testing.T) {
	h := newTestHero(t, Warrior)
	err := h.Restore(HeroState{
		HP:             40,
		Position:       grid.Coord{X: 2, Y: 3},
		HealingPotions: 2,
		VisionPotions:  1,
		Pillars:        []items.Pillar{items.PillarPolymorphism, items.PillarEncapsulation},
	})
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if h.HP() != 40 || h.HealingPotions() != 2 || h.VisionPotions() != 1 {
		t.Errorf("restored hero = %s", h)
	}
	want := []items.Pillar{items.PillarEncapsulation, items.PillarPolymorphism}
	got := h.Pillars()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Pillars = %v, want %v", got, want)
	}

	err = h.Restore(HeroState{HP: 10, Pillars: []items.Pillar{items.PillarAbstraction, items.PillarAbstraction}})
	if err == nil {
		t.Error("duplicate pillar accepted on restore")
	}

	// Long names from hand-edited saves are accepted
	err = h.Restore(HeroState{HP: 10, Pillars: []items.Pillar{"Inheritance", items.PillarAbstraction}})
	if err != nil {
		t.Fatalf("Restore with a long pillar name: %v", err)
	}
	if !h.HasPillar(items.PillarInheritance) || !h.HasPillar(items.PillarAbstraction) {
		t.Errorf("Pillars = %v, want A and I", h.Pillars())
	}

	err = h.Restore(HeroState{HP: 10, Pillars: []items.Pillar{"Z"}})
	if err == nil {
		t.Error("unknown pillar accepted on restore")
	}
}

func TestMonsterTryHeal(t *testing.T) {
	m := newTestMonster(t, Skeleton)

	src := rng.NewScripted()
	src.Strict = true
	if healed, attempted := m.TryHeal(src); attempted || healed != 0 {
		t.Errorf("full HP TryHeal = %d, %v", healed, attempted)
	}
	if src.ChanceCalls != 0 {
		t.Error("heal rolled at full HP")
	}

	m.TakeDamage(60)
	if healed, attempted := m.TryHeal(rng.NewScripted().Chances(false)); attempted || healed != 0 {
		t.Errorf("failed roll TryHeal = %d, %v", healed, attempted)
	}
	healed, attempted := m.TryHeal(rng.NewScripted().Chances(true).Ints(50))
	if !attempted || healed != 50 {
		t.Errorf("TryHeal = %d, %v, want 50, true", healed, attempted)
	}
	if m.HP() != 90 {
		t.Errorf("HP = %d, want 90", m.HP())
	}
}

func TestParseHeroClass(t *testing.T) {
	for _, c := range AllHeroClasses() {
		got, err := ParseHeroClass(c.String())
		if err != nil || got != c {
			t.Errorf("ParseHeroClass(%q) = %q, %v", c.String(), got, err)
		}
	}
	if _, err := ParseHeroClass("necromancer"); err == nil {
		t.Error("ParseHeroClass(necromancer) should fail")
	}
}

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "characters.yaml")
	data := `
monsters:
  Wyvern:
    hp: 160
    min_damage: 25
    max_damage: 45
    attack_speed: 4
    hit_chance: 0.7
    heal_chance: 0.1
    min_heal: 10
    max_heal: 20
  dragon:
    name: Red Dragon
    hp: 300
    min_damage: 40
    max_damage: 70
    attack_speed: 1
    hit_chance: 0.7
    heal_chance: 0.05
    min_heal: 20
    max_heal: 40
    weight: 2
heroes:
  thief:
    hp: 90
    min_damage: 20
    max_damage: 40
    attack_speed: 6
    hit_chance: 0.8
    block_chance: 0.4
    potion_heal_min: 5
    potion_heal_max: 15
    ability:
      chance: 0.5
      caught_chance: 0.1
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	defs, err := LoadDefinitions(path)
	if err != nil {
		t.Fatalf("LoadDefinitions error: %v", err)
	}
	wyvern, ok := defs.Monsters["wyvern"]
	if !ok {
		t.Fatal("wyvern not loaded")
	}
	if wyvern.Name != "Wyvern" || wyvern.MaxHP != 160 {
		t.Errorf("wyvern = %+v", wyvern)
	}
	if wyvern.Weight != 0 || wyvern.SpawnWeight() != 1 {
		t.Errorf("wyvern weight = %d (spawn %d), want 0 (spawn 1)", wyvern.Weight, wyvern.SpawnWeight())
	}
	if dragon := defs.Monsters[Dragon]; dragon.Name != "Red Dragon" || dragon.SpawnWeight() != 2 {
		t.Errorf("dragon = %+v", dragon)
	}
	if len(defs.Monsters) != 5 {
		t.Errorf("monster count = %d, want 5", len(defs.Monsters))
	}
	thief := defs.Heroes[Thief]
	if thief.MaxHP != 90 || thief.Ability.Name != "Surprise Attack" {
		t.Errorf("thief = %+v", thief)
	}
	kinds := defs.MonsterKinds()
	if kinds[0] != Dragon || kinds[3] != Skeleton || kinds[4] != "wyvern" {
		t.Errorf("MonsterKinds = %v, want sorted", kinds)
	}
}

func TestLoadDefinitionsRejectsBadStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := `
monsters:
  ogre:
    hp: 0
    min_damage: 10
    max_damage: 5
    attack_speed: 0
    hit_chance: 2
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadDefinitions(path)
	if !gameerr.IsConfiguration(err) {
		t.Errorf("LoadDefinitions error = %v, want configuration error", err)
	}
}

func TestNewMonsterUnknownKind(t *testing.T) {
	_, err := DefaultDefinitions().NewMonster("beholder")
	if !gameerr.IsNotFound(err) {
		t.Errorf("NewMonster(beholder) error = %v, want not found", err)
	}
}

func TestDefaultDragon(t *testing.T) {
	m := newTestMonster(t, Dragon)
	if m.Name() != "Dragon" {
		t.Errorf("Name() = %q, want Dragon", m.Name())
	}
	defs := DefaultDefinitions()
	for _, kind := range []MonsterKind{Ogre, Skeleton, Gremlin} {
		if defs.Monsters[Dragon].MaxHP <= defs.Monsters[kind].MaxHP {
			t.Errorf("dragon hp %d not above %s hp %d", defs.Monsters[Dragon].MaxHP, kind, defs.Monsters[kind].MaxHP)
		}
		if defs.Monsters[Dragon].Weight >= defs.Monsters[kind].Weight {
			t.Errorf("dragon weight %d not below %s weight %d", defs.Monsters[Dragon].Weight, kind, defs.Monsters[kind].Weight)
		}
	}
}

func TestPickMonsterKind(t *testing.T) {
	defs := DefaultDefinitions()
	// Sorted kinds and weights: dragon 1, gremlin 10, ogre 3, skeleton 5.
	tests := []struct {
		roll int
		want MonsterKind
	}{
		{0, Dragon},
		{1, Gremlin},
		{10, Gremlin},
		{11, Ogre},
		{13, Ogre},
		{14, Skeleton},
		{18, Skeleton},
	}
	for _, tt := range tests {
		src := rng.NewScripted().Ints(tt.roll)
		got, err := defs.PickMonsterKind(src)
		if err != nil {
			t.Fatalf("roll %d: %v", tt.roll, err)
		}
		if got != tt.want {
			t.Errorf("roll %d picked %s, want %s", tt.roll, got, tt.want)
		}
	}

	_, err := (&Definitions{}).PickMonsterKind(rng.NewScripted())
	if !gameerr.IsConfiguration(err) {
		t.Errorf("empty definitions error = %v, want configuration error", err)
	}
}

func TestPickMonsterKindFollowsWeights(t *testing.T) {
	defs := DefaultDefinitions()
	src := rng.NewSeeded(3)
	counts := make(map[MonsterKind]int)
	for i := 0; i < 19000; i++ {
		kind, err := defs.PickMonsterKind(src)
		if err != nil {
			t.Fatal(err)
		}
		counts[kind]++
	}
	// 19000 draws over a total weight of 19 expect 1000 per unit of weight.
	for kind, def := range defs.Monsters {
		want := 1000 * def.Weight
		if got := counts[kind]; got < want*8/10 || got > want*12/10 {
			t.Errorf("%s picked %d times, want about %d", kind, got, want)
		}
	}
}

func TestNegativeMonsterWeightRejected(t *testing.T) {
	defs := DefaultDefinitions()
	ogre := defs.Monsters[Ogre]
	ogre.Weight = -1
	defs.Monsters[Ogre] = ogre
	if err := defs.Validate(); !gameerr.IsConfiguration(err) {
		t.Errorf("Validate() = %v, want configuration error", err)
	}
}
