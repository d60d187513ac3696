package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/config"
	"github.com/lawnchairsociety/dungeonadventure/internal/storage"
)

func main() {
	configPath := flag.String("config", "data/dungeon.yaml", "Path to config file")
	results := flag.Int("results", 10, "Recent game results to show (sql backend)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("Error:", err)
		return
	}

	ctx := context.Background()
	st, err := storage.Open(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer st.Close()

	defs := st.Definitions
	fmt.Printf("Loaded %d hero classes and %d monster kinds (%s backend)\n",
		len(defs.Heroes), len(defs.Monsters), cfg.Storage.Backend)

	fmt.Println("\n--- Heroes ---")
	for _, class := range character.AllHeroClasses() {
		h, ok := defs.Heroes[class]
		if !ok {
			fmt.Printf("  %s NOT FOUND\n", class)
			continue
		}
		fmt.Printf("  %-10s hp %3d  dmg %2d-%-3d speed %d  hit %.2f  block %.2f  %s\n",
			class, h.MaxHP, h.MinDamage, h.MaxDamage, h.AttackSpeed, h.HitChance, h.BlockChance, h.Ability.Name)
	}

	fmt.Println("\n--- Monsters ---")
	for _, kind := range defs.MonsterKinds() {
		m := defs.Monsters[kind]
		fmt.Printf("  %-10s hp %3d  dmg %2d-%-3d speed %d  hit %.2f  heal %.2f (%d-%d)\n",
			kind, m.MaxHP, m.MinDamage, m.MaxDamage, m.AttackSpeed, m.HitChance, m.HealChance, m.MinHeal, m.MaxHeal)
	}
	if err := defs.Validate(); err != nil {
		fmt.Println("\nDefinitions are INVALID:", err)
	}

	saves, err := st.Saves.List(ctx)
	if err != nil {
		fmt.Println("Error listing saves:", err)
		return
	}
	fmt.Printf("\n--- Saves (%d) ---\n", len(saves))
	for _, s := range saves {
		fmt.Printf("  %s  %s the %s  %s  pillars %d  %s\n",
			s.ID, s.HeroName, s.Class, s.State, s.Pillars, s.SavedAt.Local().Format("2006-01-02 15:04"))
	}

	if st.DB == nil {
		return
	}
	records, err := st.DB.ClassRecords(ctx)
	if err != nil {
		fmt.Println("Error reading class records:", err)
		return
	}
	fmt.Println("\n--- Class records ---")
	for _, r := range records {
		fmt.Printf("  %-10s %d victories, %d defeats\n", r.Class, r.Victories, r.Defeats)
	}

	recent, err := st.DB.RecentResults(ctx, *results)
	if err != nil {
		fmt.Println("Error reading results:", err)
		return
	}
	fmt.Println("\n--- Recent games ---")
	for _, r := range recent {
		fmt.Printf("  %s  %s the %s  %s  pillars %d  seed %d\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"), r.HeroName, r.Class, r.Result, r.Pillars, r.Seed)
	}
}
