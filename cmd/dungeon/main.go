package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/config"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/namefilter"
	"github.com/lawnchairsociety/dungeonadventure/internal/storage"
	"github.com/lawnchairsociety/dungeonadventure/internal/tui"
)

func main() {
	configFile := flag.String("config", "data/dungeon.yaml", "Path to config YAML file")
	seed := flag.Int64("seed", 0, "Dungeon seed (default: random)")
	class := flag.String("class", "", "Hero class: warrior, priestess or thief")
	name := flag.String("name", "", "Hero name")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Printf("Config error, continuing with defaults: %v", err)
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if *class != "" {
		cfg.Game.Class = *class
	}
	if *name != "" {
		cfg.Game.HeroName = *name
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// The terminal belongs to the UI, so logs only go to the file.
	cfg.Logging.ConsoleEnabled = false
	if !cfg.Logging.FileEnabled {
		logger.SetLogger(nil)
	} else {
		closer, err := logger.Initialize(cfg.Logging)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer closer.Close()
	}
	gameerr.SetStrict(cfg.Debug.StrictInvariants)

	ctx := context.Background()
	st, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer st.Close()

	heroClass, _ := character.ParseHeroClass(cfg.Game.Class)
	model := tui.NewModel(ctx, tui.Options{
		Repository:  st.Saves,
		Definitions: st.Definitions,
		Dungeon:     cfg.Dungeon,
		Seed:        cfg.Game.Seed,
		Class:       heroClass,
		HeroName:    cfg.Game.HeroName,
		Names:       namefilter.New(&cfg.Game.Names),
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
