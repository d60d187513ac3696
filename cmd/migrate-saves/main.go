// migrate-saves copies saved games from one storage backend to another, for
// example from the file backend into PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-saves \
//	    -from data/dungeon.yaml \
//	    -to data/postgres.yaml \
//	    -dry-run
//
// Each side is a full config file; only its storage and game sections are
// used. Environment overrides apply to both sides.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/lawnchairsociety/dungeonadventure/internal/config"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/savegame"
	"github.com/lawnchairsociety/dungeonadventure/internal/storage"
)

func main() {
	fromPath := flag.String("from", "data/dungeon.yaml", "Config file naming the source backend")
	toPath := flag.String("to", "", "Config file naming the destination backend")
	envFile := flag.String("env", ".env", "Environment file to load before the configs")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	overwrite := flag.Bool("overwrite", false, "Replace saves that already exist in the destination")
	flag.Parse()

	if *toPath == "" {
		log.Fatal("-to is required")
	}
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}
	// Only per-save warnings are worth printing next to the report.
	if _, err := logger.Initialize(logger.Config{Level: "warn", ConsoleEnabled: true, ConsoleFormat: "text"}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log.Println("Save Migration Tool")
	log.Println("====================================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	from, fromCfg := openSide(ctx, "source", *fromPath)
	defer from.Close()
	to, toCfg := openSide(ctx, "destination", *toPath)
	defer to.Close()

	if sameBackend(fromCfg, toCfg) {
		log.Fatal("Source and destination are the same storage")
	}
	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	report, err := savegame.Migrate(ctx, from.Saves, to.Saves, savegame.MigrateOptions{
		DryRun:    *dryRun,
		Overwrite: *overwrite,
	})
	log.Println("====================================")
	log.Printf("Copied: %d  Skipped: %d  Unreadable: %d", report.Copied, report.Skipped, len(report.Failed))
	for _, id := range report.Failed {
		log.Printf("  could not read %s", id)
	}
	if err != nil {
		log.Fatalf("Migration stopped: %v", err)
	}
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

func openSide(ctx context.Context, label, path string) (*storage.Storage, *config.Config) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load %s config %s: %v", label, path, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid %s config %s: %v", label, path, err)
	}
	log.Printf("Opening %s: %s backend", label, cfg.Storage.Backend)
	st, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", label, err)
	}
	return st, cfg
}

func sameBackend(a, b *config.Config) bool {
	if a.Storage.Backend != b.Storage.Backend {
		return false
	}
	switch a.Storage.Backend {
	case config.BackendFile:
		return a.Storage.SaveDir == b.Storage.SaveDir
	case config.BackendRedis:
		return a.Storage.Redis.Addr == b.Storage.Redis.Addr && a.Storage.Redis.DB == b.Storage.Redis.DB
	default:
		return a.Storage.Database == b.Storage.Database
	}
}
