// Package storage opens the save backend and definition sources named by the
// configuration.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/config"
	"github.com/lawnchairsociety/dungeonadventure/internal/database"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/savegame"
)

// Storage holds everything opened from the storage config.
type Storage struct {
	Saves       savegame.Repository
	Definitions *character.Definitions

	// DB is set for the sql backend. It also records game results.
	DB *database.Database

	redis *redis.Client
}

// Open connects the configured backend and loads definitions, from the
// definitions file or, when enabled, the monster table.
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	defs, err := character.LoadDefinitions(cfg.Game.DefinitionsFile)
	if err != nil {
		return nil, err
	}

	st := &Storage{Definitions: defs}
	switch strings.ToLower(cfg.Storage.Backend) {
	case config.BackendFile:
		st.Saves = savegame.NewFileRepository(cfg.Storage.SaveDir, nil)
		logger.Info("Using file saves", "dir", cfg.Storage.SaveDir)

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, gameerr.Wrap(err, "failed to connect to redis at "+cfg.Storage.Redis.Addr)
		}
		st.redis = client
		st.Saves = savegame.NewRedisRepository(&savegame.RedisRepoConfig{
			Client: client,
			TTL:    cfg.Storage.Redis.TTL,
		})
		logger.Info("Using redis saves", "addr", cfg.Storage.Redis.Addr, "ttl", cfg.Storage.Redis.TTL.String())

	case config.BackendSQL:
		db, err := database.OpenWithConfig(cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		st.DB = db
		st.Saves = database.NewSaveStore(db, nil)

		seeded, err := db.SeedMonsterDefinitions(ctx, defs)
		if err != nil {
			db.Close()
			return nil, err
		}
		if seeded > 0 {
			logger.Info("Seeded monster definitions", "count", seeded)
		}
		if cfg.Storage.MonstersFromDatabase {
			fromDB, err := db.LoadMonsterDefinitions(ctx)
			if err != nil {
				db.Close()
				return nil, err
			}
			st.Definitions.Monsters = fromDB.Monsters
			logger.Info("Monster definitions loaded from database", "count", len(fromDB.Monsters))
		}

	default:
		return nil, gameerr.Configurationf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return st, nil
}

// Close releases every open connection.
func (s *Storage) Close() error {
	var errs []error
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return errors.Join(errs...)
}
