package savegame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/snapshot"
)

const (
	// Key patterns
	saveKeyPrefix = "save:"
	saveIndexKey  = "saves"
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	// TTL expires saves. Zero keeps them forever.
	TTL time.Duration
	Now Clock
}

// RedisRepository stores sealed snapshots as redis strings with a set index
// of save ids.
type RedisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
	now    Clock
}

// NewRedisRepository creates a new Redis-backed save repository
func NewRedisRepository(cfg *RedisRepoConfig) *RedisRepository {
	if cfg.Client == nil {
		panic("redis client is required")
	}
	now := cfg.Now
	if now == nil {
		now = systemClock
	}
	return &RedisRepository{client: cfg.Client, ttl: cfg.TTL, now: now}
}

func saveKey(id string) string {
	return saveKeyPrefix + id
}

// Save implements Repository.
func (r *RedisRepository) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	stamped, err := stamp(snap, r.now)
	if err != nil {
		return err
	}
	data, err := snapshot.Seal(stamped)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, saveKey(stamped.ID), string(data), r.ttl)
	pipe.SAdd(ctx, saveIndexKey, stamped.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save game in Redis: %w", err)
	}

	logger.Debug("Saved game to redis", "session_id", stamped.ID, "bytes", len(data))
	return nil
}

// Load implements Repository.
func (r *RedisRepository) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	data, err := r.client.Get(ctx, saveKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to get save from Redis: %w", err)
	}
	snap, err := snapshot.Open(data)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", id, err)
	}
	return snap, nil
}

// List implements Repository. Index entries whose save expired are pruned.
func (r *RedisRepository) List(ctx context.Context) ([]snapshot.Summary, error) {
	ids, err := r.client.SMembers(ctx, saveIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saves from Redis: %w", err)
	}
	out := []snapshot.Summary{}
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = saveKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get saves from Redis: %w", err)
	}

	var stale []any
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		snap, err := snapshot.Open([]byte(s))
		if err != nil {
			logger.Warning("Skipping unreadable save", "session_id", ids[i], "error", err)
			continue
		}
		out = append(out, snap.Summary())
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, saveIndexKey, stale...).Err(); err != nil {
			logger.Warning("Failed to prune expired saves from index", "count", len(stale), "error", err)
		}
	}

	sortSummaries(out)
	return out, nil
}

// Delete implements Repository.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, saveKey(id))
	pipe.SRem(ctx, saveIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete save from Redis: %w", err)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}
