package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/snapshot"
)

// SaveStore keeps sealed snapshots in the saves table. It satisfies
// savegame.Repository.
type SaveStore struct {
	db  *Database
	now func() time.Time
}

// NewSaveStore returns a save store over db. A nil clock uses the system time.
func NewSaveStore(db *Database, now func() time.Time) *SaveStore {
	if now == nil {
		now = func() time.Time { return time.Now().UTC().Round(0) }
	}
	return &SaveStore{db: db, now: now}
}

// Save inserts or replaces the save with the snapshot's id.
func (s *SaveStore) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap == nil || snap.ID == "" {
		return gameerr.Configuration("snapshot with an ID is required")
	}
	stamped := *snap
	stamped.SavedAt = s.now()

	payload, err := snapshot.Encode(&stamped)
	if err != nil {
		return err
	}

	query := s.db.qb.Build(`
		INSERT INTO saves (id, hero_name, class, state, pillars, checksum, payload, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			hero_name = excluded.hero_name,
			class = excluded.class,
			state = excluded.state,
			pillars = excluded.pillars,
			checksum = excluded.checksum,
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`)
	_, err = s.db.db.ExecContext(ctx, query,
		stamped.ID,
		stamped.Hero.Name,
		stamped.Hero.Class,
		stamped.State,
		len(stamped.Hero.Pillars),
		snapshot.Checksum(payload),
		string(payload),
		stamped.SavedAt,
	)
	if err != nil {
		logger.Error("Failed to store save", "session_id", stamped.ID, "error", err)
		return fmt.Errorf("failed to store save: %w", err)
	}
	return nil
}

// Load reads a save and verifies its checksum.
func (s *SaveStore) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	var checksum, payload string
	err := s.db.db.QueryRowContext(ctx,
		s.db.qb.Build(`SELECT checksum, payload FROM saves WHERE id = ?`), id,
	).Scan(&checksum, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerr.NotFoundf("save %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load save: %w", err)
	}

	snap, err := snapshot.Verify([]byte(payload), checksum)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", id, err)
	}
	return snap, nil
}

// List returns save summaries from the indexed columns, newest first.
func (s *SaveStore) List(ctx context.Context) ([]snapshot.Summary, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT id, hero_name, class, state, pillars, saved_at
		FROM saves
		ORDER BY saved_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	out := []snapshot.Summary{}
	for rows.Next() {
		var sum snapshot.Summary
		if err := rows.Scan(&sum.ID, &sum.HeroName, &sum.Class, &sum.State, &sum.Pillars, &sum.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a save.
func (s *SaveStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.db.ExecContext(ctx, s.db.qb.Build(`DELETE FROM saves WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	if n == 0 {
		return gameerr.NotFoundf("save %q not found", id)
	}
	return nil
}
