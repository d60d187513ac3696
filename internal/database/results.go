package database

import (
	"context"
	"fmt"
	"time"
)

// GameResult is one finished game.
type GameResult struct {
	ID         int64
	SessionID  string
	HeroName   string
	Class      string
	Result     string
	Pillars    int
	Seed       int64
	FinishedAt time.Time
}

// RecordResult stores the outcome of a finished session. Recording the same
// session twice is a no-op. Returns whether this was the first victory for the
// hero's class.
func (d *Database) RecordResult(ctx context.Context, r GameResult) (bool, error) {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Check if this class has won before
	var wins int
	err = tx.QueryRowContext(ctx,
		d.qb.Build(`SELECT COUNT(*) FROM game_results WHERE class = ? AND result = 'victory'`), r.Class,
	).Scan(&wins)
	if err != nil {
		return false, err
	}

	query := d.qb.BuildWithReturning(`
		INSERT INTO game_results (session_id, hero_name, class, result, pillars, seed, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, "id")
	args := []any{r.SessionID, r.HeroName, r.Class, r.Result, r.Pillars, r.Seed, r.FinishedAt}
	if d.dialect.SupportsLastInsertID() {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		var id int64
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return r.Result == "victory" && wins == 0, nil
}

// RecentResults returns the latest finished games, newest first.
func (d *Database) RecentResults(ctx context.Context, limit int) ([]GameResult, error) {
	rows, err := d.db.QueryContext(ctx, d.qb.Build(`
		SELECT id, session_id, hero_name, class, result, pillars, seed, finished_at
		FROM game_results
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.ID, &r.SessionID, &r.HeroName, &r.Class, &r.Result, &r.Pillars, &r.Seed, &r.FinishedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ClassRecord is the win/loss tally of one hero class.
type ClassRecord struct {
	Class     string
	Victories int
	Defeats   int
}

// ClassRecords tallies results per class, ordered by victories.
func (d *Database) ClassRecords(ctx context.Context) ([]ClassRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT class,
			SUM(CASE WHEN result = 'victory' THEN 1 ELSE 0 END) AS victories,
			SUM(CASE WHEN result = 'defeat' THEN 1 ELSE 0 END) AS defeats
		FROM game_results
		GROUP BY class
		ORDER BY victories DESC, class ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClassRecord
	for rows.Next() {
		var rec ClassRecord
		if err := rows.Scan(&rec.Class, &rec.Victories, &rec.Defeats); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
