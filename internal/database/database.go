// Package database provides SQL persistence for saved games, the monster
// definition table and the log of finished games. SQLite is the default;
// PostgreSQL is selected through Config.Driver.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
)

// Database wraps the SQL connection and provides persistence operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the database described by cfg and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect := NewDialect(DialectType(strings.ToLower(cfg.Driver)))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(*PostgresDialect); ok {
		if cfg.Postgres.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		}
		if cfg.Postgres.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		}
		if cfg.Postgres.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		}
	} else {
		// PRAGMAs are per connection
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database (%s): %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database opened", "driver", dialect.DriverName())
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// migrate creates the database schema if it doesn't exist.
func (d *Database) migrate() error {
	ts := d.dialect.TimestampType()
	float := d.dialect.FloatType()

	migrations := []string{
		// Saved sessions
		`CREATE TABLE IF NOT EXISTS saves (
			id TEXT PRIMARY KEY,
			hero_name TEXT NOT NULL,
			class TEXT NOT NULL,
			state TEXT NOT NULL,
			pillars INTEGER NOT NULL DEFAULT 0,
			checksum TEXT NOT NULL,
			payload TEXT NOT NULL,
			saved_at ` + ts + ` NOT NULL
		)`,

		// Monster stat table read by the dungeon generator
		`CREATE TABLE IF NOT EXISTS monster_definitions (
			kind TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			hp INTEGER NOT NULL,
			min_damage INTEGER NOT NULL,
			max_damage INTEGER NOT NULL,
			attack_speed INTEGER NOT NULL,
			hit_chance ` + float + ` NOT NULL,
			heal_chance ` + float + ` NOT NULL,
			min_heal INTEGER NOT NULL,
			max_heal INTEGER NOT NULL,
			weight INTEGER NOT NULL DEFAULT 1
		)`,

		// Finished games
		`CREATE TABLE IF NOT EXISTS game_results (
			id ` + d.dialect.SerialPrimaryKey() + `,
			session_id TEXT UNIQUE NOT NULL,
			hero_name TEXT NOT NULL,
			class TEXT NOT NULL,
			result TEXT NOT NULL,
			pillars INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			finished_at ` + ts + ` NOT NULL
		)`,

		// Indexes for common queries
		`CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at)`,
		`CREATE INDEX IF NOT EXISTS idx_game_results_class ON game_results(class)`,
	}

	// Columns added after the first release
	safeMigrations := []string{
		`ALTER TABLE monster_definitions ADD COLUMN weight INTEGER NOT NULL DEFAULT 1`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	// The column may already exist
	for _, m := range safeMigrations {
		_, _ = d.db.Exec(m)
	}

	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Ping checks the connection.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
