package database

import (
	"context"
	"fmt"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
)

// SeedMonsterDefinitions fills an empty monster_definitions table from defs.
// A table that already has rows is left alone. Returns the number of rows
// inserted.
func (d *Database) SeedMonsterDefinitions(ctx context.Context, defs *character.Definitions) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM monster_definitions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count monster definitions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := d.qb.Build(`
		INSERT INTO monster_definitions
			(kind, name, hp, min_damage, max_damage, attack_speed, hit_chance, heal_chance, min_heal, max_heal, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, kind := range defs.MonsterKinds() {
		m := defs.Monsters[kind]
		if _, err := tx.ExecContext(ctx, query,
			string(kind), m.Name, m.MaxHP, m.MinDamage, m.MaxDamage, m.AttackSpeed,
			m.HitChance, m.HealChance, m.MinHeal, m.MaxHeal, m.SpawnWeight(),
		); err != nil {
			return 0, fmt.Errorf("failed to insert monster %s: %w", kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.Info("Seeded monster definitions", "count", len(defs.Monsters))
	return len(defs.Monsters), nil
}

// UpsertMonsterDefinition inserts or replaces one monster row.
func (d *Database) UpsertMonsterDefinition(ctx context.Context, kind character.MonsterKind, m character.MonsterDefinition) error {
	if err := m.Validate(kind); err != nil {
		return err
	}
	query := d.qb.Build(`
		INSERT INTO monster_definitions
			(kind, name, hp, min_damage, max_damage, attack_speed, hit_chance, heal_chance, min_heal, max_heal, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind) DO UPDATE SET
			name = excluded.name,
			hp = excluded.hp,
			min_damage = excluded.min_damage,
			max_damage = excluded.max_damage,
			attack_speed = excluded.attack_speed,
			hit_chance = excluded.hit_chance,
			heal_chance = excluded.heal_chance,
			min_heal = excluded.min_heal,
			max_heal = excluded.max_heal,
			weight = excluded.weight
	`)
	_, err := d.db.ExecContext(ctx, query,
		string(kind), m.Name, m.MaxHP, m.MinDamage, m.MaxDamage, m.AttackSpeed,
		m.HitChance, m.HealChance, m.MinHeal, m.MaxHeal, m.SpawnWeight(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert monster %s: %w", kind, err)
	}
	return nil
}

// LoadMonsterDefinitions returns the built-in definitions with the monster
// roster replaced by the table's rows. An empty table keeps the defaults.
func (d *Database) LoadMonsterDefinitions(ctx context.Context) (*character.Definitions, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT kind, name, hp, min_damage, max_damage, attack_speed, hit_chance, heal_chance, min_heal, max_heal, weight
		FROM monster_definitions
		ORDER BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monster definitions: %w", err)
	}
	defer rows.Close()

	monsters := make(map[character.MonsterKind]character.MonsterDefinition)
	for rows.Next() {
		var kind string
		var m character.MonsterDefinition
		if err := rows.Scan(&kind, &m.Name, &m.MaxHP, &m.MinDamage, &m.MaxDamage, &m.AttackSpeed,
			&m.HitChance, &m.HealChance, &m.MinHeal, &m.MaxHeal, &m.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan monster definition: %w", err)
		}
		monsters[character.NormalizeMonsterKind(kind)] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	defs := character.DefaultDefinitions()
	if len(monsters) == 0 {
		logger.Warning("Monster definition table is empty, using built-in monsters")
		return defs, nil
	}
	defs.Monsters = monsters
	if err := defs.Validate(); err != nil {
		return nil, err
	}
	return defs, nil
}
