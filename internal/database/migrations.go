// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

// Versioned schema migration support. Applied migrations are tracked in
// schema_migrations and run exactly once; migrations are append-only once a
// database with real data exists.
package database

import (
	"context"
	"fmt"
)

// Migration represents a versioned database migration.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         string
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// initialSchema creates every table in one migration. DuckDB does not
// enforce ON DELETE CASCADE, so cascading deletes are performed explicitly
// by the store inside transactions.
//
// The UNIQUE constraints on campaigns.slug and on the relationship triple
// are load-bearing: they close the check-then-insert race between concurrent
// creates observing "no conflict" at the same time.
const initialSchema = `
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR PRIMARY KEY,
	email VARCHAR NOT NULL UNIQUE,
	name VARCHAR NOT NULL DEFAULT '',
	role VARCHAR NOT NULL DEFAULT 'viewer',
	password_hash VARCHAR NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS campaigns (
	id VARCHAR PRIMARY KEY,
	slug VARCHAR NOT NULL UNIQUE,
	name VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	image_url VARCHAR NOT NULL DEFAULT '',
	image_crop VARCHAR,
	is_active BOOLEAN NOT NULL DEFAULT true,
	creator_id VARCHAR,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS campaign_editors (
	campaign_id VARCHAR NOT NULL,
	user_id VARCHAR NOT NULL,
	PRIMARY KEY (campaign_id, user_id)
);

CREATE TABLE IF NOT EXISTS characters (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	title VARCHAR NOT NULL DEFAULT '',
	description VARCHAR NOT NULL DEFAULT '',
	image_url VARCHAR NOT NULL DEFAULT '',
	image_crop VARCHAR,
	faction VARCHAR NOT NULL DEFAULT '',
	location VARCHAR NOT NULL DEFAULT '',
	status VARCHAR NOT NULL DEFAULT 'alive',
	tags VARCHAR NOT NULL DEFAULT '',
	pos_x DOUBLE NOT NULL DEFAULT 0,
	pos_y DOUBLE NOT NULL DEFAULT 0,
	campaign_id VARCHAR,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS organisations (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	image_url VARCHAR NOT NULL DEFAULT '',
	image_crop VARCHAR,
	color VARCHAR NOT NULL DEFAULT '',
	pos_x DOUBLE NOT NULL DEFAULT 0,
	pos_y DOUBLE NOT NULL DEFAULT 0,
	campaign_id VARCHAR,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS organisation_members (
	organisation_id VARCHAR NOT NULL,
	character_id VARCHAR NOT NULL,
	PRIMARY KEY (organisation_id, character_id)
);

CREATE TABLE IF NOT EXISTS crews (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	image_url VARCHAR NOT NULL DEFAULT '',
	image_crop VARCHAR,
	pos_x DOUBLE NOT NULL DEFAULT 0,
	pos_y DOUBLE NOT NULL DEFAULT 0,
	campaign_id VARCHAR,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS crew_members (
	id VARCHAR PRIMARY KEY,
	crew_id VARCHAR NOT NULL,
	name VARCHAR NOT NULL,
	role VARCHAR NOT NULL DEFAULT '',
	description VARCHAR NOT NULL DEFAULT '',
	image_url VARCHAR NOT NULL DEFAULT '',
	image_crop VARCHAR,
	status VARCHAR NOT NULL DEFAULT 'alive',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS relationships (
	id VARCHAR PRIMARY KEY,
	from_npc_id VARCHAR NOT NULL,
	to_npc_id VARCHAR NOT NULL,
	type VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	strength INTEGER NOT NULL DEFAULT 5,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE (from_npc_id, to_npc_id, type)
);

CREATE TABLE IF NOT EXISTS crew_relationships (
	id VARCHAR PRIMARY KEY,
	from_crew_id VARCHAR NOT NULL,
	to_npc_id VARCHAR NOT NULL,
	type VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	strength INTEGER NOT NULL DEFAULT 5,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS crew_member_relationships (
	id VARCHAR PRIMARY KEY,
	from_crew_member_id VARCHAR NOT NULL,
	to_npc_id VARCHAR NOT NULL,
	type VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	strength INTEGER NOT NULL DEFAULT 5,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS universal_relationships (
	id VARCHAR PRIMARY KEY,
	from_entity_id VARCHAR NOT NULL,
	from_entity_type VARCHAR NOT NULL,
	to_entity_id VARCHAR NOT NULL,
	to_entity_type VARCHAR NOT NULL,
	type VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	strength INTEGER NOT NULL DEFAULT 5,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// getMigrations returns all versioned migrations in order.
// Migrations must be append-only once released databases exist.
func (db *DB) getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "initial_schema",
			Description: "Create campaign, entity, relationship and user tables",
			SQL:         initialSchema,
		},
	}
}

func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, schemaMigrationsTable)
	return err
}

func (db *DB) getAppliedMigrations(ctx context.Context) (map[int]bool, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// runVersionedMigrations executes only migrations that have not been applied.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range db.getMigrations() {
		if applied[m.Version] {
			continue
		}

		if _, err := db.conn.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, description) VALUES (?, ?, ?)`,
			m.Version, m.Name, m.Description); err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}
	}

	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
