package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one forward-only schema step.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order; never edit a released step, append a new one.
var migrations = []migration{
	{
		Version: 1,
		Name:    "records_kinds_settings",
		SQL: `
	CREATE TABLE IF NOT EXISTS record (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		label TEXT NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		deleted_at TEXT,
		PRIMARY KEY (kind, id)
	);

	CREATE INDEX IF NOT EXISTS idx_record_updated ON record(updated_at);

	CREATE TABLE IF NOT EXISTS kind (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL DEFAULT '',
		lifecycle INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS setting (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`,
	},
	{
		Version: 2,
		Name:    "audit_event",
		SQL: `
	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL,
		resource_type TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_audit_event_timestamp ON audit_event(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_event_resource ON audit_event(resource_type, resource_id);
	`,
	},
}

// LatestSchemaVersion returns the version a fully migrated database reports.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].Version
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh database.
// PRE: db is a valid database connection
// POST: Returns the current version; creates schema_version if missing
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection
// POST: Schema is at LatestSchemaVersion; re-running is a no-op
func MigrateDB(db *sql.DB) error {
	// Enable foreign key enforcement (in-memory test databases skip the DSN pragmas)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		slog.Info("schema_migrated", "version", m.Version, "name", m.Name)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}
