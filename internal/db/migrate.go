package db

import (
	"database/sql"
	"fmt"
)

// All contains the ordered list of migrations to apply.
var All = []string{
	`CREATE TABLE builds (
		id          INTEGER PRIMARY KEY,
		source_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		form_id     TEXT NOT NULL,
		version     TEXT NOT NULL,
		survey_rows INTEGER NOT NULL,
		choice_rows INTEGER NOT NULL,
		compiled_at TEXT NOT NULL
	)`,
	`CREATE INDEX builds_form_id ON builds (form_id, compiled_at)`,
	`ALTER TABLE builds ADD COLUMN lint_errors INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE builds ADD COLUMN lint_warnings INTEGER NOT NULL DEFAULT 0`,
}

// Migrate applies the migrations in All that the schema_version table does
// not yet record. Each runs in its own transaction.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}
	if _, err := db.Exec(`INSERT INTO schema_version (version)
		SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM schema_version)`); err != nil {
		return fmt.Errorf("initializing schema version: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(All); i++ {
		if err := apply(db, i+1, All[i]); err != nil {
			return err
		}
	}
	return nil
}

func apply(db *sql.DB, version int, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("migration %d failed: %w", version, err)
	}
	if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, version); err != nil {
		return fmt.Errorf("updating schema version to %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", version, err)
	}
	return nil
}
