package storage

import "fmt"

// migrate creates the schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// Last fetched copy of each spreadsheet table
	`CREATE TABLE IF NOT EXISTS table_snapshots (
		name       TEXT PRIMARY KEY,
		etag       TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL,
		row_count  INTEGER NOT NULL,
		payload    BLOB NOT NULL
	)`,

	// Inventory counts entered through the API
	`CREATE TABLE IF NOT EXISTS inventory_counts (
		item       TEXT PRIMARY KEY,
		count      INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	// Misc key/value state
	`CREATE TABLE IF NOT EXISTS app_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}
