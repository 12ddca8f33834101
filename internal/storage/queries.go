package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketroutes/internal/sheets"
)

// GetMetadata retrieves a value from the app_metadata table.
func (db *DB) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM app_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMetadata stores a key-value pair in the app_metadata table.
func (db *DB) SetMetadata(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO app_metadata (key, value) VALUES (?, ?)`,
		key, value)
	return err
}

// SaveSnapshot replaces the stored copy of one table.
func (db *DB) SaveSnapshot(ctx context.Context, snap sheets.TableSnapshot) error {
	payload, err := encodeRows(snap.Rows)
	if err != nil {
		return fmt.Errorf("encode %s: %w", snap.Name, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO table_snapshots (name, etag, fetched_at, row_count, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.Name, snap.ETag, snap.FetchedAt.UTC().Format(time.RFC3339Nano), len(snap.Rows), payload)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.Name, err)
	}
	return nil
}

// LoadSnapshots returns every stored table ordered by name.
func (db *DB) LoadSnapshots(ctx context.Context) ([]sheets.TableSnapshot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, etag, fetched_at, payload
		FROM table_snapshots
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("snapshots query: %w", err)
	}
	defer rows.Close()

	var snaps []sheets.TableSnapshot
	for rows.Next() {
		var s sheets.TableSnapshot
		var fetchedAt string
		var payload []byte
		if err := rows.Scan(&s.Name, &s.ETag, &fetchedAt, &payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if s.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
			return nil, fmt.Errorf("snapshot %s fetched_at: %w", s.Name, err)
		}
		if s.Rows, err = decodeRows(payload); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", s.Name, err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// InventoryCount is a locally entered count for one inventory item.
type InventoryCount struct {
	Item      string
	Count     int
	UpdatedAt time.Time
}

// SetInventoryCount records a count for item.
func (db *DB) SetInventoryCount(ctx context.Context, item string, count int, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO inventory_counts (item, count, updated_at) VALUES (?, ?, ?)`,
		item, count, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set inventory count: %w", err)
	}
	return nil
}

// InventoryCounts returns all locally entered counts keyed by item.
func (db *DB) InventoryCounts(ctx context.Context) (map[string]InventoryCount, error) {
	rows, err := db.QueryContext(ctx, `SELECT item, count, updated_at FROM inventory_counts`)
	if err != nil {
		return nil, fmt.Errorf("inventory counts query: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]InventoryCount)
	for rows.Next() {
		var c InventoryCount
		var updatedAt string
		if err := rows.Scan(&c.Item, &c.Count, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory count: %w", err)
		}
		if c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("inventory %s updated_at: %w", c.Item, err)
		}
		counts[c.Item] = c
	}
	return counts, rows.Err()
}
