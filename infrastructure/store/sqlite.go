package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/crowdfeud/go-feud/internal/domain"
	"github.com/crowdfeud/go-feud/internal/ports"
)

var _ ports.SnapshotStore = (*SQLiteStore)(nil)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshot (
    key TEXT PRIMARY KEY,
    schema_version INTEGER NOT NULL,
    data TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore persists snapshots in a sqlite database file, giving the
// game durable state across process restarts. Each Save is a single
// upsert, so readers always see a complete snapshot.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the snapshot database at
// path. Safe to call against an existing database; the schema uses
// IF NOT EXISTS.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Save implements SnapshotStore.
func (s *SQLiteStore) Save(ctx context.Context, key string, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot (key, schema_version, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			schema_version = excluded.schema_version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		key, snapshot.SchemaVersion, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load implements SnapshotStore.
func (s *SQLiteStore) Load(ctx context.Context, key string) (domain.Snapshot, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshot WHERE key = ?`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Delete implements SnapshotStore.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshot WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
