package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var _ ports.SnapshotStore = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	session_id    TEXT PRIMARY KEY,
	box_volume    REAL    NOT NULL,
	total_samples INTEGER NOT NULL,
	partial       INTEGER NOT NULL,
	created_at    TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_counts (
	session_id TEXT    NOT NULL REFERENCES snapshots(session_id) ON DELETE CASCADE,
	domain_id  INTEGER NOT NULL,
	hits       INTEGER NOT NULL,
	PRIMARY KEY (session_id, domain_id)
);
`

// SQLiteStore persists snapshots in a SQLite database, one row per
// session plus one row per (session, domain) count. SQLite REAL columns
// hold IEEE 754 doubles, so box volumes round-trip exactly.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures
// the snapshot schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure snapshot db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save persists the snapshot in a single transaction, replacing any
// previous snapshot with the same session id.
func (s *SQLiteStore) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE session_id = ?`, snap.SessionID); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (session_id, box_volume, total_samples, partial, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.SessionID, snap.BoxVolume, int64(snap.TotalSamples),
		boolToInt(snap.Partial), snap.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	for _, c := range snap.Counts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_counts (session_id, domain_id, hits) VALUES (?, ?, ?)`,
			snap.SessionID, int64(c.Domain), int64(c.Hits),
		); err != nil {
			return fmt.Errorf("save snapshot counts: %w", err)
		}
	}
	return tx.Commit()
}

// Load retrieves a snapshot by session id.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var (
		snap      domain.Snapshot
		total     int64
		partial   int
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, box_volume, total_samples, partial, created_at
		 FROM snapshots WHERE session_id = ?`, sessionID,
	).Scan(&snap.SessionID, &snap.BoxVolume, &total, &partial, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, sessionID)
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	snap.TotalSamples = uint64(total)
	snap.Partial = partial != 0
	if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot timestamp: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT domain_id, hits FROM snapshot_counts
		 WHERE session_id = ? ORDER BY domain_id`, sessionID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, hits int64
		if err := rows.Scan(&id, &hits); err != nil {
			return domain.Snapshot{}, fmt.Errorf("load snapshot counts: %w", err)
		}
		snap.Counts = append(snap.Counts, domain.DomainCount{
			Domain: domain.DomainID(id),
			Hits:   uint64(hits),
		})
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot counts: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
