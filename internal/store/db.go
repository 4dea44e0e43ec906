package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-tickets-dashboard/internal/model"
)

// DB keeps the history of spreadsheet loads in SQLite
type DB struct {
	db *sql.DB
}

// Open connects to the sqlite database at dbPath and creates the schema
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	loadTable := `
	CREATE TABLE IF NOT EXISTS loads (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		variant TEXT NOT NULL,
		status TEXT NOT NULL,
		rows INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		from_blob INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL
	);
	`
	indexes := `CREATE INDEX IF NOT EXISTS idx_loads_started_at ON loads (started_at);`

	if _, err := db.Exec(loadTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create loads table: %w", err)
	}
	if _, err := db.Exec(indexes); err != nil {
		db.Close()
		return nil, fmt.Errorf("create loads index: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the connection
func (s *DB) Close() error {
	return s.db.Close()
}

// RecordLoad stores one load attempt
func (s *DB) RecordLoad(ctx context.Context, ev model.LoadEvent) error {
	var errMsg sql.NullString
	if ev.Error != "" {
		errMsg = sql.NullString{String: ev.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO loads (id, source, variant, status, rows, bytes, from_blob, error_message, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Source, string(ev.Variant), ev.Status, ev.Rows, ev.Bytes, ev.FromBlob,
		errMsg, ev.Duration.Milliseconds(), ev.StartedAt.UTC())
	return err
}

// ListLoads returns the most recent loads first
func (s *DB) ListLoads(ctx context.Context, limit int) ([]model.LoadEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, variant, status, rows, bytes, from_blob, error_message, duration_ms, started_at
		 FROM loads ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := []model.LoadEvent{}
	for rows.Next() {
		var (
			ev         model.LoadEvent
			variant    string
			errMsg     sql.NullString
			durationMS int64
			startedAt  time.Time
		)
		if err := rows.Scan(&ev.ID, &ev.Source, &variant, &ev.Status, &ev.Rows, &ev.Bytes,
			&ev.FromBlob, &errMsg, &durationMS, &startedAt); err != nil {
			return nil, err
		}
		ev.Variant = model.Variant(variant)
		ev.Error = errMsg.String
		ev.Duration = time.Duration(durationMS) * time.Millisecond
		ev.StartedAt = startedAt
		loads = append(loads, ev)
	}
	return loads, rows.Err()
}

// LastSuccess returns the latest successful load of source, if any
func (s *DB) LastSuccess(ctx context.Context, source string) (*model.LoadEvent, error) {
	var (
		ev         model.LoadEvent
		variant    string
		durationMS int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, variant, status, rows, bytes, from_blob, duration_ms, started_at
		 FROM loads WHERE source = ? AND status = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		source, model.LoadStatusOK).
		Scan(&ev.ID, &ev.Source, &variant, &ev.Status, &ev.Rows, &ev.Bytes, &ev.FromBlob, &durationMS, &ev.StartedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ev.Variant = model.Variant(variant)
	ev.Duration = time.Duration(durationMS) * time.Millisecond
	return &ev, nil
}
