package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/inamate/whiteboard/internal/typeid"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS board_snapshots (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE (board_id, version)
)`

// SQLite stores snapshots in a single local database file.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migration: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, boardID string, document json.RawMessage) (*Snapshot, error) {
	if err := validDocument(document); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	snap := Snapshot{
		ID:        typeid.NewSnapshotID(),
		BoardID:   boardID,
		Document:  document,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM board_snapshots WHERE board_id = ?`, boardID,
	).Scan(&snap.Version)
	if err != nil {
		return nil, fmt.Errorf("next version: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO board_snapshots (id, board_id, version, document, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		snap.ID, boardID, snap.Version, string(document), snap.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &snap, nil
}

func (s *SQLite) Latest(ctx context.Context, boardID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, board_id, version, document, created_at
		FROM board_snapshots
		WHERE board_id = ?
		ORDER BY version DESC
		LIMIT 1`, boardID)

	snap, err := scanSQLite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLite) History(ctx context.Context, boardID string, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, board_id, version, document, created_at
		FROM board_snapshots
		WHERE board_id = ?
		ORDER BY version DESC
		LIMIT ?`, boardID, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row scanner) (*Snapshot, error) {
	var (
		snap      Snapshot
		document  string
		createdAt int64
	)
	if err := row.Scan(&snap.ID, &snap.BoardID, &snap.Version, &document, &createdAt); err != nil {
		return nil, err
	}
	snap.Document = json.RawMessage(document)
	snap.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &snap, nil
}
