package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/whiteboard/internal/typeid"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS board_snapshots (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (board_id, version)
)`

// Postgres stores snapshots in the board_snapshots table.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Save(ctx context.Context, boardID string, document json.RawMessage) (*Snapshot, error) {
	if err := validDocument(document); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	snap := Snapshot{
		ID:        typeid.NewSnapshotID(),
		BoardID:   boardID,
		Document:  document,
		CreatedAt: time.Now().UTC(),
	}

	// The unique (board_id, version) constraint rejects a concurrent save
	// that computed the same version.
	err := p.pool.QueryRow(ctx, `
		INSERT INTO board_snapshots (id, board_id, version, document, created_at)
		SELECT $1, $2::text, COALESCE(MAX(version), 0) + 1, $3::jsonb, $4
		FROM board_snapshots WHERE board_id = $2::text
		RETURNING version`,
		snap.ID, boardID, string(document), snap.CreatedAt,
	).Scan(&snap.Version)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Postgres) Latest(ctx context.Context, boardID string) (*Snapshot, error) {
	var snap Snapshot
	err := p.pool.QueryRow(ctx, `
		SELECT id, board_id, version, document, created_at
		FROM board_snapshots
		WHERE board_id = $1
		ORDER BY version DESC
		LIMIT 1`, boardID,
	).Scan(&snap.ID, &snap.BoardID, &snap.Version, &snap.Document, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Postgres) History(ctx context.Context, boardID string, limit int) ([]Snapshot, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, board_id, version, document, created_at
		FROM board_snapshots
		WHERE board_id = $1
		ORDER BY version DESC
		LIMIT $2`, boardID, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	snaps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Snapshot, error) {
		var s Snapshot
		err := row.Scan(&s.ID, &s.BoardID, &s.Version, &s.Document, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
