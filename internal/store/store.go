// Package store persists board snapshots. Every save appends a new version;
// the newest version is the board.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("board not found")

// Snapshot is one saved version of a board.
type Snapshot struct {
	ID        string          `json:"id"`
	BoardID   string          `json:"boardId"`
	Version   int             `json:"version"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Store interface {
	// Save appends document as the next version of boardID.
	Save(ctx context.Context, boardID string, document json.RawMessage) (*Snapshot, error)
	// Latest returns the newest version, or ErrNotFound.
	Latest(ctx context.Context, boardID string) (*Snapshot, error)
	// History returns up to limit versions, newest first. A non-positive
	// limit means DefaultHistoryLimit.
	History(ctx context.Context, boardID string, limit int) ([]Snapshot, error)
	Close() error
}

const DefaultHistoryLimit = 50

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the store named by driver.
func Open(ctx context.Context, driver, databaseURL, sqlitePath string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverPostgres:
		return OpenPostgres(ctx, databaseURL)
	case DriverSQLite:
		return OpenSQLite(ctx, sqlitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func validDocument(document json.RawMessage) error {
	if !json.Valid(document) {
		return errors.New("document is not valid JSON")
	}
	return nil
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
