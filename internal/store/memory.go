package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/inamate/whiteboard/internal/typeid"
)

// Memory keeps snapshots in process. Used for development and tests.
type Memory struct {
	mu     sync.RWMutex
	boards map[string][]Snapshot // boardID -> versions, oldest first
}

func NewMemory() *Memory {
	return &Memory{boards: make(map[string][]Snapshot)}
}

func (m *Memory) Save(ctx context.Context, boardID string, document json.RawMessage) (*Snapshot, error) {
	if err := validDocument(document); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	versions := m.boards[boardID]
	snap := Snapshot{
		ID:        typeid.NewSnapshotID(),
		BoardID:   boardID,
		Version:   len(versions) + 1,
		Document:  append(json.RawMessage(nil), document...),
		CreatedAt: time.Now().UTC(),
	}
	m.boards[boardID] = append(versions, snap)
	return &snap, nil
}

func (m *Memory) Latest(ctx context.Context, boardID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := m.boards[boardID]
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	snap := versions[len(versions)-1]
	return &snap, nil
}

func (m *Memory) History(ctx context.Context, boardID string, limit int) ([]Snapshot, error) {
	limit = historyLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := m.boards[boardID]
	result := make([]Snapshot, 0, min(limit, len(versions)))
	for i := len(versions) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, versions[i])
	}
	return result, nil
}

func (m *Memory) Close() error {
	return nil
}
