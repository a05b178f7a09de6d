// Package board serves saved whiteboards over HTTP and bridges the relay
// hub to the snapshot store.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/store"
	"github.com/inamate/whiteboard/internal/typeid"
)

var ErrNotFound = store.ErrNotFound

// Live reports the current snapshot of a board that is open on the relay.
type Live interface {
	Snapshot(boardID string) (string, bool)
}

type Service struct {
	store store.Store
	live  Live
}

// NewService creates a service over st. live may be nil.
func NewService(st store.Store, live Live) *Service {
	return &Service{store: st, live: live}
}

// SetLive attaches the relay once it exists.
func (s *Service) SetLive(live Live) {
	s.live = live
}

type Board struct {
	ID        string `json:"id"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
}

type Version struct {
	ID        string `json:"id"`
	Version   int    `json:"version"`
	Elements  int    `json:"elements"`
	CreatedAt string `json:"createdAt"`
}

// Create allocates a board id and seeds it with an empty snapshot.
func (s *Service) Create(ctx context.Context) (*Board, error) {
	boardID := typeid.NewBoardID()

	payload, err := document.EncodePayload(document.Snapshot{})
	if err != nil {
		return nil, err
	}

	snap, err := s.store.Save(ctx, boardID, json.RawMessage(payload))
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return &Board{
		ID:        boardID,
		Version:   snap.Version,
		CreatedAt: snap.CreatedAt.Format(time.RFC3339),
	}, nil
}

// LatestPayload returns the newest serialized snapshot of a board, preferring
// the relay's in-memory copy over the last save.
func (s *Service) LatestPayload(ctx context.Context, boardID string) (string, error) {
	if s.live != nil {
		if payload, ok := s.live.Snapshot(boardID); ok && payload != "" {
			return payload, nil
		}
	}

	snap, err := s.store.Latest(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get snapshot: %w", err)
	}
	return string(snap.Document), nil
}

// LatestSnapshot decodes LatestPayload.
func (s *Service) LatestSnapshot(ctx context.Context, boardID string) (document.Snapshot, error) {
	payload, err := s.LatestPayload(ctx, boardID)
	if err != nil {
		return document.Snapshot{}, err
	}
	snap, _, err := document.DecodePayload(payload)
	if err != nil {
		return document.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *Service) History(ctx context.Context, boardID string, limit int) ([]Version, error) {
	snaps, err := s.store.History(ctx, boardID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	versions := make([]Version, len(snaps))
	for i, snap := range snaps {
		v := Version{
			ID:        snap.ID,
			Version:   snap.Version,
			CreatedAt: snap.CreatedAt.Format(time.RFC3339),
		}
		if decoded, _, err := document.DecodePayload(string(snap.Document)); err == nil {
			v.Elements = decoded.Len()
		}
		versions[i] = v
	}
	return versions, nil
}

// Load is the relay's loader: boards that were never saved start empty.
func (s *Service) Load(ctx context.Context, boardID string) (string, error) {
	snap, err := s.store.Latest(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(snap.Document), nil
}

// Save is the relay's saver.
func (s *Service) Save(ctx context.Context, boardID, payload string) error {
	_, err := s.store.Save(ctx, boardID, json.RawMessage(payload))
	return err
}
