package board

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/store"
)

type liveBoards map[string]string

func (l liveBoards) Snapshot(boardID string) (string, bool) {
	s, ok := l[boardID]
	return s, ok
}

func TestCreateSeedsEmptyBoard(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), nil)

	b, err := svc.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if b.Version != 1 {
		t.Errorf("version = %d", b.Version)
	}

	snap, err := svc.LatestSnapshot(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 0 || snap.Hand == nil {
		t.Errorf("seed = %+v", snap)
	}
}

func TestLatestPrefersLive(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	saved, _ := document.EncodePayload(document.Snapshot{})
	st.Save(ctx, "board_1", json.RawMessage(saved))

	live, _ := document.EncodePayload(document.NewSampleSnapshot())
	svc := NewService(st, liveBoards{"board_1": live})

	got, err := svc.LatestPayload(ctx, "board_1")
	if err != nil || got != live {
		t.Errorf("payload = %q, %v", got, err)
	}

	if _, err := svc.LatestPayload(ctx, "board_2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing board: %v", err)
	}
}

func TestLoaderAndSaver(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), nil)

	payload, err := svc.Load(ctx, "board_new")
	if err != nil || payload != "" {
		t.Errorf("unsaved board loads as %q, %v", payload, err)
	}

	sample, _ := document.EncodePayload(document.NewSampleSnapshot())
	if err := svc.Save(ctx, "board_new", sample); err != nil {
		t.Fatal(err)
	}
	if payload, _ := svc.Load(ctx, "board_new"); payload != sample {
		t.Errorf("loaded %q", payload)
	}

	versions, err := svc.History(ctx, "board_new", 0)
	if err != nil || len(versions) != 1 || versions[0].Elements != 4 {
		t.Errorf("history = %+v, %v", versions, err)
	}
}

func TestHandlers(t *testing.T) {
	svc := NewService(store.NewMemory(), nil)
	h := NewHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/api/boards", h.Create).Methods("POST")
	r.HandleFunc("/api/boards/{boardId}/snapshot", h.GetSnapshot).Methods("GET")
	r.HandleFunc("/api/boards/{boardId}/history", h.History).Methods("GET")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/boards", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var b Board
	json.NewDecoder(rec.Body).Decode(&b)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boards/"+b.ID+"/snapshot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d", rec.Code)
	}
	if _, _, err := document.DecodePayload(rec.Body.String()); err != nil {
		t.Errorf("snapshot body: %v", err)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boards/nope/snapshot", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boards/"+b.ID+"/history?limit=5", nil))
	var versions []Version
	json.NewDecoder(rec.Body).Decode(&versions)
	if len(versions) != 1 || versions[0].Version != 1 {
		t.Errorf("history = %+v", versions)
	}
}
