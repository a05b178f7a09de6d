package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/store"
)

// Source yields the current board for export.
type Source interface {
	LatestSnapshot(ctx context.Context, boardID string) (document.Snapshot, error)
}

type Handler struct {
	source Source
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

// ExportPDF streams the current board of {boardId} as a PDF attachment.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]

	snap, ok := h.load(w, r, boardID)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := RenderPDF(&buf, snap); err != nil {
		slog.Error("render pdf", "error", err, "board", boardID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, boardID))
	w.Write(buf.Bytes())
}

// Thumbnail renders the current board of {boardId} as a PNG. The optional
// width and height query parameters override the default size.
func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]

	width, err := dimension(r, "width", ThumbnailWidth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := dimension(r, "height", ThumbnailHeight)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, ok := h.load(w, r, boardID)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := RenderPNG(&buf, snap, width, height); err != nil {
		if errors.Is(err, ErrThumbnailSize) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("render png", "error", err, "board", boardID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Boards change constantly, so clients must revalidate
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, boardID string) (document.Snapshot, bool) {
	snap, err := h.source.LatestSnapshot(r.Context(), boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "board not found", http.StatusNotFound)
			return document.Snapshot{}, false
		}
		slog.Error("load board for export", "error", err, "board", boardID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return document.Snapshot{}, false
	}
	return snap, true
}

func dimension(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
