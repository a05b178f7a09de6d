package collab

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/internal/typeid"
)

// Identity is the user behind a connection.
type Identity struct {
	UserID      string
	DisplayName string
}

// Authenticator decides who may join a board. A returned error rejects the
// upgrade with 401.
type Authenticator func(r *http.Request, boardID string) (Identity, error)

// Handler upgrades /ws/board/{boardId} requests and attaches them to the hub.
type Handler struct {
	hub            *Hub
	authenticate   Authenticator
	originPatterns []string
}

func NewHandler(hub *Hub, authenticate Authenticator, originPatterns []string) *Handler {
	return &Handler{hub: hub, authenticate: authenticate, originPatterns: originPatterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]
	if boardID == "" {
		http.Error(w, "missing board id", http.StatusBadRequest)
		return
	}

	id, err := h.authenticate(r, boardID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, id.UserID, id.DisplayName, boardID, typeid.NewClientID())
	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
