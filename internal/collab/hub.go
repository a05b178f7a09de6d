package collab

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/whiteboard/internal/document"
)

// Loader fetches the last saved snapshot of a board. A board that was never
// saved loads as the empty string.
type Loader func(ctx context.Context, boardID string) (string, error)

// Saver persists the latest snapshot of a board.
type Saver func(ctx context.Context, boardID string, payload string) error

const saveTimeout = 10 * time.Second

// Room is one board and everyone connected to it. The relay keeps the most
// recent snapshot it accepted so late joiners start from the current board.
type Room struct {
	boardID  string
	clients  map[string]*Client // clientID -> client
	roster   *Roster
	snapshot string
	dirty    bool
}

func NewRoom(boardID string) *Room {
	return &Room{
		boardID: boardID,
		clients: make(map[string]*Client),
		roster:  NewRoster(),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	register   chan *Client
	unregister chan *Client

	load         Loader
	save         Saver
	saveInterval time.Duration

	stop    chan struct{}
	done    chan struct{}
	stopped sync.Once
}

// NewHub creates a hub. load and save may be nil for a relay without
// persistence. Dirty boards are saved every saveInterval.
func NewHub(load Loader, save Saver, saveInterval time.Duration) *Hub {
	if saveInterval <= 0 {
		saveInterval = 30 * time.Second
	}
	return &Hub{
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		load:         load,
		save:         save,
		saveInterval: saveInterval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (h *Hub) Run() {
	ticker := time.NewTicker(h.saveInterval)
	defer func() {
		ticker.Stop()
		close(h.done)
	}()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveDirty()
		case <-h.stop:
			h.saveDirty()
			return
		}
	}
}

// Stop saves every dirty board and ends Run. It blocks until Run returns.
func (h *Hub) Stop() {
	h.stopped.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Snapshot returns the latest snapshot of a board that is currently open.
func (h *Hub) Snapshot(boardID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[boardID]
	if !ok {
		return "", false
	}
	return room.snapshot, true
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		room = NewRoom(client.BoardID)
		room.snapshot = h.loadSnapshot(client.BoardID)
		h.rooms[client.BoardID] = room
	}
	room.clients[client.ClientID] = client
	room.roster.Add(Participant{
		ClientID:    client.ClientID,
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})

	// Queued before the lock is released so no relayed draw can land ahead
	// of the board it was drawn on.
	client.Send(newMessage(TypeWelcome, WelcomePayload{
		BoardID:  client.BoardID,
		ClientID: client.ClientID,
		UserID:   client.UserID,
		HasBoard: room.snapshot != "",
	}))
	if room.snapshot != "" {
		client.Send(NewDrawMessage(room.snapshot))
	}
	h.mu.Unlock()

	h.broadcastToRoom(client.BoardID, room.roster.Message(), "")

	client.logger.Info("client joined")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.roster.Remove(client.ClientID)

	var pending *Room
	if len(room.clients) == 0 {
		delete(h.rooms, client.BoardID)
		if room.dirty {
			pending = room
		}
	}
	h.mu.Unlock()

	if pending != nil {
		h.saveRoom(pending.boardID, pending.snapshot)
	} else {
		h.broadcastToRoom(client.BoardID, room.roster.Message(), "")
	}

	client.logger.Info("client left")
}

// handleDraw accepts a full-board snapshot from a client. The newest snapshot
// to arrive replaces the board and is relayed to everyone else in the room.
func (h *Hub) handleDraw(sender *Client, msg *Message) {
	payload, err := msg.DrawPayload()
	if err != nil {
		sender.Send(newErrorMessage("invalid draw message: %v", err))
		return
	}

	_, cleared, err := document.DecodePayload(payload)
	if err != nil {
		sender.logger.Warn("rejected snapshot", "error", err)
		sender.Send(newErrorMessage("invalid snapshot: %v", err))
		return
	}

	stored := payload
	if cleared {
		stored, _ = document.EncodePayload(document.Snapshot{})
	}

	out := NewDrawMessage(payload)
	out.BoardID = sender.BoardID
	out.ClientID = sender.ClientID
	out.UserID = sender.UserID

	// Holding the lock across the fan-out keeps every receiver's arrival
	// order equal to the order snapshots were accepted here.
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sender.BoardID]
	if !ok {
		return
	}
	room.snapshot = stored
	room.dirty = true

	for _, c := range room.clients {
		if c.ClientID != sender.ClientID {
			c.Send(out)
		}
	}
}

// broadcastToRoom sends under the read lock so a client cannot be removed,
// and its send channel closed, mid fan-out. Send never blocks.
func (h *Hub) broadcastToRoom(boardID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[boardID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}

func (h *Hub) loadSnapshot(boardID string) string {
	if h.load == nil {
		return ""
	}

	// Runs in the hub goroutine, detached from any request
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	payload, err := h.load(ctx, boardID)
	if err != nil {
		slog.Error("load board", "error", err, "board", boardID)
		return ""
	}
	return payload
}

func (h *Hub) saveDirty() {
	type pending struct{ boardID, snapshot string }

	h.mu.Lock()
	var dirty []pending
	for _, room := range h.rooms {
		if room.dirty {
			dirty = append(dirty, pending{room.boardID, room.snapshot})
			room.dirty = false
		}
	}
	h.mu.Unlock()

	for _, p := range dirty {
		if !h.saveRoom(p.boardID, p.snapshot) {
			h.markDirty(p.boardID)
		}
	}
}

func (h *Hub) markDirty(boardID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[boardID]; ok {
		room.dirty = true
	}
}

func (h *Hub) saveRoom(boardID, snapshot string) bool {
	if h.save == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := h.save(ctx, boardID, snapshot); err != nil {
		slog.Error("save board", "error", err, "board", boardID)
		return false
	}
	slog.Debug("board saved", "board", boardID)
	return true
}
