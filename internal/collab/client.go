package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	// A frame carries the whole board.
	maxFrameSize = 1 << 20

	// Snapshots queued for one client before it is cut off.
	sendBuffer = 256
)

// Client is one peer connected to a board. Every frame it receives is a
// full-board snapshot, so a peer that falls behind is disconnected rather
// than fed a board with holes in its history; it resyncs on rejoin.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	lagged  chan struct{}
	lagOnce sync.Once

	UserID      string
	DisplayName string
	BoardID     string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, boardID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		logger:      slog.With("user", userID, "board", boardID, "client", clientID),
		lagged:      make(chan struct{}),
		UserID:      userID,
		DisplayName: displayName,
		BoardID:     boardID,
		ClientID:    clientID,
	}
}

// ReadPump accepts draw frames until the peer goes away. Identity fields are
// stamped from the connection, never trusted from the frame.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxFrameSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.logger.Debug("read failed", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("undecodable frame", "error", err, "bytes", len(data))
			c.Send(newErrorMessage("invalid message: %v", err))
			continue
		}
		if msg.Type != TypeDraw {
			c.Send(newErrorMessage("unsupported message type %q", msg.Type))
			continue
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.BoardID = c.BoardID
		c.hub.handleDraw(c, &msg)
	}
}

// WritePump drains the send queue onto the socket and keeps the connection
// alive with pings. It closes the socket when the queue is closed, when the
// client lags, or when ctx ends.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	status, reason := websocket.StatusNormalClosure, ""
	defer func() {
		ticker.Stop()
		c.conn.Close(status, reason)
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, frame); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}

		case <-c.lagged:
			status, reason = websocket.StatusPolicyViolation, "client too slow"
			return

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, frame)
}

// Send queues msg without blocking. A full queue marks the client as lagged
// and everything after that is discarded until the write pump hangs up.
func (c *Client) Send(msg *Message) {
	select {
	case <-c.lagged:
		return
	default:
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal message", "error", err, "type", msg.Type)
		return
	}

	select {
	case c.send <- data:
	default:
		c.lagOnce.Do(func() {
			c.logger.Warn("send queue full, disconnecting", "queued", len(c.send))
			close(c.lagged)
		})
	}
}

// Lagged reports whether the client was cut off for falling behind.
func (c *Client) Lagged() bool {
	select {
	case <-c.lagged:
		return true
	default:
		return false
	}
}
