// Package peer connects a whiteboard session to a relay. All session work
// runs on the goroutine that calls Run; other goroutines reach the session
// through Do.
package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inamate/whiteboard/internal/collab"
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/whiteboard"
)

const (
	writeWait  = 10 * time.Second
	maxMsgSize = 1 << 20
)

var ErrClosed = errors.New("peer closed")

type Options struct {
	// Token is passed as the token query parameter.
	Token string
	// OnRoster receives every roster change.
	OnRoster func(users []collab.Participant)
	// OnRemote runs after a snapshot from another client is applied.
	OnRemote func(s *whiteboard.Session, cleared bool)
	Logger   *slog.Logger
}

type task struct {
	fn   func(s *whiteboard.Session)
	done chan struct{}
}

// Client is one connection to a board on a relay.
type Client struct {
	conn    *websocket.Conn
	session *whiteboard.Session
	opts    Options
	logger  *slog.Logger

	tasks      chan task
	inbound    chan collab.Message
	out        chan []byte
	welcome    chan collab.WelcomePayload
	joining    *collab.WelcomePayload // welcome held until the board arrives
	readErr    chan error
	writerDone chan struct{}
	closeOnce  sync.Once

	// done is closed once Run has returned or the client is closed.
	done     chan struct{}
	doneOnce sync.Once

	mu     sync.Mutex
	closed bool // out is closed
}

// BoardURL builds the websocket URL for boardID on a relay. base may use
// the http(s) or ws(s) scheme.
func BoardURL(base, boardID, token string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}

	u.Path += "/ws/board/" + url.PathEscape(boardID)
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return u.String(), nil
}

// Dial joins boardID on the relay at base.
func Dial(ctx context.Context, base, boardID string, opts Options) (*Client, error) {
	target, err := BoardURL(base, boardID, opts.Token)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	conn.SetReadLimit(maxMsgSize)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		conn:       conn,
		opts:       opts,
		logger:     logger,
		tasks:      make(chan task),
		inbound:    make(chan collab.Message, 16),
		out:        make(chan []byte, 64),
		welcome:    make(chan collab.WelcomePayload, 1),
		readErr:    make(chan error, 1),
		writerDone: make(chan struct{}),
		done:       make(chan struct{}),
	}
	c.session = whiteboard.NewSession(
		whiteboard.WithBroadcast(c.publish),
		whiteboard.WithLogger(logger),
	)

	go c.readLoop()
	go c.writeLoop()
	return c, nil
}

// Run applies inbound snapshots and queued work to the session until ctx is
// done or the connection drops. Do and Welcome fail with ErrClosed after
// Run returns.
func (c *Client) Run(ctx context.Context) error {
	defer c.shutdown()
	for {
		select {
		case t := <-c.tasks:
			t.fn(c.session)
			close(t.done)

		case msg := <-c.inbound:
			c.handle(msg)

		case err := <-c.readErr:
			c.drain()
			return err

		case <-c.done:
			return ErrClosed

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drain handles frames that arrived before the connection dropped.
func (c *Client) drain() {
	for {
		select {
		case msg := <-c.inbound:
			c.handle(msg)
		default:
			return
		}
	}
}

// Do runs fn on the session goroutine and waits for it to finish. Run must
// be running.
func (c *Client) Do(ctx context.Context, fn func(s *whiteboard.Session)) error {
	t := task{fn: fn, done: make(chan struct{})}
	select {
	case c.tasks <- t:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Welcome waits for the relay to acknowledge the join and for the current
// board, if any, to be applied. Run must be running.
func (c *Client) Welcome(ctx context.Context) (collab.WelcomePayload, error) {
	select {
	case w := <-c.welcome:
		c.welcome <- w
		return w, nil
	case <-c.done:
		return collab.WelcomePayload{}, ErrClosed
	case <-ctx.Done():
		return collab.WelcomePayload{}, ctx.Err()
	}
}

// Close flushes queued snapshots and closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.shutdown()

		c.mu.Lock()
		c.closed = true
		close(c.out)
		c.mu.Unlock()
		<-c.writerDone

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = c.conn.Close()
	})
	return err
}

func (c *Client) shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Client) handle(msg collab.Message) {
	switch msg.Type {
	case collab.TypeWelcome:
		var w collab.WelcomePayload
		if err := json.Unmarshal(msg.Payload, &w); err != nil {
			c.logger.Warn("invalid welcome", "error", err)
			return
		}
		if w.HasBoard {
			c.joining = &w
			return
		}
		c.joined(w)

	case collab.TypeDraw:
		payload, err := msg.DrawPayload()
		if err != nil {
			c.logger.Warn("invalid draw message", "error", err)
			return
		}
		err = c.session.ApplyRemote(payload)
		if c.joining != nil {
			c.joined(*c.joining)
			c.joining = nil
		}
		if err != nil {
			return
		}
		if c.opts.OnRemote != nil {
			c.opts.OnRemote(c.session, payload == document.ClearSentinel)
		}

	case collab.TypeUsersChanged:
		var roster collab.UsersChangedPayload
		if err := json.Unmarshal(msg.Payload, &roster); err != nil {
			c.logger.Warn("invalid roster", "error", err)
			return
		}
		if c.opts.OnRoster != nil {
			c.opts.OnRoster(roster.Users)
		}

	case collab.TypeError:
		var e collab.ErrorPayload
		json.Unmarshal(msg.Payload, &e)
		c.logger.Warn("relay error", "message", e.Message)

	default:
		c.logger.Debug("ignoring message", "type", msg.Type)
	}
}

func (c *Client) joined(w collab.WelcomePayload) {
	select {
	case c.welcome <- w:
	default:
	}
}

// publish is the session's broadcast hook.
func (c *Client) publish(payload string) {
	data, err := json.Marshal(collab.NewDrawMessage(payload))
	if err != nil {
		c.logger.Error("marshal draw", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.logger.Debug("closed, dropping snapshot")
		return
	}
	select {
	case c.out <- data:
	default:
		c.logger.Warn("outbound buffer full, dropping snapshot")
	}
}

func (c *Client) readLoop() {
	for {
		var msg collab.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = ErrClosed
			}
			c.readErr <- err
			return
		}
		select {
		case c.inbound <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writeLoop() {
	defer close(c.writerDone)
	for data := range c.out {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.logger.Debug("write error", "error", err)
			return
		}
	}
}
