package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/internal/document"
)

const testBoard = "board_test"

func testAuth(r *http.Request, boardID string) (Identity, error) {
	name := r.URL.Query().Get("name")
	if name == "" {
		return Identity{}, errors.New("missing name")
	}
	return Identity{UserID: "user-" + name, DisplayName: name}, nil
}

func startHub(t *testing.T, load Loader, save Saver) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(load, save, time.Hour)
	go hub.Run()

	r := mux.NewRouter()
	r.Handle("/ws/board/{boardId}", NewHandler(hub, testAuth, nil))
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/board/" + testBoard + "?name=" + name
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// readType reads frames until one of type typ arrives.
func readType(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func sendDraw(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	data, err := json.Marshal(NewDrawMessage(payload))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func samplePayload(t *testing.T) string {
	t.Helper()
	payload, err := document.EncodePayload(document.NewSampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	return payload
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRelayExcludesSender(t *testing.T) {
	_, srv := startHub(t, nil, nil)

	alice := dial(t, srv, "alice")
	var welcome WelcomePayload
	json.Unmarshal(readType(t, alice, TypeWelcome).Payload, &welcome)

	bob := dial(t, srv, "bob")
	readType(t, bob, TypeWelcome)

	first := samplePayload(t)
	sendDraw(t, alice, first)

	got := readType(t, bob, TypeDraw)
	payload, err := got.DrawPayload()
	if err != nil {
		t.Fatal(err)
	}
	if payload != first {
		t.Errorf("bob got %s", payload)
	}
	if got.ClientID != welcome.ClientID || got.UserID != "user-alice" {
		t.Errorf("sender = %s/%s, want %s/user-alice", got.ClientID, got.UserID, welcome.ClientID)
	}

	second, _ := document.EncodePayload(document.Snapshot{})
	sendDraw(t, bob, second)
	payload, _ = readType(t, alice, TypeDraw).DrawPayload()
	if payload != second {
		t.Error("alice received her own snapshot back")
	}
}

func TestLateJoinerReceivesLatest(t *testing.T) {
	hub, srv := startHub(t, nil, nil)

	alice := dial(t, srv, "alice")
	readType(t, alice, TypeWelcome)
	payload := samplePayload(t)
	sendDraw(t, alice, payload)
	waitFor(t, func() bool {
		s, _ := hub.Snapshot(testBoard)
		return s == payload
	})

	carol := dial(t, srv, "carol")
	var welcome WelcomePayload
	json.Unmarshal(readType(t, carol, TypeWelcome).Payload, &welcome)
	if !welcome.HasBoard {
		t.Error("welcome should announce the current board")
	}
	got, _ := readType(t, carol, TypeDraw).DrawPayload()
	if got != payload {
		t.Errorf("late joiner got %s", got)
	}
}

func TestRosterOnJoin(t *testing.T) {
	_, srv := startHub(t, nil, nil)

	alice := dial(t, srv, "alice")
	readType(t, alice, TypeUsersChanged)
	dial(t, srv, "bob")

	var roster UsersChangedPayload
	json.Unmarshal(readType(t, alice, TypeUsersChanged).Payload, &roster)
	if len(roster.Users) != 2 || roster.Users[0].DisplayName != "alice" || roster.Users[1].DisplayName != "bob" {
		t.Errorf("roster = %+v", roster.Users)
	}
}

func TestInvalidSnapshotRejected(t *testing.T) {
	hub, srv := startHub(t, nil, nil)

	alice := dial(t, srv, "alice")
	readType(t, alice, TypeWelcome)
	sendDraw(t, alice, `{"line":[{"id":"x","type":"box","shape":[0,0,1,1]}]}`)

	readType(t, alice, TypeError)
	if s, _ := hub.Snapshot(testBoard); s != "" {
		t.Errorf("snapshot = %s", s)
	}
}

func TestClearIsRelayed(t *testing.T) {
	hub, srv := startHub(t, nil, nil)

	alice := dial(t, srv, "alice")
	readType(t, alice, TypeWelcome)
	bob := dial(t, srv, "bob")
	readType(t, bob, TypeWelcome)

	sendDraw(t, alice, samplePayload(t))
	readType(t, bob, TypeDraw)

	sendDraw(t, alice, document.ClearSentinel)
	got, _ := readType(t, bob, TypeDraw).DrawPayload()
	if got != document.ClearSentinel {
		t.Errorf("bob got %q, want clear sentinel", got)
	}

	snap, _ := hub.Snapshot(testBoard)
	decoded, cleared, err := document.DecodePayload(snap)
	if err != nil || cleared || decoded.Len() != 0 {
		t.Errorf("stored snapshot %q after clear", snap)
	}
}

func TestUnauthorizedRejected(t *testing.T) {
	_, srv := startHub(t, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/board/" + testBoard
	_, resp, err := websocket.Dial(ctx, url, nil)
	if err == nil {
		t.Fatal("dial without identity succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response = %v", resp)
	}
}

type memorySaver struct {
	mu    sync.Mutex
	saved map[string]string
}

func (m *memorySaver) load(ctx context.Context, boardID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[boardID], nil
}

func (m *memorySaver) save(ctx context.Context, boardID, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[boardID] = payload
	return nil
}

func (m *memorySaver) get(boardID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[boardID]
}

func TestStopSavesDirtyBoards(t *testing.T) {
	store := &memorySaver{saved: map[string]string{}}
	hub, srv := startHub(t, store.load, store.save)

	alice := dial(t, srv, "alice")
	readType(t, alice, TypeWelcome)
	dial(t, srv, "bob")

	payload := samplePayload(t)
	sendDraw(t, alice, payload)
	waitFor(t, func() bool {
		s, _ := hub.Snapshot(testBoard)
		return s == payload
	})

	hub.Stop()
	if got := store.get(testBoard); got != payload {
		t.Errorf("saved %q", got)
	}
}

func TestLoaderSeedsRoom(t *testing.T) {
	payload := samplePayload(t)
	store := &memorySaver{saved: map[string]string{testBoard: payload}}
	_, srv := startHub(t, store.load, store.save)

	alice := dial(t, srv, "alice")
	got, _ := readType(t, alice, TypeDraw).DrawPayload()
	if got != payload {
		t.Errorf("seeded snapshot = %s", got)
	}
}

func TestRosterOrder(t *testing.T) {
	r := NewRoster()
	r.Add(Participant{ClientID: "2", DisplayName: "zed"})
	r.Add(Participant{ClientID: "1", DisplayName: "amy"})
	r.Add(Participant{ClientID: "0", DisplayName: "amy"})
	r.Remove("2")

	list := r.List()
	if len(list) != 2 || list[0].ClientID != "0" || list[1].ClientID != "1" {
		t.Errorf("List = %+v", list)
	}
}

func panPayload(t *testing.T, x float64) string {
	t.Helper()
	payload, err := document.EncodePayload(document.Snapshot{Hand: &document.Transform{X: x, Scale: 1}})
	if err != nil {
		t.Fatal(err)
	}
	return payload
}

// lastDraw returns the last snapshot queued for c.
func lastDraw(t *testing.T, c *Client) string {
	t.Helper()
	var last string
	for {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatal(err)
			}
			if msg.Type == TypeDraw {
				last, _ = msg.DrawPayload()
			}
		default:
			return last
		}
	}
}

func TestJoinDuringDrawsEndsOnLatest(t *testing.T) {
	payloads := make([]string, 100)
	for i := range payloads {
		payloads[i] = panPayload(t, float64(i))
	}

	for trial := 0; trial < 50; trial++ {
		hub := NewHub(nil, nil, time.Hour)
		alice := NewClient(hub, nil, "user-alice", "alice", testBoard, "alice")
		carol := NewClient(hub, nil, "user-carol", "carol", testBoard, "carol")
		hub.addClient(alice)
		hub.handleDraw(alice, NewDrawMessage(panPayload(t, -1)))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, p := range payloads {
				hub.handleDraw(alice, NewDrawMessage(p))
			}
		}()
		hub.addClient(carol)
		wg.Wait()

		want, _ := hub.Snapshot(testBoard)
		if got := lastDraw(t, carol); got != want {
			t.Fatalf("trial %d: joiner ended on %s, board is %s", trial, got, want)
		}
	}
}

func TestUnsupportedTypeRejected(t *testing.T) {
	hub, srv := startHub(t, nil, nil)

	alice := dial(t, srv, "alice")
	readType(t, alice, TypeWelcome)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := alice.Write(ctx, websocket.MessageText, []byte(`{"type":"chat","payload":"hi"}`)); err != nil {
		t.Fatal(err)
	}

	var e ErrorPayload
	json.Unmarshal(readType(t, alice, TypeError).Payload, &e)
	if !strings.Contains(e.Message, `"chat"`) {
		t.Errorf("error = %q", e.Message)
	}
	if s, _ := hub.Snapshot(testBoard); s != "" {
		t.Errorf("snapshot = %s", s)
	}
}

func TestFullQueueMarksClientLagged(t *testing.T) {
	hub := NewHub(nil, nil, time.Hour)
	c := NewClient(hub, nil, "user-slow", "slow", testBoard, "slow")

	msg := NewDrawMessage(document.ClearSentinel)
	for i := 0; i < sendBuffer; i++ {
		c.Send(msg)
	}
	if c.Lagged() {
		t.Fatal("lagged before the queue overflowed")
	}

	c.Send(msg)
	c.Send(msg)
	if !c.Lagged() {
		t.Fatal("overflow did not mark the client lagged")
	}
	if len(c.send) != sendBuffer {
		t.Errorf("queued = %d, want %d", len(c.send), sendBuffer)
	}
}

func TestLaggedClientIsDisconnected(t *testing.T) {
	hub := NewHub(nil, nil, time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(hub, conn, "user-slow", "slow", testBoard, "slow")
		for i := 0; i <= sendBuffer; i++ {
			c.Send(NewDrawMessage(document.ClearSentinel))
		}
		c.WritePump(r.Context())
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.CloseNow()

	for {
		if _, _, err = conn.Read(ctx); err != nil {
			break
		}
	}
	if status := websocket.CloseStatus(err); status != websocket.StatusPolicyViolation {
		t.Errorf("close status = %v (%v), want policy violation", status, err)
	}
}
