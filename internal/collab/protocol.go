package collab

import (
	"encoding/json"
	"fmt"
)

// Message is the envelope for every frame exchanged with a board client.
type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Board sync. The payload is a JSON string holding a serialized
	// snapshot, or the empty string to clear the board.
	TypeDraw = "draw"

	// Roster
	TypeUsersChanged = "users_changed"
)

type WelcomePayload struct {
	BoardID  string `json:"boardId"`
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	// HasBoard means a draw message with the current board follows.
	HasBoard bool `json:"hasBoard"`
}

type Participant struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type UsersChangedPayload struct {
	Users []Participant `json:"users"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewDrawMessage wraps a serialized snapshot in a draw frame.
func NewDrawMessage(payload string) *Message {
	raw, _ := json.Marshal(payload)
	return &Message{Type: TypeDraw, Payload: raw}
}

// DrawPayload extracts the serialized snapshot carried by a draw frame.
func (m Message) DrawPayload() (string, error) {
	if m.Type != TypeDraw {
		return "", fmt.Errorf("message type %q is not %q", m.Type, TypeDraw)
	}
	var payload string
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return "", fmt.Errorf("draw payload: %w", err)
	}
	return payload, nil
}

func newMessage(typ string, payload any) *Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("null")
	}
	return &Message{Type: typ, Payload: raw}
}

func newErrorMessage(format string, args ...any) *Message {
	return newMessage(TypeError, ErrorPayload{Message: fmt.Sprintf(format, args...)})
}
