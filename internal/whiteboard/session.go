// Package whiteboard is the per-client editing context: it routes pointer and
// keyboard events to the active tool, keeps the selection and canvas
// transform, and broadcasts the whole board after every committed change.
package whiteboard

import (
	"fmt"
	"log/slog"

	"github.com/inamate/whiteboard/internal/docsync"
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
	"github.com/inamate/whiteboard/internal/tool"
)

// ToolName selects what pointer input does.
type ToolName string

const (
	ToolLine   ToolName = "line"
	ToolBox    ToolName = "box"
	ToolPencil ToolName = "pencil"
	ToolText   ToolName = "text"
	ToolMove   ToolName = "move"
	ToolHand   ToolName = "hand"
)

// ParseTool validates a tool name.
func ParseTool(s string) (ToolName, error) {
	switch n := ToolName(s); n {
	case ToolLine, ToolBox, ToolPencil, ToolText, ToolMove, ToolHand:
		return n, nil
	default:
		return "", fmt.Errorf("unknown tool %q", s)
	}
}

// Keys that commit text.
const (
	KeyEscape = "Escape"
	KeyEnter  = "Enter"
)

// Session is a single client's whiteboard. It is driven from one event loop
// and is not safe for concurrent use.
type Session struct {
	engine *docsync.Engine
	sel    *tool.Select
	hand   *tool.Hand
	active ToolName

	dragging  bool
	broadcast func(payload string)
	logger    *slog.Logger
	simplify  shape.Simplifier
}

// Option configures a Session.
type Option func(*Session)

// WithBroadcast sets the hook that receives every outbound payload.
func WithBroadcast(fn func(payload string)) Option {
	return func(s *Session) { s.broadcast = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithSimplifier replaces the pencil stroke simplifier.
func WithSimplifier(simplify shape.Simplifier) Option {
	return func(s *Session) { s.simplify = simplify }
}

// NewSession creates an empty board with the line tool active.
func NewSession(opts ...Option) *Session {
	s := &Session{
		active:    ToolLine,
		broadcast: func(string) {},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = docsync.New(s.simplify)
	s.sel = tool.NewSelect()
	s.hand = tool.NewHand(&s.engine.Transform)
	return s
}

// Tool returns the active tool name.
func (s *Session) Tool() ToolName {
	return s.active
}

// SetTool switches tools. Any shape being drawn is discarded, the selection
// is released and a pan in progress ends.
func (s *Session) SetTool(name ToolName) error {
	if _, err := ParseTool(string(name)); err != nil {
		return err
	}
	if t := s.drawingTool(); t != nil {
		t.Cancel()
	}
	s.sel.Release()
	s.hand.End()
	s.dragging = false
	s.active = name
	return nil
}

// Transform returns the current pan and zoom.
func (s *Session) Transform() document.Transform {
	return s.engine.Transform
}

// Engine exposes the underlying sync engine.
func (s *Session) Engine() *docsync.Engine {
	return s.engine
}

// Selected returns the selected shape, if any.
func (s *Session) Selected() *shape.Shape {
	return s.sel.Selected()
}

// PointerDown handles a press at screen coordinates (x, y).
func (s *Session) PointerDown(x, y float64) {
	w := s.ToWorld(x, y)
	switch s.active {
	case ToolMove:
		_, s.dragging = s.sel.Pick(w.X, w.Y, s.engine.Line.Shapes(), s.engine.Box.Shapes())
	case ToolHand:
		s.hand.Begin(x, y)
	default:
		s.drawingTool().Start(w.X, w.Y)
	}
}

// PointerMove handles pointer motion at screen coordinates (x, y).
func (s *Session) PointerMove(x, y float64) {
	w := s.ToWorld(x, y)
	switch s.active {
	case ToolMove:
		if s.dragging {
			s.sel.Drag(w.X, w.Y)
		}
	case ToolHand:
		s.hand.Drag(x, y)
	default:
		s.drawingTool().Draw(w.X, w.Y)
	}
}

// PointerUp ends a drag. Drawing tools other than text commit here; a moved
// selection lands on its destination; a pan ends.
func (s *Session) PointerUp(x, y float64) {
	switch s.active {
	case ToolMove:
		if !s.dragging {
			return
		}
		s.dragging = false
		if sel := s.sel.Selected(); sel != nil {
			sel.Settle()
			s.publish()
		}
	case ToolHand:
		if s.hand.End() {
			s.publish()
		}
	case ToolText:
	default:
		s.finish()
	}
}

// KeyUp commits typed text on Escape or Enter. It reports whether the key
// was consumed.
func (s *Session) KeyUp(key string) bool {
	if s.active != ToolText || (key != KeyEscape && key != KeyEnter) {
		return false
	}
	if !s.engine.Text.Active() {
		return false
	}
	s.finish()
	return true
}

// SetText updates the label being typed with the text tool.
func (s *Session) SetText(text string) {
	s.engine.Text.SetText(text)
}

func (s *Session) ZoomIn() {
	s.hand.ZoomIn()
	s.publish()
}

func (s *Session) ZoomOut() {
	s.hand.ZoomOut()
	s.publish()
}

// Clear empties the board and broadcasts the clear sentinel.
func (s *Session) Clear() {
	s.sel.Forget()
	s.dragging = false
	s.broadcast(s.engine.Clear())
	s.logger.Info("board cleared")
}

// ApplyRemote replaces the board with a snapshot received from a peer. The
// selection does not survive because its shape is replaced.
func (s *Session) ApplyRemote(payload string) error {
	cleared, err := s.engine.Apply(payload)
	if err != nil {
		s.logger.Warn("rejected remote snapshot", "error", err)
		return err
	}
	s.sel.Forget()
	s.dragging = false
	s.logger.Debug("applied remote snapshot", "cleared", cleared, "elements", s.engine.Len())
	return nil
}

// Tick advances every in-flight glide by one step and reports whether any
// shape is still moving. Call it once per rendered frame.
func (s *Session) Tick() bool {
	moving := false
	for _, t := range s.engine.Tools() {
		for _, sh := range t.Shapes() {
			if sh.Step() {
				moving = true
			}
		}
	}
	return moving
}

// Snapshot captures the whole board.
func (s *Session) Snapshot() document.Snapshot {
	return s.engine.Snapshot()
}

// Outbound serializes the whole board.
func (s *Session) Outbound() (string, error) {
	return s.engine.Outbound()
}

// ToWorld maps screen coordinates through the inverse of the view transform.
func (s *Session) ToWorld(x, y float64) geom.Vec2 {
	return s.viewMatrix().Invert().Apply(geom.V2(x, y))
}

func (s *Session) viewMatrix() geom.Matrix2D {
	t := s.engine.Transform.Normalize()
	return geom.ViewMatrix(t.Offset(), t.Scale)
}

// drawingTool returns the drawing tool behind the active name, or nil for
// the move and hand tools.
func (s *Session) drawingTool() tool.Tool {
	switch s.active {
	case ToolLine:
		return s.engine.Line
	case ToolBox:
		return s.engine.Box
	case ToolPencil:
		return s.engine.Pencil
	case ToolText:
		return s.engine.Text
	default:
		return nil
	}
}

func (s *Session) finish() {
	t := s.drawingTool()
	e, ok := t.Finish()
	if !ok {
		return
	}
	s.logger.Debug("element committed", "kind", e.Kind, "id", e.ID)
	s.publish()
}

func (s *Session) publish() {
	payload, err := s.engine.Outbound()
	if err != nil {
		s.logger.Error("failed to encode board", "error", err)
		return
	}
	s.broadcast(payload)
}
