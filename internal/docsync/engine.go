// Package docsync reconciles a client's tools with full-board snapshots
// exchanged between peers. A received snapshot replaces local state
// wholesale: the last one applied wins and nothing is merged.
package docsync

import (
	"fmt"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/shape"
	"github.com/inamate/whiteboard/internal/tool"
)

// Engine owns the four drawing tools and the canvas transform of one client.
// It is not safe for concurrent use.
type Engine struct {
	Line   *tool.LineTool
	Box    *tool.BoxTool
	Pencil *tool.PencilTool
	Text   *tool.TextTool

	// Transform is shared with the hand tool, which mutates it in place.
	Transform document.Transform
}

// New creates an empty engine. simplify is handed to the pencil tool; nil
// selects the default simplifier.
func New(simplify shape.Simplifier) *Engine {
	return &Engine{
		Line:      tool.NewLine(),
		Box:       tool.NewBox(),
		Pencil:    tool.NewPencil(simplify),
		Text:      tool.NewText(),
		Transform: document.IdentityTransform(),
	}
}

// Tools returns the drawing tools in rendering order.
func (e *Engine) Tools() []tool.Tool {
	return []tool.Tool{e.Line, e.Box, e.Pencil, e.Text}
}

// Tool returns the drawing tool for kind.
func (e *Engine) Tool(kind shape.Kind) tool.Tool {
	switch kind {
	case shape.KindLine:
		return e.Line
	case shape.KindBox:
		return e.Box
	case shape.KindPencil:
		return e.Pencil
	case shape.KindText:
		return e.Text
	default:
		panic(fmt.Sprintf("docsync: unknown kind %q", kind))
	}
}

// Apply replaces local state with a received payload. Absent buckets become
// empty, an absent transform becomes the identity and the clear sentinel
// resets everything. A payload that fails to decode leaves state untouched.
// It reports whether the payload was the clear sentinel.
func (e *Engine) Apply(payload string) (cleared bool, err error) {
	snap, cleared, err := document.DecodePayload(payload)
	if err != nil {
		return false, fmt.Errorf("apply snapshot: %w", err)
	}
	if cleared {
		e.Reset()
		return true, nil
	}
	e.Load(snap)
	return false, nil
}

// Load replaces local state with an already decoded snapshot. Shapes still
// being drawn are kept and commit on top of the new state.
func (e *Engine) Load(snap document.Snapshot) {
	for _, t := range e.Tools() {
		t.SetElements(snap.Bucket(t.Kind()))
	}

	e.Transform = document.IdentityTransform()
	if snap.Hand != nil {
		e.Transform = snap.Hand.Normalize()
	}
}

// Document collects the committed elements of every tool.
func (e *Engine) Document() *document.Document {
	d := document.New()
	for _, t := range e.Tools() {
		// Tools only hold elements of their own kind.
		_ = d.Replace(t.Kind(), t.Elements())
	}
	d.Transform = e.Transform
	return d
}

// Snapshot captures the whole board.
func (e *Engine) Snapshot() document.Snapshot {
	return e.Document().Snapshot()
}

// Outbound serializes the whole board for broadcast.
func (e *Engine) Outbound() (string, error) {
	return document.EncodePayload(e.Snapshot())
}

// Clear resets the board and returns the clear sentinel to broadcast.
func (e *Engine) Clear() string {
	e.Reset()
	return document.ClearSentinel
}

// Reset empties every tool and restores the identity transform.
func (e *Engine) Reset() {
	for _, t := range e.Tools() {
		t.Clear()
	}
	e.Transform = document.IdentityTransform()
}

// Len counts committed elements.
func (e *Engine) Len() int {
	n := 0
	for _, t := range e.Tools() {
		n += len(t.Shapes())
	}
	return n
}
