// Package tool turns pointer input into committed whiteboard elements. Each
// drawing tool owns the committed collection of one shape kind and at most
// one in-progress shape.
package tool

import (
	"github.com/google/uuid"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
)

// Tool is a drawing tool for one shape kind. Start moves it from idle to
// active; Finish or Cancel return it to idle. Draw and Finish are no-ops
// while idle.
type Tool interface {
	Kind() shape.Kind
	Start(x, y float64)
	Draw(x, y float64)
	// Finish commits the in-progress shape and returns the new element.
	// ok is false when the tool was idle or the shape was degenerate.
	Finish() (e document.Element, ok bool)
	Cancel()
	Active() bool
	InProgress() *shape.Shape
	SetElements(elements []document.Element)
	Elements() []document.Element
	Shapes() []*shape.Shape
	Clear()
}

type committed struct {
	id    string
	shape *shape.Shape
}

// drawTool is the state machine shared by every drawing tool.
type drawTool struct {
	kind    shape.Kind
	current *shape.Shape
	items   []committed

	// prepare runs on the in-progress shape right before it is committed.
	prepare func(s *shape.Shape)
}

func newDrawTool(kind shape.Kind) *drawTool {
	return &drawTool{kind: kind}
}

func (t *drawTool) Kind() shape.Kind {
	return t.kind
}

func (t *drawTool) Start(x, y float64) {
	t.current = shape.New(t.kind, geom.V2(x, y))
}

func (t *drawTool) Draw(x, y float64) {
	if t.current == nil {
		return
	}
	t.current.Draw(x, y)
}

func (t *drawTool) Finish() (document.Element, bool) {
	s := t.current
	t.current = nil
	if s == nil || s.IsDegenerate() {
		return document.Element{}, false
	}
	if t.prepare != nil {
		t.prepare(s)
	}

	id := uuid.NewString()
	t.items = append(t.items, committed{id: id, shape: s})
	return document.ElementFromShape(id, s), true
}

func (t *drawTool) Cancel() {
	t.current = nil
}

func (t *drawTool) Active() bool {
	return t.current != nil
}

func (t *drawTool) InProgress() *shape.Shape {
	return t.current
}

// SetElements replaces the committed collection. Elements of another kind
// are skipped.
func (t *drawTool) SetElements(elements []document.Element) {
	items := make([]committed, 0, len(elements))
	for _, e := range elements {
		if e.Kind != t.kind {
			continue
		}
		items = append(items, committed{id: e.ID, shape: e.Shape()})
	}
	t.items = items
}

// Elements serializes the committed collection in append order.
func (t *drawTool) Elements() []document.Element {
	out := make([]document.Element, len(t.items))
	for i, item := range t.items {
		out[i] = document.ElementFromShape(item.id, item.shape)
	}
	return out
}

// Shapes returns the live committed shapes. Callers may select and move them.
func (t *drawTool) Shapes() []*shape.Shape {
	out := make([]*shape.Shape, len(t.items))
	for i, item := range t.items {
		out[i] = item.shape
	}
	return out
}

// Clear drops the committed collection and any in-progress shape.
func (t *drawTool) Clear() {
	t.items = nil
	t.current = nil
}
