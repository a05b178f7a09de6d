package tool

import (
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/geom"
)

// ZoomStep is the scale factor applied per zoom increment.
const ZoomStep = 1.1

// Hand pans and zooms the shared canvas transform.
type Hand struct {
	transform *document.Transform
	last      geom.Vec2
	panning   bool
}

// NewHand returns a hand tool that mutates transform in place.
func NewHand(transform *document.Transform) *Hand {
	if transform == nil {
		panic("tool: nil transform")
	}
	return &Hand{transform: transform}
}

// Begin starts a pan at the pointer position.
func (h *Hand) Begin(x, y float64) {
	h.last = geom.V2(x, y)
	h.panning = true
}

// Drag moves the offset by the pointer delta since the last event.
func (h *Hand) Drag(x, y float64) {
	if !h.panning {
		return
	}
	p := geom.V2(x, y)
	d := p.Sub(h.last)
	h.transform.X += d.X
	h.transform.Y += d.Y
	h.last = p
}

// End finishes a pan and reports whether one was in progress.
func (h *Hand) End() bool {
	was := h.panning
	h.panning = false
	return was
}

func (h *Hand) Panning() bool {
	return h.panning
}

// ZoomIn multiplies the scale by ZoomStep.
func (h *Hand) ZoomIn() {
	h.transform.Scale *= ZoomStep
}

// ZoomOut divides the scale by ZoomStep, undoing one ZoomIn.
func (h *Hand) ZoomOut() {
	h.transform.Scale /= ZoomStep
}
