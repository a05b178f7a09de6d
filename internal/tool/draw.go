package tool

import "github.com/inamate/whiteboard/internal/shape"

// LineTool draws straight segments from pointer-down to pointer-up.
type LineTool struct {
	*drawTool
}

func NewLine() *LineTool {
	return &LineTool{drawTool: newDrawTool(shape.KindLine)}
}

// BoxTool draws axis-aligned rectangles spanned by the drag.
type BoxTool struct {
	*drawTool
}

func NewBox() *BoxTool {
	return &BoxTool{drawTool: newDrawTool(shape.KindBox)}
}

// PencilTool records freehand strokes and simplifies them on commit.
type PencilTool struct {
	*drawTool
	simplify  shape.Simplifier
	tolerance float64
}

// NewPencil returns a pencil tool using simplify at shape.PencilTolerance.
// A nil simplify selects shape.SimplifyPolyline.
func NewPencil(simplify shape.Simplifier) *PencilTool {
	if simplify == nil {
		simplify = shape.SimplifyPolyline
	}
	t := &PencilTool{
		drawTool:  newDrawTool(shape.KindPencil),
		simplify:  simplify,
		tolerance: shape.PencilTolerance,
	}
	t.prepare = func(s *shape.Shape) {
		s.Simplify(t.simplify, t.tolerance)
	}
	return t
}

// TextTool places a text label at pointer-down. The label content arrives
// through SetText; the session commits on Escape or Enter.
type TextTool struct {
	*drawTool
}

func NewText() *TextTool {
	return &TextTool{drawTool: newDrawTool(shape.KindText)}
}

// Start anchors the label at (x, y). Pressing again while typing moves the
// anchor and keeps the typed text.
func (t *TextTool) Start(x, y float64) {
	var text string
	if t.current != nil {
		text = t.current.Text
	}
	t.drawTool.Start(x, y)
	if text != "" {
		t.current.SetText(text)
	}
}

// Draw is a no-op: dragging does not resize text.
func (t *TextTool) Draw(x, y float64) {}

// SetText updates the label being typed. No-op while idle.
func (t *TextTool) SetText(text string) {
	if t.current == nil {
		return
	}
	t.current.SetText(text)
}
