package tool

import (
	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
)

// Select picks at most one committed line or box and glides it under the
// pointer while dragging.
type Select struct {
	selected *shape.Shape
}

func NewSelect() *Select {
	return &Select{}
}

// Pick hit-tests lines first, then boxes, and selects the first hit. The
// previous selection is released whether or not anything is hit.
func (t *Select) Pick(x, y float64, lines, boxes []*shape.Shape) (*shape.Shape, bool) {
	t.Release()

	p := geom.V2(x, y)
	for _, candidates := range [][]*shape.Shape{lines, boxes} {
		for _, s := range candidates {
			if s.HitTest(p) {
				s.Select()
				t.selected = s
				return s, true
			}
		}
	}
	return nil, false
}

// Drag retargets the selected shape's glide to the pointer.
func (t *Select) Drag(x, y float64) {
	if t.selected == nil {
		return
	}
	t.selected.MoveTo(x, y)
}

// Selected returns the current selection, if any.
func (t *Select) Selected() *shape.Shape {
	return t.selected
}

// Release deselects the current selection.
func (t *Select) Release() {
	if t.selected != nil {
		t.selected.Deselect()
		t.selected = nil
	}
}

// Forget drops the selection without touching the shape. Used when the
// shape it points at has been replaced by a remote snapshot.
func (t *Select) Forget() {
	t.selected = nil
}
