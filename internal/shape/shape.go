// Package shape holds the geometry of whiteboard shapes as a single tagged
// union. Behavior is dispatched on Kind by free functions rather than through
// per-kind types, so a box does not inherit line-specific behavior.
package shape

import (
	"fmt"

	"github.com/inamate/whiteboard/internal/geom"
)

// Kind tags the variant held by a Shape. Values double as wire names.
type Kind string

const (
	KindLine   Kind = "line"
	KindBox    Kind = "box"
	KindPencil Kind = "pencil"
	KindText   Kind = "text"
)

// Kinds lists every shape kind in rendering order.
var Kinds = []Kind{KindLine, KindBox, KindPencil, KindText}

// ParseKind validates a wire name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindLine, KindBox, KindPencil, KindText:
		return k, nil
	default:
		return "", fmt.Errorf("unknown shape kind %q", s)
	}
}

// Shape is the geometry of one element. Which fields are meaningful depends on
// Kind: Start/End for line, box and text; Points for pencil; Text for text.
// Bounds is derived and refreshed by Update.
type Shape struct {
	Kind     Kind
	Start    geom.Vec2
	End      geom.Vec2
	Points   []geom.Vec2
	Text     string
	Bounds   geom.OOBB
	Selected bool

	glide *glide
}

// NewLine returns an updated line shape.
func NewLine(start, end geom.Vec2) *Shape {
	s := &Shape{Kind: KindLine, Start: start, End: end}
	s.Update()
	return s
}

// NewBox returns an updated box shape.
func NewBox(start, end geom.Vec2) *Shape {
	s := &Shape{Kind: KindBox, Start: start, End: end}
	s.Update()
	return s
}

// NewText returns an updated text shape spanning start..end.
func NewText(text string, start, end geom.Vec2) *Shape {
	s := &Shape{Kind: KindText, Start: start, End: end, Text: text}
	s.Update()
	return s
}

// NewPencil returns an updated freehand shape. points is copied.
func NewPencil(points []geom.Vec2) *Shape {
	s := &Shape{Kind: KindPencil, Points: append([]geom.Vec2(nil), points...)}
	s.Update()
	return s
}

// New returns an empty shape of the given kind anchored at p.
func New(kind Kind, p geom.Vec2) *Shape {
	switch kind {
	case KindLine:
		return NewLine(p, p)
	case KindBox:
		return NewBox(p, p)
	case KindText:
		return NewText("", p, p)
	case KindPencil:
		return NewPencil([]geom.Vec2{p})
	default:
		panic(fmt.Sprintf("shape: unknown kind %q", kind))
	}
}

// Update recomputes derived bounds after a geometry change.
func (s *Shape) Update() {
	switch s.Kind {
	case KindLine, KindBox:
		s.Bounds = geom.ComputeForLine(s.Start, s.End)
	case KindText:
		r := s.Rect()
		s.Bounds = geom.OOBB{
			Center:     r.Center(),
			HalfExtent: geom.V2(r.Width/2, r.Height/2),
		}
	case KindPencil:
		s.Bounds = geom.Compute(s.Points)
	default:
		panic(fmt.Sprintf("shape: unknown kind %q", s.Kind))
	}
}

// Draw extends an in-progress shape to the pointer position: the end point
// for two-point kinds, a new sample for pencil strokes.
func (s *Shape) Draw(x, y float64) {
	p := geom.V2(x, y)
	if s.Kind == KindPencil {
		s.Points = append(s.Points, p)
	} else {
		s.End = p
	}
	s.Update()
}

// Rect is the axis-aligned extent of the shape's vertices.
func (s *Shape) Rect() geom.Rect {
	return geom.RectFromPoints(s.Vertices()...)
}

// Vertices returns the defining points: start and end, or the pencil samples.
func (s *Shape) Vertices() []geom.Vec2 {
	if s.Kind == KindPencil {
		return s.Points
	}
	return []geom.Vec2{s.Start, s.End}
}

// HitTest reports whether a click at p lands on the shape. Lines use their
// oriented box; boxes and text use strict axis-aligned containment. Freehand
// strokes are never hit.
func (s *Shape) HitTest(p geom.Vec2) bool {
	switch s.Kind {
	case KindLine:
		return s.Bounds.Contains(p)
	case KindBox, KindText:
		return s.Rect().ContainsStrict(p)
	case KindPencil:
		return false
	default:
		panic(fmt.Sprintf("shape: unknown kind %q", s.Kind))
	}
}

// IsDegenerate reports whether committing the shape would produce nothing
// visible: a zero-length drag, a stroke with fewer than two samples, or
// empty text.
func (s *Shape) IsDegenerate() bool {
	switch s.Kind {
	case KindLine, KindBox:
		return s.Start.Equals(s.End)
	case KindText:
		return s.Text == ""
	case KindPencil:
		return len(s.Points) < 2
	default:
		panic(fmt.Sprintf("shape: unknown kind %q", s.Kind))
	}
}

func (s *Shape) Select() {
	s.Selected = true
	s.Update()
}

func (s *Shape) Deselect() {
	s.Selected = false
	s.glide = nil
	s.Update()
}

// SetText replaces the text payload and resizes the shape to the measured
// extent of the string. The start point is the baseline origin.
func (s *Shape) SetText(text string) {
	s.Text = text
	size := MeasureText(text)
	s.End = geom.V2(s.Start.X+size.X, s.Start.Y-size.Y)
	s.Update()
}

// Clone returns a deep copy without any pending glide.
func (s *Shape) Clone() *Shape {
	c := *s
	c.Points = append([]geom.Vec2(nil), s.Points...)
	c.glide = nil
	return &c
}

// anchor is the point that a move brings to the pointer.
func (s *Shape) anchor() geom.Vec2 {
	if s.Kind == KindPencil {
		return s.Rect().Center()
	}
	return s.Start.Midpoint(s.End)
}
