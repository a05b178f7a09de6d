package document

import (
	"errors"
	"fmt"

	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
)

var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrKindMismatch    = errors.New("element kind does not match bucket")
)

// Geometry is the persisted part of a shape. Start/End describe line, box and
// text elements; Points describes pencil strokes; Text is the text payload.
type Geometry struct {
	Start  geom.Vec2
	End    geom.Vec2
	Points []geom.Vec2
	Text   string
}

// Element is a committed shape with an id that is stable once assigned.
type Element struct {
	ID       string
	Kind     shape.Kind
	Geometry Geometry
}

// ElementFromShape captures the geometry of s under id.
func ElementFromShape(id string, s *shape.Shape) Element {
	g := Geometry{Start: s.Start, End: s.End, Text: s.Text}
	if s.Kind == shape.KindPencil {
		g = Geometry{Points: append([]geom.Vec2(nil), s.Points...)}
	}
	return Element{ID: id, Kind: s.Kind, Geometry: g}
}

// Shape rehydrates the element into a fresh, unselected shape.
func (e Element) Shape() *shape.Shape {
	switch e.Kind {
	case shape.KindLine:
		return shape.NewLine(e.Geometry.Start, e.Geometry.End)
	case shape.KindBox:
		return shape.NewBox(e.Geometry.Start, e.Geometry.End)
	case shape.KindText:
		return shape.NewText(e.Geometry.Text, e.Geometry.Start, e.Geometry.End)
	case shape.KindPencil:
		return shape.NewPencil(e.Geometry.Points)
	default:
		panic(fmt.Sprintf("document: unknown kind %q", e.Kind))
	}
}

// Transform is the shared pan offset and zoom scale of the canvas.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// IdentityTransform is no pan at unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// Normalize replaces a missing or non-positive scale with 1.
func (t Transform) Normalize() Transform {
	if t.Scale <= 0 {
		t.Scale = 1
	}
	return t
}

// Offset returns the pan offset as a vector.
func (t Transform) Offset() geom.Vec2 {
	return geom.V2(t.X, t.Y)
}

// Document is every committed element, bucketed by kind in append order,
// plus the canvas transform.
type Document struct {
	byKind    map[shape.Kind][]Element
	Transform Transform
}

// New creates an empty document at the identity transform.
func New() *Document {
	return &Document{
		byKind:    make(map[shape.Kind][]Element),
		Transform: IdentityTransform(),
	}
}

// Put appends e to the bucket of its kind.
func (d *Document) Put(e Element) error {
	if _, err := shape.ParseKind(string(e.Kind)); err != nil {
		return err
	}
	d.byKind[e.Kind] = append(d.byKind[e.Kind], e)
	return nil
}

// Replace swaps out the whole bucket for kind.
func (d *Document) Replace(kind shape.Kind, elements []Element) error {
	for _, e := range elements {
		if e.Kind != kind {
			return fmt.Errorf("%w: %s element %s in %s bucket", ErrKindMismatch, e.Kind, e.ID, kind)
		}
	}
	d.byKind[kind] = append([]Element(nil), elements...)
	return nil
}

// Elements returns the bucket for kind in append order.
func (d *Document) Elements(kind shape.Kind) []Element {
	return d.byKind[kind]
}

// Len counts elements across all kinds.
func (d *Document) Len() int {
	n := 0
	for _, elements := range d.byKind {
		n += len(elements)
	}
	return n
}

// Reset empties every bucket and restores the identity transform.
func (d *Document) Reset() {
	d.byKind = make(map[shape.Kind][]Element)
	d.Transform = IdentityTransform()
}

// Snapshot captures the document for broadcast.
func (d *Document) Snapshot() Snapshot {
	t := d.Transform
	return Snapshot{
		Line:   d.Elements(shape.KindLine),
		Box:    d.Elements(shape.KindBox),
		Pencil: d.Elements(shape.KindPencil),
		Text:   d.Elements(shape.KindText),
		Hand:   &t,
	}
}

// FromSnapshot builds a document from a decoded snapshot. Absent buckets are
// empty; an absent transform is the identity.
func FromSnapshot(s Snapshot) (*Document, error) {
	d := New()
	for _, kind := range shape.Kinds {
		if err := d.Replace(kind, s.Bucket(kind)); err != nil {
			return nil, err
		}
	}
	if s.Hand != nil {
		d.Transform = s.Hand.Normalize()
	}
	return d, nil
}
