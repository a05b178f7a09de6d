package document

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
)

// ClearSentinel is the payload that tells peers to reset to an empty board.
const ClearSentinel = ""

// Snapshot is the full board as exchanged between peers. Each bucket holds
// elements of exactly one kind; Hand carries the canvas transform.
type Snapshot struct {
	Line   []Element  `json:"line"`
	Box    []Element  `json:"box"`
	Pencil []Element  `json:"pencil"`
	Text   []Element  `json:"text"`
	Hand   *Transform `json:"hand,omitempty"`
}

// Bucket returns the elements stored under kind.
func (s Snapshot) Bucket(kind shape.Kind) []Element {
	switch kind {
	case shape.KindLine:
		return s.Line
	case shape.KindBox:
		return s.Box
	case shape.KindPencil:
		return s.Pencil
	case shape.KindText:
		return s.Text
	default:
		return nil
	}
}

// Len counts elements across all buckets.
func (s Snapshot) Len() int {
	return len(s.Line) + len(s.Box) + len(s.Pencil) + len(s.Text)
}

// Validate checks that every element sits in the bucket of its own kind.
func (s Snapshot) Validate() error {
	for _, kind := range shape.Kinds {
		for _, e := range s.Bucket(kind) {
			if e.Kind != kind {
				return fmt.Errorf("%w: %s element %s in %s bucket", ErrKindMismatch, e.Kind, e.ID, kind)
			}
		}
	}
	return nil
}

// EncodePayload serializes a snapshot with every bucket present.
func EncodePayload(s Snapshot) (string, error) {
	out := s
	out.Line = nonNil(s.Line)
	out.Box = nonNil(s.Box)
	out.Pencil = nonNil(s.Pencil)
	out.Text = nonNil(s.Text)
	if out.Hand == nil {
		t := IdentityTransform()
		out.Hand = &t
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// DecodePayload parses a received payload. The clear sentinel decodes to an
// empty snapshot with cleared set.
func DecodePayload(payload string) (snap Snapshot, cleared bool, err error) {
	if payload == ClearSentinel {
		return Snapshot{}, true, nil
	}

	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, false, err
	}
	return snap, false, nil
}

func nonNil(elements []Element) []Element {
	if elements == nil {
		return []Element{}
	}
	return elements
}

type wireElement struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Shape json.RawMessage `json:"shape"`
}

// MarshalJSON writes {id, type, shape} where shape is the kind's geometry
// array: [sx, sy, ex, ey] for line and box, [[x, y], ...] for pencil and
// [sx, sy, ex, ey, text] for text.
func (e Element) MarshalJSON() ([]byte, error) {
	var geometry any
	g := e.Geometry
	switch e.Kind {
	case shape.KindLine, shape.KindBox:
		geometry = []float64{g.Start.X, g.Start.Y, g.End.X, g.End.Y}
	case shape.KindPencil:
		points := make([][2]float64, len(g.Points))
		for i, p := range g.Points {
			points[i] = [2]float64{p.X, p.Y}
		}
		geometry = points
	case shape.KindText:
		geometry = []any{g.Start.X, g.Start.Y, g.End.X, g.End.Y, g.Text}
	default:
		return nil, fmt.Errorf("marshal element %s: unknown kind %q", e.ID, e.Kind)
	}

	raw, err := json.Marshal(geometry)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireElement{ID: e.ID, Type: string(e.Kind), Shape: raw})
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var w wireElement
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	kind, err := shape.ParseKind(w.Type)
	if err != nil {
		return fmt.Errorf("element %s: %w", w.ID, err)
	}

	var g Geometry
	switch kind {
	case shape.KindLine, shape.KindBox:
		var coords []float64
		if err := json.Unmarshal(w.Shape, &coords); err != nil || len(coords) != 4 {
			return fmt.Errorf("%w: %s element %s wants [sx, sy, ex, ey]", ErrInvalidGeometry, kind, w.ID)
		}
		g.Start = geom.V2(coords[0], coords[1])
		g.End = geom.V2(coords[2], coords[3])

	case shape.KindPencil:
		var points [][]float64
		if err := json.Unmarshal(w.Shape, &points); err != nil {
			return fmt.Errorf("%w: pencil element %s wants [[x, y], ...]", ErrInvalidGeometry, w.ID)
		}
		g.Points = make([]geom.Vec2, len(points))
		for i, p := range points {
			if len(p) != 2 {
				return fmt.Errorf("%w: pencil element %s point %d has %d coordinates", ErrInvalidGeometry, w.ID, i, len(p))
			}
			g.Points[i] = geom.V2(p[0], p[1])
		}

	case shape.KindText:
		var parts []json.RawMessage
		if err := json.Unmarshal(w.Shape, &parts); err != nil || len(parts) != 5 {
			return fmt.Errorf("%w: text element %s wants [sx, sy, ex, ey, text]", ErrInvalidGeometry, w.ID)
		}
		var coords [4]float64
		for i := range coords {
			if err := json.Unmarshal(parts[i], &coords[i]); err != nil {
				return fmt.Errorf("%w: text element %s coordinate %d: %v", ErrInvalidGeometry, w.ID, i, err)
			}
		}
		if err := json.Unmarshal(parts[4], &g.Text); err != nil {
			return fmt.Errorf("%w: text element %s payload: %v", ErrInvalidGeometry, w.ID, err)
		}
		g.Start = geom.V2(coords[0], coords[1])
		g.End = geom.V2(coords[2], coords[3])
	}

	*e = Element{ID: w.ID, Kind: kind, Geometry: g}
	return nil
}
