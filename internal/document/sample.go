package document

import (
	"github.com/google/uuid"

	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
)

// NewSampleSnapshot returns a small board with one element of every kind,
// used by the wasm bridge demo and the export preview.
func NewSampleSnapshot() Snapshot {
	hand := IdentityTransform()

	return Snapshot{
		Line: []Element{{
			ID:       uuid.NewString(),
			Kind:     shape.KindLine,
			Geometry: Geometry{Start: geom.V2(80, 80), End: geom.V2(320, 140)},
		}},
		Box: []Element{{
			ID:       uuid.NewString(),
			Kind:     shape.KindBox,
			Geometry: Geometry{Start: geom.V2(400, 60), End: geom.V2(620, 220)},
		}},
		Pencil: []Element{{
			ID:   uuid.NewString(),
			Kind: shape.KindPencil,
			Geometry: Geometry{Points: []geom.Vec2{
				geom.V2(100, 400), geom.V2(160, 340), geom.V2(240, 420), geom.V2(320, 360),
			}},
		}},
		Text: []Element{{
			ID:       uuid.NewString(),
			Kind:     shape.KindText,
			Geometry: Geometry{Start: geom.V2(420, 400), End: geom.V2(560, 378), Text: "Whiteboard"},
		}},
		Hand: &hand,
	}
}
