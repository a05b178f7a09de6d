package shape

import (
	cgeom "github.com/ctessum/geom"

	"github.com/inamate/whiteboard/internal/geom"
)

// PencilTolerance is the distance under which intermediate stroke samples
// are dropped when a freehand stroke is committed.
const PencilTolerance = 5.0

// Simplifier reduces a polyline to fewer points within tolerance. It must keep
// the first and last points exactly.
type Simplifier func(points []geom.Vec2, tolerance float64) []geom.Vec2

// SimplifyPolyline is the default Simplifier, backed by the line
// simplification in github.com/ctessum/geom.
func SimplifyPolyline(points []geom.Vec2, tolerance float64) []geom.Vec2 {
	if len(points) < 3 {
		return append([]geom.Vec2(nil), points...)
	}

	line := make(cgeom.LineString, len(points))
	for i, p := range points {
		line[i] = cgeom.Point{X: p.X, Y: p.Y}
	}

	simplified, ok := line.Simplify(tolerance).(cgeom.LineString)
	if !ok || len(simplified) < 2 {
		return []geom.Vec2{points[0], points[len(points)-1]}
	}

	out := make([]geom.Vec2, len(simplified))
	for i, p := range simplified {
		out[i] = geom.V2(p.X, p.Y)
	}
	return out
}

// Simplify replaces a stroke's samples with their simplification.
func (s *Shape) Simplify(simplify Simplifier, tolerance float64) {
	if simplify == nil {
		panic("shape: nil simplifier")
	}
	if s.Kind != KindPencil {
		return
	}
	s.Points = simplify(s.Points, tolerance)
	s.Update()
}
