package shape

import "github.com/inamate/whiteboard/internal/geom"

const (
	// GlideFactor is the fraction of the remaining distance covered per step.
	GlideFactor = 0.1
	// GlideTolerance is the per-axis distance at which a glide snaps home.
	GlideTolerance = 1.0
	// MaxGlideSteps bounds a single glide; the shape snaps to its
	// destination once exceeded.
	MaxGlideSteps = 256
)

// glide is an in-flight move: every vertex eases toward its own destination
// one step per render tick.
type glide struct {
	start, end geom.Vec2
	points     []geom.Vec2
	steps      int
}

// MoveTo starts gliding the shape so that its midpoint (or the center of a
// stroke's extent) ends at (x, y). It has no effect unless the shape is
// selected. A new target replaces any glide already in flight.
func (s *Shape) MoveTo(x, y float64) {
	if !s.Selected {
		return
	}

	delta := geom.V2(x, y).Sub(s.anchor())
	g := &glide{start: s.Start, end: s.End}
	if s.Kind != KindPencil {
		g.start = s.Start.Add(delta)
		g.end = s.End.Add(delta)
	} else {
		g.points = make([]geom.Vec2, len(s.Points))
		for i, p := range s.Points {
			g.points[i] = p.Add(delta)
		}
	}
	s.glide = g
}

// Moving reports whether a glide is in flight.
func (s *Shape) Moving() bool {
	return s.glide != nil
}

// Step advances an in-flight glide by one interpolation step and reports
// whether the shape is still moving afterwards.
func (s *Shape) Step() bool {
	g := s.glide
	if g == nil {
		return false
	}

	g.steps++
	s.Start = s.Start.Lerp(g.start, GlideFactor)
	s.End = s.End.Lerp(g.end, GlideFactor)
	for i := range s.Points {
		if i < len(g.points) {
			s.Points[i] = s.Points[i].Lerp(g.points[i], GlideFactor)
		}
	}

	if g.arrived(s) || g.steps >= MaxGlideSteps {
		s.Start, s.End = g.start, g.end
		if g.points != nil {
			copy(s.Points, g.points)
		}
		s.glide = nil
	}

	s.Update()
	return s.glide != nil
}

// Settle runs the glide to completion.
func (s *Shape) Settle() {
	for s.Step() {
	}
}

func (g *glide) arrived(s *Shape) bool {
	lead, dest := s.Start, g.start
	if s.Kind == KindPencil && len(s.Points) > 0 && len(g.points) > 0 {
		lead, dest = s.Points[0], g.points[0]
	}
	return lead.Approx(dest, GlideTolerance)
}
