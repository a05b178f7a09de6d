package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
)

const (
	pageMargin = 10.0 // mm
	lineWidth  = 0.4  // mm
	mmPerPoint = 25.4 / 72
)

// RenderPDF draws every element of snap onto one A4 landscape page, scaled
// to fit inside the margins. The canvas pan and zoom are ignored.
func RenderPDF(w io.Writer, snap document.Snapshot) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle("Whiteboard", true)
	p.AddPage()
	p.SetDrawColor(0, 0, 0)
	p.SetTextColor(0, 0, 0)
	p.SetLineWidth(lineWidth)

	pageW, pageH := p.GetPageSize()
	view := fitView(Bounds(snap), pageW, pageH)

	for _, e := range snap.Line {
		a, b := view.Apply(e.Geometry.Start), view.Apply(e.Geometry.End)
		p.Line(a.X, a.Y, b.X, b.Y)
	}

	for _, e := range snap.Box {
		r := geom.RectFromPoints(view.Apply(e.Geometry.Start), view.Apply(e.Geometry.End))
		p.Rect(r.X, r.Y, r.Width, r.Height, "D")
	}

	for _, e := range snap.Pencil {
		pts := e.Geometry.Points
		for i := 1; i < len(pts); i++ {
			a, b := view.Apply(pts[i-1]), view.Apply(pts[i])
			p.Line(a.X, a.Y, b.X, b.Y)
		}
	}

	scale := view[0]
	for _, e := range snap.Text {
		// Text starts at its baseline origin
		size := shape.TextSize * scale / mmPerPoint
		p.SetFont("Helvetica", "", size)
		origin := view.Apply(e.Geometry.Start)
		p.Text(origin.X, origin.Y, p.UnicodeTranslatorFromDescriptor("")(e.Geometry.Text))
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Bounds is the world-space extent of every element in snap. Text extends
// from its start point by its measured size.
func Bounds(snap document.Snapshot) geom.Rect {
	var points []geom.Vec2
	for _, kind := range shape.Kinds {
		for _, e := range snap.Bucket(kind) {
			s := e.Shape()
			points = append(points, s.Vertices()...)
		}
	}
	return geom.RectFromPoints(points...)
}

// fitView maps world bounds into the printable area of a page, keeping the
// aspect ratio and centering the drawing.
func fitView(bounds geom.Rect, pageW, pageH float64) geom.Matrix2D {
	availW := pageW - 2*pageMargin
	availH := pageH - 2*pageMargin

	scale := 1.0
	if bounds.Width > 0 || bounds.Height > 0 {
		scale = min(safeRatio(availW, bounds.Width), safeRatio(availH, bounds.Height))
	}

	center := bounds.Center()
	offset := geom.V2(pageW/2-center.X*scale, pageH/2-center.Y*scale)
	return geom.ViewMatrix(offset, scale)
}

func safeRatio(avail, extent float64) float64 {
	if extent <= 0 {
		return avail
	}
	return avail / extent
}
