package export

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
)

const (
	ThumbnailWidth  = 640
	ThumbnailHeight = 400
	MinThumbnailDim = 32
	MaxThumbnailDim = 4096

	pixelStroke = 2.0
)

var ErrThumbnailSize = errors.New("thumbnail size out of range")

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// RenderPNG rasterizes every element of snap onto a white width x height
// image, scaled to fit like RenderPDF.
func RenderPNG(w io.Writer, snap document.Snapshot, width, height int) error {
	if min(width, height) < MinThumbnailDim || max(width, height) > MaxThumbnailDim {
		return fmt.Errorf("%w: %dx%d", ErrThumbnailSize, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	view := fitView(Bounds(snap), float64(width), float64(height))
	c := &canvas{img: img, z: vector.NewRasterizer(width, height)}

	for _, e := range snap.Line {
		c.segment(view.Apply(e.Geometry.Start), view.Apply(e.Geometry.End))
	}

	for _, e := range snap.Box {
		corners := geom.RectFromPoints(view.Apply(e.Geometry.Start), view.Apply(e.Geometry.End)).Vertices()
		for i := range corners {
			c.segment(corners[i], corners[(i+1)%len(corners)])
		}
	}

	for _, e := range snap.Pencil {
		pts := e.Geometry.Points
		for i := 1; i < len(pts); i++ {
			c.segment(view.Apply(pts[i-1]), view.Apply(pts[i]))
		}
	}

	if len(snap.Text) > 0 {
		if err := c.text(snap.Text, view); err != nil {
			return err
		}
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

type canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// segment strokes a to b as a filled quad pixelStroke wide. Each segment is
// composited on its own so overlapping strokes never cancel out.
func (c *canvas) segment(a, b geom.Vec2) {
	d := b.Sub(a)
	if d.Length() == 0 {
		d = geom.V2(1, 0)
	}
	n := geom.V2(-d.Y, d.X).Normalize().Scale(pixelStroke / 2)

	size := c.img.Bounds().Size()
	c.z.Reset(size.X, size.Y)
	c.z.MoveTo(float32(a.X+n.X), float32(a.Y+n.Y))
	c.z.LineTo(float32(b.X+n.X), float32(b.Y+n.Y))
	c.z.LineTo(float32(b.X-n.X), float32(b.Y-n.Y))
	c.z.LineTo(float32(a.X-n.X), float32(a.Y-n.Y))
	c.z.ClosePath()
	c.z.Draw(c.img, c.img.Bounds(), image.Black, image.Point{})
}

func (c *canvas) text(elements []document.Element, view geom.Matrix2D) error {
	f, err := goRegular()
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	size := shape.TextSize * view[0]
	if size < 1 {
		size = 1
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{Dst: c.img, Src: image.Black, Face: face}
	for _, e := range elements {
		origin := view.Apply(e.Geometry.Start)
		d.Dot = fixed.Point26_6{X: toFixed(origin.X), Y: toFixed(origin.Y)}
		d.DrawString(e.Geometry.Text)
	}
	return nil
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
