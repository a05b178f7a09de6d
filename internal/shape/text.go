package shape

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/inamate/whiteboard/internal/geom"
)

// TextSize is the font size, in canvas units, that text elements are set in.
const TextSize = 30

var (
	faceOnce sync.Once
	faceMu   sync.Mutex
	face     font.Face
)

func textFace() font.Face {
	faceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			panic("shape: parse embedded font: " + err.Error())
		}
		face, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    TextSize,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			panic("shape: create font face: " + err.Error())
		}
	})
	return face
}

// MeasureText returns the advance width and ascent of s when set at TextSize.
// The empty string measures zero wide but keeps the line's ascent.
func MeasureText(s string) geom.Vec2 {
	faceMu.Lock()
	defer faceMu.Unlock()

	f := textFace()
	advance := font.MeasureString(f, s)
	return geom.V2(fromFixed(advance), fromFixed(f.Metrics().Ascent))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
