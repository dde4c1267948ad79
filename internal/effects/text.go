package effects

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"videolab/internal/frame"
	"videolab/internal/services"
)

// TextOverlay burns a white text string onto the frame. The anchor is the
// left end of the text baseline; glyphs extending past the frame edges are
// clipped. Size is the glyph height in pixels.
type TextOverlay struct {
	text string
	size int
	x    int
	y    int

	mask   *image.Alpha
	ascent int
}

// NewTextOverlay builds the effect. Size must be positive. Empty text yields
// a valid no-op effect.
func NewTextOverlay(text string, size, x, y int) (*TextOverlay, error) {
	if size <= 0 {
		return nil, services.Wrap(services.ErrValidation, "effects", "text overlay",
			fmt.Sprintf("text size must be positive, got %d", size), nil)
	}
	t := &TextOverlay{text: text, size: size, x: x, y: y}
	if strings.TrimSpace(text) != "" {
		t.mask, t.ascent = renderTextMask(text, size)
	}
	return t, nil
}

func (t *TextOverlay) Kind() Kind { return KindTextOverlay }

func (t *TextOverlay) Apply(f *frame.Frame) *frame.Frame {
	if t.mask == nil {
		return f
	}

	bounds := t.mask.Bounds()
	top := t.y - t.ascent
	for my := 0; my < bounds.Dy(); my++ {
		fy := top + my
		if fy < 0 || fy >= f.Height {
			continue
		}
		for mx := 0; mx < bounds.Dx(); mx++ {
			fx := t.x + mx
			if fx < 0 || fx >= f.Width {
				continue
			}
			a := uint32(t.mask.AlphaAt(mx, my).A)
			if a == 0 {
				continue
			}
			i := f.Offset(fx, fy)
			for c := 0; c < 3; c++ {
				v := uint32(f.Pix[i+c])
				f.Pix[i+c] = byte((v*(255-a) + 255*a + 127) / 255)
			}
		}
	}
	return f
}

// renderTextMask rasterizes text with the built-in bitmap face, then scales
// the coverage mask so the glyph height matches the requested pixel size.
// It returns the mask and the scaled ascent (baseline offset from mask top).
func renderTextMask(text string, size int) (*image.Alpha, int) {
	face := basicfont.Face7x13
	naturalHeight := face.Height
	naturalAscent := face.Ascent

	width := font.MeasureString(face, text).Ceil()
	if width <= 0 {
		return nil, 0
	}

	natural := image.NewAlpha(image.Rect(0, 0, width, naturalHeight))
	drawer := font.Drawer{
		Dst:  natural,
		Src:  image.NewUniform(color.Opaque),
		Face: face,
		Dot:  fixed.P(0, naturalAscent),
	}
	drawer.DrawString(text)

	if size == naturalHeight {
		return natural, naturalAscent
	}

	scaledW := (width*size + naturalHeight - 1) / naturalHeight
	if scaledW < 1 {
		scaledW = 1
	}
	scaled := image.NewAlpha(image.Rect(0, 0, scaledW, size))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), natural, natural.Bounds(), xdraw.Src, nil)

	ascent := (naturalAscent*size + naturalHeight/2) / naturalHeight
	return scaled, ascent
}
