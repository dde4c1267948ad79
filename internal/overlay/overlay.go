// Package overlay places a scaled image over frames with uniform opacity.
//
// The compositor follows a strict no-op policy: when the destination
// rectangle falls outside the frame in any direction the frame is returned
// untouched. A rectangle that exactly touches an edge (x+w == frame width) is
// in bounds. The overlay's own alpha channel is ignored; blending uses the
// single opacity value across all pixels.
package overlay

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"videolab/internal/frame"
	"videolab/internal/services"
)

// Params describe overlay placement and blending.
type Params struct {
	X       int
	Y       int
	Opacity float64
	Scale   float64
}

// DefaultParams returns the placement used when a project does not override it.
func DefaultParams() Params {
	return Params{X: 10, Y: 10, Opacity: 1.0, Scale: 1.0}
}

// Validate rejects out-of-domain placement values.
func (p Params) Validate() error {
	if p.Opacity < 0 || p.Opacity > 1 {
		return services.Wrap(services.ErrValidation, "overlay", "params",
			fmt.Sprintf("opacity must be within [0, 1], got %g", p.Opacity), nil)
	}
	if p.Scale <= 0 {
		return services.Wrap(services.ErrValidation, "overlay", "params",
			fmt.Sprintf("scale must be positive, got %g", p.Scale), nil)
	}
	return nil
}

// Scaled returns the overlay resized by scale with bilinear filtering.
// Dimensions round to the nearest pixel and never drop below 1.
func Scaled(img image.Image, scale float64) *image.NRGBA {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil
	}
	if scale == 1.0 {
		return imaging.Clone(img)
	}
	w := int(math.Round(float64(bounds.Dx()) * scale))
	h := int(math.Round(float64(bounds.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}

// Composite blends ov over dst at (x, y) with the given opacity, mutating dst.
// It reports whether anything was drawn; destination rectangles that exceed
// the frame bounds leave dst byte-identical and return false.
func Composite(dst *frame.Frame, ov *image.NRGBA, x, y int, opacity float64) bool {
	if dst == nil || ov == nil {
		return false
	}
	ow, oh := ov.Bounds().Dx(), ov.Bounds().Dy()
	if ow == 0 || oh == 0 {
		return false
	}
	if x < 0 || y < 0 || x+ow > dst.Width || y+oh > dst.Height {
		return false
	}
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}

	for oy := 0; oy < oh; oy++ {
		di := dst.Offset(x, y+oy)
		si := oy * ov.Stride
		for ox := 0; ox < ow; ox++ {
			for c := 0; c < 3; c++ {
				base := float64(dst.Pix[di+c])
				top := float64(ov.Pix[si+c])
				dst.Pix[di+c] = byte(math.Round(base*(1-opacity) + top*opacity))
			}
			di += frame.BytesPerPixel
			si += 4
		}
	}
	return true
}
