package effects

import (
	"fmt"
	"math"

	"videolab/internal/frame"
	"videolab/internal/services"
)

// ColorAdjust applies the per-pixel affine transform
// out = clamp(in*contrast + brightness, 0, 255) to every channel.
type ColorAdjust struct {
	contrast   float64
	brightness float64
	lut        [256]byte
}

// NewColorAdjust builds the effect. Contrast must be within [0, 3] and
// brightness within [-100, 100].
func NewColorAdjust(contrast, brightness float64) (*ColorAdjust, error) {
	if contrast < 0 || contrast > 3 {
		return nil, services.Wrap(services.ErrValidation, "effects", "color adjust",
			fmt.Sprintf("contrast must be within [0, 3], got %g", contrast), nil)
	}
	if brightness < -100 || brightness > 100 {
		return nil, services.Wrap(services.ErrValidation, "effects", "color adjust",
			fmt.Sprintf("brightness must be within [-100, 100], got %g", brightness), nil)
	}

	c := &ColorAdjust{contrast: contrast, brightness: brightness}
	for v := 0; v < 256; v++ {
		out := math.Round(float64(v)*contrast + brightness)
		if out < 0 {
			out = 0
		} else if out > 255 {
			out = 255
		}
		c.lut[v] = byte(out)
	}
	return c, nil
}

func (c *ColorAdjust) Kind() Kind { return KindColorAdjust }

func (c *ColorAdjust) Apply(f *frame.Frame) *frame.Frame {
	for i, v := range f.Pix {
		f.Pix[i] = c.lut[v]
	}
	return f
}
