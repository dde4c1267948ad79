package effects

import (
	"fmt"
	"math"

	"videolab/internal/frame"
	"videolab/internal/services"
)

// GaussianBlur smooths the frame with a separable Gaussian kernel. Rows and
// columns are convolved independently per channel with mirrored borders.
type GaussianBlur struct {
	kernelSize int
	sigma      float64
	taps       []float32
}

// NewGaussianBlur builds the effect. Even kernel sizes are forced to the next
// odd value; a kernel below 1 is rejected. A non-positive sigma is derived
// from the kernel size the same way common imaging libraries do:
// 0.3*((size-1)*0.5 - 1) + 0.8.
func NewGaussianBlur(kernelSize int, sigma float64) (*GaussianBlur, error) {
	if kernelSize < 1 {
		return nil, services.Wrap(services.ErrValidation, "effects", "gaussian blur",
			fmt.Sprintf("kernel size must be >= 1, got %d", kernelSize), nil)
	}
	if kernelSize%2 == 0 {
		kernelSize++
	}
	if sigma <= 0 {
		sigma = 0.3*(float64(kernelSize-1)*0.5-1) + 0.8
	}
	return &GaussianBlur{
		kernelSize: kernelSize,
		sigma:      sigma,
		taps:       gaussianTaps(kernelSize, sigma),
	}, nil
}

// KernelSize reports the effective (odd) kernel size after coercion.
func (g *GaussianBlur) KernelSize() int { return g.kernelSize }

// Sigma reports the effective sigma after derivation.
func (g *GaussianBlur) Sigma() float64 { return g.sigma }

func (g *GaussianBlur) Kind() Kind { return KindGaussianBlur }

func (g *GaussianBlur) Apply(f *frame.Frame) *frame.Frame {
	if g.kernelSize == 1 || f.Width == 0 || f.Height == 0 {
		return f
	}

	w, h := f.Width, f.Height
	radius := g.kernelSize / 2
	stride := w * frame.BytesPerPixel

	// Horizontal pass into a float intermediate to avoid double rounding.
	tmp := make([]float32, len(f.Pix))
	for y := 0; y < h; y++ {
		row := y * stride
		for x := 0; x < w; x++ {
			var r, gch, b float32
			for t := -radius; t <= radius; t++ {
				sx := reflect101(x+t, w)
				p := row + sx*frame.BytesPerPixel
				k := g.taps[t+radius]
				r += k * float32(f.Pix[p])
				gch += k * float32(f.Pix[p+1])
				b += k * float32(f.Pix[p+2])
			}
			p := row + x*frame.BytesPerPixel
			tmp[p] = r
			tmp[p+1] = gch
			tmp[p+2] = b
		}
	}

	// Vertical pass back into the frame with rounding.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, gch, b float32
			for t := -radius; t <= radius; t++ {
				sy := reflect101(y+t, h)
				p := sy*stride + x*frame.BytesPerPixel
				k := g.taps[t+radius]
				r += k * tmp[p]
				gch += k * tmp[p+1]
				b += k * tmp[p+2]
			}
			p := y*stride + x*frame.BytesPerPixel
			f.Pix[p] = roundToByte(r)
			f.Pix[p+1] = roundToByte(gch)
			f.Pix[p+2] = roundToByte(b)
		}
	}
	return f
}

func gaussianTaps(size int, sigma float64) []float32 {
	radius := size / 2
	taps := make([]float32, size)
	var sum float64
	for i := 0; i < size; i++ {
		d := float64(i - radius)
		v := math.Exp(-(d * d) / (2 * sigma * sigma))
		taps[i] = float32(v)
		sum += v
	}
	for i := range taps {
		taps[i] = float32(float64(taps[i]) / sum)
	}
	return taps
}

func roundToByte(v float32) byte {
	r := math.Round(float64(v))
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return byte(r)
}
