package effects

import (
	"videolab/internal/frame"
)

// EdgeDetect is a two-threshold edge operator. The frame is converted to
// grayscale, gradients are estimated with 3x3 Sobel kernels, thinned by
// non-maximum suppression along the gradient direction, and linked by
// hysteresis: pixels at or above the high threshold seed edges, pixels between
// the thresholds survive only when connected to a seed. The binary edge map is
// re-expanded to three channels so downstream effects keep working, at the
// cost of destroying color information.
type EdgeDetect struct {
	low  float32
	high float32
}

// NewEdgeDetect builds the effect. Thresholds are clamped to [0, 255]; the
// smaller of the two always acts as the low threshold.
func NewEdgeDetect(low, high int) *EdgeDetect {
	low = clampInt(low, 0, 255)
	high = clampInt(high, 0, 255)
	if low > high {
		low, high = high, low
	}
	return &EdgeDetect{low: float32(low), high: float32(high)}
}

func (e *EdgeDetect) Kind() Kind { return KindEdgeDetect }

// Edge classification during hysteresis.
const (
	edgeNone byte = iota
	edgeWeak
	edgeStrong
)

func (e *EdgeDetect) Apply(f *frame.Frame) *frame.Frame {
	w, h := f.Width, f.Height
	if w < 3 || h < 3 {
		for i := range f.Pix {
			f.Pix[i] = 0
		}
		return f
	}

	gray := f.GrayF32()
	gx := make([]float32, w*h)
	gy := make([]float32, w*h)
	for y := 0; y < h; y++ {
		ym := reflect101(y-1, h) * w
		yc := y * w
		yp := reflect101(y+1, h) * w
		for x := 0; x < w; x++ {
			xm := reflect101(x-1, w)
			xp := reflect101(x+1, w)
			tl, tc, tr := gray[ym+xm], gray[ym+x], gray[ym+xp]
			ml, mr := gray[yc+xm], gray[yc+xp]
			bl, bc, br := gray[yp+xm], gray[yp+x], gray[yp+xp]
			gx[yc+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy[yc+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}

	mag := make([]float32, w*h)
	for i := range mag {
		mag[i] = absf(gx[i]) + absf(gy[i])
	}

	// Non-maximum suppression with the gradient direction quantized into
	// four sectors. Border pixels are not considered edge candidates.
	const (
		tanPi8  = 0.41421356 // tan(22.5 deg)
		tan3Pi8 = 2.41421356 // tan(67.5 deg)
	)
	class := make([]byte, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m < e.low {
				continue
			}
			dx, dy := gx[i], gy[i]
			adx, ady := absf(dx), absf(dy)

			var m1, m2 float32
			switch {
			case ady <= adx*tanPi8:
				m1, m2 = mag[i-1], mag[i+1]
			case ady >= adx*tan3Pi8:
				m1, m2 = mag[i-w], mag[i+w]
			case (dx > 0) == (dy > 0):
				m1, m2 = mag[i-w-1], mag[i+w+1]
			default:
				m1, m2 = mag[i-w+1], mag[i+w-1]
			}
			if m < m1 || m < m2 {
				continue
			}
			if m >= e.high {
				class[i] = edgeStrong
			} else {
				class[i] = edgeWeak
			}
		}
	}

	// Hysteresis: flood from strong pixels across 8-connected weak pixels.
	stack := make([]int, 0, 256)
	for i, c := range class {
		if c == edgeStrong {
			stack = append(stack, i)
		}
	}
	neighbors := [8]int{-w - 1, -w, -w + 1, -1, 1, w - 1, w, w + 1}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range neighbors {
			n := i + d
			if n < 0 || n >= len(class) {
				continue
			}
			if class[n] == edgeWeak {
				class[n] = edgeStrong
				stack = append(stack, n)
			}
		}
	}

	for i, c := range class {
		p := i * frame.BytesPerPixel
		var v byte
		if c == edgeStrong {
			v = 255
		}
		f.Pix[p] = v
		f.Pix[p+1] = v
		f.Pix[p+2] = v
	}
	return f
}
