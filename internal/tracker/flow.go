package tracker

import (
	"math"

	"videolab/internal/frame"
	"videolab/internal/services"
)

// FlowParams tunes pyramidal Lucas-Kanade propagation.
type FlowParams struct {
	// Window is the side of the integration window in pixels, odd.
	Window int
	// Levels is the number of pyramid levels above full resolution.
	Levels int
	// Iterations bounds the refinement steps per level.
	Iterations int
	// Epsilon stops iterating once the update step shrinks below it.
	Epsilon float64
}

// DefaultFlowParams mirrors the tracking defaults from the config package.
func DefaultFlowParams() FlowParams {
	return FlowParams{Window: 15, Levels: 2, Iterations: 10, Epsilon: 0.03}
}

func (p FlowParams) normalized() FlowParams {
	def := DefaultFlowParams()
	if p.Window < 3 {
		p.Window = def.Window
	}
	if p.Window%2 == 0 {
		p.Window++
	}
	if p.Levels < 0 {
		p.Levels = def.Levels
	}
	if p.Iterations < 1 {
		p.Iterations = def.Iterations
	}
	if p.Epsilon <= 0 {
		p.Epsilon = def.Epsilon
	}
	return p
}

// Propagate estimates where pts moved between prev and next using pyramidal
// Lucas-Kanade optical flow. Points that end up outside the frame or whose
// neighborhood in prev carries no usable gradient are dropped; survivors keep
// their IDs. Both frames must share dimensions.
func Propagate(prev, next *frame.Frame, pts []Point, params FlowParams) ([]Point, error) {
	if prev == nil || next == nil {
		return nil, services.Wrap(services.ErrValidation, "tracker", "propagate", "both frames are required", nil)
	}
	if prev.Width != next.Width || prev.Height != next.Height {
		return nil, services.Wrap(services.ErrValidation, "tracker", "propagate", "frame dimensions differ", nil)
	}
	if len(pts) == 0 {
		return nil, nil
	}
	params = params.normalized()

	prevPyr := buildPyramid(prev, params.Levels)
	nextPyr := buildPyramid(next, params.Levels)

	out := make([]Point, 0, len(pts))
	for _, pt := range pts {
		if nx, ny, ok := track(prevPyr, nextPyr, pt.X, pt.Y, params); ok {
			out = append(out, Point{ID: pt.ID, X: nx, Y: ny})
		}
	}
	return out, nil
}

// track follows one point through the pyramid, coarse to fine. The flow
// guess is doubled when stepping down a level, per Bouguet's scheme.
func track(prevPyr, nextPyr []*grayImage, x, y float64, params FlowParams) (float64, float64, bool) {
	levels := len(prevPyr)
	if len(nextPyr) < levels {
		levels = len(nextPyr)
	}
	radius := params.Window / 2
	n := params.Window * params.Window
	ixv := make([]float64, n)
	iyv := make([]float64, n)
	pv := make([]float32, n)

	var gx, gy float64
	for level := levels - 1; level >= 0; level-- {
		scale := 1.0 / float64(int(1)<<uint(level))
		px := x * scale
		py := y * scale
		prevImg := prevPyr[level]
		nextImg := nextPyr[level]

		// Gradient matrix over the window in prev; fixed for all
		// iterations at this level.
		var gxx, gxy, gyy float64
		i := 0
		for wy := -radius; wy <= radius; wy++ {
			for wx := -radius; wx <= radius; wx++ {
				sx := px + float64(wx)
				sy := py + float64(wy)
				dx := float64(prevImg.sample(sx+1, sy)-prevImg.sample(sx-1, sy)) / 2
				dy := float64(prevImg.sample(sx, sy+1)-prevImg.sample(sx, sy-1)) / 2
				ixv[i] = dx
				iyv[i] = dy
				pv[i] = prevImg.sample(sx, sy)
				gxx += dx * dx
				gxy += dx * dy
				gyy += dy * dy
				i++
			}
		}
		// Smaller eigenvalue of the gradient matrix, normalized by window
		// area. Windows without texture in both directions are untrackable.
		halfTrace := (gxx + gyy) / 2
		diff := math.Sqrt((gxx-gyy)*(gxx-gyy)/4 + gxy*gxy)
		if (halfTrace-diff)/float64(n) < 1e-4 {
			return 0, 0, false
		}
		det := gxx*gyy - gxy*gxy
		if det == 0 {
			return 0, 0, false
		}

		var vx, vy float64
		for iter := 0; iter < params.Iterations; iter++ {
			var bx, by float64
			i = 0
			for wy := -radius; wy <= radius; wy++ {
				for wx := -radius; wx <= radius; wx++ {
					sx := px + float64(wx)
					sy := py + float64(wy)
					d := float64(pv[i] - nextImg.sample(sx+gx+vx, sy+gy+vy))
					bx += d * ixv[i]
					by += d * iyv[i]
					i++
				}
			}
			dx := (gyy*bx - gxy*by) / det
			dy := (gxx*by - gxy*bx) / det
			vx += dx
			vy += dy
			if math.Hypot(dx, dy) < params.Epsilon {
				break
			}
		}

		if level > 0 {
			gx = 2 * (gx + vx)
			gy = 2 * (gy + vy)
		} else {
			gx += vx
			gy += vy
		}
	}

	nx := x + gx
	ny := y + gy
	full := nextPyr[0]
	if nx < 0 || ny < 0 || nx > float64(full.w-1) || ny > float64(full.h-1) {
		return 0, 0, false
	}
	return nx, ny, true
}

// grayImage is a float grayscale plane with replicated borders, so bilinear
// sampling is defined everywhere.
type grayImage struct {
	w, h int
	pix  []float32
}

func grayFromFrame(f *frame.Frame) *grayImage {
	return &grayImage{w: f.Width, h: f.Height, pix: f.GrayF32()}
}

func (g *grayImage) at(x, y int) float32 {
	if x < 0 {
		x = 0
	} else if x >= g.w {
		x = g.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.h {
		y = g.h - 1
	}
	return g.pix[y*g.w+x]
}

// sample reads a bilinearly interpolated value at a subpixel position.
func (g *grayImage) sample(x, y float64) float32 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := float32(x - float64(x0))
	fy := float32(y - float64(y0))

	v00 := g.at(x0, y0)
	v10 := g.at(x0+1, y0)
	v01 := g.at(x0, y0+1)
	v11 := g.at(x0+1, y0+1)

	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fy
}

// downsample halves both dimensions by averaging 2x2 blocks.
func (g *grayImage) downsample() *grayImage {
	w2, h2 := g.w/2, g.h/2
	out := &grayImage{w: w2, h: h2, pix: make([]float32, w2*h2)}
	for y := 0; y < h2; y++ {
		for x := 0; x < w2; x++ {
			sx, sy := x*2, y*2
			sum := g.pix[sy*g.w+sx] + g.pix[sy*g.w+sx+1] +
				g.pix[(sy+1)*g.w+sx] + g.pix[(sy+1)*g.w+sx+1]
			out.pix[y*w2+x] = sum / 4
		}
	}
	return out
}

// buildPyramid stops early once a level would be too small to hold an
// integration window.
func buildPyramid(f *frame.Frame, levels int) []*grayImage {
	pyr := []*grayImage{grayFromFrame(f)}
	for len(pyr) <= levels {
		top := pyr[len(pyr)-1]
		if top.w < 8 || top.h < 8 {
			break
		}
		pyr = append(pyr, top.downsample())
	}
	return pyr
}
