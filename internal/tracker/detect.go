package tracker

import (
	"math"
	"sort"

	"videolab/internal/frame"
)

// Point is a tracked feature position in frame coordinates. IDs are assigned
// at detection time and survive propagation, so the same ID in two frames
// refers to the same physical feature.
type Point struct {
	ID int
	X  float64
	Y  float64
}

// DetectParams tunes corner detection.
type DetectParams struct {
	// MaxCorners caps the number of returned points.
	MaxCorners int
	// QualityLevel rejects corners weaker than this fraction of the
	// strongest response, in (0, 1].
	QualityLevel float64
	// MinDistance is the minimum spacing between returned corners in pixels.
	MinDistance float64
	// BlockSize is the side of the gradient integration window, odd.
	BlockSize int
}

// DefaultDetectParams mirrors the tracking defaults from the config package.
func DefaultDetectParams() DetectParams {
	return DetectParams{
		MaxCorners:   100,
		QualityLevel: 0.3,
		MinDistance:  7,
		BlockSize:    7,
	}
}

func (p DetectParams) normalized() DetectParams {
	def := DefaultDetectParams()
	if p.MaxCorners <= 0 {
		p.MaxCorners = def.MaxCorners
	}
	if p.QualityLevel <= 0 || p.QualityLevel > 1 {
		p.QualityLevel = def.QualityLevel
	}
	if p.MinDistance < 0 {
		p.MinDistance = def.MinDistance
	}
	if p.BlockSize < 1 {
		p.BlockSize = def.BlockSize
	}
	if p.BlockSize%2 == 0 {
		p.BlockSize++
	}
	return p
}

// Detect finds strong corners in f, scored by the smaller eigenvalue of the
// windowed structure tensor. Corners are returned strongest first with
// sequential IDs starting at zero. A frame without two-directional texture
// anywhere yields no points.
func Detect(f *frame.Frame, params DetectParams) []Point {
	params = params.normalized()
	w, h := f.Width, f.Height
	if w < 3 || h < 3 {
		return nil
	}

	gray := f.GrayF32()
	ix, iy := sobelGradients(gray, w, h)

	ixx := make([]float32, w*h)
	iyy := make([]float32, w*h)
	ixy := make([]float32, w*h)
	for i := range ix {
		ixx[i] = ix[i] * ix[i]
		iyy[i] = iy[i] * iy[i]
		ixy[i] = ix[i] * iy[i]
	}
	radius := params.BlockSize / 2
	boxSum(ixx, w, h, radius)
	boxSum(iyy, w, h, radius)
	boxSum(ixy, w, h, radius)

	resp := make([]float32, w*h)
	var maxResp float32
	for i := range resp {
		a, c, b := ixx[i], iyy[i], ixy[i]
		// Smaller eigenvalue of [[a, b], [b, c]].
		half := (a + c) / 2
		d := float32(math.Sqrt(float64((a-c)*(a-c)/4 + b*b)))
		r := half - d
		resp[i] = r
		if r > maxResp {
			maxResp = r
		}
	}
	if maxResp <= 0 {
		return nil
	}
	threshold := float32(params.QualityLevel) * maxResp

	// Candidates are local maxima over their 8-neighborhood at or above the
	// quality gate. The one-pixel frame border never produces candidates.
	type candidate struct {
		x, y int
		r    float32
	}
	var cands []candidate
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			r := resp[y*w+x]
			if r < threshold {
				continue
			}
			if !isLocalMax(resp, w, x, y) {
				continue
			}
			cands = append(cands, candidate{x: x, y: y, r: r})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].r != cands[j].r {
			return cands[i].r > cands[j].r
		}
		if cands[i].y != cands[j].y {
			return cands[i].y < cands[j].y
		}
		return cands[i].x < cands[j].x
	})

	minDistSq := params.MinDistance * params.MinDistance
	pts := make([]Point, 0, params.MaxCorners)
	for _, c := range cands {
		keep := true
		for _, p := range pts {
			dx := float64(c.x) - p.X
			dy := float64(c.y) - p.Y
			if dx*dx+dy*dy < minDistSq {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		pts = append(pts, Point{ID: len(pts), X: float64(c.x), Y: float64(c.y)})
		if len(pts) >= params.MaxCorners {
			break
		}
	}
	return pts
}

// isLocalMax reports whether (x, y) is at least as strong as all eight
// neighbors. Ties are kept; min-distance suppression resolves plateaus.
func isLocalMax(resp []float32, w, x, y int) bool {
	r := resp[y*w+x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if resp[(y+dy)*w+(x+dx)] > r {
				return false
			}
		}
	}
	return true
}

// sobelGradients computes 3x3 Sobel derivatives of a grayscale plane with
// mirrored borders.
func sobelGradients(gray []float32, w, h int) (ix, iy []float32) {
	ix = make([]float32, w*h)
	iy = make([]float32, w*h)
	for y := 0; y < h; y++ {
		ym := reflect101(y-1, h)
		yp := reflect101(y+1, h)
		for x := 0; x < w; x++ {
			xm := reflect101(x-1, w)
			xp := reflect101(x+1, w)

			tl := gray[ym*w+xm]
			tc := gray[ym*w+x]
			tr := gray[ym*w+xp]
			ml := gray[y*w+xm]
			mr := gray[y*w+xp]
			bl := gray[yp*w+xm]
			bc := gray[yp*w+x]
			br := gray[yp*w+xp]

			ix[y*w+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			iy[y*w+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return ix, iy
}

// reflect101 mirrors an out-of-range index without repeating the edge
// sample, so -1 maps to 1 and n maps to n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// boxSum replaces each element with the sum over the (2*radius+1)^2 window
// centered on it, truncating the window at the border.
func boxSum(v []float32, w, h, radius int) {
	if radius < 1 {
		return
	}
	tmp := make([]float32, len(v))
	for y := 0; y < h; y++ {
		row := v[y*w : (y+1)*w]
		out := tmp[y*w : (y+1)*w]
		var sum float32
		for x := 0; x <= radius && x < w; x++ {
			sum += row[x]
		}
		out[0] = sum
		for x := 1; x < w; x++ {
			if x+radius < w {
				sum += row[x+radius]
			}
			if x-radius-1 >= 0 {
				sum -= row[x-radius-1]
			}
			out[x] = sum
		}
	}
	for x := 0; x < w; x++ {
		var sum float32
		for y := 0; y <= radius && y < h; y++ {
			sum += tmp[y*w+x]
		}
		v[x] = sum
		for y := 1; y < h; y++ {
			if y+radius < h {
				sum += tmp[(y+radius)*w+x]
			}
			if y-radius-1 >= 0 {
				sum -= tmp[(y-radius-1)*w+x]
			}
			v[y*w+x] = sum
		}
	}
}
