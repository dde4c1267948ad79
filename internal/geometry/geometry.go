// Package geometry implements frame cropping and aspect-ratio rectangle math.
package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"videolab/internal/frame"
	"videolab/internal/services"
)

// ErrInvalidCropRegion reports a crop rectangle that does not fit the frame.
// Out-of-range crops are rejected rather than clamped so a stale region from
// a different source geometry cannot silently produce a truncated frame.
var ErrInvalidCropRegion = fmt.Errorf("%w: invalid crop region", services.ErrValidation)

// CropParams describe the crop rectangle and whether it applies.
type CropParams struct {
	X       int
	Y       int
	W       int
	H       int
	Enabled bool
}

// DefaultCropParams returns the region used when a project does not override it.
func DefaultCropParams() CropParams {
	return CropParams{X: 0, Y: 0, W: 640, H: 480, Enabled: false}
}

// ValidateFor checks the rectangle against concrete frame dimensions.
func (p CropParams) ValidateFor(frameW, frameH int) error {
	if p.W <= 0 || p.H <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidCropRegion, p.W, p.H)
	}
	if p.X < 0 || p.Y < 0 {
		return fmt.Errorf("%w: origin (%d,%d) must be non-negative", ErrInvalidCropRegion, p.X, p.Y)
	}
	if p.X+p.W > frameW || p.Y+p.H > frameH {
		return fmt.Errorf("%w: rectangle (%d,%d,%d,%d) exceeds frame %dx%d",
			ErrInvalidCropRegion, p.X, p.Y, p.W, p.H, frameW, frameH)
	}
	return nil
}

// Crop returns the rectangular sub-region of f as a new frame, preserving the
// source index. The rectangle must lie fully inside the frame; a rectangle
// touching an edge (x+w == frame width) is valid.
func Crop(f *frame.Frame, x, y, w, h int) (*frame.Frame, error) {
	params := CropParams{X: x, Y: y, W: w, H: h, Enabled: true}
	if err := params.ValidateFor(f.Width, f.Height); err != nil {
		return nil, err
	}

	out := frame.New(w, h)
	out.Index = f.Index
	rowBytes := w * frame.BytesPerPixel
	for row := 0; row < h; row++ {
		src := f.Offset(x, y+row)
		dst := row * rowBytes
		copy(out.Pix[dst:dst+rowBytes], f.Pix[src:src+rowBytes])
	}
	return out, nil
}

// AspectRect computes the largest centered rectangle of the given aspect
// ratio that fits in a frame. When the frame is wider than the ratio the
// height is preserved and the width derived; otherwise the width is preserved
// and the height derived. Offsets center the rectangle with floor rounding.
func AspectRect(frameW, frameH, ratioW, ratioH int) (x, y, w, h int) {
	if frameW <= 0 || frameH <= 0 || ratioW <= 0 || ratioH <= 0 {
		return 0, 0, 0, 0
	}
	if frameW*ratioH > frameH*ratioW {
		h = frameH
		w = frameH * ratioW / ratioH
		x = (frameW - w) / 2
		y = 0
	} else {
		w = frameW
		h = frameW * ratioH / ratioW
		x = 0
		y = (frameH - h) / 2
	}
	return x, y, w, h
}

// ParseAspect parses a "W:H" ratio string such as "16:9".
func ParseAspect(value string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, services.Wrap(services.ErrValidation, "geometry", "parse aspect",
			fmt.Sprintf("ratio %q must look like 16:9", value), nil)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, services.Wrap(services.ErrValidation, "geometry", "parse aspect",
			fmt.Sprintf("ratio %q must have positive integer sides", value), nil)
	}
	return w, h, nil
}
