package effects

import (
	"videolab/internal/frame"
)

// Kind identifies an effect type. The values double as the wire names used in
// project files.
type Kind string

const (
	KindEdgeDetect   Kind = "canny"
	KindGaussianBlur Kind = "gaussian_blur"
	KindColorAdjust  Kind = "color_adjust"
	KindTextOverlay  Kind = "text"
)

var allKinds = []Kind{KindEdgeDetect, KindGaussianBlur, KindColorAdjust, KindTextOverlay}

// AllKinds returns the ordered list of known effect kinds.
func AllKinds() []Kind {
	cp := make([]Kind, len(allKinds))
	copy(cp, allKinds)
	return cp
}

// ParseKind converts a wire name into a known Kind.
func ParseKind(value string) (Kind, bool) {
	for _, kind := range allKinds {
		if Kind(value) == kind {
			return kind, true
		}
	}
	return "", false
}

// Effect transforms one frame. Implementations are immutable once constructed:
// all parameters are validated and frozen by the constructor, so Apply cannot
// fail. Apply may mutate the input in place and must return the frame that
// carries the result (which may or may not be the input pointer). Callers that
// need to preserve the input pass a clone.
type Effect interface {
	Kind() Kind
	Apply(f *frame.Frame) *frame.Frame
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// reflect101 maps an out-of-range index into [0, n) by mirroring about the
// edge pixels without repeating them (…cba|abcde|edc…).
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

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
