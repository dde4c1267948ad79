package pipeline

import (
	"image"

	"videolab/internal/effects"
	"videolab/internal/frame"
	"videolab/internal/geometry"
	"videolab/internal/overlay"
)

// Snapshot is an immutable pipeline configuration bound to concrete parameter
// values: the ordered effect list, the pre-scaled overlay, and the crop
// rectangle. Apply is a pure function of the input frame; the same snapshot
// and input always produce byte-identical output.
//
// Snapshots are safe for concurrent use. Playback takes one snapshot per
// frame so parameter edits land between frames, never mid-frame; export takes
// one snapshot per run so every exported frame sees identical parameters.
type Snapshot struct {
	effectList []effects.Effect

	overlayImg     *image.NRGBA
	overlayX       int
	overlayY       int
	overlayOpacity float64

	crop geometry.CropParams
}

// NewSnapshot builds a snapshot from explicit parts. The overlay image is
// scaled once here rather than per frame; pass nil to composite nothing.
func NewSnapshot(effectList []effects.Effect, overlayImg image.Image, overlayParams overlay.Params, crop geometry.CropParams) *Snapshot {
	snap := &Snapshot{
		effectList: make([]effects.Effect, len(effectList)),
		crop:       crop,
	}
	copy(snap.effectList, effectList)
	if overlayImg != nil {
		snap.overlayImg = overlay.Scaled(overlayImg, overlayParams.Scale)
		snap.overlayX = overlayParams.X
		snap.overlayY = overlayParams.Y
		snap.overlayOpacity = overlayParams.Opacity
	}
	return snap
}

// Apply runs the pipeline over one frame: ordered effects, then overlay
// compositing (when an overlay is loaded), then crop (when enabled). The
// input frame is never mutated. An out-of-bounds overlay is a documented
// no-op; an out-of-bounds crop fails with geometry.ErrInvalidCropRegion.
func (s *Snapshot) Apply(src *frame.Frame) (*frame.Frame, error) {
	out := src.Clone()
	for _, effect := range s.effectList {
		out = effect.Apply(out)
	}
	if s.overlayImg != nil {
		overlay.Composite(out, s.overlayImg, s.overlayX, s.overlayY, s.overlayOpacity)
	}
	if s.crop.Enabled {
		cropped, err := geometry.Crop(out, s.crop.X, s.crop.Y, s.crop.W, s.crop.H)
		if err != nil {
			return nil, err
		}
		out = cropped
	}
	return out, nil
}

// EffectKinds lists the kinds in composition order, for display and logging.
func (s *Snapshot) EffectKinds() []effects.Kind {
	kinds := make([]effects.Kind, len(s.effectList))
	for i, effect := range s.effectList {
		kinds[i] = effect.Kind()
	}
	return kinds
}

// HasOverlay reports whether compositing will run.
func (s *Snapshot) HasOverlay() bool { return s.overlayImg != nil }

// OutputSize reports the dimensions Apply produces for a source of the given
// size: the crop size when cropping is enabled, the source size otherwise.
func (s *Snapshot) OutputSize(srcW, srcH int) (int, int) {
	if s.crop.Enabled {
		return s.crop.W, s.crop.H
	}
	return srcW, srcH
}

// Crop returns the crop parameters captured by the snapshot.
func (s *Snapshot) Crop() geometry.CropParams { return s.crop }
