package pipeline

import (
	"fmt"
	"image"
	"sync"

	"videolab/internal/effects"
	"videolab/internal/geometry"
	"videolab/internal/overlay"
	"videolab/internal/services"
)

// State is the live, mutable pipeline configuration shared between the
// control surface and whichever goroutine is currently processing frames.
// All access is serialized by an internal mutex; frame processing never reads
// State directly — it calls Snapshot and works from the immutable copy, so a
// parameter update can never tear mid-frame.
type State struct {
	mu sync.Mutex

	effectList    []effects.Effect
	overlayImg    image.Image
	overlayParams overlay.Params
	crop          geometry.CropParams
}

// NewState returns a State with no effects, no overlay, and crop disabled.
func NewState() *State {
	return &State{
		overlayParams: overlay.DefaultParams(),
		crop:          geometry.DefaultCropParams(),
	}
}

// AddEffect appends an effect to the composition order.
func (s *State) AddEffect(effect effects.Effect) {
	if effect == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effectList = append(s.effectList, effect)
}

// RemoveEffect removes the effect at the given position.
func (s *State) RemoveEffect(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.effectList) {
		return services.Wrap(services.ErrValidation, "pipeline", "remove effect",
			fmt.Sprintf("index %d out of range [0, %d)", index, len(s.effectList)), nil)
	}
	s.effectList = append(s.effectList[:index], s.effectList[index+1:]...)
	return nil
}

// SetEffects replaces the whole effect list, preserving the given order.
func (s *State) SetEffects(effectList []effects.Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effectList = make([]effects.Effect, 0, len(effectList))
	for _, effect := range effectList {
		if effect != nil {
			s.effectList = append(s.effectList, effect)
		}
	}
}

// ClearEffects empties the effect list.
func (s *State) ClearEffects() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effectList = nil
}

// EffectKinds lists the kinds currently in composition order.
func (s *State) EffectKinds() []effects.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]effects.Kind, len(s.effectList))
	for i, effect := range s.effectList {
		kinds[i] = effect.Kind()
	}
	return kinds
}

// SetOverlayImage installs the overlay image composited onto every frame
// until cleared. The image is used as-is; scaling happens at snapshot time.
func (s *State) SetOverlayImage(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlayImg = img
}

// ClearOverlay removes the overlay image.
func (s *State) ClearOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlayImg = nil
}

// HasOverlay reports whether an overlay image is loaded.
func (s *State) HasOverlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayImg != nil
}

// SetOverlayParams replaces the overlay placement after validating it.
func (s *State) SetOverlayParams(p overlay.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlayParams = p
	return nil
}

// OverlayParams returns the current overlay placement.
func (s *State) OverlayParams() overlay.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayParams
}

// SetCrop replaces the crop rectangle. Statically invalid rectangles (empty
// size, negative origin) are rejected immediately; rectangles that do not fit
// the actual frame are caught at apply time, when dimensions are known.
func (s *State) SetCrop(p geometry.CropParams) error {
	if p.Enabled {
		if p.W <= 0 || p.H <= 0 {
			return fmt.Errorf("%w: size %dx%d must be positive", geometry.ErrInvalidCropRegion, p.W, p.H)
		}
		if p.X < 0 || p.Y < 0 {
			return fmt.Errorf("%w: origin (%d,%d) must be non-negative", geometry.ErrInvalidCropRegion, p.X, p.Y)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crop = p
	return nil
}

// CropParams returns the current crop rectangle.
func (s *State) CropParams() geometry.CropParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crop
}

// Snapshot captures the current configuration as an immutable value. The
// overlay is scaled here, once, so per-frame application stays cheap.
func (s *State) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewSnapshot(s.effectList, s.overlayImg, s.overlayParams, s.crop)
}
