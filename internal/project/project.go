package project

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"videolab/internal/effects"
	"videolab/internal/geometry"
	"videolab/internal/overlay"
	"videolab/internal/pipeline"
	"videolab/internal/services"
)

// Text burn-in anchors at a fixed position; only the string and glyph size
// are project parameters.
const (
	textAnchorX = 50
	textAnchorY = 50
)

// Parameters holds the scalar control values shared by every pipeline entry
// of the same type. They mirror the "parameters" object of the project file.
type Parameters struct {
	CannyLow    int
	CannyHigh   int
	BlurKernel  int
	BlurSigma   float64
	Brightness  float64
	Contrast    float64
	TextContent string
	TextSize    int
}

// DefaultParameters returns the control values a fresh project starts with.
func DefaultParameters() Parameters {
	return Parameters{
		CannyLow:    50,
		CannyHigh:   150,
		BlurKernel:  5,
		BlurSigma:   1.0,
		Brightness:  0,
		Contrast:    1.0,
		TextContent: "Sample Text",
		TextSize:    30,
	}
}

// EffectRef is one ordered pipeline entry. Type uses the effect wire names
// ("canny", "gaussian_blur", "color_adjust", "text"). Disabled entries keep
// their position in the list but are skipped when the pipeline is compiled.
type EffectRef struct {
	Type    string
	Enabled bool
}

// Marker labels a frame of interest. Duplicates are allowed.
type Marker struct {
	Frame int
	Name  string
}

// Project is an editing session: the effect list in application order, the
// overlay placement, the crop rectangle, markers, and the scalar parameters.
type Project struct {
	Effects    []EffectRef
	Overlay    overlay.Params
	Crop       geometry.CropParams
	Markers    []Marker
	Parameters Parameters
}

// New returns an empty project with default placement and parameters.
func New() *Project {
	return &Project{
		Overlay:    overlay.DefaultParams(),
		Crop:       geometry.DefaultCropParams(),
		Parameters: DefaultParameters(),
	}
}

// AddEffect appends an enabled entry for the given effect wire name.
func (p *Project) AddEffect(kind string) error {
	if _, ok := effects.ParseKind(kind); !ok {
		return services.Wrap(services.ErrValidation, "project", "add effect",
			fmt.Sprintf("unknown effect type %q", kind), nil)
	}
	p.Effects = append(p.Effects, EffectRef{Type: kind, Enabled: true})
	return nil
}

// RemoveEffect deletes the entry at index, shifting later entries down.
func (p *Project) RemoveEffect(index int) error {
	if index < 0 || index >= len(p.Effects) {
		return services.Wrap(services.ErrValidation, "project", "remove effect",
			fmt.Sprintf("index %d out of range [0, %d)", index, len(p.Effects)), nil)
	}
	p.Effects = append(p.Effects[:index], p.Effects[index+1:]...)
	return nil
}

// SetEffectEnabled flips an entry without changing its position.
func (p *Project) SetEffectEnabled(index int, enabled bool) error {
	if index < 0 || index >= len(p.Effects) {
		return services.Wrap(services.ErrValidation, "project", "toggle effect",
			fmt.Sprintf("index %d out of range [0, %d)", index, len(p.Effects)), nil)
	}
	p.Effects[index].Enabled = enabled
	return nil
}

// AddMarker labels frameIndex and returns the stored marker. Empty names get
// a sequential "Marker N" fallback.
func (p *Project) AddMarker(frameIndex int, name string) Marker {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Marker %d", len(p.Markers)+1)
	}
	m := Marker{Frame: frameIndex, Name: name}
	p.Markers = append(p.Markers, m)
	return m
}

// ClearMarkers drops every marker.
func (p *Project) ClearMarkers() {
	p.Markers = nil
}

// SortedMarkers returns the markers ordered by frame index, preserving
// insertion order among markers on the same frame.
func (p *Project) SortedMarkers() []Marker {
	out := make([]Marker, len(p.Markers))
	copy(out, p.Markers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out
}

// Compile materializes the enabled entries into an immutable pipeline
// snapshot. overlayImg may be nil; compositing is then skipped regardless of
// the stored overlay placement.
func (p *Project) Compile(overlayImg image.Image) (*pipeline.Snapshot, error) {
	list, err := p.compileEffects()
	if err != nil {
		return nil, err
	}
	if err := p.Overlay.Validate(); err != nil {
		return nil, err
	}
	if err := p.validateCrop(); err != nil {
		return nil, err
	}
	return pipeline.NewSnapshot(list, overlayImg, p.Overlay, p.Crop), nil
}

// ApplyTo pushes the project's configuration into a live pipeline state,
// replacing its effect list, overlay placement, and crop rectangle. The
// overlay image itself is managed separately by the caller.
func (p *Project) ApplyTo(state *pipeline.State) error {
	list, err := p.compileEffects()
	if err != nil {
		return err
	}
	if err := state.SetOverlayParams(p.Overlay); err != nil {
		return err
	}
	if err := state.SetCrop(p.Crop); err != nil {
		return err
	}
	state.SetEffects(list)
	return nil
}

func (p *Project) compileEffects() ([]effects.Effect, error) {
	list := make([]effects.Effect, 0, len(p.Effects))
	for i, ref := range p.Effects {
		if !ref.Enabled {
			continue
		}
		eff, err := p.buildEffect(ref.Type)
		if err != nil {
			return nil, fmt.Errorf("effect %d (%s): %w", i, ref.Type, err)
		}
		list = append(list, eff)
	}
	return list, nil
}

func (p *Project) buildEffect(kind string) (effects.Effect, error) {
	parsed, ok := effects.ParseKind(kind)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "project", "compile",
			fmt.Sprintf("unknown effect type %q", kind), nil)
	}
	switch parsed {
	case effects.KindEdgeDetect:
		return effects.NewEdgeDetect(p.Parameters.CannyLow, p.Parameters.CannyHigh), nil
	case effects.KindGaussianBlur:
		return effects.NewGaussianBlur(p.Parameters.BlurKernel, p.Parameters.BlurSigma)
	case effects.KindColorAdjust:
		return effects.NewColorAdjust(p.Parameters.Contrast, p.Parameters.Brightness)
	case effects.KindTextOverlay:
		return effects.NewTextOverlay(p.Parameters.TextContent, p.Parameters.TextSize, textAnchorX, textAnchorY)
	default:
		return nil, services.Wrap(services.ErrValidation, "project", "compile",
			fmt.Sprintf("unhandled effect type %q", kind), nil)
	}
}

// validateCrop applies the same static checks as pipeline.State.SetCrop;
// frame-relative bounds are still enforced at apply time.
func (p *Project) validateCrop() error {
	if !p.Crop.Enabled {
		return nil
	}
	if p.Crop.W <= 0 || p.Crop.H <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive",
			geometry.ErrInvalidCropRegion, p.Crop.W, p.Crop.H)
	}
	if p.Crop.X < 0 || p.Crop.Y < 0 {
		return fmt.Errorf("%w: origin (%d,%d) must be non-negative",
			geometry.ErrInvalidCropRegion, p.Crop.X, p.Crop.Y)
	}
	return nil
}
