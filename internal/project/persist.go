package project

import (
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"videolab/internal/fileutil"
	"videolab/internal/geometry"
	"videolab/internal/overlay"
	"videolab/internal/services"
)

// Wire types decode every numeric field as float64: project files written by
// other tools may carry integral values in fractional form ("50.0"). Values
// round back to ints on load. Sections are pointers so an absent section
// falls back to defaults instead of zero values.

type projectFile struct {
	EffectsPipeline []effectRefFile `json:"effects_pipeline"`
	OverlayParams   *overlayFile    `json:"overlay_params"`
	CropParams      *cropFile       `json:"crop_params"`
	Markers         []markerFile    `json:"markers"`
	Parameters      *parametersFile `json:"parameters"`
}

type effectRefFile struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

type overlayFile struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Opacity float64 `json:"opacity"`
	Scale   float64 `json:"scale"`
}

type cropFile struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
	Enabled bool    `json:"enabled"`
}

type markerFile struct {
	Frame float64 `json:"frame"`
	Name  string  `json:"name"`
}

type parametersFile struct {
	CannyLow    float64 `json:"canny_low"`
	CannyHigh   float64 `json:"canny_high"`
	BlurKernel  float64 `json:"blur_kernel"`
	BlurSigma   float64 `json:"blur_sigma"`
	Brightness  float64 `json:"brightness"`
	Contrast    float64 `json:"contrast"`
	TextContent string  `json:"text_content"`
	TextSize    float64 `json:"text_size"`
}

// Save writes the project as indented JSON. The write goes through a temp
// file and rename, so an interrupted save never leaves a truncated project
// at path.
func (p *Project) Save(path string) error {
	data, err := json.MarshalIndent(p.toFile(), "", "  ")
	if err != nil {
		return services.Wrap(services.ErrValidation, "project", "save", "encode project", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "project", "save", "create project directory", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "project", "save", "write project file", err)
	}
	return nil
}

// Load reads and validates a project file. On failure the returned project
// is nil and the error carries services.ErrNotFound for a missing file or
// services.ErrValidation for malformed or out-of-range contents, so callers
// keep their current project untouched.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "project", "load", "read project file", err)
	}

	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "load", "parse project file", err)
	}

	p := fromFile(&pf)
	// A dry compile catches unknown enabled effect types, out-of-range
	// parameters, and invalid overlay or crop values before the caller
	// replaces any state.
	if _, err := p.Compile(nil); err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "load", "invalid project contents", err)
	}
	return p, nil
}

func (p *Project) toFile() *projectFile {
	pf := &projectFile{
		EffectsPipeline: make([]effectRefFile, len(p.Effects)),
		OverlayParams: &overlayFile{
			X:       float64(p.Overlay.X),
			Y:       float64(p.Overlay.Y),
			Opacity: p.Overlay.Opacity,
			Scale:   p.Overlay.Scale,
		},
		CropParams: &cropFile{
			X:       float64(p.Crop.X),
			Y:       float64(p.Crop.Y),
			W:       float64(p.Crop.W),
			H:       float64(p.Crop.H),
			Enabled: p.Crop.Enabled,
		},
		Markers: make([]markerFile, len(p.Markers)),
		Parameters: &parametersFile{
			CannyLow:    float64(p.Parameters.CannyLow),
			CannyHigh:   float64(p.Parameters.CannyHigh),
			BlurKernel:  float64(p.Parameters.BlurKernel),
			BlurSigma:   p.Parameters.BlurSigma,
			Brightness:  p.Parameters.Brightness,
			Contrast:    p.Parameters.Contrast,
			TextContent: p.Parameters.TextContent,
			TextSize:    float64(p.Parameters.TextSize),
		},
	}
	for i, ref := range p.Effects {
		pf.EffectsPipeline[i] = effectRefFile{Type: ref.Type, Enabled: ref.Enabled}
	}
	for i, m := range p.Markers {
		pf.Markers[i] = markerFile{Frame: float64(m.Frame), Name: m.Name}
	}
	return pf
}

func fromFile(pf *projectFile) *Project {
	p := New()
	if len(pf.EffectsPipeline) > 0 {
		p.Effects = make([]EffectRef, len(pf.EffectsPipeline))
		for i, ref := range pf.EffectsPipeline {
			p.Effects[i] = EffectRef{Type: ref.Type, Enabled: ref.Enabled}
		}
	}
	if pf.OverlayParams != nil {
		p.Overlay = overlay.Params{
			X:       roundInt(pf.OverlayParams.X),
			Y:       roundInt(pf.OverlayParams.Y),
			Opacity: pf.OverlayParams.Opacity,
			Scale:   pf.OverlayParams.Scale,
		}
	}
	if pf.CropParams != nil {
		p.Crop = geometry.CropParams{
			X:       roundInt(pf.CropParams.X),
			Y:       roundInt(pf.CropParams.Y),
			W:       roundInt(pf.CropParams.W),
			H:       roundInt(pf.CropParams.H),
			Enabled: pf.CropParams.Enabled,
		}
	}
	if len(pf.Markers) > 0 {
		p.Markers = make([]Marker, len(pf.Markers))
		for i, m := range pf.Markers {
			p.Markers[i] = Marker{Frame: roundInt(m.Frame), Name: m.Name}
		}
	}
	if pf.Parameters != nil {
		p.Parameters = Parameters{
			CannyLow:    roundInt(pf.Parameters.CannyLow),
			CannyHigh:   roundInt(pf.Parameters.CannyHigh),
			BlurKernel:  roundInt(pf.Parameters.BlurKernel),
			BlurSigma:   pf.Parameters.BlurSigma,
			Brightness:  pf.Parameters.Brightness,
			Contrast:    pf.Parameters.Contrast,
			TextContent: pf.Parameters.TextContent,
			TextSize:    roundInt(pf.Parameters.TextSize),
		}
	}
	return p
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
