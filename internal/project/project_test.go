package project_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"videolab/internal/effects"
	"videolab/internal/frame"
	"videolab/internal/geometry"
	"videolab/internal/pipeline"
	"videolab/internal/project"
	"videolab/internal/services"
)

func solidFrame(w, h int, v byte) *frame.Frame {
	f := frame.New(w, h)
	for i := range f.Pix {
		f.Pix[i] = v
	}
	return f
}

func TestNewDefaults(t *testing.T) {
	p := project.New()

	if got, want := p.Parameters, project.DefaultParameters(); got != want {
		t.Fatalf("parameters = %+v, want %+v", got, want)
	}
	if p.Overlay.Opacity != 1.0 || p.Overlay.Scale != 1.0 {
		t.Fatalf("overlay defaults = %+v", p.Overlay)
	}
	if p.Crop.Enabled {
		t.Fatal("crop should start disabled")
	}
	if len(p.Effects) != 0 || len(p.Markers) != 0 {
		t.Fatalf("fresh project not empty: %d effects, %d markers", len(p.Effects), len(p.Markers))
	}
}

func TestAddEffectRejectsUnknownType(t *testing.T) {
	p := project.New()
	if err := p.AddEffect("sharpen"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("AddEffect(sharpen) = %v, want validation error", err)
	}
	if err := p.AddEffect("canny"); err != nil {
		t.Fatalf("AddEffect(canny) = %v", err)
	}
	if len(p.Effects) != 1 || !p.Effects[0].Enabled {
		t.Fatalf("effects = %+v", p.Effects)
	}
}

func TestRemoveEffect(t *testing.T) {
	p := project.New()
	for _, kind := range []string{"canny", "gaussian_blur", "color_adjust"} {
		if err := p.AddEffect(kind); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.RemoveEffect(1); err != nil {
		t.Fatal(err)
	}
	if len(p.Effects) != 2 || p.Effects[0].Type != "canny" || p.Effects[1].Type != "color_adjust" {
		t.Fatalf("effects after removal = %+v", p.Effects)
	}

	if err := p.RemoveEffect(2); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("RemoveEffect(2) = %v, want validation error", err)
	}
	if err := p.RemoveEffect(-1); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("RemoveEffect(-1) = %v, want validation error", err)
	}
}

func TestSetEffectEnabled(t *testing.T) {
	p := project.New()
	if err := p.AddEffect("text"); err != nil {
		t.Fatal(err)
	}

	if err := p.SetEffectEnabled(0, false); err != nil {
		t.Fatal(err)
	}
	if p.Effects[0].Enabled {
		t.Fatal("entry still enabled")
	}
	if err := p.SetEffectEnabled(5, true); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("SetEffectEnabled(5) = %v, want validation error", err)
	}
}

func TestMarkers(t *testing.T) {
	p := project.New()

	first := p.AddMarker(30, "")
	if first.Name != "Marker 1" {
		t.Fatalf("fallback name = %q, want %q", first.Name, "Marker 1")
	}
	p.AddMarker(10, "intro")
	p.AddMarker(30, "  outro  ")

	if got := p.Markers[2].Name; got != "outro" {
		t.Fatalf("name not trimmed: %q", got)
	}

	sorted := p.SortedMarkers()
	wantFrames := []int{10, 30, 30}
	for i, m := range sorted {
		if m.Frame != wantFrames[i] {
			t.Fatalf("sorted[%d].Frame = %d, want %d", i, m.Frame, wantFrames[i])
		}
	}
	// Stable sort keeps insertion order among equal frames.
	if sorted[1].Name != "Marker 1" || sorted[2].Name != "outro" {
		t.Fatalf("equal-frame order not preserved: %+v", sorted)
	}
	// The stored collection keeps insertion order.
	if p.Markers[0].Frame != 30 {
		t.Fatalf("stored order changed: %+v", p.Markers)
	}

	p.ClearMarkers()
	if len(p.Markers) != 0 {
		t.Fatalf("markers after clear: %+v", p.Markers)
	}
}

func TestCompileSkipsDisabledEntries(t *testing.T) {
	p := project.New()
	if err := p.AddEffect("canny"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddEffect("color_adjust"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetEffectEnabled(0, false); err != nil {
		t.Fatal(err)
	}
	p.Parameters.Contrast = 1.0
	p.Parameters.Brightness = 7

	snap, err := p.Compile(nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := snap.Apply(solidFrame(8, 8, 100))
	if err != nil {
		t.Fatal(err)
	}

	// Edge detect would have turned the flat frame black; only the
	// brightness shift from the enabled entry must show.
	r, g, b := got.RGB(4, 4)
	if r != 107 || g != 107 || b != 107 {
		t.Fatalf("pixel = (%d,%d,%d), want (107,107,107)", r, g, b)
	}
}

func TestCompileRejectsBadParameters(t *testing.T) {
	p := project.New()
	if err := p.AddEffect("gaussian_blur"); err != nil {
		t.Fatal(err)
	}
	p.Parameters.BlurKernel = 0

	if _, err := p.Compile(nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Compile with kernel 0 = %v, want validation error", err)
	}
}

func TestCompileRejectsUnknownEnabledType(t *testing.T) {
	p := project.New()
	p.Effects = append(p.Effects, project.EffectRef{Type: "sharpen", Enabled: true})

	if _, err := p.Compile(nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Compile = %v, want validation error", err)
	}

	// The same entry disabled is carried, not rejected.
	p.Effects[0].Enabled = false
	if _, err := p.Compile(nil); err != nil {
		t.Fatalf("Compile with disabled unknown entry = %v", err)
	}
}

func TestCompileRejectsInvalidCrop(t *testing.T) {
	p := project.New()
	p.Crop = geometry.CropParams{X: -1, Y: 0, W: 10, H: 10, Enabled: true}

	if _, err := p.Compile(nil); !errors.Is(err, geometry.ErrInvalidCropRegion) {
		t.Fatalf("Compile = %v, want crop region error", err)
	}
}

func TestCompileWithOverlayImage(t *testing.T) {
	p := project.New()
	p.Overlay.X = 0
	p.Overlay.Y = 0

	ov := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			ov.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	snap, err := p.Compile(ov)
	if err != nil {
		t.Fatal(err)
	}
	got, err := snap.Apply(solidFrame(16, 16, 0))
	if err != nil {
		t.Fatal(err)
	}

	if r, _, _ := got.RGB(0, 0); r != 255 {
		t.Fatalf("overlay pixel r = %d, want 255", r)
	}
	if r, _, _ := got.RGB(10, 10); r != 0 {
		t.Fatalf("background pixel r = %d, want 0", r)
	}
}

func TestApplyToReplacesState(t *testing.T) {
	p := project.New()
	if err := p.AddEffect("color_adjust"); err != nil {
		t.Fatal(err)
	}
	p.Parameters.Brightness = 20
	p.Crop = geometry.CropParams{X: 2, Y: 2, W: 4, H: 4, Enabled: true}

	state := pipeline.NewState()
	state.AddEffect(effects.NewEdgeDetect(50, 150))
	if err := p.ApplyTo(state); err != nil {
		t.Fatal(err)
	}

	kinds := state.EffectKinds()
	if len(kinds) != 1 || kinds[0] != effects.KindColorAdjust {
		t.Fatalf("state kinds = %v", kinds)
	}
	if got := state.CropParams(); got != p.Crop {
		t.Fatalf("state crop = %+v, want %+v", got, p.Crop)
	}

	out, err := state.Snapshot().Apply(solidFrame(8, 8, 10))
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 4 || out.Height != 4 {
		t.Fatalf("cropped size = %dx%d, want 4x4", out.Width, out.Height)
	}
	if r, _, _ := out.RGB(0, 0); r != 30 {
		t.Fatalf("pixel = %d, want 30", r)
	}
}
