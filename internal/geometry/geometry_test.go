package geometry_test

import (
	"errors"
	"testing"

	"videolab/internal/frame"
	"videolab/internal/geometry"
	"videolab/internal/services"
)

func patternFrame(w, h int) *frame.Frame {
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetRGB(x, y, byte(x), byte(y), byte(x+y))
		}
	}
	return f
}

func TestCropIdentity(t *testing.T) {
	src := patternFrame(17, 11)
	src.Index = 4

	out, err := geometry.Crop(src, 0, 0, 17, 11)
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if out.Index != 4 {
		t.Fatalf("crop lost frame index: %d", out.Index)
	}
	if out.Width != src.Width || out.Height != src.Height {
		t.Fatalf("identity crop changed shape: %dx%d", out.Width, out.Height)
	}
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("identity crop changed byte %d", i)
		}
	}
}

func TestCropExtractsRegion(t *testing.T) {
	src := patternFrame(32, 24)
	out, err := geometry.Crop(src, 5, 7, 10, 8)
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if out.Width != 10 || out.Height != 8 {
		t.Fatalf("unexpected crop shape: %dx%d", out.Width, out.Height)
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			r, g, b := out.RGB(x, y)
			wr, wg, wb := src.RGB(x+5, y+7)
			if r != wr || g != wg || b != wb {
				t.Fatalf("pixel (%d,%d) mismatch: got %d %d %d want %d %d %d", x, y, r, g, b, wr, wg, wb)
			}
		}
	}
}

func TestCropEdgeTouchingIsValid(t *testing.T) {
	src := patternFrame(20, 20)
	out, err := geometry.Crop(src, 10, 10, 10, 10)
	if err != nil {
		t.Fatalf("edge-touching crop must succeed: %v", err)
	}
	if out.Width != 10 || out.Height != 10 {
		t.Fatalf("unexpected shape: %dx%d", out.Width, out.Height)
	}
}

func TestCropRejectsInvalidRegions(t *testing.T) {
	src := patternFrame(20, 20)
	cases := []struct {
		name       string
		x, y, w, h int
	}{
		{"negative x", -1, 0, 5, 5},
		{"negative y", 0, -1, 5, 5},
		{"zero width", 0, 0, 0, 5},
		{"zero height", 0, 0, 5, 0},
		{"width overflow", 16, 0, 5, 5},
		{"height overflow", 0, 16, 5, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := geometry.Crop(src, tc.x, tc.y, tc.w, tc.h)
			if err == nil {
				t.Fatal("expected crop rejection")
			}
			if !errors.Is(err, geometry.ErrInvalidCropRegion) {
				t.Fatalf("expected ErrInvalidCropRegion, got %v", err)
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation marker, got %v", err)
			}
		})
	}
}

func TestAspectRect(t *testing.T) {
	cases := []struct {
		name           string
		frameW, frameH int
		ratioW, ratioH int
		wantX, wantY   int
		wantW, wantH   int
	}{
		{"square in landscape", 1920, 1080, 1, 1, 420, 0, 1080, 1080},
		{"matching ratio is identity", 1920, 1080, 16, 9, 0, 0, 1920, 1080},
		{"square in portrait", 1080, 1920, 1, 1, 0, 420, 1080, 1080},
		{"wide ratio in square", 1000, 1000, 2, 1, 0, 250, 1000, 500},
		{"floor rounding on odd frame", 101, 100, 1, 1, 0, 0, 100, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y, w, h := geometry.AspectRect(tc.frameW, tc.frameH, tc.ratioW, tc.ratioH)
			if x != tc.wantX || y != tc.wantY || w != tc.wantW || h != tc.wantH {
				t.Fatalf("got (%d,%d,%d,%d) want (%d,%d,%d,%d)",
					x, y, w, h, tc.wantX, tc.wantY, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestAspectRectFitsAndIsCroppable(t *testing.T) {
	src := patternFrame(64, 48)
	x, y, w, h := geometry.AspectRect(src.Width, src.Height, 1, 1)
	if _, err := geometry.Crop(src, x, y, w, h); err != nil {
		t.Fatalf("aspect rect must always be croppable: %v", err)
	}
}

func TestParseAspect(t *testing.T) {
	w, h, err := geometry.ParseAspect("16:9")
	if err != nil || w != 16 || h != 9 {
		t.Fatalf("ParseAspect(16:9) = %d %d %v", w, h, err)
	}
	if _, _, err := geometry.ParseAspect("square"); err == nil {
		t.Fatal("expected parse failure for word")
	}
	if _, _, err := geometry.ParseAspect("0:9"); err == nil {
		t.Fatal("expected parse failure for zero side")
	}
	if _, _, err := geometry.ParseAspect("16:9:2"); err == nil {
		t.Fatal("expected parse failure for extra segment")
	}
}
