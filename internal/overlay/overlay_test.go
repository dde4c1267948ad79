package overlay_test

import (
	"errors"
	"image"
	"testing"

	"videolab/internal/frame"
	"videolab/internal/overlay"
	"videolab/internal/services"
)

func solidNRGBA(w, h int, r, g, b byte) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, 255
	}
	return img
}

func solidFrame(w, h int, r, g, b byte) *frame.Frame {
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetRGB(x, y, r, g, b)
		}
	}
	return f
}

func TestCompositeOpacityZeroLeavesFrameUnchanged(t *testing.T) {
	dst := solidFrame(20, 20, 10, 20, 30)
	want := dst.Clone()

	if !overlay.Composite(dst, solidNRGBA(5, 5, 200, 200, 200), 2, 2, 0) {
		t.Fatal("in-bounds composite should report drawn")
	}
	for i := range dst.Pix {
		if dst.Pix[i] != want.Pix[i] {
			t.Fatalf("opacity 0 changed byte %d", i)
		}
	}
}

func TestCompositeOpacityOneReplacesRegion(t *testing.T) {
	dst := solidFrame(20, 20, 10, 20, 30)
	overlay.Composite(dst, solidNRGBA(5, 5, 200, 150, 100), 3, 4, 1)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			r, g, b := dst.RGB(x, y)
			inside := x >= 3 && x < 8 && y >= 4 && y < 9
			if inside && (r != 200 || g != 150 || b != 100) {
				t.Fatalf("expected overlay pixel at (%d,%d), got %d %d %d", x, y, r, g, b)
			}
			if !inside && (r != 10 || g != 20 || b != 30) {
				t.Fatalf("expected untouched pixel at (%d,%d), got %d %d %d", x, y, r, g, b)
			}
		}
	}
}

func TestCompositeBlendsMidpoint(t *testing.T) {
	dst := solidFrame(4, 4, 100, 100, 100)
	overlay.Composite(dst, solidNRGBA(2, 2, 200, 200, 200), 1, 1, 0.5)
	if r, _, _ := dst.RGB(1, 1); r != 150 {
		t.Fatalf("expected 150 at blended pixel, got %d", r)
	}
}

func TestCompositeOutOfBoundsIsNoOp(t *testing.T) {
	cases := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 5},
		{"negative y", 5, -1},
		{"right overflow", 16, 5},
		{"bottom overflow", 5, 16},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dst := solidFrame(20, 20, 10, 20, 30)
			want := dst.Clone()
			if overlay.Composite(dst, solidNRGBA(5, 5, 200, 200, 200), tc.x, tc.y, 1) {
				t.Fatal("expected out-of-bounds composite to report no-op")
			}
			for i := range dst.Pix {
				if dst.Pix[i] != want.Pix[i] {
					t.Fatalf("out-of-bounds composite changed byte %d", i)
				}
			}
		})
	}
}

func TestCompositeEdgeTouchingIsInBounds(t *testing.T) {
	dst := solidFrame(20, 20, 0, 0, 0)
	if !overlay.Composite(dst, solidNRGBA(5, 5, 255, 255, 255), 15, 15, 1) {
		t.Fatal("x+w == frame width must be treated as in bounds")
	}
	if r, _, _ := dst.RGB(19, 19); r != 255 {
		t.Fatal("expected corner pixel to be drawn")
	}
}

func TestScaledDimensions(t *testing.T) {
	src := solidNRGBA(10, 8, 50, 50, 50)

	half := overlay.Scaled(src, 0.5)
	if half.Bounds().Dx() != 5 || half.Bounds().Dy() != 4 {
		t.Fatalf("unexpected half scale dims: %v", half.Bounds())
	}

	same := overlay.Scaled(src, 1.0)
	if same.Bounds().Dx() != 10 || same.Bounds().Dy() != 8 {
		t.Fatalf("unexpected identity scale dims: %v", same.Bounds())
	}

	double := overlay.Scaled(src, 2.0)
	if double.Bounds().Dx() != 20 || double.Bounds().Dy() != 16 {
		t.Fatalf("unexpected double scale dims: %v", double.Bounds())
	}

	tiny := overlay.Scaled(src, 0.01)
	if tiny.Bounds().Dx() < 1 || tiny.Bounds().Dy() < 1 {
		t.Fatalf("scaled dimensions must never drop below 1: %v", tiny.Bounds())
	}
}

func TestParamsValidate(t *testing.T) {
	if err := overlay.DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	bad := []overlay.Params{
		{Opacity: -0.1, Scale: 1},
		{Opacity: 1.1, Scale: 1},
		{Opacity: 0.5, Scale: 0},
		{Opacity: 0.5, Scale: -2},
	}
	for _, p := range bad {
		err := p.Validate()
		if err == nil {
			t.Fatalf("expected validation error for %+v", p)
		}
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation marker, got %v", err)
		}
	}
}
