package effects_test

import (
	"testing"

	"videolab/internal/effects"
	"videolab/internal/frame"
)

func TestEdgeOutputIsBinaryGray(t *testing.T) {
	edge := effects.NewEdgeDetect(50, 150)
	out := edge.Apply(gradientFrame(24, 18))

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			r, g, b := out.RGB(x, y)
			if r != g || g != b {
				t.Fatalf("expected gray output at (%d,%d): %d %d %d", x, y, r, g, b)
			}
			if r != 0 && r != 255 {
				t.Fatalf("expected binary edge map at (%d,%d): %d", x, y, r)
			}
		}
	}
}

func TestEdgeDetectsVerticalStep(t *testing.T) {
	f := frame.New(32, 16)
	for y := 0; y < f.Height; y++ {
		for x := 16; x < f.Width; x++ {
			f.SetRGB(x, y, 255, 255, 255)
		}
	}

	edge := effects.NewEdgeDetect(50, 150)
	out := edge.Apply(f)

	edgeHits := 0
	for y := 1; y < out.Height-1; y++ {
		for x := 14; x <= 17; x++ {
			if r, _, _ := out.RGB(x, y); r == 255 {
				edgeHits++
			}
		}
	}
	if edgeHits == 0 {
		t.Fatal("expected edge response along the step boundary")
	}

	for y := 0; y < out.Height; y++ {
		for _, x := range []int{2, 3, 28, 29} {
			if r, _, _ := out.RGB(x, y); r != 0 {
				t.Fatalf("unexpected edge response far from boundary at (%d,%d)", x, y)
			}
		}
	}
}

func TestEdgeUniformFrameIsBlack(t *testing.T) {
	f := frame.New(16, 16)
	for i := range f.Pix {
		f.Pix[i] = 128
	}
	out := effects.NewEdgeDetect(50, 150).Apply(f)
	for i, v := range out.Pix {
		if v != 0 {
			t.Fatalf("expected no edges in uniform frame, byte %d = %d", i, v)
		}
	}
}

func TestEdgeThresholdOrderIrrelevant(t *testing.T) {
	src := gradientFrame(20, 20)
	a := effects.NewEdgeDetect(50, 150).Apply(src.Clone())
	b := effects.NewEdgeDetect(150, 50).Apply(src.Clone())
	if !framesEqual(a, b) {
		t.Fatal("swapped thresholds should behave identically")
	}
}

func TestEdgeTinyFrameIsBlack(t *testing.T) {
	f := frame.New(2, 2)
	for i := range f.Pix {
		f.Pix[i] = 200
	}
	out := effects.NewEdgeDetect(0, 0).Apply(f)
	for _, v := range out.Pix {
		if v != 0 {
			t.Fatal("frames too small for gradients should come back black")
		}
	}
}
