package effects_test

import (
	"testing"

	"videolab/internal/effects"
	"videolab/internal/frame"
)

func TestTextStampsWhitePixels(t *testing.T) {
	text, err := effects.NewTextOverlay("Hi", 13, 10, 30)
	if err != nil {
		t.Fatalf("NewTextOverlay: %v", err)
	}
	out := text.Apply(frame.New(100, 60))

	lit := 0
	for _, v := range out.Pix {
		if v == 255 {
			lit++
		} else if v != 0 {
			t.Fatalf("bitmap text on black frame should yield pure white or black, got %d", v)
		}
	}
	if lit == 0 {
		t.Fatal("expected text to light up pixels")
	}
}

func TestEmptyTextIsNoOp(t *testing.T) {
	text, err := effects.NewTextOverlay("   ", 30, 50, 50)
	if err != nil {
		t.Fatalf("NewTextOverlay: %v", err)
	}
	src := gradientFrame(40, 30)
	out := text.Apply(src.Clone())
	if !framesEqual(src, out) {
		t.Fatal("blank text should not change the frame")
	}
}

func TestTextClipsAtBorders(t *testing.T) {
	cases := []struct{ x, y int }{
		{-20, 5},
		{95, 30},
		{10, -10},
		{10, 1000},
	}
	for _, tc := range cases {
		text, err := effects.NewTextOverlay("Sample Text", 30, tc.x, tc.y)
		if err != nil {
			t.Fatalf("NewTextOverlay: %v", err)
		}
		out := text.Apply(frame.New(100, 60))
		if out.Width != 100 || out.Height != 60 {
			t.Fatalf("clipped text changed frame shape at anchor (%d,%d)", tc.x, tc.y)
		}
	}
}

func TestTextScalesWithSize(t *testing.T) {
	small, err := effects.NewTextOverlay("X", 13, 5, 40)
	if err != nil {
		t.Fatalf("NewTextOverlay: %v", err)
	}
	large, err := effects.NewTextOverlay("X", 39, 5, 40)
	if err != nil {
		t.Fatalf("NewTextOverlay: %v", err)
	}

	count := func(f *frame.Frame) int {
		n := 0
		for i := 0; i < len(f.Pix); i += frame.BytesPerPixel {
			if f.Pix[i] > 0 {
				n++
			}
		}
		return n
	}

	smallLit := count(small.Apply(frame.New(120, 80)))
	largeLit := count(large.Apply(frame.New(120, 80)))
	if largeLit <= smallLit {
		t.Fatalf("expected size 39 to cover more pixels than size 13 (%d vs %d)", largeLit, smallLit)
	}
}
