package main

import (
	"encoding/json"
	"testing"
)

func TestCropRectComputesCenteredRegion(t *testing.T) {
	out, _, err := runCLI(t, []string{"crop-rect", "--width", "1920", "--height", "800", "--aspect", "4:3"}, "")
	if err != nil {
		t.Fatalf("crop-rect: %v", err)
	}
	// 4:3 inside 1920x800 keeps the height: 1066x800 at x=427.
	requireContains(t, out, "1066")
	requireContains(t, out, "427")
}

func TestCropRectJSONOutput(t *testing.T) {
	out, _, err := runCLI(t, []string{"crop-rect", "--width", "100", "--height", "100", "--aspect", "1:1", "--json"}, "")
	if err != nil {
		t.Fatalf("crop-rect --json: %v", err)
	}
	var rect map[string]int
	if err := json.Unmarshal([]byte(out), &rect); err != nil {
		t.Fatalf("parse JSON output %q: %v", out, err)
	}
	want := map[string]int{"x": 0, "y": 0, "width": 100, "height": 100}
	for key, value := range want {
		if rect[key] != value {
			t.Fatalf("expected %s=%d, got %d (output %q)", key, value, rect[key], out)
		}
	}
}

func TestCropRectRejectsBadInput(t *testing.T) {
	if _, _, err := runCLI(t, []string{"crop-rect", "--width", "1920", "--height", "800", "--aspect", "banana"}, ""); err == nil {
		t.Fatal("expected malformed aspect to fail")
	}
	if _, _, err := runCLI(t, []string{"crop-rect", "--aspect", "16:9"}, ""); err == nil {
		t.Fatal("expected missing dimensions to fail")
	}
}
