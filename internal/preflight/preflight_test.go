package preflight

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"videolab/internal/testsupport"
)

func TestCheckTool_Missing(t *testing.T) {
	result := CheckTool(context.Background(), "FFmpeg", filepath.Join(t.TempDir(), "ffmpeg"), "decodes")
	if result.Passed {
		t.Fatal("expected failure for missing binary")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckTool_NotConfigured(t *testing.T) {
	result := CheckTool(context.Background(), "FFmpeg", "  ", "decodes")
	if result.Passed {
		t.Fatal("expected failure for blank command")
	}
}

func TestCheckTool_ReportsVersionLine(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\necho 'ffmpeg version 6.1.1'\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	result := CheckTool(context.Background(), "FFmpeg", bin, "decodes")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result.Detail != "ffmpeg version 6.1.1" {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckTool_SilentBinaryFallsBackToPath(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	result := CheckTool(context.Background(), "FFprobe", bin, "inspects")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result.Detail != bin {
		t.Fatalf("detail = %q, want resolved path", result.Detail)
	}
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected pass for 1-byte floor, got: %s", result.Detail)
	}
	if result := CheckFreeSpace("space", dir, math.MaxUint64); result.Passed {
		t.Fatal("expected failure for absurd floor")
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "nope"), 1); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[uint64]string{
		512:             "512 B",
		2048:            "2.0 KiB",
		5 * 1 << 20:     "5.0 MiB",
		3 * (1 << 30):   "3.0 GiB",
		1<<40 + 1<<39:   "1.5 TiB",
		7 * (1 << 10):   "7.0 KiB",
		1536:            "1.5 KiB",
		(1 << 30) * 100: "100.0 GiB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_HealthyConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if !Passed(results) {
		t.Fatal("Passed reported failure for healthy results")
	}
}

func TestRunAll_MissingDirectoriesFail(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	// EnsureDirectories intentionally not called.

	results := RunAll(context.Background(), cfg)
	if Passed(results) {
		t.Fatal("expected failures for missing directories")
	}
}
