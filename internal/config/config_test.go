package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"videolab/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "videolab", "output")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "videolab", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected tool binaries: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if cfg.Playback.FallbackFPS != 30.0 {
		t.Fatalf("unexpected fallback fps: %v", cfg.Playback.FallbackFPS)
	}
	if cfg.Tracking.MaxCorners != 100 || cfg.Tracking.QualityLevel != 0.3 {
		t.Fatalf("unexpected tracking defaults: %+v", cfg.Tracking)
	}
	if cfg.Tracking.EnablePropagation {
		t.Fatal("expected propagation disabled by default")
	}
	if cfg.Export.Format != "mp4" || cfg.Export.Quality != 23 {
		t.Fatalf("unexpected export defaults: %+v", cfg.Export)
	}
	if cfg.Export.SequenceFormat != "png" {
		t.Fatalf("unexpected sequence format: %q", cfg.Export.SequenceFormat)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.SnapshotDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadExplicitFileOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "videolab.toml")
	content := `
[paths]
output_dir = "~/renders"

[tools]
ffmpeg = "/opt/ffmpeg/bin/ffmpeg"

[tracking]
max_corners = 50
quality_level = 0.5
enable_propagation = true

[export]
format = "avi"
quality = 18
sequence_format = "jpeg"

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	if cfg.Paths.OutputDir != filepath.Join(tempHome, "renders") {
		t.Fatalf("expected tilde expansion, got %q", cfg.Paths.OutputDir)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
	if cfg.Tracking.MaxCorners != 50 || cfg.Tracking.QualityLevel != 0.5 {
		t.Fatalf("unexpected tracking overrides: %+v", cfg.Tracking)
	}
	if !cfg.Tracking.EnablePropagation {
		t.Fatal("expected propagation enabled")
	}
	if cfg.Tracking.FlowWindow != 15 {
		t.Fatalf("expected flow window default to survive overrides, got %d", cfg.Tracking.FlowWindow)
	}
	if cfg.Export.Format != "avi" || cfg.Export.Quality != 18 {
		t.Fatalf("unexpected export overrides: %+v", cfg.Export)
	}
	if cfg.Export.SequenceFormat != "jpg" {
		t.Fatalf("expected jpeg alias normalized to jpg, got %q", cfg.Export.SequenceFormat)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging overrides: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantMsg string
	}{
		{
			name:    "quality level above one",
			mutate:  func(c *config.Config) { c.Tracking.QualityLevel = 1.5 },
			wantMsg: "tracking.quality_level",
		},
		{
			name:    "even block size",
			mutate:  func(c *config.Config) { c.Tracking.BlockSize = 8 },
			wantMsg: "tracking.block_size",
		},
		{
			name:    "negative min distance",
			mutate:  func(c *config.Config) { c.Tracking.MinDistance = -1 },
			wantMsg: "tracking.min_distance",
		},
		{
			name:    "unknown export format",
			mutate:  func(c *config.Config) { c.Export.Format = "mkv" },
			wantMsg: "export.format",
		},
		{
			name:    "quality out of range",
			mutate:  func(c *config.Config) { c.Export.Quality = 60 },
			wantMsg: "export.quality",
		},
		{
			name:    "negative fallback fps",
			mutate:  func(c *config.Config) { c.Playback.FallbackFPS = -5 },
			wantMsg: "playback.fallback_fps",
		},
		{
			name:    "heartbeat timeout below interval",
			mutate:  func(c *config.Config) { c.Workflow.HeartbeatTimeout = 10 },
			wantMsg: "workflow.heartbeat_timeout",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected %q in error, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	samplePath := filepath.Join(tempHome, "conf", "config.toml")
	if err := config.CreateSample(samplePath); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(samplePath)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Export.Format != "mp4" {
		t.Fatalf("sample should carry defaults, got format %q", cfg.Export.Format)
	}
}
