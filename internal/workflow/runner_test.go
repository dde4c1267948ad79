package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"videolab/internal/export"
	"videolab/internal/logging"
	"videolab/internal/media"
	"videolab/internal/project"
	"videolab/internal/queue"
	"videolab/internal/services"
	"videolab/internal/testsupport"
)

func TestExportRunnerFailsOnMissingProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := newExportRunner(cfg, logging.NewNop())

	job := &queue.Job{
		ID:          1,
		SourcePath:  "/media/in.mp4",
		OutputPath:  "/media/out.mp4",
		ProjectPath: filepath.Join(t.TempDir(), "missing.json"),
		Kind:        queue.KindVideo,
		Format:      "mp4",
	}

	_, err := runner.Run(context.Background(), job, nil)
	if err == nil {
		t.Fatal("Run succeeded with missing project file")
	}
	if !strings.Contains(err.Error(), "load project") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want services.ErrNotFound", err)
	}
}

func TestOpenSinkSequencePreparesDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := newExportRunner(cfg, logging.NewNop())

	snap, err := project.New().Compile(nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "frames")
	job := &queue.Job{ID: 7, OutputPath: dir, Kind: queue.KindSequence, Format: "png"}

	sink, staging, err := runner.openSink(context.Background(), job, media.SourceInfo{Width: 64, Height: 48, FPS: 24}, snap)
	if err != nil {
		t.Fatalf("openSink: %v", err)
	}
	defer sink.Close()

	if staging != "" {
		t.Fatalf("staging = %q, want empty for sequences", staging)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("sequence directory not created: %v", err)
	}
}

func TestOpenSinkRejectsUnknownKind(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := newExportRunner(cfg, logging.NewNop())

	snap, err := project.New().Compile(nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	job := &queue.Job{ID: 7, OutputPath: "/media/out.bin", Kind: queue.Kind("hologram"), Format: "mp4"}
	if _, _, err := runner.openSink(context.Background(), job, media.SourceInfo{Width: 64, Height: 48, FPS: 24}, snap); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want services.ErrValidation", err)
	}
}

func TestFailureMessage(t *testing.T) {
	err := errors.New("write frame 5: disk full")
	if got := failureMessage(export.Outcome{FramesWritten: 5, LastIndex: 4}, err); got != "write frame 5: disk full (last good frame 4)" {
		t.Fatalf("failureMessage = %q", got)
	}
	if got := failureMessage(export.Outcome{LastIndex: -1}, err); got != "write frame 5: disk full" {
		t.Fatalf("failureMessage = %q", got)
	}
}
