package export_test

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"videolab/internal/export"
	"videolab/internal/logging"
	"videolab/internal/pipeline"
	"videolab/internal/services"
	"videolab/internal/testsupport"
)

func TestSequenceSinkWritesNumberedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	sink, err := export.NewSequenceSink(dir, "png")
	if err != nil {
		t.Fatalf("NewSequenceSink: %v", err)
	}

	frames := testsupport.SequenceFrames(3, 4, 4)
	for _, f := range frames {
		if err := sink.Write(f); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sink.Written() != 3 {
		t.Fatalf("Written() = %d, want 3", sink.Written())
	}

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, map[int]string{0: "frame_000000.png", 1: "frame_000001.png", 2: "frame_000002.png"}[i])
		img, err := imaging.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", path, err)
		}
		if img.Bounds() != image.Rect(0, 0, 4, 4) {
			t.Fatalf("unexpected bounds for %s: %v", path, img.Bounds())
		}
		r, _, _, _ := img.At(0, 0).RGBA()
		if byte(r>>8) != byte(i) {
			t.Fatalf("frame %d decoded value %d", i, byte(r>>8))
		}
	}
}

func TestSequenceSinkNamesFilesByFrameIndex(t *testing.T) {
	dir := t.TempDir()
	sink, err := export.NewSequenceSink(dir, "jpg")
	if err != nil {
		t.Fatalf("NewSequenceSink: %v", err)
	}
	f := testsupport.SolidFrame(4, 4, 10, 20, 30)
	f.Index = 41
	if err := sink.Write(f); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_000041.jpg")); err != nil {
		t.Fatalf("expected file named by frame index: %v", err)
	}
}

func TestSequenceSinkWebP(t *testing.T) {
	dir := t.TempDir()
	sink, err := export.NewSequenceSink(dir, "webp")
	if err != nil {
		t.Fatalf("NewSequenceSink: %v", err)
	}
	if err := sink.Write(testsupport.SolidFrame(4, 4, 200, 100, 50)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "frame_000000.webp"))
	if err != nil {
		t.Fatalf("stat webp: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("webp file is empty")
	}
}

func TestSequenceSinkRejectsUnknownFormat(t *testing.T) {
	if _, err := export.NewSequenceSink(t.TempDir(), "tiff"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDriverWithSequenceSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seq")
	sink, err := export.NewSequenceSink(dir, "png")
	if err != nil {
		t.Fatalf("NewSequenceSink: %v", err)
	}
	src := testsupport.NewMemorySource(testsupport.SequenceFrames(5, 4, 4), 30)

	driver := export.NewDriver(logging.NewNop())
	outcome, err := driver.Run(context.Background(), src, pipeline.NewState().Snapshot(), sink, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Completed || outcome.FramesWritten != 5 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 files, got %d", len(entries))
	}
}
