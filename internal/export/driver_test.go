package export_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"videolab/internal/effects"
	"videolab/internal/export"
	"videolab/internal/logging"
	"videolab/internal/pipeline"
	"videolab/internal/testsupport"
)

func TestRunCopiesAllFramesInOrder(t *testing.T) {
	src := testsupport.NewMemorySource(testsupport.SequenceFrames(10, 4, 4), 30)
	sink := testsupport.NewMemorySink()
	snap := pipeline.NewState().Snapshot()

	var progress []float64
	driver := export.NewDriver(logging.NewNop())
	outcome, err := driver.Run(context.Background(), src, snap, sink, func(fraction float64) {
		progress = append(progress, fraction)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Completed || outcome.FramesWritten != 10 || outcome.LastIndex != 9 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	if len(sink.Frames) != 10 {
		t.Fatalf("sink received %d frames", len(sink.Frames))
	}
	for i, f := range sink.Frames {
		if f.Index != i {
			t.Fatalf("frame %d carries index %d", i, f.Index)
		}
		if r, _, _ := f.RGB(0, 0); r != byte(i) {
			t.Fatalf("frame %d content %d, want %d", i, r, i)
		}
	}

	if len(progress) != 10 {
		t.Fatalf("expected 10 progress reports, got %d", len(progress))
	}
	for i, p := range progress {
		if p != float64(i)/10.0 {
			t.Fatalf("progress[%d] = %v, want %v", i, p, float64(i)/10.0)
		}
	}
}

func TestRunAppliesPipelineSnapshot(t *testing.T) {
	src := testsupport.NewMemorySource(testsupport.SequenceFrames(3, 4, 4), 30)
	sink := testsupport.NewMemorySink()

	state := pipeline.NewState()
	brighten, err := effects.NewColorAdjust(1.0, 5)
	if err != nil {
		t.Fatalf("NewColorAdjust: %v", err)
	}
	state.AddEffect(brighten)

	driver := export.NewDriver(logging.NewNop())
	if _, err := driver.Run(context.Background(), src, state.Snapshot(), sink, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, f := range sink.Frames {
		if r, _, _ := f.RGB(1, 1); r != byte(i+5) {
			t.Fatalf("frame %d rendered to %d, want %d", i, r, i+5)
		}
	}
}

func TestRunReportsReadFailure(t *testing.T) {
	src := testsupport.NewMemorySource(testsupport.SequenceFrames(10, 4, 4), 30)
	src.FailAt = 7
	sink := testsupport.NewMemorySink()

	driver := export.NewDriver(logging.NewNop())
	outcome, err := driver.Run(context.Background(), src, pipeline.NewState().Snapshot(), sink, nil)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "decode frame 7") {
		t.Fatalf("error should name the failing frame: %v", err)
	}
	if outcome.Completed {
		t.Fatal("outcome should not be completed")
	}
	if outcome.FramesWritten != 7 || outcome.LastIndex != 6 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestRunReportsWriteFailure(t *testing.T) {
	src := testsupport.NewMemorySource(testsupport.SequenceFrames(10, 4, 4), 30)
	sink := testsupport.NewMemorySink()
	sink.FailAt = 4

	driver := export.NewDriver(logging.NewNop())
	outcome, err := driver.Run(context.Background(), src, pipeline.NewState().Snapshot(), sink, nil)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "write frame 4") {
		t.Fatalf("error should name the failing frame: %v", err)
	}
	if outcome.FramesWritten != 4 || outcome.LastIndex != 3 || outcome.Completed {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	src := testsupport.NewMemorySource(testsupport.SequenceFrames(10, 4, 4), 30)
	sink := testsupport.NewMemorySink()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := export.NewDriver(logging.NewNop())
	outcome, err := driver.Run(ctx, src, pipeline.NewState().Snapshot(), sink, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if outcome.FramesWritten != 0 || outcome.Completed {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}
