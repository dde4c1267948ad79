package queue_test

import (
	"testing"

	"videolab/internal/queue"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in     string
		want   queue.Status
		wantOK bool
	}{
		{"pending", queue.StatusPending, true},
		{" Processing ", queue.StatusProcessing, true},
		{"COMPLETED", queue.StatusCompleted, true},
		{"failed", queue.StatusFailed, true},
		{"", "", false},
		{"ripping", "", false},
	}
	for _, tc := range cases {
		got, ok := queue.ParseStatus(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in     string
		want   queue.Kind
		wantOK bool
	}{
		{"video", queue.KindVideo, true},
		{" SEQUENCE ", queue.KindSequence, true},
		{"", "", false},
		{"audio", "", false},
	}
	for _, tc := range cases {
		got, ok := queue.ParseKind(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseKind(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestJobLifecycleHelpers(t *testing.T) {
	job := &queue.Job{Status: queue.StatusProcessing}
	if !job.IsProcessing() || job.IsTerminal() {
		t.Fatalf("processing job misclassified: %#v", job)
	}

	job.SetProgress("Export", "frame 3", 30)
	if job.ProgressStage != "Export" || job.ProgressPercent != 30 || job.ProgressMessage != "frame 3" {
		t.Fatalf("SetProgress result: %#v", job)
	}

	job.SetFailed("encoder exited")
	if job.Status != queue.StatusFailed || !job.IsTerminal() {
		t.Fatalf("SetFailed status: %#v", job)
	}
	if job.ErrorMessage != "encoder exited" || job.ProgressMessage != "encoder exited" {
		t.Fatalf("SetFailed messages: %#v", job)
	}
	if job.ProgressPercent != 0 || job.LastHeartbeat != nil {
		t.Fatalf("SetFailed should reset progress and heartbeat: %#v", job)
	}

	job.SetCompleted("80 frames written")
	if job.Status != queue.StatusCompleted || job.ProgressPercent != 100 {
		t.Fatalf("SetCompleted: %#v", job)
	}
	if job.ErrorMessage != "" {
		t.Fatalf("SetCompleted should clear the error: %q", job.ErrorMessage)
	}
}
