package testsupport

import (
	"context"
	"testing"

	"videolab/internal/config"
	"videolab/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob enqueues an export job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, spec queue.JobSpec) *queue.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), spec)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}

// VideoJobSpec returns a minimal valid spec for a single-file video export.
func VideoJobSpec(source, output string) queue.JobSpec {
	return queue.JobSpec{
		SourcePath: source,
		OutputPath: output,
		Kind:       queue.KindVideo,
		Format:     "mp4",
		Quality:    23,
	}
}
