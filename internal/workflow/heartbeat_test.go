package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"videolab/internal/logging"
	"videolab/internal/queue"
	"videolab/internal/testsupport"
	"videolab/internal/workflow"
)

func TestHeartbeatMonitorRefreshesClaimedJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewJob(t, store, testsupport.VideoJobSpec("/media/in.mp4", "/media/out.mp4"))

	claimed, err := store.Claim(context.Background())
	if err != nil || claimed == nil {
		t.Fatalf("Claim: %v %v", claimed, err)
	}
	initial := *claimed.LastHeartbeat

	monitor := workflow.NewHeartbeatMonitor(store, logging.NewNop(), 10*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go monitor.StartLoop(ctx, &wg, claimed.ID)

	deadline := time.Now().Add(5 * time.Second)
	for {
		current, err := store.GetByID(context.Background(), claimed.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if current.LastHeartbeat != nil && current.LastHeartbeat.After(initial) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("heartbeat never advanced")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	wg.Wait()
}

func TestHeartbeatMonitorReclaimsStale(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewJob(t, store, testsupport.VideoJobSpec("/media/stale.mp4", "/media/out1.mp4"))
	testsupport.NewJob(t, store, testsupport.VideoJobSpec("/media/live.mp4", "/media/out2.mp4"))

	stale, err := store.Claim(context.Background())
	if err != nil || stale == nil {
		t.Fatalf("Claim: %v %v", stale, err)
	}
	live, err := store.Claim(context.Background())
	if err != nil || live == nil {
		t.Fatalf("Claim: %v %v", live, err)
	}

	old := time.Now().Add(-2 * time.Hour)
	stale.LastHeartbeat = &old
	if err := store.Update(context.Background(), stale); err != nil {
		t.Fatalf("Update: %v", err)
	}

	monitor := workflow.NewHeartbeatMonitor(store, logging.NewNop(), time.Second, time.Hour)
	if err := monitor.ReclaimStale(context.Background()); err != nil {
		t.Fatalf("ReclaimStale: %v", err)
	}

	reclaimed, err := store.GetByID(context.Background(), stale.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reclaimed.Status != queue.StatusPending {
		t.Fatalf("stale job status = %q, want %q", reclaimed.Status, queue.StatusPending)
	}

	kept, err := store.GetByID(context.Background(), live.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if kept.Status != queue.StatusProcessing {
		t.Fatalf("live job status = %q, want %q", kept.Status, queue.StatusProcessing)
	}
}

func TestHeartbeatMonitorZeroTimeoutNeverReclaims(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewJob(t, store, testsupport.VideoJobSpec("/media/in.mp4", "/media/out.mp4"))

	claimed, err := store.Claim(context.Background())
	if err != nil || claimed == nil {
		t.Fatalf("Claim: %v %v", claimed, err)
	}
	old := time.Now().Add(-48 * time.Hour)
	claimed.LastHeartbeat = &old
	if err := store.Update(context.Background(), claimed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	monitor := workflow.NewHeartbeatMonitor(store, logging.NewNop(), time.Second, 0)
	if err := monitor.ReclaimStale(context.Background()); err != nil {
		t.Fatalf("ReclaimStale: %v", err)
	}

	job, err := store.GetByID(context.Background(), claimed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != queue.StatusProcessing {
		t.Fatalf("status = %q, want processing untouched", job.Status)
	}
}
