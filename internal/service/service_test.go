package service_test

import (
	"context"
	"testing"
	"time"

	"ora2mongo/internal/service"
)

// ─────────────────────────────────────────────────────────────
// RunningJobsGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunningGuard_TryLock(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("sql/") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("sql/") {
		t.Fatal("expected second TryLock for same key to fail")
	}
	if !g.TryLock("other/") {
		t.Fatal("expected TryLock for different key to succeed")
	}
	if !g.Running("sql/") {
		t.Fatal("expected sql/ to be reported running")
	}
	g.Unlock("sql/")
	g.Unlock("other/")

	if g.Running("sql/") {
		t.Fatal("expected sql/ to be released")
	}
	if !g.TryLock("sql/") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("sql/")
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("sql/") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("sql/")
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

func TestRunningGuard_WaitAll_ContextCancel(t *testing.T) {
	var g service.ExportedRunningGuard
	g.TryLock("sql/")
	defer g.Unlock("sql/")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	g.WaitAll(ctx)
	if time.Since(start) > time.Second {
		t.Fatal("WaitAll ignored context cancellation")
	}
}
