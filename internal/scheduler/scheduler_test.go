package scheduler

// NOTE: Tests cannot use t.Parallel() due to shared package state, and the
// lifecycle assertions must run in order.

import (
	"errors"
	"testing"
)

func TestSchedulerLifecycle(t *testing.T) {
	if _, err := AddJob("noop", "* * * * *", func() {}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized before Init, got %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := Init(); err != nil {
		t.Fatalf("second init should be a no-op: %v", err)
	}

	if _, err := AddJob("", "* * * * *", func() {}); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := AddJob("noop", "  ", func() {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := AddJob("noop", "not a cron", func() {}); err == nil {
		t.Fatalf("expected error for malformed cron expression")
	}

	job, err := AddJob("noop", "0 9 * * *", func() {})
	if err != nil {
		t.Fatalf("add job: %v", err)
	}
	if job.Name() != "noop" {
		t.Fatalf("job name: %s", job.Name())
	}

	if err := Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := Stop(); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
}
