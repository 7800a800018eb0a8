package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_TriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(target, []byte(`{"v":1}`), 0644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	var calls atomic.Int32
	w := New(target, func(context.Context) { calls.Add(1) }, nil)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(target, []byte(`{"v":2}`), 0644); err != nil {
		t.Fatalf("rewrite payload: %v", err)
	}

	if !waitFor(t, func() bool { return calls.Load() >= 1 }, 2*time.Second) {
		t.Fatal("onChange was not called after write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestWatcher_CallsDoNotOverlap(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(target, []byte(`{"v":1}`), 0644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	var calls, inFlight, maxInFlight atomic.Int32
	w := New(target, func(context.Context) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			prev := maxInFlight.Load()
			if n <= prev || maxInFlight.CompareAndSwap(prev, n) {
				break
			}
		}
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
	}, nil)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(target, []byte(`{"v":2}`), 0644); err != nil {
		t.Fatalf("rewrite payload: %v", err)
	}
	if !waitFor(t, func() bool { return inFlight.Load() == 1 }, 2*time.Second) {
		t.Fatal("first onChange call did not start")
	}

	// Save again while the first call is still running.
	if err := os.WriteFile(target, []byte(`{"v":3}`), 0644); err != nil {
		t.Fatalf("rewrite payload: %v", err)
	}

	if !waitFor(t, func() bool { return calls.Load() >= 2 }, 3*time.Second) {
		t.Fatal("second onChange call did not run")
	}
	waitFor(t, func() bool { return inFlight.Load() == 0 }, 2*time.Second)

	if n := maxInFlight.Load(); n != 1 {
		t.Errorf("max concurrent onChange calls = %d, want 1", n)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(target, []byte(`{}`), 0644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	var calls atomic.Int32
	w := New(target, func(context.Context) { calls.Add(1) }, nil)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0644); err != nil {
		t.Fatalf("write other: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("onChange called %d times for unrelated file", n)
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope", "payload.json"), func(context.Context) {}, nil)

	if err := w.Run(context.Background()); err == nil {
		t.Error("Run() expected error for missing directory")
	}
}
