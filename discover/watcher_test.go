package discover

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatcherFiresOnceAfterBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	sub := filepath.Join(root, "Chairs")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var calls atomic.Int32
	fired := make(chan struct{}, 4)
	w, err := NewWatcher([]string{root}, 100*time.Millisecond, func() {
		calls.Add(1)
		fired <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if err := os.WriteFile(filepath.Join(sub, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected change callback")
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one debounced callback, got %d", n)
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{t.TempDir()}, 0, nil, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcherMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "missing")}, 0, nil, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.Start()
	w.Stop()
}

func TestWatcherStartAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{t.TempDir()}, 0, nil, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.Start()
	w.Stop()
	w.Start()
	w.Stop()
}
