package monitor

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mcp-file-gateway/internal/models"
	"mcp-file-gateway/pkg/logging"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []models.RootEvent
}

func (r *eventRecorder) record(event models.RootEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) snapshot() []models.RootEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.RootEvent(nil), r.events...)
}

func newTestMonitor(t *testing.T) (*RootMonitor, *eventRecorder) {
	t.Helper()
	monitor, err := NewRootMonitor(logging.NewNopLogger(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to create root monitor: %v", err)
	}
	t.Cleanup(func() { monitor.Stop() })

	recorder := &eventRecorder{}
	monitor.OnRootEvent(recorder.record)
	return monitor, recorder
}

func TestNewRootMonitor(t *testing.T) {
	monitor, err := NewRootMonitor(logging.NewNopLogger(), 0)
	if err != nil {
		t.Fatalf("Failed to create root monitor: %v", err)
	}
	defer monitor.Stop()

	if monitor.debounceDelay != DefaultDebounceDelay {
		t.Errorf("Expected default debounce delay, got %v", monitor.debounceDelay)
	}
}

func TestStartSkipsMissingRoots(t *testing.T) {
	monitor, _ := newTestMonitor(t)
	root := t.TempDir()

	if err := monitor.Start([]string{"/non/existent/path", root}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := monitor.Watched(); len(got) != 1 || got[0] != root {
		t.Errorf("Expected only %s to be watched, got %v", root, got)
	}
}

func TestStartFailsWhenNothingCanBeWatched(t *testing.T) {
	monitor, _ := newTestMonitor(t)

	if err := monitor.Start([]string{"/non/existent/path"}); err == nil {
		t.Error("Expected error when no root can be watched")
	}
}

func TestRootRemovalIsReported(t *testing.T) {
	monitor, recorder := newTestMonitor(t)
	root := filepath.Join(t.TempDir(), "root")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatal(err)
	}
	if err := monitor.Start([]string{root}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.Remove(root); err != nil {
		t.Fatal(err)
	}

	require.Eventually(t, func() bool { return len(recorder.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)

	events := recorder.snapshot()
	if len(events) != 1 {
		t.Fatalf("Expected one debounced event, got %v", events)
	}
	if events[0].Root != root || events[0].Type != RootRemoved {
		t.Errorf("Unexpected event %+v", events[0])
	}
}

func TestRootRenameIsReported(t *testing.T) {
	monitor, recorder := newTestMonitor(t)
	base := t.TempDir()
	root := filepath.Join(base, "root")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatal(err)
	}
	if err := monitor.Start([]string{root}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.Rename(root, filepath.Join(base, "moved")); err != nil {
		t.Fatal(err)
	}

	require.Eventually(t, func() bool { return len(recorder.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	if got := recorder.snapshot()[0]; got.Root != root {
		t.Errorf("Expected event for %s, got %+v", root, got)
	}
}

func TestChangesInsideRootAreIgnored(t *testing.T) {
	monitor, recorder := newTestMonitor(t)
	root := t.TempDir()
	if err := monitor.Start([]string{root}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	file := filepath.Join(root, "a.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
	if events := recorder.snapshot(); len(events) != 0 {
		t.Errorf("Expected no events, got %v", events)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	monitor, err := NewRootMonitor(logging.NewNopLogger(), 0)
	if err != nil {
		t.Fatalf("Failed to create root monitor: %v", err)
	}

	if err := monitor.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := monitor.Stop(); err != nil {
		t.Errorf("Second Stop call failed: %v", err)
	}
}
