package monitor

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mcp-file-gateway/internal/models"
	"mcp-file-gateway/pkg/logging"
)

// DefaultDebounceDelay coalesces the burst of events a rename or removal produces
const DefaultDebounceDelay = 200 * time.Millisecond

// Root event types
const (
	RootRemoved = "removed"
	RootRenamed = "renamed"
)

// RootMonitor watches the allowed roots and reports when one of them is
// removed or renamed. Changes inside a root are ignored.
type RootMonitor struct {
	watcher       *fsnotify.Watcher
	debounceDelay time.Duration
	logger        *logging.StructuredLogger

	mu        sync.Mutex
	roots     map[string]bool
	callbacks []func(models.RootEvent)
	timers    map[string]*time.Timer
	started   bool
	stopped   bool
}

// NewRootMonitor creates a root monitor; a zero delay selects DefaultDebounceDelay
func NewRootMonitor(logger *logging.StructuredLogger, debounceDelay time.Duration) (*RootMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounceDelay <= 0 {
		debounceDelay = DefaultDebounceDelay
	}

	return &RootMonitor{
		watcher:       watcher,
		debounceDelay: debounceDelay,
		logger:        logger,
		roots:         make(map[string]bool),
		timers:        make(map[string]*time.Timer),
	}, nil
}

// OnRootEvent registers a callback for root events
func (m *RootMonitor) OnRootEvent(callback func(models.RootEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// Start watches every existing root. Roots that do not exist are skipped
// with a warning; it is an error only if none of the given roots could be watched.
func (m *RootMonitor) Start(roots []string) error {
	watched := 0
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			m.logger.WithContext("root", root).WithError(err).Warn("Allowed root is not accessible, not watching it")
			continue
		}
		if err := m.watcher.Add(root); err != nil {
			m.logger.WithContext("root", root).WithError(err).Warn("Failed to watch allowed root")
			continue
		}

		m.mu.Lock()
		m.roots[root] = true
		m.mu.Unlock()
		watched++
	}

	if watched == 0 && len(roots) > 0 {
		return fmt.Errorf("none of the %d allowed roots could be watched", len(roots))
	}

	m.mu.Lock()
	alreadyStarted := m.started
	m.started = true
	m.mu.Unlock()

	if !alreadyStarted {
		go m.monitorEvents()
	}

	m.logger.WithContext("watched_roots", watched).Info("Started monitoring allowed roots")
	return nil
}

// Stop stops watching and cancels pending notifications. It is safe to call twice.
func (m *RootMonitor) Stop() error {
	m.mu.Lock()
	m.stopped = true
	for path, timer := range m.timers {
		timer.Stop()
		delete(m.timers, path)
	}
	m.mu.Unlock()

	return m.watcher.Close()
}

// monitorEvents processes watcher events with per-root debouncing
func (m *RootMonitor) monitorEvents() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleEvent(event)

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.WithError(err).Warn("File watcher error")
		}
	}
}

func (m *RootMonitor) handleEvent(event fsnotify.Event) {
	var eventType string
	switch {
	case event.Has(fsnotify.Remove):
		eventType = RootRemoved
	case event.Has(fsnotify.Rename):
		eventType = RootRenamed
	default:
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.roots[event.Name] || m.stopped {
		return
	}

	if timer, exists := m.timers[event.Name]; exists {
		timer.Stop()
	}

	rootEvent := models.RootEvent{Root: event.Name, Type: eventType}
	m.timers[event.Name] = time.AfterFunc(m.debounceDelay, func() {
		m.mu.Lock()
		delete(m.timers, rootEvent.Root)
		delete(m.roots, rootEvent.Root)
		stopped := m.stopped
		callbacks := append([]func(models.RootEvent){}, m.callbacks...)
		m.mu.Unlock()

		if stopped {
			return
		}
		rootEvent.Timestamp = time.Now()
		for _, callback := range callbacks {
			callback(rootEvent)
		}
	})
}

// Watched returns the roots currently being watched
func (m *RootMonitor) Watched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.roots))
	for root := range m.roots {
		out = append(out, root)
	}
	return out
}
