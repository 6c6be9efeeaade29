// Package watch observes the session root and reports session log
// files that have settled, so an analysis run can pick up fresh
// sessions without polling.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event reports one session log file that stopped changing.
type Event struct {
	Path      string
	Timestamp time.Time
}

// Watcher watches root/<project>/*.jsonl with per-file debouncing.
// Session logs are appended to for the whole session, so an event is
// emitted only after a file has been quiet for the debounce window.
type Watcher struct {
	root     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	events   chan Event
	stop     chan struct{}
	logger   *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher creates a watcher over the session root.
func NewWatcher(root string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("initializing filesystem watcher: %w", err)
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		watcher:  fsw,
		events:   make(chan Event, 16),
		stop:     make(chan struct{}),
		logger:   logger,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Start begins watching. The root and its existing project directories
// are watched; project directories created later are picked up from
// create events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("watching %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("listing %s: %w", w.root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			// Best effort, a vanished directory is not fatal.
			_ = w.watcher.Add(filepath.Join(w.root, entry.Name()))
		}
	}

	go w.loop(ctx)
	return nil
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		return
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.timers {
		t.Stop()
	}
}

// Events returns the channel of settled session logs.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(event.Name)
			return
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !strings.HasSuffix(event.Name, ".jsonl") {
		return
	}
	w.resetTimer(event.Name)
}

// resetTimer restarts the debounce clock for a path; the event fires
// once the file stays quiet for the whole window.
func (w *Watcher) resetTimer(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case <-w.stop:
		case w.events <- Event{Path: path, Timestamp: time.Now()}:
		default:
			w.logger.Warn("event channel full, dropping", zap.String("path", path))
		}
	})
}
