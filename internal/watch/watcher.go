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

// DefaultDebounce is how long a file must stay quiet before it is handed over
const DefaultDebounce = 500 * time.Millisecond

// Handler receives each settled file
type Handler func(ctx context.Context, path string)

// Watcher reports files that land in a directory (non-recursive).
// Create and write events are debounced per path, so a file still being
// downloaded is handed over once, after its last write. A handed-over path
// is not reported again until it is removed or renamed away.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
	handled map[string]struct{}
}

// New creates a watcher for dir
func New(dir string, logger *zap.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   logger,
		watcher:  fw,
		pending:  make(map[string]time.Time),
		handled:  make(map[string]struct{}),
	}, nil
}

// SetDebounce changes the quiet period; call before Run
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run watches until ctx ends, calling handler for every settled file.
// Handler calls are sequential.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer func() { _ = w.watcher.Close() }()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching directory", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				if ctx.Err() != nil {
					return nil
				}
				if isRegularFile(path) {
					handler(ctx, path)
				}
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.handled, event.Name)
		delete(w.pending, event.Name)
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if _, done := w.handled[event.Name]; done {
		return
	}
	w.pending[event.Name] = time.Now()
}

// settled removes and returns the paths quiet for at least the debounce period
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
			w.handled[path] = struct{}{}
		}
	}
	return ready
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
