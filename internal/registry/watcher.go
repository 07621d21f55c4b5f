package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"go.philip.id/vanity/internal/metrics"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a repositories file into a Registry whenever it changes.
type Watcher struct {
	path     string
	registry Registry
	logger   *zap.Logger
	debounce time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for path. Nothing is watched until Start.
func NewWatcher(path string, reg Registry, logger *zap.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		registry: reg,
		logger:   logger.Named("registry"),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Reload reads the file and replaces the registry contents. A file that fails
// to parse or validate leaves the registry untouched.
func (w *Watcher) Reload() error {
	repos, err := LoadFile(w.path)
	if err == nil {
		err = w.registry.Replace(repos)
	}
	if err != nil {
		metrics.RecordRegistryReload(metrics.ResultFailure)
		w.logger.Error("repositories reload failed", zap.String("path", w.path), zap.Error(err))
		return fmt.Errorf("reload %s: %w", w.path, err)
	}

	metrics.RecordRegistryReload(metrics.ResultSuccess)
	metrics.SetRegistryRepositories(len(repos))
	w.logger.Info("repositories reloaded", zap.String("path", w.path), zap.Int("count", len(repos)))
	return nil
}

// Start begins watching the directory holding the file. Editors that replace
// the file instead of writing it in place are covered that way.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done != nil {
		return errors.New("watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	w.logger.Info("watching repositories file", zap.String("path", w.path))
	go w.loop(ctx, fsw)
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.done)
	defer func() {
		_ = fsw.Close()
	}()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("repositories watcher stopped")
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug("repositories file changed", zap.String("op", event.Op.String()))
				pending = time.After(w.debounce)
			}

		case <-pending:
			pending = nil
			_ = w.Reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("repositories watcher error", zap.Error(err))
		}
	}
}
