package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the configuration when the config file changes and
// notifies subscribers with the fresh snapshot. Subscribers apply what
// can change at runtime (the cache enable toggles); capacities only
// affect stores built after a restart, which is acceptable because
// cache state is disposable.
type Watcher struct {
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu          sync.Mutex
	current     *Config
	subscribers []func(*Config)

	// Editors write files with bursts of events; reloads are debounced.
	debounce time.Duration
	timer    *time.Timer
}

// NewWatcher creates a watcher for the given config file. The initial
// snapshot must already be loaded by the caller.
func NewWatcher(path string, initial *Config, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the file: editors replace files by
	// rename, which drops a direct file watch.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:     path,
		logger:   logger,
		watcher:  fsw,
		current:  initial,
		debounce: 250 * time.Millisecond,
	}, nil
}

// Subscribe registers a callback invoked with every fresh snapshot.
func (w *Watcher) Subscribe(fn func(*Config)) {
	w.mu.Lock()
	w.subscribers = append(w.subscribers, fn)
	w.mu.Unlock()
}

// Current returns the latest loaded snapshot.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run processes file events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	w.timer = nil
	w.mu.Unlock()

	cfg := Default()
	if err := loadFile(w.path, cfg); err != nil {
		w.logger.Warn("Config reload failed, keeping previous snapshot", zap.Error(err))
		return
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("Reloaded config invalid, keeping previous snapshot", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = cfg
	subscribers := append([]func(*Config){}, w.subscribers...)
	w.mu.Unlock()

	w.logger.Info("Configuration reloaded", zap.String("path", w.path))
	for _, fn := range subscribers {
		fn(cfg)
	}
}
