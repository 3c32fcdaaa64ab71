package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long the watcher waits for further writes before
// reloading; editors commonly emit several events per save.
const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a config file when it changes on disk. Reload failures
// keep the previous config; the callback only sees configs that parsed and
// validated.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload func(*Config)
	logger   *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the reload debounce delay.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a watcher for the given config file. onReload is called
// with each successfully reloaded config.
func NewWatcher(path string, onReload func(*Config), opts ...WatcherOption) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if onReload == nil {
		return nil, fmt.Errorf("reload callback is required")
	}

	w := &Watcher{
		path:     path,
		debounce: defaultDebounce,
		onReload: onReload,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file itself so atomic rename-based saves are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.logger.Debug("Watching config file", "path", w.path)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Config watch error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFromFile(w.path)
	if err != nil {
		w.logger.Warn("Config reload failed, keeping previous config",
			"path", w.path, "error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("Reloaded config invalid, keeping previous config",
			"path", w.path, "error", err)
		return
	}

	w.logger.Info("Config reloaded", "path", w.path)
	w.onReload(cfg)
}
