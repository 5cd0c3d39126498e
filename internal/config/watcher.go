package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file for changes and invokes a callback
// with each successfully reloaded configuration. Invalid edits are
// logged and skipped; the previous configuration stays in effect.
type Watcher struct {
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	configPath string
	onReload   func(*Config)
	done       chan struct{}
	mu         sync.Mutex
	running    bool
}

// NewWatcher creates a watcher for the given config file path.
func NewWatcher(configPath string, onReload func(*Config), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:    watcher,
		logger:     logger,
		configPath: configPath,
		onReload:   onReload,
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching for config changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory containing the file (more reliable for
	// editors that replace the file on save).
	dir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.watch()
	return nil
}

// watch is the main watch loop.
func (w *Watcher) watch() {
	filename := filepath.Base(w.configPath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug("config file changed, reloading", "file", w.configPath)
				cfg, err := LoadConfig(w.configPath)
				if err != nil {
					w.logger.Warn("config file changed but reload failed", "error", err)
					continue
				}
				if w.onReload != nil {
					w.onReload(cfg)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)
	return w.watcher.Close()
}
