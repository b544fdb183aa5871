package config

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the tunables overlay for changes.
type Watcher struct {
	path     string
	onReload func(*Tunables, error)
	current  *Tunables
	mu       sync.RWMutex
	reloads  atomic.Uint32
}

// NewWatcher loads the overlay at path and watches it for writes. The
// callback receives every successful or failed reload.
func NewWatcher(path string, onReload func(*Tunables, error)) (*Watcher, error) {
	watcher := &Watcher{
		path:     path,
		onReload: onReload,
	}

	tunables, err := LoadAndValidate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial tunables: %w", err)
	}
	watcher.current = tunables

	go watcher.watch()

	return watcher, nil
}

// watch watches for overlay changes.
func (cw *Watcher) watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create file watcher", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(cw.path); err != nil {
		slog.Error("Failed to watch overlay file", "path", cw.path, "error", err)
		return
	}

	var timer *time.Timer
	const debounce = 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Write == fsnotify.Write {
				if timer != nil {
					timer.Stop()
				}

				timer = time.AfterFunc(debounce, func() {
					cw.reload()
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			slog.Error("Watcher error", "error", err)
		}
	}
}

// reload reloads the overlay file.
func (cw *Watcher) reload() {
	count := cw.reloads.Add(1)
	slog.Info("Reloading tunables overlay", "path", cw.path, "count", count)

	tunables, err := LoadAndValidate(cw.path)
	if err != nil {
		slog.Error("Failed to reload tunables", "error", err)
		cw.onReload(nil, err)
		return
	}

	cw.mu.Lock()
	cw.current = tunables
	cw.mu.Unlock()

	slog.Info("Tunables reloaded successfully", "count", count)
	cw.onReload(tunables, nil)
}

// Snapshot returns the current tunables snapshot (thread-safe).
func (cw *Watcher) Snapshot() *Tunables {
	cw.mu.RLock()
	defer cw.mu.RUnlock()

	return cw.current
}

// ReloadCount returns the number of times the overlay has been reloaded.
func (cw *Watcher) ReloadCount() uint32 {
	return cw.reloads.Load()
}
