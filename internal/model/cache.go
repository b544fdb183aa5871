package model

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ekisa-team/scribe/internal/backend"
	"github.com/ekisa-team/scribe/internal/xfs"
)

// Key identifies one cached model instance. Two requests for the same
// artifact under different device or precision settings never share an
// instance.
type Key struct {
	Path        string
	Device      string
	ComputeType string
}

// Bundle is a loaded model instance plus its resolved execution settings.
// Bundles are owned by the Cache and shared read-only by requests; they
// are closed only at process teardown (no eviction).
type Bundle struct {
	Instance    backend.Instance
	Path        string
	Device      string
	ComputeType string
}

// entry is the single-flight promise for one key: the winner runs the
// load inside once, losers block on once and read the outcome.
type entry struct {
	once   sync.Once
	bundle *Bundle
	err    error
}

// Cache maps cache keys to loaded bundles with an at-most-one-load-per-key
// guarantee under concurrent access. The map lock is scoped strictly to
// check-and-insert; the load itself runs outside it so concurrent callers
// for other keys are never blocked behind a slow load.
type Cache struct {
	recognizer backend.Recognizer
	entries    map[Key]*entry
	mu         sync.Mutex
}

// NewCache creates a Cache backed by recognizer.
func NewCache(recognizer backend.Recognizer) *Cache {
	return &Cache{
		recognizer: recognizer,
		entries:    make(map[Key]*entry),
	}
}

func (c *Cache) key(path string) Key {
	return Key{
		Path:        xfs.Resolve(path),
		Device:      c.recognizer.Device(),
		ComputeType: c.recognizer.ComputeType(),
	}
}

// GetOrLoad returns the bundle for path, loading it if absent. Concurrent
// callers for the same key share one in-flight load. A failed load is not
// cached: a later call may retry.
func (c *Cache) GetOrLoad(ctx context.Context, path string) (*Bundle, error) {
	key := c.key(path)

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		instance, err := c.recognizer.Load(ctx, key.Path)

		// Publish under the map lock so TryGet's locked read observes a
		// fully initialized bundle.
		c.mu.Lock()
		if err != nil {
			e.err = err
		} else {
			e.bundle = &Bundle{
				Instance:    instance,
				Path:        key.Path,
				Device:      key.Device,
				ComputeType: key.ComputeType,
			}
		}
		c.mu.Unlock()
	})

	if e.err != nil {
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, e.err
	}

	return e.bundle, nil
}

// TryGet is a read-only lookup that never triggers a load. It reports
// false while a load is still in flight. The bundle check happens under
// the map lock: loaders publish under the same lock, so a lookup racing
// an in-flight load observes either nil or a fully initialized bundle.
func (c *Cache) TryGet(path string) (*Bundle, bool) {
	key := c.key(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.bundle == nil {
		return nil, false
	}
	return e.bundle, true
}

// LoadAll eagerly loads every registered model and returns the per-alias
// failures. One bad artifact must not prevent the others from loading.
func (c *Cache) LoadAll(ctx context.Context, registry *Registry) map[string]error {
	failures := make(map[string]error)

	for alias, path := range registry.Snapshot() {
		if _, err := c.GetOrLoad(ctx, path); err != nil {
			failures[alias] = err
			slog.Warn("Failed to load model", "alias", alias, "path", path, "error", err)
			continue
		}
		slog.Info("Model loaded", "alias", alias, "path", path,
			"device", c.recognizer.Device(), "compute_type", c.recognizer.ComputeType())
	}

	return failures
}

// Close closes every loaded instance. Called at process teardown only.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for key, e := range c.entries {
		if e.bundle == nil {
			continue
		}
		if err := e.bundle.Instance.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.entries, key)
	}

	return firstErr
}
