// Package model maps user-facing model selectors to artifact paths and
// caches loaded instances, one load per key for the process lifetime.
package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ekisa-team/scribe/internal/xfs"
)

// Registry maps model aliases to resolved artifact paths. It is populated
// once at startup by Discover plus ResolveDefault and never refreshed; a
// restart is required to pick up new artifacts.
type Registry struct {
	aliases      map[string]string
	defaultAlias string
	mu           sync.RWMutex
}

// Discover scans root and registers every immediate subdirectory as one
// alias. A missing root yields an empty registry rather than an error:
// the default model may live outside the root and be given by path.
func Discover(root string) *Registry {
	aliases := make(map[string]string)

	entries, err := os.ReadDir(root)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			aliases[entry.Name()] = xfs.Resolve(filepath.Join(root, entry.Name()))
		}
	}

	return &Registry{aliases: aliases}
}

// ResolveDefault marks the model at path as the default. When the path is
// already registered its alias is reused; otherwise an alias is
// synthesized from the final path segment and inserted. The default model
// is mandatory: a path that is not a directory is a startup failure.
func (r *Registry) ResolveDefault(path string) (string, error) {
	resolved := xfs.Resolve(path)
	if !xfs.IsDir(resolved) {
		return "", fmt.Errorf("%w: %s (download it before starting the server)", ErrDefaultMissing, path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for alias, registered := range r.aliases {
		if registered == resolved {
			r.defaultAlias = alias
			return alias, nil
		}
	}

	alias := filepath.Base(resolved)
	if alias == "." || alias == string(filepath.Separator) {
		alias = "default"
	}
	if _, exists := r.aliases[alias]; !exists {
		r.aliases[alias] = resolved
	}
	r.defaultAlias = alias

	return alias, nil
}

// DefaultAlias returns the alias chosen by ResolveDefault.
func (r *Registry) DefaultAlias() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.defaultAlias
}

// ResolveSelection maps a user-supplied selector to an (alias, path) pair.
// An empty selector picks the default; a known alias wins over path
// interpretation; anything else is resolved as a filesystem path and
// matched against registered paths.
func (r *Registry) ResolveSelection(selector string) (alias, path string, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if selector == "" {
		path, ok := r.aliases[r.defaultAlias]
		if !ok {
			return "", "", fmt.Errorf("%w: no default model resolved", ErrNotFound)
		}
		return r.defaultAlias, path, nil
	}

	if path, ok := r.aliases[selector]; ok {
		return selector, path, nil
	}

	candidate := xfs.Resolve(selector)
	for alias, registered := range r.aliases {
		if registered == candidate {
			return alias, registered, nil
		}
	}

	return "", "", fmt.Errorf("%w: %q", ErrNotFound, selector)
}

// Aliases returns all registered aliases, sorted.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	aliases := make([]string, 0, len(r.aliases))
	for alias := range r.aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	return aliases
}

// Snapshot returns a copy of the alias to path mapping.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]string, len(r.aliases))
	for alias, path := range r.aliases {
		snapshot[alias] = path
	}

	return snapshot
}

// Path returns the registered path for alias.
func (r *Registry) Path(alias string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path, ok := r.aliases[alias]
	return path, ok
}
