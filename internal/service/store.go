package service

import (
	"maps"
	"sync"
)

// Entry is one recorded request outcome. Entries are copied on the way in
// and on the way out so stored state can never be mutated externally.
type Entry map[string]any

// ResponseStore is a thread-safe bounded-history buffer of the latest
// request outcomes, oldest first.
type ResponseStore struct {
	history []Entry
	max     int
	mu      sync.Mutex
}

// NewResponseStore creates a store retaining at most max entries.
func NewResponseStore(max int) *ResponseStore {
	if max < 1 {
		max = 1
	}
	return &ResponseStore{max: max}
}

// Add appends entry, evicting the oldest entries until the history fits
// the configured maximum again.
func (s *ResponseStore) Add(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, maps.Clone(entry))
	if len(s.history) > s.max {
		s.history = s.history[len(s.history)-s.max:]
	}
}

// Latest returns a copy of the most recently added entry.
func (s *ResponseStore) Latest() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return nil, false
	}
	return maps.Clone(s.history[len(s.history)-1]), true
}

// History returns copies of all retained entries, oldest first.
func (s *ResponseStore) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, len(s.history))
	for i, entry := range s.history {
		entries[i] = maps.Clone(entry)
	}
	return entries
}

// Len returns the number of retained entries.
func (s *ResponseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.history)
}
