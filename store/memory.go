// In-memory page-state store.
//
// Information Hiding:
// - Map storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Suitable for testing and ephemeral sessions

package store

import (
	"context"
	"sync"

	"github.com/richinex/synthra/model"
)

// InMemoryStore implements Store using an in-memory map.
// Data is lost when the process terminates.
type InMemoryStore struct {
	mu        sync.RWMutex
	pages     map[string]model.PageState
	observers []Observer

	// now is the timestamp source, overridable in tests.
	now func() int64
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		pages: make(map[string]model.PageState),
		now:   model.NowMillis,
	}
}

// Get returns the stored state for key, or the zero state.
func (s *InMemoryStore) Get(ctx context.Context, key string) model.PageState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.pages[key]
	if !ok {
		return model.PageState{}
	}
	return copyState(state)
}

// MergeSummary replaces the summary for key.
func (s *InMemoryStore) MergeSummary(ctx context.Context, key string, summary model.Summary) error {
	s.mutate(key, func(state *model.PageState) {
		copied := summary
		state.Summary = &copied
	})
	return nil
}

// MergeHighlights replaces the full highlight list for key.
func (s *InMemoryStore) MergeHighlights(ctx context.Context, key string, highlights []model.Highlight) error {
	s.mutate(key, func(state *model.PageState) {
		copied := make([]model.Highlight, len(highlights))
		copy(copied, highlights)
		state.Highlights = copied
	})
	return nil
}

// MergeResearch replaces the research result for key.
func (s *InMemoryStore) MergeResearch(ctx context.Context, key string, research model.Research) error {
	s.mutate(key, func(state *model.PageState) {
		copied := research
		state.Research = &copied
	})
	return nil
}

// Clear resets all artifact fields for key to absent.
func (s *InMemoryStore) Clear(ctx context.Context, key string) error {
	s.mutate(key, func(state *model.PageState) {
		state.Summary = nil
		state.Highlights = nil
		state.Research = nil
	})
	return nil
}

// ListHistory projects all stored states, newest first.
func (s *InMemoryStore) ListHistory(ctx context.Context, limit int) ([]model.TabHistoryEntry, error) {
	s.mu.RLock()
	entries := make([]model.TabHistoryEntry, 0, len(s.pages))
	for key, state := range s.pages {
		entries = append(entries, historyEntry(key, state))
	}
	s.mu.RUnlock()

	sortHistory(entries)
	return clampHistory(entries, limit), nil
}

// Subscribe registers an observer for post-persist notifications.
func (s *InMemoryStore) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

// mutate applies fn to the state for key, bumps LastUpdated, and
// notifies observers outside the lock.
func (s *InMemoryStore) mutate(key string, fn func(*model.PageState)) {
	s.mu.Lock()
	state := s.pages[key]
	fn(&state)
	state.LastUpdated = s.now()
	s.pages[key] = state
	notified := copyState(state)
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, obs := range observers {
		obs(key, notified)
	}
}

// copyState returns a deep-enough copy to protect internal state from
// external mutations.
func copyState(state model.PageState) model.PageState {
	copied := state
	if state.Summary != nil {
		sum := *state.Summary
		copied.Summary = &sum
	}
	if state.Highlights != nil {
		hs := make([]model.Highlight, len(state.Highlights))
		copy(hs, state.Highlights)
		copied.Highlights = hs
	}
	if state.Research != nil {
		res := *state.Research
		copied.Research = &res
	}
	return copied
}

// Verify InMemoryStore implements Store
var _ Store = (*InMemoryStore)(nil)
