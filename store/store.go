// Package store provides persistence for per-page AI artifacts.
//
// Each record is keyed by a canonical PageKey and holds the cached
// summary, highlight list, and research result for that page. Records
// are created lazily with all fields absent and are never deleted
// automatically; Clear resets a record's fields in place.
package store

import (
	"context"
	"sort"

	"github.com/richinex/synthra/model"
	"github.com/richinex/synthra/pageid"
)

// Observer is notified after a merge or clear has been persisted.
// Observers receive the full post-mutation state for the key.
type Observer func(key string, state model.PageState)

// Store is the per-page state store.
//
// Get never fails: a storage fault degrades to the zero PageState so
// the caller is never blocked on a read. Each Merge* persists its
// change durably before returning and bumps LastUpdated. Highlights
// are replaced wholesale; callers desiring accumulation must
// read-modify-write. Implementations are safe for concurrent use with
// last-write-wins semantics per key.
type Store interface {
	// Get returns the stored state for key, or a freshly-defaulted
	// all-absent state if the key has never been seen.
	Get(ctx context.Context, key string) model.PageState

	// MergeSummary replaces the summary for key.
	MergeSummary(ctx context.Context, key string, summary model.Summary) error

	// MergeHighlights replaces the full highlight list for key.
	MergeHighlights(ctx context.Context, key string, highlights []model.Highlight) error

	// MergeResearch replaces the research result for key.
	MergeResearch(ctx context.Context, key string, research model.Research) error

	// Clear resets all artifact fields for key to absent.
	Clear(ctx context.Context, key string) error

	// ListHistory projects all stored states into history entries,
	// sorted by LastUpdated descending and truncated to limit.
	ListHistory(ctx context.Context, limit int) ([]model.TabHistoryEntry, error)

	// Subscribe registers an observer for post-persist notifications.
	Subscribe(obs Observer)

	// Close releases underlying resources.
	Close() error
}

// DefaultHistoryLimit bounds ListHistory when callers pass limit <= 0.
const DefaultHistoryLimit = 20

// historyEntry builds the projection for one stored state, falling
// back to a human-readable form of the key when no summary title exists.
func historyEntry(key string, state model.PageState) model.TabHistoryEntry {
	title := ""
	if state.Summary != nil {
		title = state.Summary.Title
	}
	if title == "" {
		title = pageid.Display(key)
	}
	return model.TabHistoryEntry{
		URL:         key,
		Title:       title,
		LastUpdated: state.LastUpdated,
	}
}

// sortHistory orders entries by LastUpdated descending, breaking ties
// by URL so the ordering is deterministic.
func sortHistory(entries []model.TabHistoryEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LastUpdated != entries[j].LastUpdated {
			return entries[i].LastUpdated > entries[j].LastUpdated
		}
		return entries[i].URL < entries[j].URL
	})
}

// clampHistory applies the default and truncates.
func clampHistory(entries []model.TabHistoryEntry, limit int) []model.TabHistoryEntry {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
