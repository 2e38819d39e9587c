package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/richinex/synthra/model"
)

// fakeClock hands out strictly increasing millisecond timestamps.
type fakeClock struct {
	mu sync.Mutex
	t  int64
}

func (c *fakeClock) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t++
	return c.t
}

// eachStore runs fn against both store implementations.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := NewInMemoryStore()
		s.now = (&fakeClock{}).next
		defer s.Close()
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSqliteInMemory()
		if err != nil {
			t.Fatalf("failed to open in-memory sqlite: %v", err)
		}
		s.now = (&fakeClock{}).next
		defer s.Close()
		fn(t, s)
	})
}

func TestGetUnknownKeyReturnsEmpty(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		state := s.Get(context.Background(), "https://example.com/never-seen")
		if !state.IsZero() {
			t.Errorf("expected all-absent state, got %+v", state)
		}
	})
}

func TestMergeSummaryRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		key := "https://example.com/article"
		summary := model.Summary{
			Summary:     "A short summary.",
			KeyPoints:   []string{"first", "second"},
			KeyConcepts: []string{"Concept: definition"},
			Title:       "An Article",
			URL:         key,
		}

		before := s.Get(ctx, key).LastUpdated
		if err := s.MergeSummary(ctx, key, summary); err != nil {
			t.Fatalf("MergeSummary failed: %v", err)
		}

		state := s.Get(ctx, key)
		if state.Summary == nil {
			t.Fatal("expected summary present")
		}
		if !reflect.DeepEqual(*state.Summary, summary) {
			t.Errorf("summary mismatch: got %+v, want %+v", *state.Summary, summary)
		}
		if state.LastUpdated <= before {
			t.Errorf("lastUpdated did not increase: before=%d after=%d", before, state.LastUpdated)
		}
		if state.Highlights != nil || state.Research != nil {
			t.Error("untouched fields must stay absent")
		}
	})
}

func TestMergeHighlightsReplaces(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		key := "https://example.com/terms"

		first := []model.Highlight{{Term: "goroutine", Explanation: "lightweight thread"}}
		second := []model.Highlight{{Term: "channel", Explanation: "typed conduit"}}

		if err := s.MergeHighlights(ctx, key, first); err != nil {
			t.Fatalf("MergeHighlights failed: %v", err)
		}
		if err := s.MergeHighlights(ctx, key, second); err != nil {
			t.Fatalf("MergeHighlights failed: %v", err)
		}

		state := s.Get(ctx, key)
		if len(state.Highlights) != 1 || state.Highlights[0].Term != "channel" {
			t.Errorf("expected replacement semantics, got %+v", state.Highlights)
		}
	})
}

func TestMergeResearchIndependentOfSummary(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		key := "https://example.com/compare"

		if err := s.MergeSummary(ctx, key, model.Summary{Summary: "sum"}); err != nil {
			t.Fatalf("MergeSummary failed: %v", err)
		}
		research := model.Research{
			Query:       "compare",
			Summary:     "research summary",
			KeyFindings: []string{"finding"},
		}
		if err := s.MergeResearch(ctx, key, research); err != nil {
			t.Fatalf("MergeResearch failed: %v", err)
		}

		state := s.Get(ctx, key)
		if state.Summary == nil || state.Summary.Summary != "sum" {
			t.Error("summary must survive a research merge")
		}
		if state.Research == nil || state.Research.Query != "compare" {
			t.Errorf("research missing after merge: %+v", state.Research)
		}
	})
}

func TestClearIdempotent(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		key := "https://example.com/clear-me"

		if err := s.MergeSummary(ctx, key, model.Summary{Summary: "sum"}); err != nil {
			t.Fatalf("MergeSummary failed: %v", err)
		}
		if err := s.MergeHighlights(ctx, key, []model.Highlight{{Term: "t", Explanation: "e"}}); err != nil {
			t.Fatalf("MergeHighlights failed: %v", err)
		}

		if err := s.Clear(ctx, key); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		once := s.Get(ctx, key)
		if err := s.Clear(ctx, key); err != nil {
			t.Fatalf("second Clear failed: %v", err)
		}
		twice := s.Get(ctx, key)

		for _, state := range []model.PageState{once, twice} {
			if state.Summary != nil || len(state.Highlights) != 0 || state.Research != nil {
				t.Errorf("expected all fields absent after clear, got %+v", state)
			}
		}
		if twice.LastUpdated < once.LastUpdated {
			t.Error("clear must not move lastUpdated backwards")
		}
	})
}

func TestListHistoryOrderAndLimit(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		const n = 25
		for i := 0; i < n; i++ {
			key := fmt.Sprintf("https://example.com/page-%02d", i)
			err := s.MergeSummary(ctx, key, model.Summary{
				Summary: "s",
				Title:   fmt.Sprintf("Page %02d", i),
			})
			if err != nil {
				t.Fatalf("MergeSummary failed: %v", err)
			}
		}

		entries, err := s.ListHistory(ctx, 20)
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		if len(entries) != 20 {
			t.Fatalf("expected 20 entries, got %d", len(entries))
		}
		for i := 1; i < len(entries); i++ {
			if entries[i-1].LastUpdated < entries[i].LastUpdated {
				t.Fatalf("history not sorted descending at %d", i)
			}
		}
		// Most recent merge first
		if entries[0].Title != "Page 24" {
			t.Errorf("expected newest entry first, got %q", entries[0].Title)
		}
	})
}

func TestListHistoryTitleFallback(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		key := "https://example.com/docs/guide"

		if err := s.MergeHighlights(ctx, key, []model.Highlight{{Term: "t", Explanation: "e"}}); err != nil {
			t.Fatalf("MergeHighlights failed: %v", err)
		}

		entries, err := s.ListHistory(ctx, 20)
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].Title != "example.com/docs/guide" {
			t.Errorf("expected display fallback title, got %q", entries[0].Title)
		}
	})
}

func TestConcurrentMergesDistinctKeys(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("https://example.com/concurrent-%d", i)
				if err := s.MergeSummary(ctx, key, model.Summary{Summary: fmt.Sprintf("s%d", i)}); err != nil {
					t.Errorf("MergeSummary failed: %v", err)
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < 10; i++ {
			key := fmt.Sprintf("https://example.com/concurrent-%d", i)
			state := s.Get(ctx, key)
			if state.Summary == nil || state.Summary.Summary != fmt.Sprintf("s%d", i) {
				t.Errorf("merge to %q interfered with or lost: %+v", key, state.Summary)
			}
		}
	})
}

func TestObserverFiresAfterMerge(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		key := "https://example.com/observed"

		var mu sync.Mutex
		var gotKey string
		var gotState model.PageState
		s.Subscribe(func(k string, state model.PageState) {
			mu.Lock()
			defer mu.Unlock()
			gotKey = k
			gotState = state
		})

		if err := s.MergeSummary(ctx, key, model.Summary{Summary: "observed"}); err != nil {
			t.Fatalf("MergeSummary failed: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if gotKey != key {
			t.Errorf("observer got key %q, want %q", gotKey, key)
		}
		if gotState.Summary == nil || gotState.Summary.Summary != "observed" {
			t.Errorf("observer got state %+v", gotState)
		}
	})
}
