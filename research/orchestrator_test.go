package research

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/richinex/synthra/browser"
	"github.com/richinex/synthra/model"
)

// fakeExtractor scripts per-tab outcomes.
type fakeExtractor struct {
	errs map[int]error
}

func (f *fakeExtractor) Extract(ctx context.Context, ref browser.TabRef) (model.TabContent, error) {
	if err, ok := f.errs[ref.ID]; ok {
		return model.TabContent{}, err
	}
	return model.TabContent{
		Title:   fmt.Sprintf("Tab %d", ref.ID),
		URL:     ref.URL,
		Content: fmt.Sprintf("content of tab %d", ref.ID),
	}, nil
}

// fakeBackend records the submitted tabs.
type fakeBackend struct {
	mu     sync.Mutex
	calls  int
	tabs   []model.TabContent
	query  string
	result model.Research
}

func (f *fakeBackend) Research(ctx context.Context, tabs []model.TabContent, query string) (model.Research, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.tabs = tabs
	f.query = query
	return f.result, nil
}

func TestResearchSkipsFailedTabsPreservingOrder(t *testing.T) {
	extractor := &fakeExtractor{errs: map[int]error{2: browser.ErrAccessDenied}}
	backend := &fakeBackend{result: model.Research{Query: "compare", Summary: "done"}}
	orch := New(extractor, backend)

	refs := []browser.TabRef{
		{ID: 1, URL: "https://example.com/a"},
		{ID: 2, URL: "chrome://settings"},
		{ID: 3, URL: "https://example.com/c"},
	}

	result, err := orch.Research(context.Background(), refs, "compare")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "done" {
		t.Errorf("backend result not returned unchanged: %+v", result)
	}

	if backend.calls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", backend.calls)
	}
	if len(backend.tabs) != 2 {
		t.Fatalf("expected 2 tabs submitted, got %d", len(backend.tabs))
	}
	if backend.tabs[0].URL != "https://example.com/a" || backend.tabs[1].URL != "https://example.com/c" {
		t.Errorf("tab order not preserved: %+v", backend.tabs)
	}
	if backend.query != "compare" {
		t.Errorf("query = %q", backend.query)
	}
}

func TestResearchAllFaultKindsSkippedAlike(t *testing.T) {
	extractor := &fakeExtractor{errs: map[int]error{
		1: browser.ErrAccessDenied,
		2: browser.ErrNotReady,
		3: &browser.ExtractionError{TabID: 3, Err: errors.New("boom")},
	}}
	backend := &fakeBackend{result: model.Research{Summary: "ok"}}
	orch := New(extractor, backend)

	refs := []browser.TabRef{
		{ID: 1, URL: "https://example.com/1"},
		{ID: 2, URL: "https://example.com/2"},
		{ID: 3, URL: "https://example.com/3"},
		{ID: 4, URL: "https://example.com/4"},
	}

	_, err := orch.Research(context.Background(), refs, "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.tabs) != 1 || backend.tabs[0].URL != "https://example.com/4" {
		t.Errorf("expected only tab 4 submitted, got %+v", backend.tabs)
	}
}

func TestResearchNoUsableTabs(t *testing.T) {
	extractor := &fakeExtractor{errs: map[int]error{
		1: browser.ErrNotReady,
		2: &browser.ExtractionError{TabID: 2, Err: errors.New("script failed")},
	}}
	backend := &fakeBackend{}
	orch := New(extractor, backend)

	refs := []browser.TabRef{
		{ID: 1, URL: "https://example.com/x"},
		{ID: 2, URL: "https://example.com/y"},
	}

	_, err := orch.Research(context.Background(), refs, "q")
	if !errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("expected ErrInsufficientContent, got %v", err)
	}
	if backend.calls != 0 {
		t.Errorf("no remote call may be made when zero tabs succeed, got %d", backend.calls)
	}
}

func TestResearchEmptyTabList(t *testing.T) {
	orch := New(&fakeExtractor{}, &fakeBackend{})
	_, err := orch.Research(context.Background(), nil, "q")
	if !errors.Is(err, ErrInsufficientContent) {
		t.Errorf("expected ErrInsufficientContent for empty list, got %v", err)
	}
}
