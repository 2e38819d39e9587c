// Package session is the facade the UI consumes: the current page key
// and state, a loading flag, and the per-current-page operations.
//
// Every operation captures the PageKey before issuing any remote call
// and merges its result back to that key - never to whatever page is
// active when the response returns. A navigation racing a slow
// summarize therefore cannot corrupt another page's cached state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/richinex/synthra/backend"
	"github.com/richinex/synthra/browser"
	"github.com/richinex/synthra/model"
	"github.com/richinex/synthra/research"
	"github.com/richinex/synthra/store"
	"github.com/richinex/synthra/tracker"
)

var (
	// ErrNoActivePage means no page key is established yet.
	ErrNoActivePage = errors.New("no active page")

	// ErrBusy means an operation is already outstanding for the page.
	ErrBusy = errors.New("an operation is already running for this page")
)

// Analysis is the remote AI/notes capability the session depends on.
// *backend.Client satisfies it.
type Analysis interface {
	Summarize(ctx context.Context, content, title, url string) (model.Summary, error)
	Highlight(ctx context.Context, content, url, pageContext string) ([]model.Highlight, error)
	Research(ctx context.Context, tabs []model.TabContent, query string) (model.Research, error)
	SaveNote(ctx context.Context, req model.NotionSaveRequest) (backend.SavedNote, error)
}

// Session wires the tracker, store, extractor, and analysis client
// into the per-current-page operation surface.
type Session struct {
	tracker   *tracker.Tracker
	store     store.Store
	tabs      browser.Tabs
	extractor research.Extractor
	analysis  Analysis
	orch      *research.Orchestrator

	mu       sync.Mutex
	inflight map[string]bool
}

// New creates a session. The tracker must be started by the caller.
func New(tr *tracker.Tracker, st store.Store, tabs browser.Tabs, extractor research.Extractor, analysis Analysis) *Session {
	return &Session{
		tracker:   tr,
		store:     st,
		tabs:      tabs,
		extractor: extractor,
		analysis:  analysis,
		orch:      research.New(extractor, analysis),
		inflight:  make(map[string]bool),
	}
}

// SetObserver registers the UI publish callback on the tracker.
func (s *Session) SetObserver(obs tracker.Observer) {
	s.tracker.SetObserver(obs)
}

// CurrentKey returns the tracked page key, or "" when none.
func (s *Session) CurrentKey() string {
	return s.tracker.CurrentKey()
}

// Snapshot returns the current published view.
func (s *Session) Snapshot() tracker.Snapshot {
	return s.tracker.Snapshot()
}

// Summarize extracts the active tab and stores the resulting summary,
// keyed to the page that was active when the call started.
func (s *Session) Summarize(ctx context.Context) (model.Summary, error) {
	key, err := s.begin()
	if err != nil {
		return model.Summary{}, err
	}
	defer s.end(key)

	content, err := s.extractActive(ctx)
	if err != nil {
		return model.Summary{}, err
	}

	summary, err := s.analysis.Summarize(ctx, content.Content, content.Title, content.URL)
	if err != nil {
		return model.Summary{}, err
	}

	if err := s.store.MergeSummary(ctx, key, summary); err != nil {
		return model.Summary{}, fmt.Errorf("failed to persist summary: %w", err)
	}
	return summary, nil
}

// Highlight extracts the active tab, requests highlights, and appends
// them to the page's existing highlight list.
func (s *Session) Highlight(ctx context.Context) ([]model.Highlight, error) {
	key, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer s.end(key)

	content, err := s.extractActive(ctx)
	if err != nil {
		return nil, err
	}

	highlights, err := s.analysis.Highlight(ctx, content.Content, content.URL, content.Title)
	if err != nil {
		return nil, err
	}

	// Highlights accumulate; the store itself replaces wholesale.
	existing := s.store.Get(ctx, key).Highlights
	combined := make([]model.Highlight, 0, len(existing)+len(highlights))
	combined = append(combined, existing...)
	combined = append(combined, highlights...)

	if err := s.store.MergeHighlights(ctx, key, combined); err != nil {
		return nil, fmt.Errorf("failed to persist highlights: %w", err)
	}
	return highlights, nil
}

// Research fans extraction out across all open tabs, submits the
// aggregate with the query, and stores the result on the page that was
// active when the call started.
func (s *Session) Research(ctx context.Context, query string) (model.Research, error) {
	key, err := s.begin()
	if err != nil {
		return model.Research{}, err
	}
	defer s.end(key)

	refs, err := s.tabs.AllTabs(ctx)
	if err != nil {
		return model.Research{}, fmt.Errorf("failed to list tabs: %w", err)
	}

	result, err := s.orch.Research(ctx, refs, query)
	if err != nil {
		return model.Research{}, err
	}

	if err := s.store.MergeResearch(ctx, key, result); err != nil {
		return model.Research{}, fmt.Errorf("failed to persist research: %w", err)
	}
	return result, nil
}

// SaveToNotion persists the current page's artifact of the given type
// to the notes service.
func (s *Session) SaveToNotion(ctx context.Context, noteType string) (backend.SavedNote, error) {
	key := s.tracker.CurrentKey()
	if key == "" {
		return backend.SavedNote{}, ErrNoActivePage
	}

	state := s.store.Get(ctx, key)

	var artifact interface{}
	title := ""
	switch noteType {
	case model.NoteTypeSummary:
		if state.Summary == nil {
			return backend.SavedNote{}, fmt.Errorf("no summary to save for %s", key)
		}
		artifact = state.Summary
		title = state.Summary.Title
	case model.NoteTypeHighlights:
		if len(state.Highlights) == 0 {
			return backend.SavedNote{}, fmt.Errorf("no highlights to save for %s", key)
		}
		artifact = state.Highlights
	case model.NoteTypeResearch:
		if state.Research == nil {
			return backend.SavedNote{}, fmt.Errorf("no research to save for %s", key)
		}
		artifact = state.Research
		title = state.Research.Query
	default:
		return backend.SavedNote{}, fmt.Errorf("unknown note type %q", noteType)
	}

	content, err := json.Marshal(artifact)
	if err != nil {
		return backend.SavedNote{}, fmt.Errorf("failed to encode %s: %w", noteType, err)
	}

	return s.analysis.SaveNote(ctx, model.NotionSaveRequest{
		Content: content,
		Type:    noteType,
		Title:   title,
		URL:     key,
	})
}

// Clear resets all cached artifacts for the current page.
func (s *Session) Clear(ctx context.Context) error {
	key := s.tracker.CurrentKey()
	if key == "" {
		return ErrNoActivePage
	}
	return s.store.Clear(ctx, key)
}

// History lists recently updated pages, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]model.TabHistoryEntry, error) {
	return s.store.ListHistory(ctx, limit)
}

// begin captures the current page key and claims the per-page
// operation slot. The returned key is the merge target for the whole
// operation, regardless of later navigation.
func (s *Session) begin() (string, error) {
	key := s.tracker.CurrentKey()
	if key == "" {
		return "", ErrNoActivePage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return "", ErrBusy
	}
	s.inflight[key] = true
	return key, nil
}

func (s *Session) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// extractActive reads the active tab's content.
func (s *Session) extractActive(ctx context.Context) (model.TabContent, error) {
	ref, err := s.tabs.ActiveTab(ctx)
	if err != nil {
		return model.TabContent{}, fmt.Errorf("failed to read active tab: %w", err)
	}
	return s.extractor.Extract(ctx, ref)
}
