package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/richinex/synthra/browser"
	"github.com/richinex/synthra/model"
	"github.com/richinex/synthra/store"
)

const (
	keyA = "https://example.com/a"
	keyB = "https://example.com/b"
	keyC = "https://example.com/c"
)

// fakeTabs serves a settable active-tab address and an event channel.
type fakeTabs struct {
	mu     sync.Mutex
	active string
	events chan browser.TabEvent
}

func newFakeTabs(active string) *fakeTabs {
	return &fakeTabs{active: active, events: make(chan browser.TabEvent, 16)}
}

func (f *fakeTabs) setActive(url string) {
	f.mu.Lock()
	f.active = url
	f.mu.Unlock()
}

func (f *fakeTabs) fire(url string) {
	f.setActive(url)
	f.events <- browser.TabEvent{Kind: browser.TabActivated, TabID: 1}
}

func (f *fakeTabs) ActiveTab(ctx context.Context) (browser.TabRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return browser.TabRef{ID: 1, URL: f.active}, nil
}

func (f *fakeTabs) AllTabs(ctx context.Context) ([]browser.TabRef, error) {
	ref, _ := f.ActiveTab(ctx)
	return []browser.TabRef{ref}, nil
}

func (f *fakeTabs) ReadContent(ctx context.Context, tabID int) (browser.PageRead, error) {
	return browser.PageRead{}, nil
}

func (f *fakeTabs) Events() <-chan browser.TabEvent {
	return f.events
}

// gatedStore blocks Get for selected keys until released, to simulate
// slow state loads.
type gatedStore struct {
	store.Store
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{Store: store.NewInMemoryStore(), gates: make(map[string]chan struct{})}
}

func (g *gatedStore) gate(key string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[key] = ch
	return ch
}

func (g *gatedStore) Get(ctx context.Context, key string) model.PageState {
	g.mu.Lock()
	gate := g.gates[key]
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return g.Store.Get(ctx, key)
}

// recorder collects published snapshots.
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func (r *recorder) last() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return Snapshot{}, false
	}
	return r.snaps[len(r.snaps)-1], true
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestInitialTracking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tabs := newFakeTabs(keyA)
	st := newGatedStore()
	st.MergeSummary(ctx, keyA, model.Summary{Summary: "cached A"})

	rec := &recorder{}
	tr := New(tabs, st, time.Millisecond)
	tr.SetObserver(rec.observe)

	if tr.StateKind() != Uninitialized {
		t.Fatal("expected Uninitialized before Start")
	}

	tr.Start(ctx)
	waitFor(t, "initial tracking", func() bool { return tr.CurrentKey() == keyA })

	snap := tr.Snapshot()
	if snap.Loading {
		t.Error("loading flag must clear once tracking")
	}
	if snap.State.Summary == nil || snap.State.Summary.Summary != "cached A" {
		t.Errorf("expected cached state for keyA, got %+v", snap.State)
	}
}

func TestSameKeyEventIsNoOp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tabs := newFakeTabs(keyA)
	st := newGatedStore()
	rec := &recorder{}
	tr := New(tabs, st, time.Millisecond)
	tr.SetObserver(rec.observe)
	tr.Start(ctx)

	waitFor(t, "initial tracking", func() bool { return tr.CurrentKey() == keyA })
	published := rec.count()

	// Hash-change style event: same key, should not re-publish.
	tabs.fire(keyA + "#section")
	time.Sleep(30 * time.Millisecond)

	if rec.count() != published {
		t.Errorf("expected no publish for same-key event, got %d new", rec.count()-published)
	}
	if tr.CurrentKey() != keyA {
		t.Errorf("current key changed: %q", tr.CurrentKey())
	}
}

func TestRapidSwitchDiscardsSupersededLoad(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tabs := newFakeTabs(keyA)
	st := newGatedStore()
	st.MergeSummary(ctx, keyB, model.Summary{Summary: "state B"})
	st.MergeSummary(ctx, keyC, model.Summary{Summary: "state C"})

	rec := &recorder{}
	tr := New(tabs, st, time.Millisecond)
	tr.SetObserver(rec.observe)
	tr.Start(ctx)
	waitFor(t, "initial tracking", func() bool { return tr.CurrentKey() == keyA })

	gateB := st.gate(keyB)
	gateC := st.gate(keyC)

	tabs.fire(keyB)
	waitFor(t, "transition to B", func() bool {
		snap, ok := rec.last()
		return ok && snap.Key == keyB && snap.Loading
	})

	tabs.fire(keyC)
	waitFor(t, "transition to C", func() bool {
		snap, ok := rec.last()
		return ok && snap.Key == keyC
	})

	// Resolve C first, then the superseded B load.
	close(gateC)
	waitFor(t, "C published", func() bool { return tr.CurrentKey() == keyC })
	close(gateB)
	time.Sleep(30 * time.Millisecond)

	snap := tr.Snapshot()
	if snap.Key != keyC {
		t.Fatalf("final key = %q, want %q", snap.Key, keyC)
	}
	if snap.State.Summary == nil || snap.State.Summary.Summary != "state C" {
		t.Errorf("final state is not keyC's: %+v", snap.State)
	}
	if snap.Loading {
		t.Error("loading flag stuck after final publish")
	}

	// The late B result must never surface as the published state.
	last, _ := rec.last()
	if last.State.Summary != nil && last.State.Summary.Summary == "state B" {
		t.Error("superseded keyB load was published")
	}
}

func TestStoreChangeForCurrentKeyRepublishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tabs := newFakeTabs(keyA)
	st := newGatedStore()
	rec := &recorder{}
	tr := New(tabs, st, time.Millisecond)
	tr.SetObserver(rec.observe)
	tr.Start(ctx)
	waitFor(t, "initial tracking", func() bool { return tr.CurrentKey() == keyA })

	// A merge for the tracked key republishes; one for another key does not.
	st.MergeSummary(ctx, keyB, model.Summary{Summary: "other"})
	st.MergeSummary(ctx, keyA, model.Summary{Summary: "fresh A"})

	waitFor(t, "republish", func() bool {
		snap := tr.Snapshot()
		return snap.State.Summary != nil && snap.State.Summary.Summary == "fresh A"
	})

	snap := tr.Snapshot()
	if snap.Key != keyA {
		t.Errorf("key = %q, want %q", snap.Key, keyA)
	}
}
