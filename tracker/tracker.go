// Package tracker observes the browser's notion of the current tab
// and keeps the published page state in sync with it.
//
// The tracker is an explicit state machine (Uninitialized, Tracking,
// Transitioning) rather than ambient global state: consumers read the
// current key and state through accessors or an observer callback.
//
// Two correctness requirements drive the implementation:
//   - Tab events fire before the tab's address is reliably readable,
//     so every event is followed by a short settle delay and a fresh
//     active-tab read. Reading too early returns the previous page's
//     address and corrupts the key association.
//   - A tab change arriving while a state load is in flight supersedes
//     it. Loads carry a generation number; a resolved load whose
//     generation is no longer current is discarded.
package tracker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/richinex/synthra/browser"
	"github.com/richinex/synthra/model"
	"github.com/richinex/synthra/pageid"
	"github.com/richinex/synthra/store"
)

// State is the tracker's lifecycle state.
type State int

const (
	// Uninitialized means no active tab has been read yet.
	Uninitialized State = iota
	// Tracking means a current page key is established.
	Tracking
	// Transitioning means a new page's state load is in flight.
	Transitioning
)

// DefaultSettleDelay is the wait between a tab event and the
// definitive address read.
const DefaultSettleDelay = 100 * time.Millisecond

// Snapshot is the tracker's published view: the current page key, its
// cached state, and whether a transition load is in flight.
type Snapshot struct {
	Key     string
	State   model.PageState
	Loading bool
}

// Observer receives a snapshot on every publish.
type Observer func(Snapshot)

// Tracker tracks the active tab and the page state associated with it.
type Tracker struct {
	tabs   browser.Tabs
	store  store.Store
	settle time.Duration

	mu       sync.Mutex
	state    State
	current  string
	target   string
	gen      uint64
	page     model.PageState
	loading  bool
	observer Observer
}

// New creates a tracker over the given tab capability and store.
// A settle of zero uses DefaultSettleDelay.
func New(tabs browser.Tabs, st store.Store, settle time.Duration) *Tracker {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Tracker{
		tabs:   tabs,
		store:  st,
		settle: settle,
	}
}

// SetObserver registers the publish callback. Must be called before Start.
func (t *Tracker) SetObserver(obs Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observer = obs
}

// Start performs the initial active-tab read and then follows tab
// events until ctx is cancelled. It returns immediately; tracking runs
// in a background goroutine.
func (t *Tracker) Start(ctx context.Context) {
	t.store.Subscribe(t.onStoreChange)
	go t.run(ctx)
}

func (t *Tracker) run(ctx context.Context) {
	t.handleChange(ctx)

	events := t.tabs.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			t.handleChange(ctx)
		}
	}
}

// handleChange waits for the address to settle, reads the active tab,
// and starts a transition if the page key changed.
func (t *Tracker) handleChange(ctx context.Context) {
	timer := time.NewTimer(t.settle)
	select {
	case <-ctx.Done():
		timer.Stop()
		return
	case <-timer.C:
	}

	ref, err := t.tabs.ActiveTab(ctx)
	if err != nil {
		log.Printf("tracker: active tab read failed: %v", err)
		return
	}
	key, err := pageid.Normalize(ref.URL)
	if err != nil {
		// Privileged or transient addresses have no page identity.
		return
	}

	t.mu.Lock()
	// Idempotent no-op for irrelevant events: already tracking this
	// key, or already transitioning toward it.
	if (t.state == Tracking && key == t.current) ||
		(t.state == Transitioning && key == t.target) {
		t.mu.Unlock()
		return
	}
	t.gen++
	gen := t.gen
	t.state = Transitioning
	t.target = key
	t.loading = true
	snap := Snapshot{Key: key, Loading: true}
	obs := t.observer
	t.mu.Unlock()

	if obs != nil {
		obs(snap)
	}

	go t.load(ctx, gen, key)
}

// load fetches the page state for key and publishes it unless a newer
// transition has superseded this one.
func (t *Tracker) load(ctx context.Context, gen uint64, key string) {
	state := t.store.Get(ctx, key)

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		log.Printf("tracker: discarding superseded load for %q", key)
		return
	}
	t.state = Tracking
	t.current = key
	t.target = ""
	t.page = state
	t.loading = false
	snap := Snapshot{Key: key, State: state}
	obs := t.observer
	t.mu.Unlock()

	if obs != nil {
		obs(snap)
	}
}

// onStoreChange refreshes the published state when the store mutates
// the page currently being tracked.
func (t *Tracker) onStoreChange(key string, state model.PageState) {
	t.mu.Lock()
	if t.state != Tracking || key != t.current {
		t.mu.Unlock()
		return
	}
	t.page = state
	snap := Snapshot{Key: key, State: state}
	obs := t.observer
	t.mu.Unlock()

	if obs != nil {
		obs(snap)
	}
}

// CurrentKey returns the tracked page key, or "" before the first
// successful read or mid-transition.
func (t *Tracker) CurrentKey() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Tracking {
		return ""
	}
	return t.current
}

// Snapshot returns the current published view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := t.current
	if t.state == Transitioning {
		key = t.target
	}
	return Snapshot{Key: key, State: t.page, Loading: t.loading}
}

// StateKind returns the tracker's lifecycle state.
func (t *Tracker) StateKind() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
