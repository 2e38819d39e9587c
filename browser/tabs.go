// Package browser provides the tab capability the core depends on:
// querying open tabs, reading their rendered content, and observing
// tab-activation and navigation events.
//
// The Tabs interface keeps the core independent of any concrete
// browser wiring; PlaywrightTabs implements it against a real
// Chromium instance, and tests supply fakes.
package browser

import "context"

// TabRef is an opaque handle identifying one open browser tab.
type TabRef struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// TabEventKind distinguishes tab event types.
type TabEventKind int

const (
	// TabActivated fires when a different tab becomes current.
	TabActivated TabEventKind = iota
	// TabNavigated fires when the current tab finishes a navigation.
	TabNavigated
)

// TabEvent is one tab-activation or navigation-complete notification.
// Events fire before the tab's address is reliably readable; consumers
// must re-read the active tab rather than trusting event payloads.
type TabEvent struct {
	Kind  TabEventKind
	TabID int
}

// PageRead is the raw document read returned by a tab implementation.
// Title and URL are read in the same pass as the text so a late read
// is at least self-consistent.
type PageRead struct {
	Title string
	URL   string
	Text  string
	HTML  string
}

// Tabs is the browser tab/scripting capability.
type Tabs interface {
	// ActiveTab returns the currently active tab.
	ActiveTab(ctx context.Context) (TabRef, error)

	// AllTabs returns every open tab in stable order.
	AllTabs(ctx context.Context) ([]TabRef, error)

	// ReadContent executes a read-only extraction against the tab's
	// document. Implementations return ErrAccessDenied for privileged
	// pages, ErrNotReady for documents still loading, and arbitrary
	// errors for script failures.
	ReadContent(ctx context.Context, tabID int) (PageRead, error)

	// Events returns the stream of tab activation/navigation events.
	Events() <-chan TabEvent
}
