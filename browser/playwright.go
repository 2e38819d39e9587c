// Playwright-backed tab capability.
//
// Drives a real Chromium instance: each page in the browser context is
// one tab. Event wiring follows the browser's own notion of activation
// (most recently opened or loaded page).

package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightTabs implements Tabs against a live Chromium browser.
type PlaywrightTabs struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	browserCtx playwright.BrowserContext

	mu     sync.Mutex
	ids    map[playwright.Page]int
	order  []playwright.Page
	active playwright.Page
	nextID int

	events chan TabEvent
}

// NewPlaywrightTabs launches a Chromium instance and opens one blank tab.
func NewPlaywrightTabs(headless bool) (*PlaywrightTabs, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	t := &PlaywrightTabs{
		pw:         pw,
		browser:    browser,
		browserCtx: browserCtx,
		ids:        make(map[playwright.Page]int),
		events:     make(chan TabEvent, 16),
	}

	browserCtx.OnPage(t.trackPage)

	if _, err := browserCtx.NewPage(); err != nil {
		t.Close()
		return nil, fmt.Errorf("failed to open initial tab: %w", err)
	}

	return t, nil
}

// trackPage registers a newly opened page as a tab and wires its
// navigation events.
func (t *PlaywrightTabs) trackPage(page playwright.Page) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.ids[page] = id
	t.order = append(t.order, page)
	t.active = page
	t.mu.Unlock()

	t.emit(TabEvent{Kind: TabActivated, TabID: id})

	page.OnLoad(func(p playwright.Page) {
		t.mu.Lock()
		t.active = p
		loadedID := t.ids[p]
		t.mu.Unlock()
		t.emit(TabEvent{Kind: TabNavigated, TabID: loadedID})
	})
}

// emit delivers an event without blocking the browser's callback
// thread; a saturated consumer loses the event and re-syncs on the
// next one.
func (t *PlaywrightTabs) emit(ev TabEvent) {
	select {
	case t.events <- ev:
	default:
	}
}

// ActiveTab returns the most recently activated open tab.
func (t *PlaywrightTabs) ActiveTab(ctx context.Context) (TabRef, error) {
	t.mu.Lock()
	page := t.active
	if page == nil || page.IsClosed() {
		page = nil
		for i := len(t.order) - 1; i >= 0; i-- {
			if !t.order[i].IsClosed() {
				page = t.order[i]
				break
			}
		}
	}
	var id int
	if page != nil {
		id = t.ids[page]
	}
	t.mu.Unlock()

	if page == nil {
		return TabRef{}, errors.New("no open tabs")
	}

	title, _ := page.Title()
	return TabRef{ID: id, URL: page.URL(), Title: title}, nil
}

// AllTabs returns every open tab in creation order.
func (t *PlaywrightTabs) AllTabs(ctx context.Context) ([]TabRef, error) {
	t.mu.Lock()
	pages := make([]playwright.Page, 0, len(t.order))
	ids := make([]int, 0, len(t.order))
	for _, page := range t.order {
		if page.IsClosed() {
			continue
		}
		pages = append(pages, page)
		ids = append(ids, t.ids[page])
	}
	t.mu.Unlock()

	refs := make([]TabRef, 0, len(pages))
	for i, page := range pages {
		title, _ := page.Title()
		refs = append(refs, TabRef{ID: ids[i], URL: page.URL(), Title: title})
	}
	return refs, nil
}

// ReadContent reads the rendered document of one tab.
func (t *PlaywrightTabs) ReadContent(ctx context.Context, tabID int) (PageRead, error) {
	page := t.pageByID(tabID)
	if page == nil || page.IsClosed() {
		return PageRead{}, fmt.Errorf("tab %d is closed", tabID)
	}

	if Restricted(page.URL()) {
		return PageRead{}, ErrAccessDenied
	}

	readyState, err := page.Evaluate("document.readyState")
	if err != nil {
		return PageRead{}, fmt.Errorf("readiness check failed: %w", err)
	}
	if state, ok := readyState.(string); !ok || state != "complete" {
		return PageRead{}, ErrNotReady
	}

	title, err := page.Title()
	if err != nil {
		return PageRead{}, fmt.Errorf("title read failed: %w", err)
	}

	rawHTML, err := page.Content()
	if err != nil {
		return PageRead{}, fmt.Errorf("content read failed: %w", err)
	}

	text := ""
	if result, err := page.Evaluate("document.body ? document.body.innerText : ''"); err == nil {
		if s, ok := result.(string); ok {
			text = s
		}
	}
	if text == "" {
		flatTitle, flat, err := FlattenHTML(rawHTML)
		if err == nil {
			text = flat
			if title == "" {
				title = flatTitle
			}
		}
	}

	return PageRead{
		Title: title,
		URL:   page.URL(),
		Text:  text,
		HTML:  rawHTML,
	}, nil
}

// Events returns the tab event stream.
func (t *PlaywrightTabs) Events() <-chan TabEvent {
	return t.events
}

// Close shuts down the context, the browser, and the playwright driver.
func (t *PlaywrightTabs) Close() error {
	var firstErr error
	if t.browserCtx != nil {
		if err := t.browserCtx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if t.browser != nil {
		if err := t.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if t.pw != nil {
		if err := t.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *PlaywrightTabs) pageByID(tabID int) playwright.Page {
	t.mu.Lock()
	defer t.mu.Unlock()
	for page, id := range t.ids {
		if id == tabID {
			return page
		}
	}
	return nil
}

// Verify PlaywrightTabs implements Tabs
var _ Tabs = (*PlaywrightTabs)(nil)
