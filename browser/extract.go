// Tab content extraction.
//
// A single extraction attempt reads the tab's rendered title, address,
// and text. There is no internal retry and no caching: staleness would
// corrupt comparative research, so every caller gets a fresh read.

package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/richinex/synthra/model"
)

// Per-tab extraction faults. Callers fanning out across several tabs
// must treat all of these identically: skip the tab, continue.
var (
	// ErrAccessDenied signals a privileged or internal page the
	// extractor is not allowed to read.
	ErrAccessDenied = errors.New("page access denied")

	// ErrNotReady signals a document that has not finished loading.
	ErrNotReady = errors.New("page not ready")
)

// ExtractionError wraps any other failure of the extraction script.
type ExtractionError struct {
	TabID int
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for tab %d: %v", e.TabID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// restrictedSchemes lists address schemes the extractor refuses to
// touch: browser-internal surfaces that reject script injection.
var restrictedSchemes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"about:",
	"view-source:",
	"devtools://",
	"brave://",
}

// Restricted reports whether an address belongs to a privileged page.
func Restricted(url string) bool {
	for _, scheme := range restrictedSchemes {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}

// Extractor reads rendered content out of tabs.
type Extractor struct {
	tabs Tabs
}

// NewExtractor creates an extractor over the given tab capability.
func NewExtractor(tabs Tabs) *Extractor {
	return &Extractor{tabs: tabs}
}

// Extract reads the tab's rendered text, title, and address.
// Whitespace in the text is normalized: runs collapsed to single
// spaces, ends trimmed. Returns ErrAccessDenied, ErrNotReady, or an
// *ExtractionError on failure.
func (e *Extractor) Extract(ctx context.Context, ref TabRef) (model.TabContent, error) {
	if Restricted(ref.URL) {
		return model.TabContent{}, ErrAccessDenied
	}

	read, err := e.tabs.ReadContent(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrNotReady) {
			return model.TabContent{}, err
		}
		return model.TabContent{}, &ExtractionError{TabID: ref.ID, Err: err}
	}

	text := NormalizeWhitespace(read.Text)
	if text == "" {
		return model.TabContent{}, &ExtractionError{TabID: ref.ID, Err: errors.New("no extractable text")}
	}

	return model.TabContent{
		Title:     read.Title,
		URL:       read.URL,
		Content:   text,
		HTML:      read.HTML,
		Timestamp: model.NowMillis(),
	}, nil
}

// NormalizeWhitespace collapses runs of whitespace to single spaces
// and trims both ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
