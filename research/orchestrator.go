// Package research fans content extraction out across multiple tabs
// and submits the aggregate to the analysis backend for comparative
// research.
//
// Per-tab extraction faults are swallowed: a tab that cannot be read
// is skipped and the rest proceed. Only when no tab at all yields
// content does the operation fail, and in that case no remote call is
// made.
package research

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/richinex/synthra/browser"
	"github.com/richinex/synthra/model"
)

// ErrInsufficientContent is returned when zero tabs yield extractable
// content after attempting all of them.
var ErrInsufficientContent = errors.New("no tab yielded extractable content")

// Extractor reads the rendered content of one tab.
type Extractor interface {
	Extract(ctx context.Context, ref browser.TabRef) (model.TabContent, error)
}

// Backend performs the aggregate research call.
type Backend interface {
	Research(ctx context.Context, tabs []model.TabContent, query string) (model.Research, error)
}

// Orchestrator coordinates multi-tab research.
type Orchestrator struct {
	extractor Extractor
	backend   Backend
}

// New creates an orchestrator.
func New(extractor Extractor, backend Backend) *Orchestrator {
	return &Orchestrator{extractor: extractor, backend: backend}
}

// Research extracts content from every tab reference independently and
// in parallel, collects the successes in the original tab order, and
// submits them with the query in a single backend call. The backend's
// result is returned unchanged. There are no retries and no partial
// degradation: either the aggregate call is made with whatever tabs
// succeeded, or no call is made at all.
func (o *Orchestrator) Research(ctx context.Context, refs []browser.TabRef, query string) (model.Research, error) {
	extracted := make([]*model.TabContent, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref browser.TabRef) {
			defer wg.Done()
			content, err := o.extractor.Extract(ctx, ref)
			if err != nil {
				// All extraction faults are equivalent here: skip the tab.
				log.Printf("research: skipping tab %d (%s): %v", ref.ID, ref.URL, err)
				return
			}
			extracted[i] = &content
		}(i, ref)
	}
	wg.Wait()

	tabs := make([]model.TabContent, 0, len(refs))
	for _, content := range extracted {
		if content != nil {
			tabs = append(tabs, *content)
		}
	}

	if len(tabs) == 0 {
		return model.Research{}, ErrInsufficientContent
	}

	return o.backend.Research(ctx, tabs, query)
}
