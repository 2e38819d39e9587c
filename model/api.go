// Request and response types for the analysis API.
//
// Every response carries a Success flag and an optional Error string;
// callers must check Success even on HTTP 200.

package model

import "encoding/json"

// SummarizeRequest asks the backend to summarize one page.
type SummarizeRequest struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	Title   string `json:"title"`
}

// SummarizeResponse carries the summary result.
type SummarizeResponse struct {
	Summary Summary `json:"summary"`
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
}

// HighlightRequest asks the backend to identify terms worth explaining.
type HighlightRequest struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	Context string `json:"context,omitempty"`
}

// HighlightResponse carries the highlight result.
type HighlightResponse struct {
	Highlights []Highlight `json:"highlights"`
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
}

// MultiTabResearchRequest submits the content of several tabs plus a
// query for comparative research.
type MultiTabResearchRequest struct {
	Tabs  []TabContent `json:"tabs"`
	Query string       `json:"query"`
}

// MultiTabResearchResponse carries the research result.
type MultiTabResearchResponse struct {
	Research Research `json:"research"`
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
}

// Note content types accepted by the note-saving endpoint.
const (
	NoteTypeSummary    = "summary"
	NoteTypeHighlights = "highlights"
	NoteTypeResearch   = "research"
)

// NotionSaveRequest asks the backend to persist an artifact to the
// configured notes database. Content is the JSON encoding of the
// artifact named by Type.
type NotionSaveRequest struct {
	Content json.RawMessage `json:"content"`
	Type    string          `json:"type"`
	Title   string          `json:"title,omitempty"`
	URL     string          `json:"url,omitempty"`
}

// NotionSaveResponse carries the created page reference.
type NotionSaveResponse struct {
	PageID  string `json:"pageId,omitempty"`
	PageURL string `json:"pageUrl,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
