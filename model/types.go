// Package model provides shared data types for the synthra core.
//
// These types mirror the wire format exchanged with the analysis
// backend and the shapes persisted by the page-state store. Field
// names follow the JSON the backend emits.
package model

import "time"

// TabContent is the raw content extracted from one open tab.
// It is ephemeral: produced fresh on every extraction and never
// cached across requests.
type TabContent struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	HTML      string `json:"html,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Summary is the AI-generated summary of one page.
type Summary struct {
	Summary            string   `json:"summary"`
	KeyPoints          []string `json:"keyPoints"`
	KeyConcepts        []string `json:"keyConcepts"`
	ReadingTimeMinutes int      `json:"readingTimeMinutes,omitempty"`
	Timestamp          int64    `json:"timestamp,omitempty"`
	URL                string   `json:"url,omitempty"`
	Title              string   `json:"title,omitempty"`
}

// Importance levels for highlights.
const (
	ImportanceLow    = "low"
	ImportanceMedium = "medium"
	ImportanceHigh   = "high"
)

// HighlightPosition locates a highlight on the rendered page.
type HighlightPosition struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Highlight is one AI-identified term worth explaining.
type Highlight struct {
	Term        string             `json:"term"`
	Explanation string             `json:"explanation"`
	Context     string             `json:"context,omitempty"`
	Importance  string             `json:"importance,omitempty"`
	Category    string             `json:"category,omitempty"`
	Position    *HighlightPosition `json:"position,omitempty"`
}

// ResearchComparison is one aspect compared across tabs.
type ResearchComparison struct {
	Aspect  string `json:"aspect"`
	Details string `json:"details"`
}

// ResearchSource references one tab that contributed to a research result.
type ResearchSource struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance,omitempty"`
}

// Research is the consolidated result of a multi-tab research request.
type Research struct {
	Query       string               `json:"query"`
	Summary     string               `json:"summary"`
	KeyFindings []string             `json:"keyFindings"`
	Comparisons []ResearchComparison `json:"comparisons"`
	Sources     []ResearchSource     `json:"sources"`
	Timestamp   int64                `json:"timestamp,omitempty"`
}

// PageState holds the cached AI artifacts for one PageKey.
// Absent fields are nil/empty; a PageState is created lazily with all
// fields absent the first time a key is observed.
type PageState struct {
	Summary     *Summary    `json:"summary,omitempty"`
	Highlights  []Highlight `json:"highlights,omitempty"`
	Research    *Research   `json:"research,omitempty"`
	LastUpdated int64       `json:"lastUpdated"`
}

// IsZero reports whether the state has no artifacts and no timestamp.
func (p PageState) IsZero() bool {
	return p.Summary == nil && len(p.Highlights) == 0 && p.Research == nil && p.LastUpdated == 0
}

// TabHistoryEntry is a read-only projection of one stored PageState.
type TabHistoryEntry struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	LastUpdated int64  `json:"lastUpdated"`
}

// NowMillis returns the current time in Unix milliseconds, the
// timestamp unit used across the wire format and the store.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
