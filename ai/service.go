// Package ai implements the analysis operations on top of an LLM
// provider: page summarization, key-term highlighting, and multi-tab
// research synthesis.
//
// Information Hiding:
// - Prompt construction per operation
// - Content truncation limits
// - JSON recovery from model output
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	ijson "github.com/richinex/synthra/internal/json"
	"github.com/richinex/synthra/llm"
	"github.com/richinex/synthra/model"
)

// Content truncation limits, in characters. Model context is finite
// and page content dominates the prompt.
const (
	summarizeContentLimit = 8000
	highlightContentLimit = 6000
	researchPerTabLimit   = 3000
)

// wordsPerMinute is the assumed reading speed for the reading-time
// estimate.
const wordsPerMinute = 200

// Service performs AI analysis using a configured LLM provider.
type Service struct {
	provider llm.Provider
}

// NewService creates an analysis service over the given provider.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

// Provider returns the provider name and model (for logging).
func (s *Service) Provider() string {
	return fmt.Sprintf("%s/%s", s.provider.Name(), s.provider.Model())
}

// summaryPayload is the model's expected summarize output.
type summaryPayload struct {
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"keyPoints"`
	KeyConcepts []string `json:"keyConcepts"`
}

// Summarize generates study-note style summary of one page.
func (s *Service) Summarize(ctx context.Context, content, title, url string) (model.Summary, error) {
	prompt := buildSummarizePrompt(content, title, url)

	payload, err := completeJSON[summaryPayload](ctx, s, prompt)
	if err != nil {
		return model.Summary{}, fmt.Errorf("summarize failed: %w", err)
	}

	return model.Summary{
		Summary:            payload.Summary,
		KeyPoints:          payload.KeyPoints,
		KeyConcepts:        payload.KeyConcepts,
		ReadingTimeMinutes: readingTime(content),
		Timestamp:          model.NowMillis(),
		URL:                url,
		Title:              title,
	}, nil
}

// highlightPayload is the model's expected highlight output envelope.
type highlightPayload struct {
	Highlights []struct {
		Term        string `json:"term"`
		Explanation string `json:"explanation"`
		Importance  string `json:"importance"`
		Category    string `json:"category"`
	} `json:"highlights"`
}

// Highlight identifies and explains key terms in the content.
func (s *Service) Highlight(ctx context.Context, content, url, pageContext string) ([]model.Highlight, error) {
	prompt := buildHighlightPrompt(content, pageContext)

	payload, err := completeJSON[highlightPayload](ctx, s, prompt)
	if err != nil {
		return nil, fmt.Errorf("highlight failed: %w", err)
	}

	highlights := make([]model.Highlight, 0, len(payload.Highlights))
	for _, item := range payload.Highlights {
		importance := item.Importance
		switch importance {
		case model.ImportanceLow, model.ImportanceMedium, model.ImportanceHigh:
		default:
			// Unknown levels are treated as medium rather than rejected.
			importance = model.ImportanceMedium
		}
		highlights = append(highlights, model.Highlight{
			Term:        item.Term,
			Explanation: item.Explanation,
			Importance:  importance,
			Category:    item.Category,
			Context:     pageContext,
		})
	}
	return highlights, nil
}

// researchPayload is the model's expected research output.
type researchPayload struct {
	Summary     string                     `json:"summary"`
	KeyFindings []string                   `json:"keyFindings"`
	Comparisons []model.ResearchComparison `json:"comparisons"`
	Sources     []model.ResearchSource     `json:"sources"`
}

// Research synthesizes an answer to the query across multiple tabs'
// content.
func (s *Service) Research(ctx context.Context, tabs []model.TabContent, query string) (model.Research, error) {
	prompt := buildResearchPrompt(tabs, query)

	payload, err := completeJSON[researchPayload](ctx, s, prompt)
	if err != nil {
		return model.Research{}, fmt.Errorf("research failed: %w", err)
	}

	return model.Research{
		Query:       query,
		Summary:     payload.Summary,
		KeyFindings: payload.KeyFindings,
		Comparisons: payload.Comparisons,
		Sources:     payload.Sources,
		Timestamp:   model.NowMillis(),
	}, nil
}

// completeJSON sends one prompt requesting JSON output and recovers
// the typed payload from the response text.
func completeJSON[T any](ctx context.Context, s *Service, prompt string) (T, error) {
	var zero T

	messages := []llm.ChatMessage{
		llm.UserMessage(prompt),
	}

	resp, err := s.provider.ChatWithFormat(ctx, messages, llm.NewJSONObjectFormat())
	if err != nil {
		return zero, err
	}
	if resp.Usage != nil {
		log.Printf("ai: %s used %d tokens", s.Provider(), resp.Usage.TotalTokens)
	}

	payload, err := ijson.ExtractJSONFromResponse[T](resp.Content)
	if err != nil {
		return zero, fmt.Errorf("model returned unusable output: %w", err)
	}
	return payload, nil
}

// readingTime estimates reading time in minutes, minimum 1 for any
// non-empty content.
func readingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	minutes := words / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// truncate limits s to max characters.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
