// Package notion saves analysis artifacts as pages in a Notion
// database.
//
// Information Hiding:
// - Notion REST endpoint, auth headers, and API version
// - Property and block construction per content type
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/richinex/synthra/model"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
	defaultTimeout = 30 * time.Second
)

// ErrNotConfigured means the integration token or database ID is missing.
var ErrNotConfigured = errors.New("notion integration not configured")

// SavedPage references a page created in the database.
type SavedPage struct {
	PageID  string
	PageURL string
}

// Client is a minimal Notion API client for page creation.
type Client struct {
	token      string
	databaseID string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given integration token and
// target database.
func NewClient(token, databaseID string) *Client {
	return &Client{
		token:      token,
		databaseID: databaseID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Configured reports whether the client can make API calls.
func (c *Client) Configured() bool {
	return c.token != "" && c.databaseID != ""
}

// createPageRequest is the POST /v1/pages body.
type createPageRequest struct {
	Parent     map[string]string `json:"parent"`
	Properties map[string]any    `json:"properties"`
	Children   []map[string]any  `json:"children,omitempty"`
}

// createPageResponse is the subset of the page object we need.
type createPageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// apiError is Notion's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SavePage creates one database page holding the artifact carried in
// the request. The artifact shape is selected by the request's type.
func (c *Client) SavePage(ctx context.Context, req model.NotionSaveRequest) (SavedPage, error) {
	if !c.Configured() {
		return SavedPage{}, ErrNotConfigured
	}

	properties, children, err := buildPage(req)
	if err != nil {
		return SavedPage{}, err
	}

	body := createPageRequest{
		Parent:     map[string]string{"database_id": c.databaseID},
		Properties: properties,
		Children:   children,
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return SavedPage{}, fmt.Errorf("failed to encode page: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pages", bytes.NewReader(encoded))
	if err != nil {
		return SavedPage{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Notion-Version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return SavedPage{}, fmt.Errorf("notion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return SavedPage{}, fmt.Errorf("notion rejected page (HTTP %d, %s): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return SavedPage{}, fmt.Errorf("notion rejected page: HTTP %d", resp.StatusCode)
	}

	var page createPageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return SavedPage{}, fmt.Errorf("malformed notion response: %w", err)
	}
	return SavedPage{PageID: page.ID, PageURL: page.URL}, nil
}

// buildPage decodes the artifact and produces properties plus content
// blocks for the page.
func buildPage(req model.NotionSaveRequest) (map[string]any, []map[string]any, error) {
	var children []map[string]any

	switch req.Type {
	case model.NoteTypeSummary:
		var summary model.Summary
		if err := json.Unmarshal(req.Content, &summary); err != nil {
			return nil, nil, fmt.Errorf("invalid summary content: %w", err)
		}
		children = summaryBlocks(summary)
		props := pageProperties(req, "Summary")
		if summary.ReadingTimeMinutes > 0 {
			props["Reading Time"] = map[string]any{"number": summary.ReadingTimeMinutes}
		}
		return props, children, nil

	case model.NoteTypeHighlights:
		var highlights []model.Highlight
		if err := json.Unmarshal(req.Content, &highlights); err != nil {
			return nil, nil, fmt.Errorf("invalid highlights content: %w", err)
		}
		children = highlightBlocks(highlights)
		return pageProperties(req, "Highlights"), children, nil

	case model.NoteTypeResearch:
		var research model.Research
		if err := json.Unmarshal(req.Content, &research); err != nil {
			return nil, nil, fmt.Errorf("invalid research content: %w", err)
		}
		children = researchBlocks(research)
		return pageProperties(req, "Research"), children, nil

	default:
		return nil, nil, fmt.Errorf("unknown note type %q", req.Type)
	}
}

// pageProperties builds the database properties shared by all note
// types: Name, Type, Created, and URL when present.
func pageProperties(req model.NotionSaveRequest, typeName string) map[string]any {
	title := req.Title
	if title == "" {
		title = "Synthra " + typeName
	}

	props := map[string]any{
		"Name": map[string]any{
			"title": []map[string]any{
				{"text": map[string]any{"content": title}},
			},
		},
		"Type": map[string]any{
			"select": map[string]any{"name": typeName},
		},
		"Created": map[string]any{
			"date": map[string]any{"start": time.Now().Format(time.RFC3339)},
		},
	}
	if req.URL != "" {
		props["URL"] = map[string]any{"url": req.URL}
	}
	return props
}
