// Package backend provides the HTTP client for the analysis API.
//
// Every call is a JSON POST against a configurable base URL with a
// bounded timeout. Responses carry a success flag and optional error
// string that is checked even on HTTP 200; failures are surfaced to
// the caller as *RemoteError and never retried here - user-facing
// retry is the caller's concern.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/richinex/synthra/model"
)

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 30 * time.Second

// RemoteError is a failed remote call: transport fault, timeout,
// non-2xx status, or a response whose success flag is false.
type RemoteError struct {
	Op      string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed (HTTP %d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// SavedNote references a note created by the note-saving endpoint.
type SavedNote struct {
	PageID  string
	PageURL string
}

// Client calls the analysis API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. A timeout of
// zero uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Summarize submits one page's content for summarization.
func (c *Client) Summarize(ctx context.Context, content, title, url string) (model.Summary, error) {
	req := model.SummarizeRequest{Content: content, Title: title, URL: url}
	var resp model.SummarizeResponse
	if err := c.post(ctx, "summarize", "/api/summarize", req, &resp); err != nil {
		return model.Summary{}, err
	}
	if !resp.Success {
		return model.Summary{}, &RemoteError{Op: "summarize", Message: errorOrDefault(resp.Error)}
	}
	return resp.Summary, nil
}

// Highlight submits one page's content for term highlighting.
func (c *Client) Highlight(ctx context.Context, content, url, pageContext string) ([]model.Highlight, error) {
	req := model.HighlightRequest{Content: content, URL: url, Context: pageContext}
	var resp model.HighlightResponse
	if err := c.post(ctx, "highlight", "/api/highlight", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &RemoteError{Op: "highlight", Message: errorOrDefault(resp.Error)}
	}
	return resp.Highlights, nil
}

// Research submits multiple tabs' content for comparative research.
func (c *Client) Research(ctx context.Context, tabs []model.TabContent, query string) (model.Research, error) {
	req := model.MultiTabResearchRequest{Tabs: tabs, Query: query}
	var resp model.MultiTabResearchResponse
	if err := c.post(ctx, "research", "/api/research/multi-tab", req, &resp); err != nil {
		return model.Research{}, err
	}
	if !resp.Success {
		return model.Research{}, &RemoteError{Op: "research", Message: errorOrDefault(resp.Error)}
	}
	return resp.Research, nil
}

// SaveNote persists an artifact to the configured notes service.
func (c *Client) SaveNote(ctx context.Context, req model.NotionSaveRequest) (SavedNote, error) {
	var resp model.NotionSaveResponse
	if err := c.post(ctx, "save note", "/api/notion/save", req, &resp); err != nil {
		return SavedNote{}, err
	}
	if !resp.Success {
		return SavedNote{}, &RemoteError{Op: "save note", Message: errorOrDefault(resp.Error)}
	}
	return SavedNote{PageID: resp.PageID, PageURL: resp.PageURL}, nil
}

// post sends one JSON request and decodes the response body into out.
// Non-2xx statuses are errors, but the body is still consulted for an
// error message when it decodes.
func (c *Client) post(ctx context.Context, op, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RemoteError{Op: op, Message: err.Error()}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &RemoteError{Op: op, Status: httpResp.StatusCode, Message: err.Error()}
	}

	if decodeErr := json.Unmarshal(respBody, out); decodeErr != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return &RemoteError{Op: op, Status: httpResp.StatusCode, Message: previewBody(respBody)}
		}
		return &RemoteError{Op: op, Status: httpResp.StatusCode, Message: fmt.Sprintf("malformed response: %v", decodeErr)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		// Non-2xx is a failure regardless of what the envelope claims;
		// surface its error string when one is present.
		var env struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &env)
		return &RemoteError{Op: op, Status: httpResp.StatusCode, Message: errorOrDefault(env.Error)}
	}
	return nil
}

func errorOrDefault(msg string) string {
	if msg == "" {
		return "remote call reported failure without detail"
	}
	return msg
}

func previewBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty response body"
	}
	return s
}
