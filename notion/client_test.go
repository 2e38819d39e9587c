package notion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/richinex/synthra/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("secret-token", "db-1")
	client.baseURL = server.URL
	return client
}

func saveRequest(t *testing.T, noteType string, artifact any) model.NotionSaveRequest {
	t.Helper()
	content, err := json.Marshal(artifact)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	return model.NotionSaveRequest{
		Content: content,
		Type:    noteType,
		Title:   "Test Page",
		URL:     "https://example.com/page",
	}
}

func TestSaveSummaryPage(t *testing.T) {
	var got createPageRequest
	var gotAuth, gotVersion string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(createPageResponse{ID: "page-1", URL: "https://notion.so/page-1"})
	})

	summary := model.Summary{
		Summary:            "What the page teaches.",
		KeyPoints:          []string{"point one", "point two"},
		KeyConcepts:        []string{"Term: definition"},
		ReadingTimeMinutes: 4,
	}
	page, err := client.SavePage(context.Background(), saveRequest(t, model.NoteTypeSummary, summary))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if page.PageID != "page-1" || page.PageURL != "https://notion.so/page-1" {
		t.Errorf("page = %+v", page)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotVersion != apiVersion {
		t.Errorf("version header = %q", gotVersion)
	}
	if got.Parent["database_id"] != "db-1" {
		t.Errorf("parent = %+v", got.Parent)
	}
	if _, ok := got.Properties["Reading Time"]; !ok {
		t.Error("reading time property missing")
	}
	// Heading + paragraph + key points heading + 2 bullets + concepts heading + 1 bullet.
	if len(got.Children) != 7 {
		t.Errorf("expected 7 blocks, got %d", len(got.Children))
	}
}

func TestSaveHighlightsPage(t *testing.T) {
	var got createPageRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(createPageResponse{ID: "p", URL: "u"})
	})

	highlights := []model.Highlight{
		{Term: "CRDT", Explanation: "Conflict-free type.", Importance: model.ImportanceHigh, Category: "technical"},
	}
	if _, err := client.SavePage(context.Background(), saveRequest(t, model.NoteTypeHighlights, highlights)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	typeProp, _ := got.Properties["Type"].(map[string]any)
	sel, _ := typeProp["select"].(map[string]any)
	if sel["name"] != "Highlights" {
		t.Errorf("type property = %+v", got.Properties["Type"])
	}
	// Section heading, term heading, explanation, importance/category line.
	if len(got.Children) != 4 {
		t.Errorf("expected 4 blocks, got %d", len(got.Children))
	}
}

func TestSaveResearchPage(t *testing.T) {
	var got createPageRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(createPageResponse{ID: "p", URL: "u"})
	})

	research := model.Research{
		Query:       "compare routers",
		Summary:     "Chi is lighter.",
		KeyFindings: []string{"fewer deps"},
		Sources:     []model.ResearchSource{{Title: "Chi docs", URL: "https://example.com/chi"}},
	}
	if _, err := client.SavePage(context.Background(), saveRequest(t, model.NoteTypeResearch, research)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	encoded, _ := json.Marshal(got.Children)
	if !strings.Contains(string(encoded), "Research: compare routers") {
		t.Error("research heading missing")
	}
	if !strings.Contains(string(encoded), "https://example.com/chi") {
		t.Error("source link missing")
	}
}

func TestSaveAPIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(apiError{Code: "validation_error", Message: "Name is not a property"})
	})

	_, err := client.SavePage(context.Background(), saveRequest(t, model.NoteTypeSummary, model.Summary{Summary: "s"}))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Name is not a property") {
		t.Errorf("API message not surfaced: %v", err)
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("", "")
	_, err := client.SavePage(context.Background(), saveRequest(t, model.NoteTypeSummary, model.Summary{}))
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestUnknownNoteType(t *testing.T) {
	client := NewClient("tok", "db")
	req := saveRequest(t, "poem", model.Summary{})
	if _, err := client.SavePage(context.Background(), req); err == nil {
		t.Error("expected error for unknown note type")
	}
}
