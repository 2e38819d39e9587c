// Package api exposes the analysis operations over HTTP.
//
// Every endpoint speaks JSON and wraps its result in an envelope with
// a success flag and optional error string. Failures still return the
// envelope so clients have one error path regardless of status code.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/richinex/synthra/model"
	"github.com/richinex/synthra/notion"
)

// AnalysisService performs the AI operations. *ai.Service satisfies it.
type AnalysisService interface {
	Summarize(ctx context.Context, content, title, url string) (model.Summary, error)
	Highlight(ctx context.Context, content, url, pageContext string) ([]model.Highlight, error)
	Research(ctx context.Context, tabs []model.TabContent, query string) (model.Research, error)
}

// NoteService persists artifacts as notes. *notion.Client satisfies it.
type NoteService interface {
	SavePage(ctx context.Context, req model.NotionSaveRequest) (notion.SavedPage, error)
}

// Server is the analysis HTTP API.
type Server struct {
	analysis AnalysisService
	notes    NoteService
	provider string
	router   chi.Router
}

// NewServer creates the API server. The provider string is reported by
// the health endpoint for diagnostics.
func NewServer(analysis AnalysisService, notes NoteService, provider string) *Server {
	s := &Server{
		analysis: analysis,
		notes:    notes,
		provider: provider,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/summarize", s.handleSummarize)
		r.Post("/highlight", s.handleHighlight)
		r.Post("/research/multi-tab", s.handleResearch)
		r.Post("/notion/save", s.handleNotionSave)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler for mounting or serving.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("api: listening on %s (provider %s)", addr, s.provider)
	return http.ListenAndServe(addr, s.router)
}

// requestID tags every request with a fresh ID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("api: %s %s %s (%s)", r.Method, r.URL.Path, id, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"provider": s.provider,
	})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req model.SummarizeRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.SummarizeResponse{Error: err.Error()})
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, model.SummarizeResponse{Error: "content is required"})
		return
	}

	summary, err := s.analysis.Summarize(r.Context(), req.Content, req.Title, req.URL)
	if err != nil {
		log.Printf("api: summarize failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.SummarizeResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, model.SummarizeResponse{Summary: summary, Success: true})
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req model.HighlightRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.HighlightResponse{Error: err.Error()})
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, model.HighlightResponse{Error: "content is required"})
		return
	}

	highlights, err := s.analysis.Highlight(r.Context(), req.Content, req.URL, req.Context)
	if err != nil {
		log.Printf("api: highlight failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.HighlightResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, model.HighlightResponse{Highlights: highlights, Success: true})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req model.MultiTabResearchRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.MultiTabResearchResponse{Error: err.Error()})
		return
	}
	if len(req.Tabs) == 0 {
		writeJSON(w, http.StatusBadRequest, model.MultiTabResearchResponse{Error: "at least one tab is required"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, model.MultiTabResearchResponse{Error: "query is required"})
		return
	}

	research, err := s.analysis.Research(r.Context(), req.Tabs, req.Query)
	if err != nil {
		log.Printf("api: research failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.MultiTabResearchResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, model.MultiTabResearchResponse{Research: research, Success: true})
}

func (s *Server) handleNotionSave(w http.ResponseWriter, r *http.Request) {
	var req model.NotionSaveRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.NotionSaveResponse{Error: err.Error()})
		return
	}
	if req.Type == "" || len(req.Content) == 0 {
		writeJSON(w, http.StatusBadRequest, model.NotionSaveResponse{Error: "type and content are required"})
		return
	}

	page, err := s.notes.SavePage(r.Context(), req)
	if err != nil {
		if errors.Is(err, notion.ErrNotConfigured) {
			writeJSON(w, http.StatusServiceUnavailable, model.NotionSaveResponse{Error: err.Error()})
			return
		}
		log.Printf("api: notion save failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.NotionSaveResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, model.NotionSaveResponse{
		PageID:  page.PageID,
		PageURL: page.PageURL,
		Success: true,
	})
}

func decode(r *http.Request, out any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.New("invalid JSON request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("api: response encode failed: %v", err)
	}
}
