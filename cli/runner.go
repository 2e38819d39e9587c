// Command execution for CLI commands.
//
// Information Hiding:
// - Component wiring (store, tracker, browser, backend client)
// - Output formatting
// - Session lifecycle

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/richinex/synthra/ai"
	"github.com/richinex/synthra/api"
	"github.com/richinex/synthra/backend"
	"github.com/richinex/synthra/browser"
	"github.com/richinex/synthra/config"
	"github.com/richinex/synthra/llm"
	"github.com/richinex/synthra/model"
	"github.com/richinex/synthra/notion"
	"github.com/richinex/synthra/pageid"
	"github.com/richinex/synthra/session"
	"github.com/richinex/synthra/store"
	"github.com/richinex/synthra/tracker"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Headless bool
	Verbose  bool
}

// Serve runs the analysis API server.
func Serve(ctx context.Context, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	provider, err := createProvider(settings)
	if err != nil {
		return err
	}

	analysis := ai.NewService(provider)
	notes := notion.NewClient(settings.Notion.Token, settings.Notion.DatabaseID)
	if !notes.Configured() {
		fmt.Fprintln(os.Stderr, "Warning: Notion integration not configured, note saving disabled")
	}

	server := api.NewServer(analysis, notes, analysis.Provider())
	return server.ListenAndServe(settings.Backend.ListenAddr)
}

// browserSession wires the full extension-side stack: a live browser,
// the page-state store, the tracker, and the backend client.
type browserSession struct {
	session *session.Session
	tabs    *browser.PlaywrightTabs
	store   store.Store
	cancel  context.CancelFunc
}

func (b *browserSession) Close() {
	b.cancel()
	_ = b.tabs.Close()
	_ = b.store.Close()
}

// openSession starts a browser and waits for the tracker to establish
// the first page key.
func openSession(ctx context.Context, opts Options) (*browserSession, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}

	st, err := store.OpenSqlite(settings.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open page store: %w", err)
	}

	tabs, err := browser.NewPlaywrightTabs(opts.Headless)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	extractor := browser.NewExtractor(tabs)
	client := backend.NewClient(settings.Backend.BaseURL, settings.Backend.Timeout)
	tr := tracker.New(tabs, st, settings.Tracker.SettleDelay)
	s := session.New(tr, st, tabs, extractor, client)

	sessionCtx, cancel := context.WithCancel(ctx)
	tr.Start(sessionCtx)

	return &browserSession{session: s, tabs: tabs, store: st, cancel: cancel}, nil
}

// waitForPage polls until the tracker establishes a page key.
func waitForPage(ctx context.Context, s *session.Session, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.CurrentKey() != "" {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("no trackable page became active within %s", timeout)
}

// Watch follows the active tab and prints every published state change
// until the user quits.
func Watch(ctx context.Context, opts Options) error {
	bs, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer bs.Close()

	bs.session.SetObserver(func(snap tracker.Snapshot) {
		if snap.Loading {
			fmt.Printf("-> %s (loading)\n", snap.Key)
			return
		}
		fmt.Printf("-> %s%s\n", snap.Key, describeState(snap.State))
	})

	fmt.Println("Watching the active tab. Type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "exit" || input == "quit" {
			break
		}
	}
	return scanner.Err()
}

// Summarize summarizes the active page and prints the result.
func Summarize(ctx context.Context, opts Options) error {
	bs, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer bs.Close()

	if err := waitForPage(ctx, bs.session, 10*time.Second); err != nil {
		return err
	}

	fmt.Printf("Summarizing %s...\n\n", bs.session.CurrentKey())
	summary, err := bs.session.Summarize(ctx)
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

// Highlight extracts key terms from the active page and prints them.
func Highlight(ctx context.Context, opts Options) error {
	bs, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer bs.Close()

	if err := waitForPage(ctx, bs.session, 10*time.Second); err != nil {
		return err
	}

	fmt.Printf("Highlighting %s...\n\n", bs.session.CurrentKey())
	highlights, err := bs.session.Highlight(ctx)
	if err != nil {
		return err
	}

	printHighlights(highlights)
	return nil
}

// Research runs a comparative query across all open tabs.
func Research(ctx context.Context, query string, opts Options) error {
	bs, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer bs.Close()

	if err := waitForPage(ctx, bs.session, 10*time.Second); err != nil {
		return err
	}

	fmt.Printf("Researching %q across open tabs...\n\n", query)
	research, err := bs.session.Research(ctx, query)
	if err != nil {
		return err
	}

	printResearch(research)
	return nil
}

// Save persists the active page's artifact of the given type to Notion.
func Save(ctx context.Context, noteType string, opts Options) error {
	bs, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer bs.Close()

	if err := waitForPage(ctx, bs.session, 10*time.Second); err != nil {
		return err
	}

	note, err := bs.session.SaveToNotion(ctx, noteType)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s note: %s\n", noteType, note.PageURL)
	return nil
}

// History prints recently analyzed pages, newest first.
func History(ctx context.Context, limit int, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	st, err := store.OpenSqlite(settings.Store.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open page store: %w", err)
	}
	defer st.Close()

	if limit <= 0 {
		limit = settings.Tracker.HistoryLimit
	}
	entries, err := st.ListHistory(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No pages analyzed yet.")
		return nil
	}

	for _, entry := range entries {
		updated := time.UnixMilli(entry.LastUpdated).Format("2006-01-02 15:04")
		fmt.Printf("%s  %s\n    %s\n", updated, entry.Title, entry.URL)
	}
	return nil
}

// Clear removes all cached artifacts for one page URL.
func Clear(ctx context.Context, rawURL string, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	st, err := store.OpenSqlite(settings.Store.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open page store: %w", err)
	}
	defer st.Close()

	key, err := pageid.Normalize(rawURL)
	if err != nil {
		return err
	}
	if err := st.Clear(ctx, key); err != nil {
		return err
	}
	fmt.Printf("Cleared state for %s\n", key)
	return nil
}

// Helper functions

func loadSettings(opts Options) (config.Settings, error) {
	if opts.Provider != "" {
		os.Setenv("SYNTHRA_LLM_PROVIDER", opts.Provider)
	}
	return config.New()
}

func createProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

func describeState(state model.PageState) string {
	var parts []string
	if state.Summary != nil {
		parts = append(parts, "summary")
	}
	if len(state.Highlights) > 0 {
		parts = append(parts, fmt.Sprintf("%d highlights", len(state.Highlights)))
	}
	if state.Research != nil {
		parts = append(parts, "research")
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func printSummary(summary model.Summary) {
	fmt.Printf("%s\n\n", summary.Summary)
	if len(summary.KeyPoints) > 0 {
		fmt.Println("Key points:")
		for _, point := range summary.KeyPoints {
			fmt.Printf("  - %s\n", point)
		}
		fmt.Println()
	}
	if len(summary.KeyConcepts) > 0 {
		fmt.Println("Key concepts:")
		for _, concept := range summary.KeyConcepts {
			fmt.Printf("  - %s\n", concept)
		}
		fmt.Println()
	}
	if summary.ReadingTimeMinutes > 0 {
		fmt.Printf("Reading time: ~%d min\n", summary.ReadingTimeMinutes)
	}
}

func printHighlights(highlights []model.Highlight) {
	if len(highlights) == 0 {
		fmt.Println("No terms identified.")
		return
	}
	for _, h := range highlights {
		fmt.Printf("%s (%s)\n    %s\n\n", h.Term, h.Importance, h.Explanation)
	}
}

func printResearch(research model.Research) {
	fmt.Printf("%s\n\n", research.Summary)
	if len(research.KeyFindings) > 0 {
		fmt.Println("Key findings:")
		for _, finding := range research.KeyFindings {
			fmt.Printf("  - %s\n", finding)
		}
		fmt.Println()
	}
	if len(research.Comparisons) > 0 {
		fmt.Println("Comparisons:")
		for _, comp := range research.Comparisons {
			fmt.Printf("  - %s: %s\n", comp.Aspect, comp.Details)
		}
		fmt.Println()
	}
	if len(research.Sources) > 0 {
		fmt.Println("Sources:")
		for _, source := range research.Sources {
			fmt.Printf("  - %s (%s)\n", source.Title, source.URL)
		}
	}
}
