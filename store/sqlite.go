// SQLite page-state store.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema and artifact encoding encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/synthra/model"
)

// SqliteStore implements Store using a SQLite database file. State
// survives restarts; this is the durable backing for the extension
// core. Thread-safe: sql.DB handles connection pooling and concurrent
// access.
type SqliteStore struct {
	db *sql.DB

	mu        sync.Mutex
	observers []Observer

	// now is the timestamp source, overridable in tests.
	now func() int64
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return newSqliteStore(db)
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	return newSqliteStore(db)
}

func newSqliteStore(db *sql.DB) (*SqliteStore, error) {
	s := &SqliteStore{db: db, now: model.NowMillis}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS pages (
			page_key TEXT PRIMARY KEY,
			summary TEXT,
			highlights TEXT,
			research TEXT,
			last_updated INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_pages_updated
		ON pages(last_updated DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get returns the stored state for key. A read fault degrades to the
// zero state rather than blocking the caller; the fault is logged.
func (s *SqliteStore) Get(ctx context.Context, key string) model.PageState {
	var summary, highlights, research sql.NullString
	var lastUpdated int64

	err := s.db.QueryRowContext(ctx,
		"SELECT summary, highlights, research, last_updated FROM pages WHERE page_key = ?",
		key).Scan(&summary, &highlights, &research, &lastUpdated)
	if err == sql.ErrNoRows {
		return model.PageState{}
	}
	if err != nil {
		log.Printf("store: read for %q failed, serving empty state: %v", key, err)
		return model.PageState{}
	}

	state := model.PageState{LastUpdated: lastUpdated}
	if summary.Valid {
		var sum model.Summary
		if err := json.Unmarshal([]byte(summary.String), &sum); err == nil {
			state.Summary = &sum
		} else {
			log.Printf("store: corrupt summary for %q dropped: %v", key, err)
		}
	}
	if highlights.Valid {
		var hs []model.Highlight
		if err := json.Unmarshal([]byte(highlights.String), &hs); err == nil {
			state.Highlights = hs
		} else {
			log.Printf("store: corrupt highlights for %q dropped: %v", key, err)
		}
	}
	if research.Valid {
		var res model.Research
		if err := json.Unmarshal([]byte(research.String), &res); err == nil {
			state.Research = &res
		} else {
			log.Printf("store: corrupt research for %q dropped: %v", key, err)
		}
	}
	return state
}

// MergeSummary replaces the summary for key.
func (s *SqliteStore) MergeSummary(ctx context.Context, key string, summary model.Summary) error {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return s.upsertColumn(ctx, key, "summary", string(encoded))
}

// MergeHighlights replaces the full highlight list for key.
func (s *SqliteStore) MergeHighlights(ctx context.Context, key string, highlights []model.Highlight) error {
	if highlights == nil {
		highlights = []model.Highlight{}
	}
	encoded, err := json.Marshal(highlights)
	if err != nil {
		return fmt.Errorf("failed to encode highlights: %w", err)
	}
	return s.upsertColumn(ctx, key, "highlights", string(encoded))
}

// MergeResearch replaces the research result for key.
func (s *SqliteStore) MergeResearch(ctx context.Context, key string, research model.Research) error {
	encoded, err := json.Marshal(research)
	if err != nil {
		return fmt.Errorf("failed to encode research: %w", err)
	}
	return s.upsertColumn(ctx, key, "research", string(encoded))
}

// Clear resets all artifact fields for key to absent and bumps
// last_updated. The row itself is kept.
func (s *SqliteStore) Clear(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (page_key, summary, highlights, research, last_updated)
		VALUES (?, NULL, NULL, NULL, ?)
		ON CONFLICT(page_key) DO UPDATE SET
			summary = NULL,
			highlights = NULL,
			research = NULL,
			last_updated = excluded.last_updated`,
		key, s.now())
	if err != nil {
		return fmt.Errorf("failed to clear page state: %w", err)
	}

	s.notify(ctx, key)
	return nil
}

// ListHistory projects all stored states, newest first.
func (s *SqliteStore) ListHistory(ctx context.Context, limit int) ([]model.TabHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT page_key, summary, last_updated FROM pages ORDER BY last_updated DESC, page_key ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []model.TabHistoryEntry{}
	for rows.Next() {
		var key string
		var summary sql.NullString
		var lastUpdated int64
		if err := rows.Scan(&key, &summary, &lastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		state := model.PageState{LastUpdated: lastUpdated}
		if summary.Valid {
			var sum model.Summary
			if json.Unmarshal([]byte(summary.String), &sum) == nil {
				state.Summary = &sum
			}
		}
		entries = append(entries, historyEntry(key, state))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return clampHistory(entries, limit), nil
}

// Subscribe registers an observer for post-persist notifications.
func (s *SqliteStore) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// upsertColumn replaces a single artifact column for key and bumps
// last_updated, creating the row if it does not exist.
func (s *SqliteStore) upsertColumn(ctx context.Context, key, column, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO pages (page_key, %s, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(page_key) DO UPDATE SET
			%s = excluded.%s,
			last_updated = excluded.last_updated`,
		column, column, column)

	if _, err := s.db.ExecContext(ctx, query, key, value, s.now()); err != nil {
		return fmt.Errorf("failed to merge %s: %w", column, err)
	}

	s.notify(ctx, key)
	return nil
}

// notify fans the post-mutation state out to subscribers.
func (s *SqliteStore) notify(ctx context.Context, key string) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	if len(observers) == 0 {
		return
	}
	state := s.Get(ctx, key)
	for _, obs := range observers {
		obs(key, state)
	}
}

// Verify SqliteStore implements Store
var _ Store = (*SqliteStore)(nil)
