package config

import (
	"os"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	os.Unsetenv("SYNTHRA_LLM_PROVIDER")
	os.Unsetenv("SYNTHRA_BACKEND_URL")
	os.Unsetenv("SYNTHRA_HTTP_TIMEOUT_SECS")

	settings, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "gemini" {
		t.Errorf("expected default provider 'gemini', got %q", settings.LLM.Provider)
	}
	if settings.Backend.Timeout != 30*time.Second {
		t.Errorf("expected default 30s timeout, got %v", settings.Backend.Timeout)
	}
	if settings.Tracker.SettleDelay != 100*time.Millisecond {
		t.Errorf("expected default 100ms settle delay, got %v", settings.Tracker.SettleDelay)
	}
	if settings.Tracker.HistoryLimit != 20 {
		t.Errorf("expected default history limit 20, got %d", settings.Tracker.HistoryLimit)
	}
}

func TestNewWithAlias(t *testing.T) {
	original := os.Getenv("SYNTHRA_LLM_PROVIDER")
	os.Setenv("SYNTHRA_LLM_PROVIDER", "claude")
	defer os.Setenv("SYNTHRA_LLM_PROVIDER", original)

	settings, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	original := os.Getenv("SYNTHRA_LLM_PROVIDER")
	os.Setenv("SYNTHRA_LLM_PROVIDER", "unknown_provider")
	defer os.Setenv("SYNTHRA_LLM_PROVIDER", original)

	if _, err := New(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewInvalidTimeout(t *testing.T) {
	original := os.Getenv("SYNTHRA_HTTP_TIMEOUT_SECS")
	os.Setenv("SYNTHRA_HTTP_TIMEOUT_SECS", "not-a-number")
	defer os.Setenv("SYNTHRA_HTTP_TIMEOUT_SECS", original)

	if _, err := New(); err == nil {
		t.Error("expected error for invalid timeout value")
	}
}

func TestAPIKeyFor(t *testing.T) {
	original := os.Getenv("GEMINI_API_KEY")
	os.Setenv("GEMINI_API_KEY", "test-key")
	defer os.Setenv("GEMINI_API_KEY", original)

	key, err := APIKeyFor("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	original := os.Getenv("GEMINI_API_KEY")
	os.Unsetenv("GEMINI_API_KEY")
	defer os.Setenv("GEMINI_API_KEY", original)

	if _, err := APIKeyFor("gemini"); err == nil {
		t.Error("expected error for missing API key")
	}
}
