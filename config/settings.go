// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	Backend BackendConfig
	LLM     LLMConfig
	Notion  NotionConfig
	Store   StoreConfig
	Tracker TrackerConfig
}

// BackendConfig holds the analysis API configuration, both for the
// server (ListenAddr) and the client side (BaseURL).
type BackendConfig struct {
	BaseURL    string
	ListenAddr string
	Timeout    time.Duration
}

// LLMConfig holds LLM provider configuration for the analysis service.
type LLMConfig struct {
	Provider    string
	Model       string
	MaxTokens   uint32
	Temperature float64
}

// NotionConfig holds note-saving configuration. Token may be empty, in
// which case the note-saving endpoint is disabled.
type NotionConfig struct {
	Token      string
	DatabaseID string
}

// StoreConfig holds page-state persistence configuration.
type StoreConfig struct {
	DBPath string
}

// TrackerConfig holds active-tab tracking configuration.
type TrackerConfig struct {
	// SettleDelay is how long to wait after a tab event before the
	// definitive address read. Reading too early returns the previous
	// page's address.
	SettleDelay  time.Duration
	HistoryLimit int
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration. Gemini is the default,
// matching the hosted analysis service.
var providers = map[string]providerInfo{
	"gemini":    {"GEMINI_MODEL", "gemini-flash-latest", "GEMINI_API_KEY"},
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// DefaultProvider is used when SYNTHRA_LLM_PROVIDER is unset.
const DefaultProvider = "gemini"

// New creates settings, loading values from environment variables.
// Returns an error if the configured provider is unknown or any
// environment variable contains an invalid value.
func New() (Settings, error) {
	provider := os.Getenv("SYNTHRA_LLM_PROVIDER")
	if provider == "" {
		provider = DefaultProvider
	}
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.3)
	if err != nil {
		return Settings{}, err
	}

	timeoutSecs, err := getEnvInt("SYNTHRA_HTTP_TIMEOUT_SECS", 30)
	if err != nil {
		return Settings{}, err
	}

	settleMS, err := getEnvInt("SYNTHRA_TRACKER_SETTLE_MS", 100)
	if err != nil {
		return Settings{}, err
	}

	historyLimit, err := getEnvInt("SYNTHRA_HISTORY_LIMIT", 20)
	if err != nil {
		return Settings{}, err
	}

	model := os.Getenv(info.modelEnv)
	if model == "" {
		model = info.defaultModel
	}

	return Settings{
		Backend: BackendConfig{
			BaseURL:    getEnvString("SYNTHRA_BACKEND_URL", "http://localhost:8000"),
			ListenAddr: getEnvString("SYNTHRA_LISTEN_ADDR", ":8000"),
			Timeout:    time.Duration(timeoutSecs) * time.Second,
		},
		LLM: LLMConfig{
			Provider:    provider,
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Notion: NotionConfig{
			Token:      os.Getenv("NOTION_TOKEN"),
			DatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		},
		Store: StoreConfig{
			DBPath: getEnvString("SYNTHRA_DB_PATH", ".synthra/synthra.db"),
		},
		Tracker: TrackerConfig{
			SettleDelay:  time.Duration(settleMS) * time.Millisecond,
			HistoryLimit: historyLimit,
		},
	}, nil
}

// MustNew creates settings. Panics if the environment is invalid.
// Use this only when configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}
