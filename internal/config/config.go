// Package config loads MySearch settings from ~/.mysearch/config.json and
// MYSEARCH_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/highlight"
)

// EnvPrefix prefixes every environment override, e.g. MYSEARCH_API_BASE_URL.
const EnvPrefix = "MYSEARCH"

// Config is the application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	UI        UIConfig        `mapstructure:"ui"`
	Suggest   SuggestConfig   `mapstructure:"suggest"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	History   HistoryConfig   `mapstructure:"history"`
	DataDir   string          `mapstructure:"data_dir"`

	path string // file Load read from, target of Save
}

// APIConfig locates the search backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UIConfig holds presentation preferences.
type UIConfig struct {
	PageSize        int    `mapstructure:"page_size"`
	MaxVisiblePages int    `mapstructure:"max_visible_pages"`
	SnippetLength   int    `mapstructure:"snippet_length"`
	DefaultSource   string `mapstructure:"default_source"`
}

// SuggestConfig tunes autocomplete.
type SuggestConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	MinChars int           `mapstructure:"min_chars"`
}

// AnalyticsConfig tunes the dashboard poller.
type AnalyticsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// HistoryConfig controls the local search history.
type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

// DefaultDir returns ~/.mysearch.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mysearch"
	}
	return filepath.Join(home, ".mysearch")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.json")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: api.DefaultBaseURL,
			Timeout: api.DefaultTimeout,
		},
		UI: UIConfig{
			PageSize:        api.DefaultPageSize,
			MaxVisiblePages: 5,
			SnippetLength:   highlight.DefaultSnippetLength,
			DefaultSource:   string(api.SourceRemote),
		},
		Suggest: SuggestConfig{
			Debounce: 200 * time.Millisecond,
			MinChars: 2,
		},
		Analytics: AnalyticsConfig{PollInterval: 30 * time.Second},
		History:   HistoryConfig{Limit: 20},
		DataDir:   DefaultDir(),
		path:      DefaultPath(),
	}
}

// settings flattens c into viper keys. Durations are written as strings so
// saved files stay readable.
func (c *Config) settings() map[string]any {
	return map[string]any{
		"api.base_url":            c.API.BaseURL,
		"api.timeout":             c.API.Timeout.String(),
		"ui.page_size":            c.UI.PageSize,
		"ui.max_visible_pages":    c.UI.MaxVisiblePages,
		"ui.snippet_length":       c.UI.SnippetLength,
		"ui.default_source":       c.UI.DefaultSource,
		"suggest.debounce":        c.Suggest.Debounce.String(),
		"suggest.min_chars":       c.Suggest.MinChars,
		"analytics.poll_interval": c.Analytics.PollInterval.String(),
		"history.limit":           c.History.Limit,
		"data_dir":                c.DataDir,
	}
}

// Load reads path (DefaultPath when empty) and applies MYSEARCH_* overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	for key, val := range DefaultConfig().settings() {
		v.SetDefault(key, val)
	}
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		v.SetConfigType("json")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.path = path
	cfg.DataDir = expandHome(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config: api.base_url %q is not an http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive")
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("config: ui.page_size must be positive")
	}
	if c.UI.MaxVisiblePages <= 0 {
		return fmt.Errorf("config: ui.max_visible_pages must be positive")
	}
	if _, err := api.ParseSource(c.UI.DefaultSource); err != nil {
		return fmt.Errorf("config: ui.default_source: %w", err)
	}
	if c.Suggest.MinChars < 1 {
		return fmt.Errorf("config: suggest.min_chars must be at least 1")
	}
	if c.Suggest.Debounce < 0 {
		return fmt.Errorf("config: suggest.debounce must not be negative")
	}
	if c.Analytics.PollInterval <= 0 {
		return fmt.Errorf("config: analytics.poll_interval must be positive")
	}
	return nil
}

// Source returns the configured default source.
func (c *Config) Source() api.Source {
	s, err := api.ParseSource(c.UI.DefaultSource)
	if err != nil {
		return api.SourceRemote
	}
	return s
}

// Path is the file this config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// HistoryPath is the SQLite search history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// EventsPath is the JSONL event log.
func (c *Config) EventsPath() string {
	return filepath.Join(c.DataDir, "events.jsonl")
}

// LogDir holds the daily diagnostic logs.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// Save writes the config as JSON to the file it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	nested := make(map[string]any)
	for key, val := range c.settings() {
		parent, leaf, ok := strings.Cut(key, ".")
		if !ok {
			nested[key] = val
			continue
		}
		section, _ := nested[parent].(map[string]any)
		if section == nil {
			section = make(map[string]any)
			nested[parent] = section
		}
		section[leaf] = val
	}

	data, err := json.MarshalIndent(nested, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
