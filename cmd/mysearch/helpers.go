package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/config"
	"github.com/abelbrown/mysearch/internal/otel"
)

var (
	stderr io.Writer = os.Stderr
	now              = time.Now
)

// load reads the config file and applies flag overrides.
func (g *globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.cfgPath)
	if err != nil {
		return nil, err
	}
	if g.baseURL != "" {
		cfg.API.BaseURL = g.baseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
}

// withClient loads config and hands a client and a request context to fn.
func (g *globals) withClient(parent context.Context, fn func(ctx context.Context, c *api.Client, cfg *config.Config) error) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, cfg.API.Timeout)
	defer cancel()
	return fn(ctx, newClient(cfg), cfg)
}

// openEventLog appends events to path, creating its directory.
func openEventLog(path string) (*otel.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open event log: %w", err)
	}
	l := otel.NewLogger(f)
	return l, func() {
		l.Close()
		f.Close()
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
