// Command mysearch is a terminal client for the MySearch engine.
//
// Usage:
//
//	mysearch                   Interactive search TUI
//	mysearch search <query>    One-shot search
//	mysearch suggest <prefix>  Autocomplete
//	mysearch knowledge <query> Encyclopedia summary
//	mysearch analytics         Dashboard numbers
//	mysearch crawl <url>       Start a crawl
//	mysearch crawl-topic <q>   Import encyclopedia articles for a topic
//	mysearch health            Backend status
//	mysearch history           Recent searches
//	mysearch events            JSONL event log viewer
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/abelbrown/mysearch/internal/analytics"
	"github.com/abelbrown/mysearch/internal/logging"
	"github.com/abelbrown/mysearch/internal/otel"
	"github.com/abelbrown/mysearch/internal/store"
	"github.com/abelbrown/mysearch/internal/ui"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	cfgPath  string
	baseURL  string
	logLevel string
}

func main() {
	if err := rootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "mysearch",
		Short:        "Search the web and your local index from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), g)
		},
	}
	root.PersistentFlags().StringVarP(&g.cfgPath, "config", "c", "", "config file (default is ~/.mysearch/config.json)")
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "search API base URL (overrides config)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		searchCMD(g),
		suggestCMD(g),
		knowledgeCMD(g),
		healthCMD(g),
		analyticsCMD(g),
		crawlCMD(g),
		crawlTopicCMD(g),
		historyCMD(g),
		eventsCMD(g),
	)
	return root
}

func runTUI(parent context.Context, g *globals) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cfg, err := g.load()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.LogDir(), g.logLevel); err != nil {
		return err
	}
	defer logging.Close()

	events, closeEvents, err := openEventLog(cfg.EventsPath())
	if err != nil {
		return err
	}
	defer closeEvents()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)
	events.Info(otel.KindStartup, "main", "mysearch starting against "+cfg.API.BaseURL)

	st, err := store.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer st.Close()

	client := newClient(cfg)
	poller := analytics.NewPoller(client, cfg.Analytics.PollInterval, cfg.API.Timeout, events)

	app := ui.NewApp(ui.AppConfig{
		Ctx:           ctx,
		Backend:       client,
		History:       st,
		Poller:        poller,
		Ring:          ring,
		Log:           events,
		Open:          browser.OpenURL,
		Copy:          clipboard.WriteAll,
		Source:        cfg.Source(),
		PageSize:      cfg.UI.PageSize,
		MaxVisible:    cfg.UI.MaxVisiblePages,
		SnippetLength: cfg.UI.SnippetLength,
		HistoryLimit:  cfg.History.Limit,
		Timeout:       cfg.API.Timeout,
		Debounce:      cfg.Suggest.Debounce,
		MinChars:      cfg.Suggest.MinChars,
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	poller.Start(ctx, program)

	logging.Info("tui started", "base_url", cfg.API.BaseURL, "source", cfg.Source())
	_, runErr := program.Run()

	cancel()
	poller.Wait()
	events.Info(otel.KindShutdown, "main", "mysearch exiting")
	if runErr != nil && runErr != tea.ErrProgramKilled {
		logging.Error("program exited", "error", runErr)
		return runErr
	}
	return nil
}
