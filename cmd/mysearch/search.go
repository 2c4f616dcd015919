package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/breadcrumb"
	"github.com/abelbrown/mysearch/internal/config"
	"github.com/abelbrown/mysearch/internal/highlight"
	"github.com/abelbrown/mysearch/internal/pagination"
	"github.com/abelbrown/mysearch/internal/store"
	"github.com/abelbrown/mysearch/internal/suggest"
)

func searchCMD(g *globals) *cobra.Command {
	var page int
	var source string
	var size int
	var asJSON bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("empty query")
			}
			if page < 1 {
				return fmt.Errorf("page must be 1 or more")
			}
			return g.withClient(cmd.Context(), func(ctx context.Context, c *api.Client, cfg *config.Config) error {
				src := cfg.Source()
				if source != "" {
					parsed, err := api.ParseSource(source)
					if err != nil {
						return err
					}
					src = parsed
				}
				if size <= 0 {
					size = cfg.UI.PageSize
				}

				resp, err := c.Search(ctx, api.SearchRequest{Query: query, Page: page - 1, Size: size, Source: src})
				if err != nil {
					return err
				}
				if !noHistory {
					recordHistory(cfg, query, src, resp.TotalHits)
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), resp)
				}

				out := cmd.OutOrStdout()
				if len(resp.Results) == 0 {
					fmt.Fprintf(out, "Your search - %s - did not match any documents.\n", query)
					return nil
				}
				fmt.Fprintf(out, "About %d results (page %d of %d)\n\n", resp.TotalHits, page, max(resp.TotalPages, 1))
				for _, doc := range resp.Results {
					badge := ""
					if doc.IsEncyclopedia() {
						badge = "[W] "
					}
					fmt.Fprintf(out, "%s%s\n", badge, breadcrumb.Join(breadcrumb.Format(doc.URL)))
					fmt.Fprintf(out, "  %s\n", doc.DisplayTitle())
					fmt.Fprintf(out, "  %s\n", doc.URL)
					snippet := highlight.Plain(highlight.Render(doc.RawContent, query, cfg.UI.SnippetLength))
					if snippet != "" {
						fmt.Fprintf(out, "  %s\n", snippet)
					}
					fmt.Fprintln(out)
				}
				if w := pagination.Compute(page-1, resp.TotalPages, cfg.UI.MaxVisiblePages); !w.Empty() {
					pages := make([]string, len(w.Pages))
					for i, p := range w.Pages {
						pages[i] = fmt.Sprint(p + 1)
						if p == w.Current() {
							pages[i] = "[" + pages[i] + "]"
						}
					}
					fmt.Fprintf(out, "Pages: %s\n", strings.Join(pages, " "))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page (1-based)")
	cmd.Flags().StringVarP(&source, "source", "s", "", "source: wiki, local or all (default from config)")
	cmd.Flags().IntVar(&size, "size", 0, "results per page (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw reply as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the query in the search history")
	return cmd
}

// recordHistory adds a CLI search to the shared history. Failures are
// reported but never fail the search.
func recordHistory(cfg *config.Config, query string, src api.Source, hits int) {
	st, err := store.Open(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer st.Close()
	if err := st.RecordSearch(query, string(src), hits, now()); err != nil {
		fmt.Fprintf(stderr, "warning: failed to record history: %v\n", err)
	}
}

func suggestCMD(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Print autocomplete suggestions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := strings.Join(args, " ")
			return g.withClient(cmd.Context(), func(ctx context.Context, c *api.Client, cfg *config.Config) error {
				s, err := c.Autocomplete(ctx, prefix)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), s)
				}
				for _, it := range suggest.Merge(s) {
					line := it.Text
					if it.Kind == suggest.Remote {
						line = "W " + line
						if it.Description != "" {
							line += "  (" + it.Description + ")"
						}
					}
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw reply as JSON")
	return cmd
}

func knowledgeCMD(g *globals) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "knowledge <query>",
		Short: "Print the encyclopedia summary for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")
			return g.withClient(cmd.Context(), func(ctx context.Context, c *api.Client, cfg *config.Config) error {
				k, err := c.Knowledge(ctx, q)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !k.Displayable() {
					fmt.Fprintln(out, "No summary available.")
					return nil
				}
				fmt.Fprintln(out, k.Title)
				if k.Description != "" {
					fmt.Fprintln(out, k.Description)
				}
				extract := k.Extract
				if !full {
					extract = highlight.Truncate(extract, cfg.UI.SnippetLength)
				}
				fmt.Fprintf(out, "\n%s\n", extract)
				if k.URL != "" {
					fmt.Fprintf(out, "\n%s\n", k.URL)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print the whole extract")
	return cmd
}

func healthCMD(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the search backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withClient(cmd.Context(), func(ctx context.Context, c *api.Client, cfg *config.Config) error {
				h, err := c.Health(ctx)
				if err != nil {
					return fmt.Errorf("%s unreachable: %w", c.BaseURL(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s", c.BaseURL(), h.Status)
				if h.Message != "" {
					fmt.Fprintf(cmd.OutOrStdout(), " (%s)", h.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				if !h.Up() {
					return fmt.Errorf("backend reports %s", h.Status)
				}
				return nil
			})
		},
	}
}
