package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abelbrown/mysearch/internal/analytics"
	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/config"
	"github.com/abelbrown/mysearch/internal/crawl"
)

func analyticsCMD(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print search and click analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withClient(cmd.Context(), func(ctx context.Context, c *api.Client, cfg *config.Config) error {
				a, err := c.Analytics(ctx)
				if err != nil {
					return fmt.Errorf("%s: %w", analytics.ErrorText, err)
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), a)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Searches %d  Clicks %d  Unique %d  CTR %s\n",
					a.TotalSearches, a.TotalClicks, a.UniqueQueries, analytics.CTR(a))
				fmt.Fprintf(out, "Documents %d  Index entries %d\n", a.TotalDocuments, a.TotalIndexEntries)
				if spark := analytics.Sparkline(a.ActivityTimeline); spark != "" {
					fmt.Fprintf(out, "Activity %s\n", spark)
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				writeRows := func(title string, rows []analytics.Row) {
					if len(rows) == 0 {
						return
					}
					fmt.Fprintf(tw, "\n%s\t\n", title)
					for _, r := range rows {
						fmt.Fprintf(tw, "  %s\t%d\n", analytics.ShortQuery(r.Label, 40), r.Value)
					}
				}
				writeRows("Top queries", analytics.TopQueryRows(a))
				writeRows("Top clicked", analytics.TopClickedRows(a))
				if len(a.SearchVsClicks) > 0 {
					fmt.Fprintf(tw, "\nQuery\tSearches\tClicks\n")
					for _, r := range a.SearchVsClicks {
						fmt.Fprintf(tw, "  %s\t%d\t%d\n", analytics.ShortQuery(r.Query, 40), r.Searches, r.Clicks)
					}
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw reply as JSON")
	return cmd
}

func crawlCMD(g *globals) *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Ask the backend to crawl a seed URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := crawl.Validate(args[0], domain)
			if err != nil {
				return fmt.Errorf("%s", crawl.ErrorText(err))
			}
			return g.withClient(cmd.Context(), func(ctx context.Context, c *api.Client, cfg *config.Config) error {
				if _, err := c.StartCrawl(ctx, req.URL, req.Domain); err != nil {
					return fmt.Errorf("%s", crawl.ErrorText(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), crawl.SuccessText(req))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "restrict the crawl to this domain (default: the URL host)")
	return cmd
}

func crawlTopicCMD(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "crawl-topic <topic>",
		Short: "Import encyclopedia articles about a topic into the local index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")
			if err := crawl.ValidateTopic(topic, limit); err != nil {
				return fmt.Errorf("%s", crawl.ErrorText(err))
			}
			return g.withClient(cmd.Context(), func(ctx context.Context, c *api.Client, cfg *config.Config) error {
				reply, err := c.CrawlTopic(ctx, strings.TrimSpace(topic), limit)
				msg := crawl.TopicMsg{Topic: strings.TrimSpace(topic), Reply: reply, Err: err}
				text, isErr := msg.Banner()
				if isErr {
					return fmt.Errorf("%s", text)
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", crawl.DefaultTopicLimit,
		fmt.Sprintf("number of articles (%d-%d)", api.MinTopicLimit, api.MaxTopicLimit))
	return cmd
}
