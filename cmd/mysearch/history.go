package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abelbrown/mysearch/internal/store"
)

func historyCMD(g *globals) *cobra.Command {
	var limit int
	var prefix string
	var wipe bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the local search history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer st.Close()

			if wipe {
				if err := st.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			}

			if limit <= 0 {
				limit = cfg.History.Limit
			}
			var entries []store.Entry
			if prefix != "" {
				entries, err = st.Matching(prefix, limit)
			} else {
				entries, err = st.Recent(limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No searches yet.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tSOURCE\tHITS\tTIMES\tQUERY")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					e.SearchedAt.Local().Format("2006-01-02 15:04"), e.Source, e.Hits, e.Count, truncate(e.Query, 60))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries (default from config)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only queries starting with this text, most frequent first")
	cmd.Flags().BoolVar(&wipe, "clear", false, "delete the whole history")
	return cmd
}
