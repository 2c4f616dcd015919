package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// eventRecord mirrors otel.Event for JSON decoding.
// We decode from JSONL rather than importing otel to keep this
// subcommand usable even if the event schema evolves.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	QueryID   string         `json:"qid"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Page      int            `json:"page"`
	Source    string         `json:"source"`
	Query     string         `json:"query"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

// eventFilter selects events by kind prefix, minimum level, component
// and query ID. Zero fields match everything.
type eventFilter struct {
	kind  string
	level string
	comp  string
	qid   string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.qid != "" && !strings.HasPrefix(ev.QueryID, f.qid) {
		return false
	}
	return true
}

func formatEvent(ev eventRecord) string {
	ts := ev.Time.Local().Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-9s] %-20s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", ev.Page))
	}
	if ev.Source != "" {
		parts = append(parts, "src="+ev.Source)
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", ev.Query))
	}
	if ev.QueryID != "" {
		qid := ev.QueryID
		if len(qid) > 8 {
			qid = qid[:8]
		}
		parts = append(parts, "qid="+qid)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

func eventsCMD(g *globals) *cobra.Command {
	var tail int
	var follow bool
	var rawJSON bool
	var filter eventFilter

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the JSONL event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			logPath := cfg.EventsPath()

			f, err := os.Open(logPath)
			if err != nil {
				return fmt.Errorf("event log not found at %s (run the mysearch TUI first to generate events): %w", logPath, err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			show := func(l parsedLine) {
				if rawJSON {
					fmt.Fprintln(out, string(l.raw))
				} else {
					fmt.Fprintln(out, formatEvent(l.ev))
				}
			}

			reader := bufio.NewReaderSize(f, 64*1024)
			for _, l := range readTailLines(reader, tail, filter.match) {
				show(l)
			}
			if !follow {
				return nil
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return followLines(ctx, reader, filter.match, show)
		},
	}
	cmd.Flags().IntVar(&tail, "tail", 50, "number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "follow mode (like tail -f)")
	cmd.Flags().StringVar(&filter.kind, "kind", "", "filter by event kind prefix (e.g. 'search')")
	cmd.Flags().StringVar(&filter.level, "level", "", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&filter.comp, "comp", "", "filter by component name")
	cmd.Flags().StringVar(&filter.qid, "qid", "", "filter by query ID prefix")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "output raw JSON lines")
	return cmd
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r to the end and returns the last n lines matching
// the filter. The reader is left at EOF for follow mode.
func readTailLines(r *bufio.Reader, n int, match func(eventRecord) bool) []parsedLine {
	var ring []parsedLine
	if n > 0 {
		ring = make([]parsedLine, 0, n)
	}

	for {
		line, err := r.ReadBytes('\n')
		if raw := trimLine(line); len(raw) > 0 && n > 0 {
			var ev eventRecord
			if json.Unmarshal(raw, &ev) == nil && match(ev) {
				if len(ring) < n {
					ring = append(ring, parsedLine{ev: ev, raw: raw})
				} else {
					copy(ring, ring[1:])
					ring[n-1] = parsedLine{ev: ev, raw: raw}
				}
			}
		}
		if err != nil {
			return ring
		}
	}
}

// followLines polls r for appended lines until ctx is cancelled.
func followLines(ctx context.Context, r *bufio.Reader, match func(eventRecord) bool, emit func(parsedLine)) error {
	var partial []byte
	for {
		line, err := r.ReadBytes('\n')
		partial = append(partial, line...)
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		raw := trimLine(partial)
		partial = nil
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if match(ev) {
			emit(parsedLine{ev: ev, raw: raw})
		}
	}
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
