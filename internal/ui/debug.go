package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/mysearch/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders request stats and recent events from the ring.
// Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Request Stats"))
	lines = append(lines, fmt.Sprintf("  Searches:   %d started, %d complete, %d errors, %d stale",
		stats[otel.KindSearchStart], stats[otel.KindSearchComplete], stats[otel.KindSearchError], stats[otel.KindSearchStale]))
	lines = append(lines, fmt.Sprintf("  Suggest:    %d requested, %d complete, %d errors, %d stale",
		stats[otel.KindSuggestRequest], stats[otel.KindSuggestComplete], stats[otel.KindSuggestError], stats[otel.KindSuggestStale]))
	lines = append(lines, fmt.Sprintf("  Knowledge:  %d requested, %d shown, %d stale",
		stats[otel.KindKnowledgeRequest], stats[otel.KindKnowledgeComplete], stats[otel.KindKnowledgeStale]))
	lines = append(lines, fmt.Sprintf("  Clicks:     %d opened, %d log errors",
		stats[otel.KindClickOpen], stats[otel.KindClickError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Query != "" {
			line += "  " + truncateRunes(fmt.Sprintf("%q", e.Query), 24)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.QueryID != "" {
			line += "  qid:" + shortQID(e.QueryID)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay, with the
// correlation ID of the live query when there is one.
func debugStatusBar(width int, qid string) string {
	keys := StatusBarKey.Render("?") + StatusBarText.Render(":close")
	bar := "  [DEBUG]  " + keys
	if qid != "" {
		bar += "  " + StatusBarText.Render("qid:"+shortQID(qid))
	}
	return StatusBar.Width(width).Render(bar)
}

func shortQID(qid string) string {
	if len(qid) > 8 {
		return qid[:8]
	}
	return qid
}

// truncateRunes cuts s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
