package analytics

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abelbrown/mysearch/internal/api"
)

// ErrorText is shown when the report cannot be loaded.
const ErrorText = "Failed to load analytics data"

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one rune per day, scaled to the busiest day.
func Sparkline(points []api.ActivityPoint) string {
	if len(points) == 0 {
		return ""
	}
	var peak int64
	for _, p := range points {
		if p.Searches > peak {
			peak = p.Searches
		}
	}
	var b strings.Builder
	for _, p := range points {
		if peak == 0 || p.Searches <= 0 {
			b.WriteRune(sparkRunes[0])
			continue
		}
		idx := int(p.Searches * int64(len(sparkRunes)-1) / peak)
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// CTR formats the click-through rate, already a percentage, with one decimal.
func CTR(a *api.Analytics) string {
	if a == nil {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", a.CTR)
}

// Bar renders value as a proportional bar of at most width cells.
func Bar(value, peak int64, width int) string {
	if peak <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(value * int64(width) / peak)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// ShortQuery truncates long queries for table columns.
func ShortQuery(q string, maxRunes int) string {
	if utf8.RuneCountInString(q) <= maxRunes {
		return q
	}
	return string([]rune(q)[:maxRunes]) + "…"
}

// Row is one line of a ranked table.
type Row struct {
	Label string
	Value int64
}

// TopQueryRows ranks queries by search count.
func TopQueryRows(a *api.Analytics) []Row {
	if a == nil {
		return nil
	}
	rows := make([]Row, 0, len(a.TopQueries))
	for _, q := range a.TopQueries {
		rows = append(rows, Row{Label: q.Query, Value: q.Count})
	}
	return rows
}

// TopClickedRows ranks queries by clicks.
func TopClickedRows(a *api.Analytics) []Row {
	if a == nil {
		return nil
	}
	rows := make([]Row, 0, len(a.TopClicked))
	for _, q := range a.TopClicked {
		rows = append(rows, Row{Label: q.Query, Value: q.Clicks})
	}
	return rows
}
