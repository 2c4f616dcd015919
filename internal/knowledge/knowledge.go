// Package knowledge manages the encyclopedia summary panel shown beside the
// first page of results.
package knowledge

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/highlight"
	"github.com/abelbrown/mysearch/internal/otel"
)

// ShortExtractLen is the collapsed extract length in runes.
const ShortExtractLen = 300

// Fetcher loads a summary. *api.Client satisfies it.
type Fetcher interface {
	Knowledge(ctx context.Context, q string) (*api.KnowledgeSummary, error)
}

// Wanted reports whether a search deserves a panel: first page, non-empty
// query, and a source that includes the encyclopedia.
func Wanted(query string, page int, source api.Source) bool {
	return page == 0 && strings.TrimSpace(query) != "" && source != api.SourceLocal
}

// ResultMsg carries a summary reply stamped with its query.
type ResultMsg struct {
	Query   string
	Summary *api.KnowledgeSummary
	Err     error
}

// Model is the panel state.
type Model struct {
	ctx     context.Context
	fetcher Fetcher
	log     *otel.Logger
	timeout time.Duration

	query    string // query the live request was made for; "" when none
	summary  *api.KnowledgeSummary
	loading  bool
	expanded bool
}

// New creates an empty panel.
func New(ctx context.Context, f Fetcher, timeout time.Duration, log *otel.Logger) Model {
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	return Model{ctx: ctx, fetcher: f, timeout: timeout, log: log}
}

// Request hides the current panel and, when Wanted, fetches a new one.
func (m Model) Request(query string, page int, source api.Source) (Model, tea.Cmd) {
	m.summary = nil
	m.expanded = false
	m.loading = false
	m.query = ""
	if !Wanted(query, page, source) || m.fetcher == nil {
		return m, nil
	}

	q := strings.TrimSpace(query)
	m.query = q
	m.loading = true
	m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKnowledgeRequest, Comp: "knowledge", Query: q})

	parent, f, timeout := m.ctx, m.fetcher, m.timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		k, err := f.Knowledge(ctx, q)
		return ResultMsg{Query: q, Summary: k, Err: err}
	}
}

// Reset hides the panel and invalidates any request in flight.
func (m Model) Reset() Model {
	m.query = ""
	m.summary = nil
	m.loading = false
	m.expanded = false
	return m
}

// Update applies replies for the live query. Errors and summaries without a
// title hide the panel silently.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	res, ok := msg.(ResultMsg)
	if !ok {
		return m, nil
	}
	if m.query == "" || res.Query != m.query {
		m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKnowledgeStale, Comp: "knowledge", Query: res.Query})
		return m, nil
	}
	m.loading = false
	if res.Err != nil {
		m.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindKnowledgeError, Comp: "knowledge",
			Query: res.Query, Err: res.Err.Error()})
		m.summary = nil
		return m, nil
	}
	if !res.Summary.Displayable() {
		m.summary = nil
		return m, nil
	}
	m.summary = res.Summary
	m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKnowledgeComplete, Comp: "knowledge", Query: res.Query})
	return m, nil
}

// ToggleExpanded flips between the short and full extract.
func (m Model) ToggleExpanded() Model {
	if m.Expandable() {
		m.expanded = !m.expanded
	}
	return m
}

// Visible reports whether there is a summary to draw.
func (m Model) Visible() bool { return m.summary != nil }

// Loading reports whether a request is in flight.
func (m Model) Loading() bool { return m.loading }

// Summary returns the shown summary, nil when hidden.
func (m Model) Summary() *api.KnowledgeSummary { return m.summary }

// Expanded reports whether the full extract is shown.
func (m Model) Expanded() bool { return m.expanded }

// Expandable reports whether the extract is long enough to collapse.
func (m Model) Expandable() bool {
	return m.summary != nil && highlight.Truncate(m.summary.Extract, ShortExtractLen) != m.summary.Extract
}

// Extract returns the extract as currently shown.
func (m Model) Extract() string {
	if m.summary == nil {
		return ""
	}
	if m.expanded {
		return m.summary.Extract
	}
	return highlight.Truncate(m.summary.Extract, ShortExtractLen)
}
