// Package suggest owns the autocomplete dropdown: debounced requests,
// stale-response suppression, merging of local and remote completions, and
// the keyboard selection state machine.
//
// Model is a Bubble Tea sub-model. Every transition happens in Update or in
// one of the navigation methods, all called from the UI loop.
package suggest

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/otel"
)

const (
	// DefaultDebounce is how long input must be stable before a request.
	DefaultDebounce = 200 * time.Millisecond

	// DefaultMinChars is the shortest input that is completed.
	DefaultMinChars = 2

	// DefaultTimeout bounds one autocomplete request.
	DefaultTimeout = 10 * time.Second
)

// Kind tags a suggestion's origin.
type Kind int

const (
	Local  Kind = iota // completion from the local index
	Remote             // titled encyclopedia entity
)

func (k Kind) String() string {
	if k == Remote {
		return "remote"
	}
	return "local"
}

// Item is one row of the dropdown. Index is its position in the merged list.
type Item struct {
	Kind        Kind
	Text        string
	Description string
	URL         string
	Index       int
}

// Merge flattens a reply into one ordered list: local items first, then
// remote items, each in received order.
func Merge(s api.Suggestions) []Item {
	items := make([]Item, 0, s.Len())
	for _, text := range s.Local {
		items = append(items, Item{Kind: Local, Text: text, Index: len(items)})
	}
	for _, r := range s.Remote {
		items = append(items, Item{Kind: Remote, Text: r.Title, Description: r.Description, URL: r.URL, Index: len(items)})
	}
	return items
}

// Set is a merged reply together with the input that triggered it. It may be
// displayed only while Query equals the live input.
type Set struct {
	Query string
	Items []Item
}

// Fetcher returns completions for a prefix. *api.Client satisfies it.
type Fetcher interface {
	Autocomplete(ctx context.Context, prefix string) (api.Suggestions, error)
}

// debounceMsg fires when the quiet period after a keystroke ends.
type debounceMsg struct {
	seq   uint64
	query string
}

// ResultMsg carries an autocomplete reply stamped with its request query.
type ResultMsg struct {
	Query       string
	Suggestions api.Suggestions
	Err         error
	Dur         time.Duration
}

// Action is what a navigation step asks the owner to do.
type Action struct {
	// Submit is set when a search should run for Query.
	Submit bool
	Query  string
	// Chosen is the committed suggestion, nil when the raw text was submitted.
	Chosen *Item
}

// Config tunes the aggregator.
type Config struct {
	Debounce time.Duration
	MinChars int
	Timeout  time.Duration
}

// Model is the suggestion aggregator state.
type Model struct {
	ctx     context.Context
	fetcher Fetcher
	log     *otel.Logger

	debounce time.Duration
	minChars int
	timeout  time.Duration

	input     string // live input value
	seq       uint64 // bumped on every input change
	set       Set
	open      bool
	selected  int  // -1 means the raw input is active
	dismissed bool // closed by the user; replies for the same input stay hidden
}

// New creates a closed aggregator. Zero Config fields take defaults.
func New(ctx context.Context, f Fetcher, cfg Config, log *otel.Logger) Model {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = DefaultMinChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return Model{
		ctx:      ctx,
		fetcher:  f,
		log:      log,
		debounce: cfg.Debounce,
		minChars: cfg.MinChars,
		timeout:  cfg.Timeout,
		selected: -1,
	}
}

// SetInput records a new live input value. Inputs shorter than the minimum
// clear the dropdown immediately; longer ones schedule a debounced request.
// An unchanged value is ignored.
func (m Model) SetInput(q string) (Model, tea.Cmd) {
	if q == m.input {
		return m, nil
	}
	m.input = q
	m.seq++
	m.dismissed = false

	if utf8.RuneCountInString(strings.TrimSpace(q)) < m.minChars {
		m.clear()
		return m, nil
	}

	seq := m.seq
	return m, tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq, query: q}
	})
}

// Update handles debounce ticks and autocomplete replies.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.seq != m.seq || msg.query != m.input {
			return m, nil
		}
		m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestRequest, Comp: "suggest", Query: msg.query})
		return m, m.fetch(msg.query)

	case ResultMsg:
		if msg.Query != m.input {
			m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestStale, Comp: "suggest",
				Query: msg.Query, Msg: "live input is " + m.input})
			return m, nil
		}
		if msg.Err != nil {
			m.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSuggestError, Comp: "suggest",
				Query: msg.Query, Err: msg.Err.Error(), Dur: msg.Dur})
			m.clear()
			return m, nil
		}
		items := Merge(msg.Suggestions)
		m.set = Set{Query: msg.Query, Items: items}
		m.selected = -1
		m.open = len(items) > 0 && !m.dismissed
		m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestComplete, Comp: "suggest",
			Query: msg.Query, Count: len(items), Dur: msg.Dur})
		return m, nil
	}
	return m, nil
}

// fetch runs the request off the UI loop and stamps the reply with q.
func (m Model) fetch(q string) tea.Cmd {
	if m.fetcher == nil {
		return nil
	}
	parent, f, timeout := m.ctx, m.fetcher, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		start := time.Now()
		s, err := f.Autocomplete(ctx, q)
		return ResultMsg{Query: q, Suggestions: s, Err: err, Dur: time.Since(start)}
	}
}

// Down moves the selection one row down, clamped to the last row.
// Reports false when the dropdown is closed.
func (m Model) Down() (Model, bool) {
	if !m.Open() {
		return m, false
	}
	if m.selected < len(m.set.Items)-1 {
		m.selected++
	}
	return m, true
}

// Up moves the selection one row up, down to -1 (raw input active).
// Reports false when the dropdown is closed.
func (m Model) Up() (Model, bool) {
	if !m.Open() {
		return m, false
	}
	if m.selected > -1 {
		m.selected--
	}
	return m, true
}

// Enter commits the selected suggestion, or the raw input when nothing is
// selected. The dropdown closes either way.
func (m Model) Enter() (Model, Action) {
	if m.Open() && m.selected >= 0 {
		return m.Select(m.selected)
	}
	m.close()
	return m, Action{Submit: true, Query: m.input}
}

// Select commits item i (a click): the input becomes its text, the dropdown
// closes and a submit is requested, all in one step.
func (m Model) Select(i int) (Model, Action) {
	if i < 0 || i >= len(m.set.Items) {
		return m, Action{}
	}
	item := m.set.Items[i]
	m.input = item.Text
	m.seq++
	m.close()
	return m, Action{Submit: true, Query: item.Text, Chosen: &item}
}

// Escape closes the dropdown and clears the selection. Reports whether it
// was open.
func (m Model) Escape() (Model, bool) {
	was := m.Open()
	m.close()
	return m, was
}

// ClickOutside closes the dropdown without touching the input.
func (m Model) ClickOutside() Model {
	m.close()
	return m
}

func (m *Model) close() {
	m.open = false
	m.selected = -1
	m.dismissed = true
}

func (m *Model) clear() {
	m.set = Set{}
	m.open = false
	m.selected = -1
}

// Open reports whether the dropdown is showing. A set whose query no longer
// matches the input is never shown.
func (m Model) Open() bool {
	return m.open && m.set.Query == m.input && len(m.set.Items) > 0
}

// Items returns the visible rows, or nil when closed.
func (m Model) Items() []Item {
	if !m.Open() {
		return nil
	}
	return m.set.Items
}

// Selected returns the highlighted row index, -1 for none.
func (m Model) Selected() int {
	if !m.Open() {
		return -1
	}
	return m.selected
}
