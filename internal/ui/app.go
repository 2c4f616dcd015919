package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/mysearch/internal/analytics"
	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/crawl"
	"github.com/abelbrown/mysearch/internal/highlight"
	"github.com/abelbrown/mysearch/internal/knowledge"
	"github.com/abelbrown/mysearch/internal/logging"
	"github.com/abelbrown/mysearch/internal/otel"
	"github.com/abelbrown/mysearch/internal/pagination"
	"github.com/abelbrown/mysearch/internal/session"
	"github.com/abelbrown/mysearch/internal/store"
	"github.com/abelbrown/mysearch/internal/suggest"
)

// Backend is everything the TUI asks of the search service. *api.Client
// satisfies it.
type Backend interface {
	session.Searcher
	session.ClickLogger
	suggest.Fetcher
	knowledge.Fetcher
	crawl.Starter
}

// History persists searches and opened results. *store.Store satisfies it.
type History interface {
	RecordSearch(query, source string, hits int, at time.Time) error
	Recent(limit int) ([]store.Entry, error)
	MarkVisited(url, query string, at time.Time) error
	Visited(urls []string) (map[string]bool, error)
}

// Refresher asks the analytics poller for an immediate refresh.
type Refresher interface {
	Refresh()
}

// Mode is the top-level screen.
type Mode int

const (
	ModeSearch Mode = iota
	ModeAdmin
)

type focus int

const (
	focusInput focus = iota
	focusResults
	focusHistory
)

// dropdownTop is the screen row of the first suggestion: below the header
// and the search box.
const dropdownTop = 2

// AppConfig wires the App to its collaborators. Nil collaborators disable
// the features that need them.
type AppConfig struct {
	Ctx     context.Context
	Backend Backend
	History History
	Poller  Refresher
	Ring    *otel.RingBuffer
	Log     *otel.Logger
	Open    func(url string) error
	Copy    func(text string) error
	Now     func() time.Time

	Source        api.Source
	PageSize      int
	MaxVisible    int
	SnippetLength int
	HistoryLimit  int
	Timeout       time.Duration
	Debounce      time.Duration
	MinChars      int
}

// App is the root Bubble Tea model.
// App does not hold the store; history arrives via messages.
type App struct {
	ctx      context.Context
	backend  Backend
	history  History
	poller   Refresher
	ring     *otel.RingBuffer
	log      *otel.Logger
	copyText func(string) error
	now      func() time.Time
	timeout  time.Duration
	maxPages int
	snippetN int
	historyN int

	session session.Controller
	suggest suggest.Model
	panel   knowledge.Model

	input   textinput.Model
	spinner spinner.Model
	results viewport.Model
	admin   adminForm

	mode      Mode
	focus     focus
	cursor    int
	follow    bool  // scroll the viewport to the cursor on the next refresh
	offsets   []int // first content line of each result, plus the end
	visited   map[string]bool
	recent    []store.Entry
	snapshot  analytics.Snapshot
	status    string
	statusErr bool
	showDebug bool

	width  int
	height int
	ready  bool
}

// NewApp creates the root model.
func NewApp(cfg AppConfig) App {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = api.DefaultTimeout
	}
	if cfg.MaxVisible <= 0 {
		cfg.MaxVisible = pagination.DefaultMaxVisible
	}
	if cfg.SnippetLength <= 0 {
		cfg.SnippetLength = highlight.DefaultSnippetLength
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}

	ti := textinput.New()
	ti.Placeholder = "Search Wikipedia or your local index"
	ti.Prompt = "/ "
	ti.CharLimit = 512
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusBarKey

	return App{
		ctx:      cfg.Ctx,
		backend:  cfg.Backend,
		history:  cfg.History,
		poller:   cfg.Poller,
		ring:     cfg.Ring,
		log:      cfg.Log,
		copyText: cfg.Copy,
		now:      cfg.Now,
		timeout:  cfg.Timeout,
		maxPages: cfg.MaxVisible,
		snippetN: cfg.SnippetLength,
		historyN: cfg.HistoryLimit,
		session: session.New(cfg.Ctx, session.Config{
			Searcher: cfg.Backend,
			Clicks:   cfg.Backend,
			Open:     cfg.Open,
			Now:      cfg.Now,
			PageSize: cfg.PageSize,
			Source:   cfg.Source,
			Timeout:  cfg.Timeout,
			Log:      cfg.Log,
		}),
		suggest: suggest.New(cfg.Ctx, cfg.Backend, suggest.Config{
			Debounce: cfg.Debounce,
			MinChars: cfg.MinChars,
			Timeout:  cfg.Timeout,
		}, cfg.Log),
		panel:   knowledge.New(cfg.Ctx, cfg.Backend, cfg.Timeout, cfg.Log),
		input:   ti,
		spinner: sp,
		results: viewport.New(80, 20),
		admin:   newAdminForm(),
		visited: make(map[string]bool),
	}
}

// Init starts the cursor blink and spinner and loads the search history.
func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick, a.loadHistory())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.log.TraceMsg("ui", msg)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = max(msg.Width-8, 10)

	case tea.KeyMsg:
		a, cmd = a.handleKey(msg)

	case tea.MouseMsg:
		a, cmd = a.handleMouse(msg)

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)

	case session.CompletedMsg:
		a.cursor = 0
		a.results.GotoTop()
		cmd = tea.Batch(a.recordSearch(msg.Session), a.loadVisited(msg.Session.Results))

	case session.ScrollToTopMsg:
		a.cursor = 0
		a.results.GotoTop()

	case session.OpenedMsg:
		if msg.Err != nil {
			a.setStatus("Could not open "+msg.URL+": "+msg.Err.Error(), true)
			break
		}
		a.visited[msg.URL] = true
		a.setStatus("Opened "+msg.URL, false)
		cmd = a.markVisited(msg.URL)

	case HistoryLoaded:
		if msg.Err != nil {
			a.storeError("load history", msg.Err)
			break
		}
		a.recent = msg.Entries
		if a.focus == focusHistory && a.cursor >= len(a.recent) {
			a.cursor = max(len(a.recent)-1, 0)
		}

	case VisitedLoaded:
		if msg.Err != nil {
			a.storeError("load visits", msg.Err)
			break
		}
		for u := range msg.Visited {
			a.visited[u] = true
		}

	case URLCopied:
		if msg.Err != nil {
			a.setStatus("Copy failed: "+msg.Err.Error(), true)
		} else {
			a.setStatus("Copied "+msg.URL, false)
		}

	case analytics.UpdatedMsg:
		a.snapshot = msg.Snapshot

	case crawl.StartedMsg:
		text, isErr := msg.Banner()
		a.admin = a.admin.setBanner(text, isErr)
		a.logCrawl(msg.Err, msg.Request.URL)

	case crawl.TopicMsg:
		text, isErr := msg.Banner()
		a.admin = a.admin.setBanner(text, isErr)
		a.logCrawl(msg.Err, msg.Topic)

	default:
		a, cmd = a.forward(msg)
	}

	a.refresh()
	return a, cmd
}

// forward hands messages private to the sub-models (search replies,
// debounce ticks, suggestion and knowledge replies) to each of them.
func (a App) forward(msg tea.Msg) (App, tea.Cmd) {
	var sc, gc, pc tea.Cmd
	a.session, sc = a.session.Update(msg)
	a.suggest, gc = a.suggest.Update(msg)
	a.panel, pc = a.panel.Update(msg)
	return a, tea.Batch(sc, gc, pc)
}

// handleKey routes keyboard input by mode and focus.
func (a App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return a, tea.Quit
	}
	a.status = ""

	if a.showDebug {
		if key.Matches(msg, keys.Debug) || key.Matches(msg, keys.Escape) {
			a.showDebug = false
		}
		return a, nil
	}
	if a.mode == ModeAdmin {
		return a.handleAdminKey(msg)
	}
	if a.focus == focusInput {
		return a.handleInputKey(msg)
	}

	a.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	if a.focus == focusHistory {
		return a.handleHistoryKey(msg)
	}
	return a.handleResultsKey(msg)
}

// handleInputKey drives the search box and the suggestion dropdown.
func (a App) handleInputKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "down":
		if m, ok := a.suggest.Down(); ok {
			a.suggest = m
			return a, nil
		}
		switch {
		case len(a.session.Session().Results) > 0:
			a.focusOn(focusResults)
		case a.session.Session().Status == session.Idle && len(a.recent) > 0:
			a.focusOn(focusHistory)
		}
		return a, nil

	case "up":
		if m, ok := a.suggest.Up(); ok {
			a.suggest = m
		}
		return a, nil

	case "enter":
		m, act := a.suggest.Enter()
		a.suggest = m
		if !act.Submit {
			return a, nil
		}
		q := a.input.Value()
		if act.Chosen != nil {
			q = act.Query
			a.input.SetValue(q)
			a.input.CursorEnd()
		}
		return a.submit(q, "")

	case "esc":
		m, wasOpen := a.suggest.Escape()
		a.suggest = m
		if !wasOpen && len(a.session.Session().Results) > 0 {
			a.focusOn(focusResults)
		}
		return a, nil

	case "tab":
		return a.changeSource(nextSource(a.session.Source()))
	}

	var ic, sc tea.Cmd
	a.input, ic = a.input.Update(msg)
	a.suggest, sc = a.suggest.SetInput(a.input.Value())
	return a, tea.Batch(ic, sc)
}

// handleResultsKey handles navigation over the result list.
func (a App) handleResultsKey(msg tea.KeyMsg) (App, tea.Cmd) {
	s := a.session.Session()
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Debug):
		a.showDebug = true

	case key.Matches(msg, keys.Focus), key.Matches(msg, keys.Escape):
		a.focusOn(focusInput)

	case key.Matches(msg, keys.Down):
		if a.cursor < len(s.Results)-1 {
			a.cursor++
		}
		a.follow = true

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		a.follow = true

	case key.Matches(msg, keys.Enter):
		if doc, ok := a.selected(); ok {
			return a, a.session.Click(doc)
		}

	case key.Matches(msg, keys.NextPage):
		return a.changePage(s.Page + 1)

	case key.Matches(msg, keys.PrevPage):
		return a.changePage(s.Page - 1)

	case key.Matches(msg, keys.NextSource):
		return a.changeSource(nextSource(a.session.Source()))

	case key.Matches(msg, keys.Source):
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(api.Sources) {
			return a.changeSource(api.Sources[idx])
		}

	case key.Matches(msg, keys.Home):
		return a.goHome()

	case key.Matches(msg, keys.Expand):
		a.panel = a.panel.ToggleExpanded()

	case key.Matches(msg, keys.Copy):
		return a, a.copySelected()

	case key.Matches(msg, keys.Admin):
		return a.openAdmin()

	default:
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleHistoryKey handles the recent-searches list on the home screen.
func (a App) handleHistoryKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Debug):
		a.showDebug = true
	case key.Matches(msg, keys.Down):
		if a.cursor < len(a.recent)-1 {
			a.cursor++
		}
	case key.Matches(msg, keys.Up):
		if a.cursor == 0 {
			a.focusOn(focusInput)
		} else {
			a.cursor--
		}
	case key.Matches(msg, keys.Focus), key.Matches(msg, keys.Escape):
		a.focusOn(focusInput)
	case key.Matches(msg, keys.Admin):
		return a.openAdmin()
	case key.Matches(msg, keys.Enter):
		if a.cursor < len(a.recent) {
			e := a.recent[a.cursor]
			a.input.SetValue(e.Query)
			a.input.CursorEnd()
			// Keep the aggregator in step without fetching suggestions.
			a.suggest, _ = a.suggest.SetInput(e.Query)
			a.suggest = a.suggest.ClickOutside()
			src, err := api.ParseSource(e.Source)
			if err != nil {
				src = ""
			}
			return a.submit(e.Query, src)
		}
	}
	return a, nil
}

// handleAdminKey drives the analytics and crawler screen.
func (a App) handleAdminKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		a.mode = ModeSearch
		return a, nil
	case key.Matches(msg, keys.NextField):
		a.admin = a.admin.focusField(a.admin.focus + 1)
		return a, nil
	case key.Matches(msg, keys.PrevField):
		a.admin = a.admin.focusField(a.admin.focus - 1)
		return a, nil
	case key.Matches(msg, keys.Refresh):
		if a.poller != nil {
			a.poller.Refresh()
		}
		return a, nil
	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd
	case msg.Type == tea.KeyEnter:
		return a.submitCrawl()
	}
	var cmd tea.Cmd
	a.admin, cmd = a.admin.update(msg)
	return a, cmd
}

// handleMouse selects suggestions by click, closes the dropdown on clicks
// elsewhere and scrolls results with the wheel.
func (a App) handleMouse(msg tea.MouseMsg) (App, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd

	case tea.MouseButtonLeft:
		if !a.suggest.Open() || a.mode != ModeSearch {
			return a, nil
		}
		row := msg.Y - dropdownTop
		if row >= 0 && row < len(a.suggest.Items()) {
			m, act := a.suggest.Select(row)
			a.suggest = m
			a.input.SetValue(act.Query)
			a.input.CursorEnd()
			return a.submit(act.Query, "")
		}
		a.suggest = a.suggest.ClickOutside()
	}
	return a, nil
}

// submit starts a new search and, for first pages, the knowledge panel.
func (a App) submit(query string, source api.Source) (App, tea.Cmd) {
	before := a.session.Seq()
	var sc, pc tea.Cmd
	a.session, sc = a.session.Submit(query, 0, source)
	if a.session.Seq() == before {
		return a, nil
	}
	a.panel, pc = a.panel.Request(query, 0, a.session.Source())
	a.cursor = 0
	a.focusOn(focusResults)
	return a, tea.Batch(sc, pc)
}

func (a App) changePage(page int) (App, tea.Cmd) {
	s := a.session.Session()
	if s.Status != session.Ready || page < 0 || page >= s.TotalPages || page == s.Page {
		return a, nil
	}
	var sc, pc tea.Cmd
	a.session, sc = a.session.ChangePage(page)
	a.panel, pc = a.panel.Request(s.RawQuery, page, a.session.Source())
	return a, tea.Batch(sc, pc)
}

func (a App) changeSource(src api.Source) (App, tea.Cmd) {
	if src == a.session.Source() {
		return a, nil
	}
	var sc, pc tea.Cmd
	a.session, sc = a.session.ChangeSource(src)
	if q := a.session.Session().RawQuery; strings.TrimSpace(q) != "" {
		a.panel, pc = a.panel.Request(q, 0, src)
		a.cursor = 0
	}
	return a, tea.Batch(sc, pc)
}

func (a App) goHome() (App, tea.Cmd) {
	a.session = a.session.GoHome()
	a.panel = a.panel.Reset()
	a.input.Reset()
	a.suggest, _ = a.suggest.SetInput("")
	a.cursor = 0
	a.mode = ModeSearch
	a.focusOn(focusInput)
	a.results.GotoTop()
	return a, a.loadHistory()
}

func (a App) openAdmin() (App, tea.Cmd) {
	a.mode = ModeAdmin
	a.admin = a.admin.focusField(a.admin.focus)
	a.results.GotoTop()
	if a.poller != nil {
		a.poller.Refresh()
	}
	return a, textinput.Blink
}

// submitCrawl validates the focused crawler form locally and sends it.
func (a App) submitCrawl() (App, tea.Cmd) {
	f := a.admin
	if f.crawlFocused() {
		req, err := crawl.Validate(f.inputs[fieldURL].Value(), f.inputs[fieldDomain].Value())
		if err != nil {
			a.admin = f.setBanner(crawl.ErrorText(err), true)
			return a, nil
		}
		if a.backend == nil {
			return a, nil
		}
		a.admin.busy, a.admin.banner = true, ""
		a.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCrawlStart, Comp: "ui", Msg: req.URL})
		return a, crawl.Start(a.ctx, a.backend, req, a.timeout)
	}

	topic, limit := f.inputs[fieldTopic].Value(), f.topicLimit()
	if err := crawl.ValidateTopic(topic, limit); err != nil {
		a.admin = f.setBanner(crawl.ErrorText(err), true)
		return a, nil
	}
	if a.backend == nil {
		return a, nil
	}
	a.admin.busy, a.admin.banner = true, ""
	a.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCrawlStart, Comp: "ui", Query: topic, Count: limit})
	return a, crawl.Topic(a.ctx, a.backend, topic, limit, a.timeout)
}

func (a App) logCrawl(err error, target string) {
	if err == nil {
		return
	}
	a.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindCrawlError, Comp: "ui", Msg: target, Err: err.Error()})
	logging.Warn("crawl request failed", "target", target, "error", err)
}

func (a App) storeError(op string, err error) {
	a.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindStoreError, Comp: "ui", Msg: op, Err: err.Error()})
	logging.Warn("history store", "op", op, "error", err)
}

func (a *App) focusOn(f focus) {
	a.focus = f
	if f == focusInput {
		a.input.Focus()
		return
	}
	a.input.Blur()
	a.suggest = a.suggest.ClickOutside()
	if f == focusHistory {
		a.cursor = 0
	}
}

func (a *App) setStatus(text string, isErr bool) {
	a.status, a.statusErr = text, isErr
}

// selected returns the result under the cursor.
func (a App) selected() (api.Document, bool) {
	res := a.session.Session().Results
	if a.cursor < 0 || a.cursor >= len(res) {
		return api.Document{}, false
	}
	return res[a.cursor], true
}

func (a App) loadHistory() tea.Cmd {
	if a.history == nil {
		return nil
	}
	h, limit := a.history, a.historyN
	return func() tea.Msg {
		entries, err := h.Recent(limit)
		return HistoryLoaded{Entries: entries, Err: err}
	}
}

// recordSearch remembers first-page searches and reloads the history.
func (a App) recordSearch(s session.Session) tea.Cmd {
	if a.history == nil || s.Page != 0 || s.Query() == "" {
		return nil
	}
	h, limit, at := a.history, a.historyN, a.now()
	return func() tea.Msg {
		if err := h.RecordSearch(s.Query(), string(s.Source), s.TotalHits, at); err != nil {
			return HistoryLoaded{Err: err}
		}
		entries, err := h.Recent(limit)
		return HistoryLoaded{Entries: entries, Err: err}
	}
}

func (a App) loadVisited(docs []api.Document) tea.Cmd {
	if a.history == nil || len(docs) == 0 {
		return nil
	}
	urls := make([]string, len(docs))
	for i, d := range docs {
		urls[i] = d.URL
	}
	h := a.history
	return func() tea.Msg {
		seen, err := h.Visited(urls)
		return VisitedLoaded{Visited: seen, Err: err}
	}
}

func (a App) markVisited(url string) tea.Cmd {
	if a.history == nil {
		return nil
	}
	h, q, at := a.history, a.session.Session().Query(), a.now()
	return func() tea.Msg {
		if err := h.MarkVisited(url, q, at); err != nil {
			return VisitedLoaded{Err: err}
		}
		return nil
	}
}

func (a App) copySelected() tea.Cmd {
	doc, ok := a.selected()
	if !ok || a.copyText == nil {
		return nil
	}
	cp := a.copyText
	return func() tea.Msg {
		return URLCopied{URL: doc.URL, Err: cp(doc.URL)}
	}
}

func nextSource(cur api.Source) api.Source {
	for i, s := range api.Sources {
		if s == cur {
			return api.Sources[(i+1)%len(api.Sources)]
		}
	}
	return api.Sources[0]
}

// Accessors for tests and the CLI.

// Session returns the live query session.
func (a App) Session() session.Session { return a.session.Session() }

// Mode returns the active screen.
func (a App) Mode() Mode { return a.mode }

// Cursor returns the highlighted row.
func (a App) Cursor() int { return a.cursor }

// Query returns the search box contents.
func (a App) Query() string { return a.input.Value() }

// Suggestions returns the visible dropdown rows.
func (a App) Suggestions() []suggest.Item { return a.suggest.Items() }
