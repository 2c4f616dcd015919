// Package session implements the query session controller: the state machine
// that owns the live query, source, page and result set, and sequences
// submits, page changes, source switches and result clicks into requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/pkg/browser"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/otel"
)

// Status is the lifecycle state of a session.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Session is an immutable snapshot of one query and its results. A new
// Session replaces the old one on every submit; it is never merged.
type Session struct {
	RawQuery   string
	Source     api.Source
	Page       int
	Status     Status
	Results    []api.Document
	TotalHits  int
	TotalPages int
	Elapsed    time.Duration
}

// Query is the trimmed query text.
func (s Session) Query() string {
	return strings.TrimSpace(s.RawQuery)
}

// NoResults reports whether the view should show the no-results branch.
// A failed search and an empty page both land here, even when the backend
// claims hits it did not return.
func (s Session) NoResults() bool {
	switch s.Status {
	case Failed:
		return true
	case Ready:
		return len(s.Results) == 0
	}
	return false
}

// Stats is the "About N results (X seconds)" line.
func (s Session) Stats() string {
	return fmt.Sprintf("About %d results (%.2f seconds)", s.TotalHits, s.Elapsed.Seconds())
}

// Hints returns suggestions shown with the no-results branch.
func (s Session) Hints() []string {
	hints := []string{
		"Make sure all words are spelled correctly.",
		"Try different keywords.",
		"Try more general keywords.",
	}
	if s.Source == api.SourceLocal {
		hints = append(hints, "Search Wikipedia instead.")
	}
	return hints
}

// Searcher runs searches. *api.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, req api.SearchRequest) (*api.SearchResponse, error)
}

// ClickLogger records result clicks. *api.Client satisfies it.
type ClickLogger interface {
	LogClick(ctx context.Context, query string) error
}

// ErrUnsafeURL is returned for result URLs that are not http or https.
var ErrUnsafeURL = errors.New("session: refusing to open non-http(s) URL")

// resultMsg is a search reply stamped with the sequence number of its request.
type resultMsg struct {
	seq  uint64
	qid  string
	req  api.SearchRequest
	resp *api.SearchResponse
	err  error
}

// CompletedMsg is emitted after a search reply has been applied.
type CompletedMsg struct {
	Session Session
}

// ScrollToTopMsg asks the presentation layer to scroll results to the top.
type ScrollToTopMsg struct{}

// OpenedMsg reports the outcome of opening a clicked result.
type OpenedMsg struct {
	URL string
	Err error
}

// Config holds the controller's collaborators and tunables.
type Config struct {
	Searcher Searcher
	Clicks   ClickLogger
	// Open launches url in a separate browser process. Defaults to the
	// system browser.
	Open     func(url string) error
	Now      func() time.Time
	PageSize int
	Source   api.Source
	Timeout  time.Duration
	Log      *otel.Logger
}

// Controller is the query session state machine. It is a value type; every
// method returns the updated controller and is called from the UI loop.
type Controller struct {
	ctx      context.Context
	searcher Searcher
	clicks   ClickLogger
	open     func(string) error
	now      func() time.Time
	log      *otel.Logger
	pageSize int
	timeout  time.Duration

	source  api.Source // active source, kept across GoHome
	seq     uint64     // latest issued request; older replies are dropped
	qid     string
	started time.Time
	sess    Session
}

// New creates an idle controller.
func New(ctx context.Context, cfg Config) Controller {
	if cfg.Open == nil {
		cfg.Open = browser.OpenURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = api.DefaultPageSize
	}
	if cfg.Source == "" {
		cfg.Source = api.SourceRemote
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = api.DefaultTimeout
	}
	return Controller{
		ctx:      ctx,
		searcher: cfg.Searcher,
		clicks:   cfg.Clicks,
		open:     cfg.Open,
		now:      cfg.Now,
		log:      cfg.Log,
		pageSize: cfg.PageSize,
		timeout:  cfg.Timeout,
		source:   cfg.Source,
		sess:     Session{Source: cfg.Source},
	}
}

// Session returns the live snapshot.
func (c Controller) Session() Session {
	return c.sess
}

// Source returns the active source.
func (c Controller) Source() api.Source {
	return c.source
}

// Seq returns the sequence number of the latest issued request.
func (c Controller) Seq() uint64 {
	return c.seq
}

// QueryID returns the correlation ID of the latest issued request.
func (c Controller) QueryID() string {
	return c.qid
}

// Submit starts a search for query at page. An empty source keeps the
// active one; otherwise it becomes active. A blank query is a no-op.
func (c Controller) Submit(query string, page int, source api.Source) (Controller, tea.Cmd) {
	q := strings.TrimSpace(query)
	if q == "" {
		return c, nil
	}
	if source != "" {
		c.source = source
	}
	if page < 0 {
		page = 0
	}

	c.seq++
	c.qid = uuid.NewString()
	c.started = c.now()
	c.sess = Session{RawQuery: query, Source: c.source, Page: page, Status: Loading}

	req := api.SearchRequest{Query: q, Page: page, Size: c.pageSize, Source: c.source}
	c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "session",
		QueryID: c.qid, Query: q, Page: page, Source: string(c.source)})

	if c.searcher == nil {
		return c, nil
	}
	seq, qid, parent, searcher, timeout := c.seq, c.qid, c.ctx, c.searcher, c.timeout
	return c, func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		resp, err := searcher.Search(ctx, req)
		return resultMsg{seq: seq, qid: qid, req: req, resp: resp, err: err}
	}
}

// ChangePage re-runs the live query at page with the active source and asks
// the view to scroll to the top.
func (c Controller) ChangePage(page int) (Controller, tea.Cmd) {
	if c.sess.Query() == "" || page < 0 {
		return c, nil
	}
	c, cmd := c.Submit(c.sess.RawQuery, page, "")
	return c, tea.Batch(cmd, scrollToTop)
}

// ChangeSource switches the active source. A live query is re-run from
// page 0 against the new source.
func (c Controller) ChangeSource(source api.Source) (Controller, tea.Cmd) {
	if source == "" {
		return c, nil
	}
	c.source = source
	if c.sess.Query() == "" {
		c.sess.Source = source
		return c, nil
	}
	return c.Submit(c.sess.RawQuery, 0, source)
}

// GoHome resets to an empty idle session. Replies still in flight are
// dropped when they arrive.
func (c Controller) GoHome() Controller {
	c.seq++
	c.qid = ""
	c.sess = Session{Source: c.source}
	c.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchReset, Comp: "session"})
	return c
}

// Update applies search replies. Replies for anything but the latest
// request are dropped.
func (c Controller) Update(msg tea.Msg) (Controller, tea.Cmd) {
	res, ok := msg.(resultMsg)
	if !ok {
		return c, nil
	}
	if res.seq != c.seq {
		c.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchStale, Comp: "session",
			QueryID: res.qid, Query: res.req.Query, Page: res.req.Page,
			Msg: fmt.Sprintf("seq %d superseded by %d", res.seq, c.seq)})
		return c, nil
	}

	elapsed := c.now().Sub(c.started)
	next := Session{RawQuery: c.sess.RawQuery, Source: res.req.Source, Page: res.req.Page, Elapsed: elapsed}

	if res.err != nil || res.resp == nil {
		err := res.err
		if err == nil {
			err = errors.New("session: empty search reply")
		}
		next.Status = Failed
		c.sess = next
		c.log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindSearchError, Comp: "session",
			QueryID: res.qid, Query: res.req.Query, Page: res.req.Page, Err: err.Error(), Dur: elapsed})
		return c, nil
	}

	next.Status = Ready
	next.TotalHits = res.resp.TotalHits
	next.TotalPages = res.resp.TotalPages
	next.Results = append([]api.Document(nil), res.resp.Results...)
	if next.TotalPages > 0 && next.Page >= next.TotalPages {
		// The backend ran out of pages; keep the page index in range.
		next.Page = next.TotalPages - 1
		next.Results = nil
	}
	if next.TotalPages < 0 {
		next.TotalPages = 0
	}
	c.sess = next
	c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchComplete, Comp: "session",
		QueryID: res.qid, Query: res.req.Query, Page: next.Page, Source: string(next.Source),
		Count: len(next.Results), Dur: elapsed, Extra: map[string]any{"total_hits": next.TotalHits}})

	done := next
	return c, func() tea.Msg { return CompletedMsg{Session: done} }
}

// Click records a click on doc without waiting for it, then opens doc.URL.
// Click-logging failures never reach the caller.
func (c Controller) Click(doc api.Document) tea.Cmd {
	query := c.sess.Query()
	parent, clicks, open, log, timeout, qid := c.ctx, c.clicks, c.open, c.log, c.timeout, c.qid
	return func() tea.Msg {
		if clicks != nil && query != "" {
			go func() {
				ctx, cancel := context.WithTimeout(parent, timeout)
				defer cancel()
				if err := clicks.LogClick(ctx, query); err != nil {
					log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindClickError, Comp: "session",
						QueryID: qid, Query: query, Err: err.Error()})
				}
			}()
		}

		if err := checkURL(doc.URL); err != nil {
			return OpenedMsg{URL: doc.URL, Err: err}
		}
		err := open(doc.URL)
		if err != nil {
			err = fmt.Errorf("session: open %s: %w", doc.URL, err)
		}
		log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindClickOpen, Comp: "session",
			QueryID: qid, Query: query, Msg: doc.URL})
		return OpenedMsg{URL: doc.URL, Err: err}
	}
}

// checkURL accepts only absolute http(s) URLs.
func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrUnsafeURL
	}
	return nil
}

func scrollToTop() tea.Msg { return ScrollToTopMsg{} }
