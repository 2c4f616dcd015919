// Package analytics keeps a periodically refreshed snapshot of backend usage
// statistics and health.
package analytics

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/otel"
)

// DefaultInterval is the time between refreshes.
const DefaultInterval = 30 * time.Second

// Client is what the poller needs from the backend. *api.Client satisfies it.
type Client interface {
	Analytics(ctx context.Context) (*api.Analytics, error)
	Health(ctx context.Context) (api.Health, error)
}

// Sender delivers messages to the UI loop. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Snapshot is the poller's derived state. Report keeps the last good report
// when a later refresh fails.
type Snapshot struct {
	Report    *api.Analytics
	Err       error // last analytics error, nil after a good refresh
	Health    api.Health
	HealthErr error
	FetchedAt time.Time
}

// Up reports whether the last health check succeeded.
func (s Snapshot) Up() bool {
	return s.HealthErr == nil && s.Health.Up()
}

// UpdatedMsg is sent to the program after every refresh.
type UpdatedMsg struct {
	Snapshot Snapshot
}

// Poller refreshes analytics and health on a fixed interval. It only ever
// replaces its own snapshot. Stopped by cancelling the Start context.
type Poller struct {
	client   Client
	interval time.Duration
	timeout  time.Duration
	log      *otel.Logger
	now      func() time.Time

	mu   sync.Mutex
	snap Snapshot

	refresh chan struct{}
	wg      sync.WaitGroup
}

// NewPoller creates a Poller. Zero durations take defaults.
func NewPoller(c Client, interval, timeout time.Duration, log *otel.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	return &Poller{
		client:   c,
		interval: interval,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
		refresh:  make(chan struct{}, 1),
	}
}

// Start polls once immediately, then every interval until ctx is done.
// program may be nil.
func (p *Poller) Start(ctx context.Context, program Sender) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.poll(ctx, program)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx, program)
			case <-p.refresh:
				p.poll(ctx, program)
			}
		}
	}()
}

// Refresh asks for an immediate poll. Requests coalesce while one is pending.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Wait blocks until the polling goroutine exits.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// Snapshot returns the latest snapshot.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// poll fetches analytics and health concurrently, replaces the snapshot and
// sends it to the program.
func (p *Poller) poll(ctx context.Context, program Sender) {
	if ctx.Err() != nil {
		return
	}
	pollCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	var (
		report    *api.Analytics
		reportErr error
		health    api.Health
		healthErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		report, reportErr = p.client.Analytics(pollCtx)
		return nil
	})
	g.Go(func() error {
		health, healthErr = p.client.Health(pollCtx)
		return nil
	})
	_ = g.Wait() // errors are carried in the snapshot

	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	next := p.snap
	next.FetchedAt = p.now()
	next.Health, next.HealthErr = health, healthErr
	if reportErr != nil {
		next.Err = reportErr
	} else {
		next.Report, next.Err = report, nil
	}
	p.snap = next
	p.mu.Unlock()

	if reportErr != nil {
		p.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindAnalyticsError, Comp: "analytics",
			Err: reportErr.Error(), Dur: time.Since(start)})
	} else {
		p.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindAnalyticsRefresh, Comp: "analytics",
			Dur: time.Since(start), Count: int(report.TotalSearches)})
	}

	if program != nil {
		program.Send(UpdatedMsg{Snapshot: next})
	}
}
