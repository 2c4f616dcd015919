// Package crawl validates crawl requests locally and turns crawl-trigger
// replies into banner text.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/mysearch/internal/api"
)

// DefaultTopicLimit is the article count for a topic crawl.
const DefaultTopicLimit = 20

var (
	ErrEmptyURL   = errors.New("crawl: empty url")
	ErrInvalidURL = errors.New("crawl: invalid url")
	ErrEmptyTopic = errors.New("crawl: empty topic")
	ErrLimitRange = fmt.Errorf("crawl: limit must be between %d and %d", api.MinTopicLimit, api.MaxTopicLimit)
)

// Request is a validated start-crawl request.
type Request struct {
	URL    string
	Domain string
}

// Validate checks a seed URL and fills the domain from its host when empty.
// Only absolute http(s) URLs pass.
func Validate(rawURL, domain string) (Request, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Request{}, ErrEmptyURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return Request{}, ErrInvalidURL
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		domain = u.Hostname()
	}
	return Request{URL: rawURL, Domain: domain}, nil
}

// DeriveDomain returns the host of rawURL, or "" while it does not parse yet.
func DeriveDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" {
		return ""
	}
	return u.Hostname()
}

// ValidateTopic checks a topic crawl request.
func ValidateTopic(q string, limit int) error {
	if strings.TrimSpace(q) == "" {
		return ErrEmptyTopic
	}
	if limit < api.MinTopicLimit || limit > api.MaxTopicLimit {
		return ErrLimitRange
	}
	return nil
}

// SuccessText is the banner shown after a crawl was accepted.
func SuccessText(req Request) string {
	target := req.Domain
	if target == "" {
		target = req.URL
	}
	return "Crawling started! The crawler will index pages from " + target
}

// ErrorText is the banner for a failed or rejected crawl: the inline
// validation message, the server's own message, or a generic fallback.
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyURL):
		return "Please enter a URL"
	case errors.Is(err, ErrInvalidURL):
		return "Please enter a valid URL"
	case errors.Is(err, ErrEmptyTopic):
		return "Please enter a topic"
	case errors.Is(err, ErrLimitRange):
		return fmt.Sprintf("Article limit must be between %d and %d", api.MinTopicLimit, api.MaxTopicLimit)
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return "Failed to start crawling"
}

// Starter triggers crawls. *api.Client satisfies it.
type Starter interface {
	StartCrawl(ctx context.Context, rawURL, domain string) (string, error)
	CrawlTopic(ctx context.Context, q string, limit int) (*api.TopicCrawl, error)
}

// StartedMsg reports a start-crawl outcome.
type StartedMsg struct {
	Request Request
	Reply   string
	Err     error
}

// TopicMsg reports a topic crawl outcome.
type TopicMsg struct {
	Topic string
	Reply *api.TopicCrawl
	Err   error
}

// Banner is the text to show for a crawl outcome and whether it is an error.
func (m StartedMsg) Banner() (string, bool) {
	if m.Err != nil {
		return ErrorText(m.Err), true
	}
	return SuccessText(m.Request), false
}

// Banner is the text to show for a topic crawl outcome and whether it is an error.
func (m TopicMsg) Banner() (string, bool) {
	if m.Err != nil {
		return ErrorText(m.Err), true
	}
	if m.Reply != nil && m.Reply.Message != "" {
		return m.Reply.Message, false
	}
	return "Importing Wikipedia articles for: " + m.Topic, false
}

// Start returns a command that triggers req.
func Start(ctx context.Context, s Starter, req Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		reply, err := s.StartCrawl(ctx, req.URL, req.Domain)
		return StartedMsg{Request: req, Reply: reply, Err: err}
	}
}

// Topic returns a command that triggers a topic crawl.
func Topic(ctx context.Context, s Starter, q string, limit int, timeout time.Duration) tea.Cmd {
	q = strings.TrimSpace(q)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		reply, err := s.CrawlTopic(ctx, q, limit)
		return TopicMsg{Topic: q, Reply: reply, Err: err}
	}
}
