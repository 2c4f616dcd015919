// Package api is the HTTP client for the MySearch backend.
//
// Every call takes a context and is bounded by the client timeout; callers
// never block the UI loop on it directly but run it inside a tea.Cmd.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is where the backend listens in a local checkout.
	DefaultBaseURL = "http://localhost:8080/api"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// DefaultPageSize is the number of results per page.
	DefaultPageSize = 10

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 10 << 20

	// MinTopicLimit and MaxTopicLimit bound a topic crawl.
	MinTopicLimit = 1
	MaxTopicLimit = 50
)

// Error is a non-2xx reply. Message is the server-provided text, verbatim
// when the body was plain text or carried a message/error field.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// ServerMessage returns the message carried by an *Error anywhere in err's
// chain, or "" when err is not a server reply.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client talks to the backend. Safe for concurrent use.
type Client struct {
	baseURL      string
	client       *http.Client
	crawlLimiter *rate.Limiter // throttles crawl triggers, which enqueue server work
}

// NewClient creates a Client for baseURL. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: timeout},
		crawlLimiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// BaseURL returns the backend root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search runs one paginated search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, errors.New("api: search: empty query")
	}
	size := req.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	source := req.Source
	if source == "" {
		source = SourceAll
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("size", strconv.Itoa(size))
	params.Set("source", string(source))

	var resp SearchResponse
	if err := c.do(ctx, http.MethodGet, "/search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []Document{}
	}
	return &resp, nil
}

// Autocomplete returns completions for prefix in either response shape.
func (c *Client) Autocomplete(ctx context.Context, prefix string) (Suggestions, error) {
	params := url.Values{}
	params.Set("prefix", prefix)

	var s Suggestions
	if err := c.do(ctx, http.MethodGet, "/autocomplete", params, &s); err != nil {
		return Suggestions{}, err
	}
	return s, nil
}

// Knowledge fetches the encyclopedia summary for q.
func (c *Client) Knowledge(ctx context.Context, q string) (*KnowledgeSummary, error) {
	params := url.Values{}
	params.Set("q", q)

	var k KnowledgeSummary
	if err := c.do(ctx, http.MethodGet, "/knowledge", params, &k); err != nil {
		return nil, err
	}
	return &k, nil
}

// LogClick records that a result for query was opened.
func (c *Client) LogClick(ctx context.Context, query string) error {
	params := url.Values{}
	params.Set("query", query)
	return c.do(ctx, http.MethodPost, "/click", params, nil)
}

// Analytics fetches the usage report.
func (c *Client) Analytics(ctx context.Context) (*Analytics, error) {
	var a Analytics
	if err := c.do(ctx, http.MethodGet, "/analytics", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// StartCrawl asks the backend to crawl rawURL, optionally restricted to
// domain. Returns the server's confirmation text.
func (c *Client) StartCrawl(ctx context.Context, rawURL, domain string) (string, error) {
	if err := c.crawlLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("api: crawl rate limiter: %w", err)
	}
	params := url.Values{}
	params.Set("url", rawURL)
	if domain != "" {
		params.Set("domain", domain)
	}

	var msg rawMessage
	if err := c.do(ctx, http.MethodPost, "/crawl", params, &msg); err != nil {
		return "", err
	}
	return messageFromBody([]byte(msg)), nil
}

// CrawlTopic asks the backend to import up to limit encyclopedia articles for q.
func (c *Client) CrawlTopic(ctx context.Context, q string, limit int) (*TopicCrawl, error) {
	if limit < MinTopicLimit || limit > MaxTopicLimit {
		return nil, fmt.Errorf("api: crawl topic: limit %d outside [%d, %d]", limit, MinTopicLimit, MaxTopicLimit)
	}
	if err := c.crawlLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("api: crawl rate limiter: %w", err)
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(limit))

	var tc TopicCrawl
	if err := c.do(ctx, http.MethodPost, "/crawl/wikipedia", params, &tc); err != nil {
		return nil, err
	}
	return &tc, nil
}

// Health checks backend liveness. Any 2xx is healthy; a JSON body fills the
// status and message.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var msg rawMessage
	if err := c.do(ctx, http.MethodGet, "/health", nil, &msg); err != nil {
		return Health{}, err
	}
	var h Health
	if json.Unmarshal([]byte(msg), &h) != nil || h.Status == "" {
		h = Health{Status: "UP", Message: string(msg)}
	}
	return h, nil
}

// rawMessage captures a body as trimmed text instead of decoding it.
type rawMessage string

// do issues one request and decodes a 2xx JSON body into out (nil discards it).
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("api: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("api: %s %s cancelled: %w", method, path, ctx.Err())
		}
		return fmt.Errorf("api: %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("api: %s %s: failed to read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    messageFromBody(body),
		}
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *rawMessage:
		*v = rawMessage(strings.TrimSpace(string(body)))
		return nil
	default:
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("api: %s %s: failed to parse response: %w", method, path, err)
		}
		return nil
	}
}

// messageFromBody extracts a human-readable message from a reply body:
// a JSON string, a {message} or {error} object, or the trimmed text itself.
func messageFromBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	var s string
	if json.Unmarshal(body, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
		return text
	}
	return text
}
