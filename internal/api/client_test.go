package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// newTestClient points a Client at server with rate limiting disabled.
func newTestClient(server *httptest.Server) *Client {
	c := NewClient(server.URL+"/api", 2*time.Second)
	c.crawlLimiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
	if c.client.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.client.Timeout, DefaultTimeout)
	}

	c = NewClient("http://example.com/api/", time.Second)
	if c.BaseURL() != "http://example.com/api" {
		t.Errorf("trailing slash not trimmed: %q", c.BaseURL())
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/api/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "cat" || q.Get("page") != "1" || q.Get("size") != "10" || q.Get("source") != "local" {
			t.Errorf("unexpected params: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"results": [
				{"id": 7, "url": "https://a.example/x", "title": "A", "rawContent": "about cats", "tokens": "cat", "crawledAt": "2024-03-01T10:20:30.123456"},
				{"pageId": 42, "url": "https://en.wikipedia.org/wiki/Cat", "title": "Cat", "snippet": "small mammal", "wordCount": 900, "timestamp": "2024-02-02T00:00:00Z"}
			],
			"totalHits": 25, "page": 1, "totalPages": 3
		}`)
	}))
	defer server.Close()

	c := newTestClient(server)
	resp, err := c.Search(context.Background(), SearchRequest{Query: "  cat ", Page: 1, Size: 10, Source: SourceLocal})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalHits != 25 || resp.TotalPages != 3 || len(resp.Results) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	a := resp.Results[0]
	if a.ID != 7 || a.RawContent != "about cats" || a.CrawledAt == nil {
		t.Errorf("local doc decoded wrong: %+v", a)
	} else if a.CrawledAt.Year() != 2024 || a.CrawledAt.Month() != time.March {
		t.Errorf("crawledAt = %v", a.CrawledAt)
	}

	b := resp.Results[1]
	if b.ID != 42 || b.RawContent != "small mammal" || b.WordCount != 900 || !b.IsEncyclopedia() {
		t.Errorf("remote doc decoded wrong: %+v", b)
	}
}

func TestSearchEmptyQueryRejectedLocally(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := newTestClient(server)
	if _, err := c.Search(context.Background(), SearchRequest{Query: "   "}); err == nil {
		t.Error("expected error for blank query")
	}
	if hits.Load() != 0 {
		t.Error("blank query must not reach the server")
	}
}

func TestSearchNullResultsBecomeEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": null, "totalHits": 0, "totalPages": 0}`)
	}))
	defer server.Close()

	resp, err := newTestClient(server).Search(context.Background(), SearchRequest{Query: "xyzzy"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("Results = %#v, want empty non-nil", resp.Results)
	}
}

func TestSearchDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("size") != "10" || q.Get("source") != "all" || q.Get("page") != "0" {
			t.Errorf("unexpected defaults: %v", q)
		}
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer server.Close()

	if _, err := newTestClient(server).Search(context.Background(), SearchRequest{Query: "go"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestAutocompleteShapes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantLocal  []string
		wantRemote int
	}{
		{"flat", `["machine learning", "machine"]`, []string{"machine learning", "machine"}, 0},
		{"structured", `{"local": ["machine learning"], "wiki": [{"title": "Machine", "description": "device", "url": "https://en.wikipedia.org/wiki/Machine"}]}`, []string{"machine learning"}, 1},
		{"empty object", `{}`, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/autocomplete" || r.URL.Query().Get("prefix") != "machine" {
					t.Errorf("unexpected request: %s", r.URL)
				}
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			s, err := newTestClient(server).Autocomplete(context.Background(), "machine")
			if err != nil {
				t.Fatalf("Autocomplete: %v", err)
			}
			if len(s.Local) != len(tt.wantLocal) {
				t.Fatalf("Local = %v, want %v", s.Local, tt.wantLocal)
			}
			for i := range tt.wantLocal {
				if s.Local[i] != tt.wantLocal[i] {
					t.Errorf("Local[%d] = %q, want %q", i, s.Local[i], tt.wantLocal[i])
				}
			}
			if len(s.Remote) != tt.wantRemote {
				t.Errorf("Remote = %v, want %d items", s.Remote, tt.wantRemote)
			}
			if tt.wantRemote > 0 && s.Remote[0].Description != "device" {
				t.Errorf("remote description lost: %+v", s.Remote[0])
			}
		})
	}
}

func TestAutocompleteMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"local": 5}`)
	}))
	defer server.Close()

	if _, err := newTestClient(server).Autocomplete(context.Background(), "ma"); err == nil {
		t.Error("expected decode error")
	}
}

func TestKnowledge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "golang" {
			t.Errorf("unexpected q: %s", r.URL.Query().Get("q"))
		}
		json.NewEncoder(w).Encode(KnowledgeSummary{Title: "Go", Description: "language", Extract: "Go is...", URL: "https://go.dev"})
	}))
	defer server.Close()

	k, err := newTestClient(server).Knowledge(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Knowledge: %v", err)
	}
	if !k.Displayable() || k.Title != "Go" {
		t.Errorf("unexpected summary: %+v", k)
	}
}

func TestKnowledgeDisplayable(t *testing.T) {
	var nilSummary *KnowledgeSummary
	tests := []struct {
		name string
		k    *KnowledgeSummary
		want bool
	}{
		{"nil", nilSummary, false},
		{"error", &KnowledgeSummary{Title: "Go", Error: "not found"}, false},
		{"no title", &KnowledgeSummary{Extract: "text"}, false},
		{"ok", &KnowledgeSummary{Title: "Go"}, true},
	}
	for _, tt := range tests {
		if got := tt.k.Displayable(); got != tt.want {
			t.Errorf("%s: Displayable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLogClick(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/click" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := newTestClient(server).LogClick(context.Background(), "cat videos"); err != nil {
		t.Fatalf("LogClick: %v", err)
	}
	if gotQuery != "cat videos" {
		t.Errorf("query = %q, want %q", gotQuery, "cat videos")
	}
}

func TestAnalytics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"topQueries": [{"id": 1, "query": "java", "count": 12, "clicks": 3, "lastSearchedAt": "2024-01-01T00:00:00"}],
			"topClicked": [{"query": "go", "count": 4, "clicks": 9}],
			"totalSearches": 40, "totalClicks": 10, "uniqueQueries": 7,
			"totalDocuments": 120, "totalIndexEntries": 5000, "ctr": 25.0,
			"activityTimeline": [{"date": "2024-01-01", "searches": 3}],
			"searchVsClicks": [{"query": "java", "searches": 12, "clicks": 3}]
		}`)
	}))
	defer server.Close()

	a, err := newTestClient(server).Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if a.TotalSearches != 40 || a.CTR != 25.0 || len(a.TopQueries) != 1 || a.TopQueries[0].Count != 12 {
		t.Errorf("unexpected analytics: %+v", a)
	}
	if len(a.ActivityTimeline) != 1 || len(a.SearchVsClicks) != 1 {
		t.Errorf("optional series missing: %+v", a)
	}
}

func TestStartCrawl(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.Method != http.MethodPost || q.Get("url") != "https://example.com" || q.Get("domain") != "example.com" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		}
		fmt.Fprint(w, "Crawling started: https://example.com")
	}))
	defer server.Close()

	msg, err := newTestClient(server).StartCrawl(context.Background(), "https://example.com", "example.com")
	if err != nil {
		t.Fatalf("StartCrawl: %v", err)
	}
	if msg != "Crawling started: https://example.com" {
		t.Errorf("msg = %q", msg)
	}
}

func TestStartCrawlServerErrorVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "URL already queued", http.StatusConflict)
	}))
	defer server.Close()

	_, err := newTestClient(server).StartCrawl(context.Background(), "https://example.com", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if ServerMessage(err) != "URL already queued" {
		t.Errorf("ServerMessage = %q", ServerMessage(err))
	}
}

func TestServerMessageJSONBodies(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message": "queued"}`, "queued"},
		{`{"error": "bad url"}`, "bad url"},
		{`"plain json string"`, "plain json string"},
		{`  text body  `, "text body"},
		{``, ""},
		{`{"other": 1}`, `{"other": 1}`},
	}
	for _, tt := range tests {
		if got := messageFromBody([]byte(tt.body)); got != tt.want {
			t.Errorf("messageFromBody(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
	if ServerMessage(errors.New("dial tcp: refused")) != "" {
		t.Error("transport error should carry no server message")
	}
}

func TestCrawlTopic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/crawl/wikipedia" || r.URL.Query().Get("limit") != "20" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		fmt.Fprint(w, `{"message": "Importing Wikipedia articles for: java", "articlesRequested": 20}`)
	}))
	defer server.Close()

	tc, err := newTestClient(server).CrawlTopic(context.Background(), "java", 20)
	if err != nil {
		t.Fatalf("CrawlTopic: %v", err)
	}
	if tc.ArticlesRequested != 20 || !strings.Contains(tc.Message, "java") {
		t.Errorf("unexpected reply: %+v", tc)
	}
}

func TestCrawlTopicLimitValidated(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := newTestClient(server)
	for _, limit := range []int{0, 51, -3} {
		if _, err := c.CrawlTopic(context.Background(), "java", limit); err == nil {
			t.Errorf("limit %d: expected error", limit)
		}
	}
	if hits.Load() != 0 {
		t.Error("invalid limits must not reach the server")
	}
}

func TestHealth(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": "UP", "message": "Search engine is running"}`)
		}))
		defer server.Close()

		h, err := newTestClient(server).Health(context.Background())
		if err != nil {
			t.Fatalf("Health: %v", err)
		}
		if !h.Up() || h.Message != "Search engine is running" {
			t.Errorf("unexpected health: %+v", h)
		}
	})

	t.Run("empty 200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		h, err := newTestClient(server).Health(context.Background())
		if err != nil || !h.Up() {
			t.Errorf("empty 200 should be healthy, got %+v, %v", h, err)
		}
	})

	t.Run("503", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		if _, err := newTestClient(server).Health(context.Background()); err == nil {
			t.Error("expected error on 503")
		}
	})
}

func TestTimeoutFollowsErrorPath(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(server.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Search(context.Background(), SearchRequest{Query: "slow"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout not enforced, took %v", time.Since(start))
	}
}

func TestContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server).Analytics(ctx)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}
