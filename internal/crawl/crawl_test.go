package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/abelbrown/mysearch/internal/api"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		domain     string
		wantErr    error
		wantDomain string
	}{
		{"empty", "  ", "", ErrEmptyURL, ""},
		{"no scheme", "example.com", "", ErrInvalidURL, ""},
		{"ftp", "ftp://example.com", "", ErrInvalidURL, ""},
		{"garbage", "http://%zz", "", ErrInvalidURL, ""},
		{"derived", "https://docs.example.com/start", "", nil, "docs.example.com"},
		{"explicit", "https://docs.example.com/start", "example.com", nil, "example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Validate(tt.url, tt.domain)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && req.Domain != tt.wantDomain {
				t.Errorf("Domain = %q, want %q", req.Domain, tt.wantDomain)
			}
		})
	}
}

func TestDeriveDomain(t *testing.T) {
	if got := DeriveDomain("https://en.wikipedia.org/wiki/Go"); got != "en.wikipedia.org" {
		t.Errorf("DeriveDomain = %q", got)
	}
	if got := DeriveDomain("https://exa"); got != "exa" {
		t.Errorf("partial host = %q", got)
	}
	if got := DeriveDomain("exam"); got != "" {
		t.Errorf("no scheme should derive nothing, got %q", got)
	}
}

func TestValidateTopic(t *testing.T) {
	if err := ValidateTopic("java", DefaultTopicLimit); err != nil {
		t.Errorf("valid topic: %v", err)
	}
	if err := ValidateTopic(" ", 10); !errors.Is(err, ErrEmptyTopic) {
		t.Errorf("empty topic err = %v", err)
	}
	for _, l := range []int{0, 51} {
		if err := ValidateTopic("java", l); !errors.Is(err, ErrLimitRange) {
			t.Errorf("limit %d err = %v", l, err)
		}
	}
}

func TestErrorText(t *testing.T) {
	serverErr := fmt.Errorf("wrapped: %w", &api.Error{StatusCode: http.StatusConflict, Message: "already queued"})
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrEmptyURL, "Please enter a URL"},
		{ErrInvalidURL, "Please enter a valid URL"},
		{serverErr, "already queued"},
		{&api.Error{StatusCode: 500}, "Failed to start crawling"},
		{errors.New("dial tcp: refused"), "Failed to start crawling"},
	}
	for _, tt := range tests {
		if got := ErrorText(tt.err); got != tt.want {
			t.Errorf("ErrorText(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestSuccessText(t *testing.T) {
	if got := SuccessText(Request{URL: "https://a.example", Domain: "a.example"}); got != "Crawling started! The crawler will index pages from a.example" {
		t.Errorf("SuccessText = %q", got)
	}
	if got := SuccessText(Request{URL: "https://a.example"}); got != "Crawling started! The crawler will index pages from https://a.example" {
		t.Errorf("SuccessText without domain = %q", got)
	}
}

type fakeStarter struct {
	reply    string
	topic    *api.TopicCrawl
	err      error
	gotURL   string
	gotLimit int
}

func (f *fakeStarter) StartCrawl(ctx context.Context, rawURL, domain string) (string, error) {
	f.gotURL = rawURL
	return f.reply, f.err
}

func (f *fakeStarter) CrawlTopic(ctx context.Context, q string, limit int) (*api.TopicCrawl, error) {
	f.gotLimit = limit
	return f.topic, f.err
}

func TestStartCommand(t *testing.T) {
	f := &fakeStarter{reply: "Crawling started: https://a.example"}
	req := Request{URL: "https://a.example", Domain: "a.example"}
	msg := Start(context.Background(), f, req, time.Second)().(StartedMsg)

	text, isErr := msg.Banner()
	if isErr || text != SuccessText(req) || f.gotURL != req.URL {
		t.Errorf("banner = %q err=%v", text, isErr)
	}

	f.err = &api.Error{StatusCode: 400, Message: "Domain not allowed"}
	msg = Start(context.Background(), f, req, time.Second)().(StartedMsg)
	if text, isErr = msg.Banner(); !isErr || text != "Domain not allowed" {
		t.Errorf("error banner = %q err=%v", text, isErr)
	}
}

func TestTopicCommand(t *testing.T) {
	f := &fakeStarter{topic: &api.TopicCrawl{Message: "Importing Wikipedia articles for: go", ArticlesRequested: 20}}
	msg := Topic(context.Background(), f, " go ", 20, time.Second)().(TopicMsg)
	text, isErr := msg.Banner()
	if isErr || text != "Importing Wikipedia articles for: go" || msg.Topic != "go" || f.gotLimit != 20 {
		t.Errorf("topic banner = %q err=%v topic=%q", text, isErr, msg.Topic)
	}

	empty := TopicMsg{Topic: "go", Reply: &api.TopicCrawl{}}
	if text, _ := empty.Banner(); text != "Importing Wikipedia articles for: go" {
		t.Errorf("fallback banner = %q", text)
	}
}
