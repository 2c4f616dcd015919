package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/mysearch/internal/store"
)

// runCLI executes the root command with args against a throwaway data dir.
func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MYSEARCH_DATA_DIR", dataDir)

	var out bytes.Buffer
	root := rootCMD()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(dataDir, "config.json")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "golang" {
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}, "totalHits": 0, "totalPages": 0})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": 1, "url": "https://go.dev/doc/effective_go", "title": "Effective Go", "rawContent": "Tips for writing clear, idiomatic golang code."},
				{"pageId": 25039021, "url": "https://en.wikipedia.org/wiki/Go_(programming_language)", "title": "Go", "snippet": "Go is a programming language."},
			},
			"totalHits":  12,
			"totalPages": 2,
			"page":       0,
		})
	})
	mux.HandleFunc("/api/autocomplete", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"local": []string{"golang tutorial"},
			"wiki":  []map[string]string{{"title": "Go", "description": "programming language"}},
		})
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"UP","message":"all good"}`))
	})
	mux.HandleFunc("/api/crawl", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte("Crawl started"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchCommand(t *testing.T) {
	srv := fakeBackend(t)
	dir := t.TempDir()

	out, err := runCLI(t, dir, "--base-url", srv.URL+"/api", "search", "golang")
	if err != nil {
		t.Fatalf("search: %v\n%s", err, out)
	}
	for _, want := range []string{"About 12 results (page 1 of 2)", "Effective Go", "[W] ", "go.dev › doc › effective go", "Pages: [1] 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	st, err := store.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	entries, err := st.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Query != "golang" || entries[0].Hits != 12 {
		t.Errorf("history = %+v", entries)
	}
}

func TestSearchNoResults(t *testing.T) {
	srv := fakeBackend(t)
	out, err := runCLI(t, t.TempDir(), "--base-url", srv.URL+"/api", "search", "--no-history", "zzz")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "did not match any documents") {
		t.Errorf("output = %q", out)
	}
}

func TestSearchBadSource(t *testing.T) {
	srv := fakeBackend(t)
	if _, err := runCLI(t, t.TempDir(), "--base-url", srv.URL+"/api", "search", "-s", "bing", "golang"); err == nil {
		t.Error("unknown source should fail")
	}
}

func TestSuggestCommand(t *testing.T) {
	srv := fakeBackend(t)
	out, err := runCLI(t, t.TempDir(), "--base-url", srv.URL+"/api", "suggest", "go")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "golang tutorial" || lines[1] != "W Go  (programming language)" {
		t.Errorf("lines = %q", lines)
	}
}

func TestHealthCommand(t *testing.T) {
	srv := fakeBackend(t)
	out, err := runCLI(t, t.TempDir(), "--base-url", srv.URL+"/api", "health")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "UP (all good)") {
		t.Errorf("output = %q", out)
	}
}

func TestCrawlCommandValidates(t *testing.T) {
	srv := fakeBackend(t)
	_, err := runCLI(t, t.TempDir(), "--base-url", srv.URL+"/api", "crawl", "not a url")
	if err == nil || err.Error() != "Please enter a valid URL" {
		t.Errorf("err = %v", err)
	}

	out, err := runCLI(t, t.TempDir(), "--base-url", srv.URL+"/api", "crawl", "https://example.com/start")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "index pages from example.com") {
		t.Errorf("output = %q", out)
	}
}

func TestCrawlTopicLimit(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "crawl-topic", "-n", "99", "physics")
	if err == nil || !strings.Contains(err.Error(), "between 1 and 50") {
		t.Errorf("err = %v", err)
	}
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	st.RecordSearch("golang", "wiki", 12, now.Add(-time.Minute))
	st.RecordSearch("rust", "local", 3, now)
	st.Close()

	out, err := runCLI(t, dir, "history")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(out, "rust") > strings.Index(out, "golang") {
		t.Errorf("newest first expected:\n%s", out)
	}

	out, err = runCLI(t, dir, "history", "--prefix", "go")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "rust") || !strings.Contains(out, "golang") {
		t.Errorf("prefix filter:\n%s", out)
	}

	if _, err := runCLI(t, dir, "history", "--clear"); err != nil {
		t.Fatal(err)
	}
	out, _ = runCLI(t, dir, "history")
	if !strings.Contains(out, "No searches yet.") {
		t.Errorf("after clear:\n%s", out)
	}
}

const sampleEvents = `{"t":"2026-01-02T10:00:00Z","level":"info","kind":"search.start","comp":"session","qid":"abcdef1234","query":"golang"}
{"t":"2026-01-02T10:00:01Z","level":"error","kind":"search.error","comp":"session","qid":"abcdef1234","err":"timeout","dur_ms":1500}
not json
{"t":"2026-01-02T10:00:02Z","level":"debug","kind":"suggest.request","comp":"suggest","query":"go"}
`

func TestReadTailLines(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(sampleEvents))
	lines := readTailLines(r, 2, eventFilter{}.match)
	if len(lines) != 2 || lines[0].ev.Kind != "search.error" || lines[1].ev.Kind != "suggest.request" {
		t.Errorf("tail = %+v", lines)
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   int
	}{
		{"all", eventFilter{}, 3},
		{"kind prefix", eventFilter{kind: "search"}, 2},
		{"min level", eventFilter{level: "warn"}, 1},
		{"component", eventFilter{comp: "suggest"}, 1},
		{"query id prefix", eventFilter{qid: "abcdef"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(sampleEvents))
			if got := len(readTailLines(r, 10, tt.filter.match)); got != tt.want {
				t.Errorf("matched %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	got := formatEvent(eventRecord{
		Time:    time.Date(2026, 1, 2, 10, 0, 0, 0, time.Local),
		Level:   "error",
		Kind:    "search.error",
		Comp:    "session",
		QueryID: "abcdef1234",
		DurMs:   1500,
		Err:     "timeout",
	})
	for _, want := range []string{"10:00:00.000", "ERROR", "search.error", "(1500ms)", "qid=abcdef12", "err=timeout"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent missing %q: %s", want, got)
		}
	}
}

func TestEventsCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "events.jsonl"), []byte(sampleEvents), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, dir, "events", "--kind", "suggest", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != strings.Split(strings.TrimSpace(sampleEvents), "\n")[3] {
		t.Errorf("output = %q", out)
	}

	if _, err := runCLI(t, t.TempDir(), "events"); err == nil {
		t.Error("missing event log should be an error")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 8); got != "hello..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
