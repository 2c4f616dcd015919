package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Source selects which corpus a search targets.
type Source string

const (
	SourceLocal  Source = "local" // local crawled index
	SourceRemote Source = "wiki"  // remote encyclopedia
	SourceAll    Source = "all"
)

// Sources lists every source in tab order.
var Sources = []Source{SourceRemote, SourceLocal, SourceAll}

// ParseSource maps user input ("local", "wiki", "remote", "all") to a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local":
		return SourceLocal, nil
	case "wiki", "remote", "wikipedia":
		return SourceRemote, nil
	case "all", "":
		return SourceAll, nil
	}
	return "", fmt.Errorf("api: unknown source %q", s)
}

// Label is the display name of the source tab.
func (s Source) Label() string {
	switch s {
	case SourceLocal:
		return "Local"
	case SourceRemote:
		return "Wikipedia"
	default:
		return "All"
	}
}

// Document is one search hit. Immutable once decoded.
type Document struct {
	ID         int64
	URL        string
	Title      string
	RawContent string
	WordCount  int
	CrawledAt  *time.Time
}

// documentJSON is the wire shape. Local hits carry id/rawContent/crawledAt,
// remote hits carry pageId/snippet/timestamp.
type documentJSON struct {
	ID         int64     `json:"id"`
	PageID     int64     `json:"pageId"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	RawContent string    `json:"rawContent"`
	Snippet    string    `json:"snippet"`
	WordCount  int       `json:"wordCount"`
	CrawledAt  Timestamp `json:"crawledAt"`
	Timestamp  Timestamp `json:"timestamp"`
}

// UnmarshalJSON normalizes local and remote hit shapes into one Document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var w documentJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Document{
		ID:         w.ID,
		URL:        w.URL,
		Title:      w.Title,
		RawContent: w.RawContent,
		WordCount:  w.WordCount,
	}
	if d.ID == 0 {
		d.ID = w.PageID
	}
	if d.RawContent == "" {
		d.RawContent = w.Snippet
	}
	switch {
	case !w.CrawledAt.IsZero():
		t := w.CrawledAt.Time
		d.CrawledAt = &t
	case !w.Timestamp.IsZero():
		t := w.Timestamp.Time
		d.CrawledAt = &t
	}
	return nil
}

// MarshalJSON writes the local-hit wire shape.
func (d Document) MarshalJSON() ([]byte, error) {
	w := struct {
		ID         int64      `json:"id,omitempty"`
		URL        string     `json:"url"`
		Title      string     `json:"title"`
		RawContent string     `json:"rawContent"`
		WordCount  int        `json:"wordCount,omitempty"`
		CrawledAt  *time.Time `json:"crawledAt,omitempty"`
	}{d.ID, d.URL, d.Title, d.RawContent, d.WordCount, d.CrawledAt}
	return json.Marshal(w)
}

// IsEncyclopedia reports whether the document lives on the remote encyclopedia.
func (d Document) IsEncyclopedia() bool {
	return strings.Contains(d.URL, "wikipedia.org")
}

// DisplayTitle returns the title or a placeholder for untitled pages.
func (d Document) DisplayTitle() string {
	if strings.TrimSpace(d.Title) == "" {
		return "Untitled"
	}
	return d.Title
}

// SearchRequest is the parameter set for one search call.
type SearchRequest struct {
	Query  string
	Page   int
	Size   int
	Source Source
}

// SearchResponse is the search collaborator's reply.
type SearchResponse struct {
	Results    []Document `json:"results"`
	TotalHits  int        `json:"totalHits"`
	TotalPages int        `json:"totalPages"`
	Page       int        `json:"page"`
}

// RemoteSuggestion is a titled encyclopedia entity offered as a completion.
type RemoteSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Suggestions is an autocomplete reply. The backend answers with either a
// flat string array (legacy) or {local: [...], wiki: [...]}; both decode here.
type Suggestions struct {
	Local  []string           `json:"local"`
	Remote []RemoteSuggestion `json:"wiki"`
}

// UnmarshalJSON accepts both autocomplete response shapes.
func (s *Suggestions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = Suggestions{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var flat []string
		if err := json.Unmarshal(data, &flat); err != nil {
			return fmt.Errorf("api: decode flat suggestions: %w", err)
		}
		s.Local = flat
		return nil
	}
	type alias Suggestions
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("api: decode suggestions: %w", err)
	}
	*s = Suggestions(a)
	return nil
}

// Len is the number of suggestions in both groups.
func (s Suggestions) Len() int { return len(s.Local) + len(s.Remote) }

// KnowledgeSummary is the encyclopedia summary shown beside page-one results.
type KnowledgeSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url"`
	Error       string `json:"error,omitempty"`
}

// Displayable reports whether the summary should be shown at all.
func (k *KnowledgeSummary) Displayable() bool {
	return k != nil && k.Error == "" && strings.TrimSpace(k.Title) != ""
}

// QueryStat is a row of the top-queries and top-clicked lists.
type QueryStat struct {
	Query  string `json:"query"`
	Count  int64  `json:"count"`
	Clicks int64  `json:"clicks"`
}

// ActivityPoint is the search count for one day.
type ActivityPoint struct {
	Date     string `json:"date"`
	Searches int64  `json:"searches"`
}

// SearchClickRow compares searches and clicks for one query.
type SearchClickRow struct {
	Query    string `json:"query"`
	Searches int64  `json:"searches"`
	Clicks   int64  `json:"clicks"`
}

// Analytics is the aggregated usage report.
type Analytics struct {
	TopQueries        []QueryStat      `json:"topQueries"`
	TopClicked        []QueryStat      `json:"topClicked"`
	TotalSearches     int64            `json:"totalSearches"`
	TotalClicks       int64            `json:"totalClicks"`
	UniqueQueries     int64            `json:"uniqueQueries"`
	TotalDocuments    int64            `json:"totalDocuments"`
	TotalIndexEntries int64            `json:"totalIndexEntries"`
	CTR               float64          `json:"ctr"` // percent, one decimal
	ActivityTimeline  []ActivityPoint  `json:"activityTimeline,omitempty"`
	SearchVsClicks    []SearchClickRow `json:"searchVsClicks,omitempty"`
}

// Health is the backend liveness reply.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Up reports whether the backend declared itself healthy.
func (h Health) Up() bool { return strings.EqualFold(h.Status, "UP") }

// TopicCrawl is the reply to a topic crawl request.
type TopicCrawl struct {
	Message           string `json:"message"`
	ArticlesRequested int    `json:"articlesRequested"`
}

// Timestamp decodes the backend's zone-less ISO timestamps as well as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON parses any of timestampLayouts. Empty, null or unrecognized
// values decode as the zero time so one odd field never drops a result page.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("api: timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}
