// Package highlight truncates document text and marks query-term matches.
package highlight

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to text cut by Truncate.
const Ellipsis = "…"

// minTokenLen is the shortest query token that is emphasized.
// Tokens of two runes or fewer ("a", "of", "to") match almost everything.
const minTokenLen = 3

// Segment is a run of display text. Emphasized segments matched a query token.
type Segment struct {
	Text       string
	Emphasized bool
}

// Render truncates text to maxLength runes and splits the result into
// segments, marking case-insensitive occurrences of query tokens.
// Truncation happens before matching, so a match may be cut at the boundary.
// Always returns at least one segment.
func Render(text, query string, maxLength int) []Segment {
	shown := Truncate(text, maxLength)

	re := pattern(Tokens(query))
	if re == nil || shown == "" {
		return []Segment{{Text: shown}}
	}

	matches := re.FindAllStringIndex(shown, -1)
	if len(matches) == 0 {
		return []Segment{{Text: shown}}
	}

	segs := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segs = append(segs, Segment{Text: shown[last:m[0]]})
		}
		segs = append(segs, Segment{Text: shown[m[0]:m[1]], Emphasized: true})
		last = m[1]
	}
	if last < len(shown) {
		segs = append(segs, Segment{Text: shown[last:]})
	}
	return segs
}

// DefaultSnippetLength is the result snippet length in runes.
const DefaultSnippetLength = 300

// Truncate shortens text to at most maxLength runes. Cut text has surrounding
// whitespace trimmed and Ellipsis appended. maxLength <= 0 disables truncation.
func Truncate(text string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxLength])) + Ellipsis
}

// Tokens splits query on whitespace and keeps tokens longer than two runes
// in first-seen order. Tokens differing only in case are kept once, as
// written the first time.
func Tokens(query string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Fields(query) {
		if utf8.RuneCountInString(f) < minTokenLen {
			continue
		}
		key := strings.ToLower(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

// pattern compiles tokens into one case-insensitive alternation.
// Longer tokens come first so "searching" wins over "search" at the same offset.
func pattern(tokens []string) *regexp.Regexp {
	if len(tokens) == 0 {
		return nil
	}
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	quoted := make([]string, len(sorted))
	for i, t := range sorted {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile("(?i)(?:" + strings.Join(quoted, "|") + ")")
}

// Plain joins segments back into plain text.
func Plain(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
