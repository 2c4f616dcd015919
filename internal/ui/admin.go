package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/mysearch/internal/analytics"
	"github.com/abelbrown/mysearch/internal/crawl"
)

type adminField int

const (
	fieldURL adminField = iota
	fieldDomain
	fieldTopic
	fieldLimit
	fieldCount
)

var fieldLabels = [fieldCount]string{"URL", "Domain", "Topic", "Articles"}

// adminForm holds the crawler panel inputs.
type adminForm struct {
	inputs       [fieldCount]textinput.Model
	focus        adminField
	domainEdited bool // user typed a domain; stop deriving it from the URL
	banner       string
	bannerErr    bool
	busy         bool
}

func newAdminForm() adminForm {
	var f adminForm
	placeholders := [fieldCount]string{
		"https://example.com",
		"derived from URL",
		"e.g. quantum computing",
		strconv.Itoa(crawl.DefaultTopicLimit),
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 2048
		ti.Width = 50
		f.inputs[i] = ti
	}
	f.inputs[fieldLimit].CharLimit = 2
	f.inputs[fieldLimit].SetValue(strconv.Itoa(crawl.DefaultTopicLimit))
	f.inputs[fieldURL].Focus()
	return f
}

// focusField moves focus to field i, wrapping around.
func (f adminForm) focusField(i adminField) adminForm {
	i = (i%fieldCount + fieldCount) % fieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.inputs[i].Focus()
	f.focus = i
	return f
}

// update feeds a key to the focused input and keeps the domain in step
// with the URL until the user edits it.
func (f adminForm) update(msg tea.Msg) (adminForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)

	switch f.focus {
	case fieldURL:
		if !f.domainEdited {
			f.inputs[fieldDomain].SetValue(crawl.DeriveDomain(f.inputs[fieldURL].Value()))
		}
	case fieldDomain:
		f.domainEdited = f.inputs[fieldDomain].Value() != ""
	}
	return f, cmd
}

// crawlFocused reports whether the focused field belongs to the seed URL form.
func (f adminForm) crawlFocused() bool {
	return f.focus == fieldURL || f.focus == fieldDomain
}

// topicLimit parses the article count; unparseable input is out of range.
func (f adminForm) topicLimit() int {
	v := strings.TrimSpace(f.inputs[fieldLimit].Value())
	if v == "" {
		return crawl.DefaultTopicLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func (f adminForm) setBanner(text string, isErr bool) adminForm {
	f.banner, f.bannerErr, f.busy = text, isErr, false
	return f
}

func (f adminForm) view() string {
	var b strings.Builder
	b.WriteString(SectionHeader.Render("Web Crawler") + "\n")
	for i := fieldURL; i < fieldCount; i++ {
		if i == fieldTopic {
			b.WriteString(SectionHeader.Render("Import Wikipedia Topic") + "\n")
		}
		label := FieldLabel.Render(fieldLabels[i])
		if i == f.focus {
			label = FieldFocused.Render(fieldLabels[i])
		}
		b.WriteString(" " + label + f.inputs[i].View() + "\n")
	}
	switch {
	case f.busy:
		b.WriteString(Meta.Render(" Sending…") + "\n")
	case f.banner != "" && f.bannerErr:
		b.WriteString(ErrorStyle.Render(f.banner) + "\n")
	case f.banner != "":
		b.WriteString(SuccessStyle.Render(f.banner) + "\n")
	}
	return b.String()
}

// renderDashboard draws the analytics snapshot.
func renderDashboard(snap analytics.Snapshot, now time.Time, width int) string {
	var b strings.Builder
	b.WriteString(SectionHeader.Render("Analytics") + "\n")

	if snap.Err != nil {
		b.WriteString(ErrorStyle.Render(analytics.ErrorText) + "\n")
	}
	rep := snap.Report
	if rep == nil {
		if snap.Err == nil {
			b.WriteString(Meta.Render(" Loading analytics…") + "\n")
		}
		return b.String()
	}

	stat := func(label string, v string) string {
		return fmt.Sprintf(" %s %s", Meta.Render(label), StatValue.Render(v))
	}
	b.WriteString(strings.Join([]string{
		stat("Searches", strconv.FormatInt(rep.TotalSearches, 10)),
		stat("Clicks", strconv.FormatInt(rep.TotalClicks, 10)),
		stat("Unique", strconv.FormatInt(rep.UniqueQueries, 10)),
		stat("CTR", analytics.CTR(rep)),
	}, "  ") + "\n")
	b.WriteString(strings.Join([]string{
		stat("Documents", strconv.FormatInt(rep.TotalDocuments, 10)),
		stat("Index entries", strconv.FormatInt(rep.TotalIndexEntries, 10)),
	}, "  ") + "\n")

	if spark := analytics.Sparkline(rep.ActivityTimeline); spark != "" {
		b.WriteString(SectionHeader.Render("Activity") + "\n " + spark + "\n")
	}

	barWidth := width/3 - 4
	if barWidth < 5 {
		barWidth = 5
	}
	writeTable := func(title string, rows []analytics.Row) {
		if len(rows) == 0 {
			return
		}
		b.WriteString(SectionHeader.Render(title) + "\n")
		var peak int64
		for _, r := range rows {
			peak = max(peak, r.Value)
		}
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("  %-28s %6d %s\n", analytics.ShortQuery(r.Label, 28), r.Value,
				StatusBarKey.Render(analytics.Bar(r.Value, peak, barWidth))))
		}
	}
	writeTable("Top Queries", analytics.TopQueryRows(rep))
	writeTable("Top Clicked", analytics.TopClickedRows(rep))

	if len(rep.SearchVsClicks) > 0 {
		b.WriteString(SectionHeader.Render("Searches vs Clicks") + "\n")
		for _, r := range rep.SearchVsClicks {
			b.WriteString(fmt.Sprintf("  %-28s %6d searches %6d clicks\n", analytics.ShortQuery(r.Query, 28), r.Searches, r.Clicks))
		}
	}

	if !snap.FetchedAt.IsZero() {
		b.WriteString(Meta.Render(" updated "+formatAge(now.Sub(snap.FetchedAt))+" ago") + "\n")
	}
	return b.String()
}
