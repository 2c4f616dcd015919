package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/breadcrumb"
	"github.com/abelbrown/mysearch/internal/highlight"
	"github.com/abelbrown/mysearch/internal/knowledge"
	"github.com/abelbrown/mysearch/internal/pagination"
	"github.com/abelbrown/mysearch/internal/session"
)

// renderSnippet highlights query tokens in the document body and wraps it.
func renderSnippet(doc api.Document, query string, maxLen, width int) string {
	var b strings.Builder
	if doc.WordCount > 0 {
		b.WriteString(Meta.Render(fmt.Sprintf("%d words · ", doc.WordCount)))
	}
	for _, seg := range highlight.Render(doc.RawContent, query, maxLen) {
		if seg.Emphasized {
			b.WriteString(Match.Render(seg.Text))
		} else {
			b.WriteString(Snippet.Render(seg.Text))
		}
	}
	if width <= 0 {
		return b.String()
	}
	return wordwrap.String(b.String(), width)
}

// renderResult renders one result: breadcrumb, title, snippet.
func renderResult(doc api.Document, query string, maxLen, width int, selected, visited bool) string {
	crumb := Breadcrumb.Render(truncateRunes(breadcrumb.Join(breadcrumb.Format(doc.URL)), max(width-6, 10)))
	if doc.IsEncyclopedia() {
		crumb = SourceBadge.Render("W") + crumb
	}

	titleStyle := NormalItem
	switch {
	case selected:
		titleStyle = SelectedItem
	case visited:
		titleStyle = VisitedItem
	}
	title := titleStyle.Render(truncateRunes(doc.DisplayTitle(), max(width-4, 10)))

	snippet := lipgloss.NewStyle().PaddingLeft(1).Render(renderSnippet(doc, query, maxLen, width-2))
	return crumb + "\n" + title + "\n" + snippet
}

// renderTabs shows the source tabs with the active one marked.
func renderTabs(active api.Source) string {
	tabs := make([]string, 0, len(api.Sources))
	for i, src := range api.Sources {
		label := strconv.Itoa(i+1) + " " + src.Label()
		if src == active {
			tabs = append(tabs, ActiveTab.Render(label))
		} else {
			tabs = append(tabs, Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderPagination draws "‹ Prev  1 … 4 [5] 6 … 12  Next ›".
func renderPagination(w pagination.Window) string {
	if w.Empty() {
		return ""
	}
	var parts []string
	if w.HasPrev {
		parts = append(parts, PageNumber.Render("‹ Prev"))
	}
	if w.ShowFirst() {
		parts = append(parts, PageNumber.Render("1"))
		if w.LeadingGap() {
			parts = append(parts, Meta.Render("…"))
		}
	}
	for _, p := range w.Pages {
		label := strconv.Itoa(p + 1)
		if p == w.Current() {
			parts = append(parts, PageCurrent.Render(label))
		} else {
			parts = append(parts, PageNumber.Render(label))
		}
	}
	if w.ShowLast() {
		if w.TrailingGap() {
			parts = append(parts, Meta.Render("…"))
		}
		parts = append(parts, PageNumber.Render(strconv.Itoa(w.Last()+1)))
	}
	if w.HasNext {
		parts = append(parts, PageNumber.Render("Next ›"))
	}
	return strings.Join(parts, " ")
}

// renderNoResults is shown for failed searches and empty pages.
func renderNoResults(s session.Session) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(" Your search - %s - did not match any documents.\n\n", PanelTitle.Render(s.Query())))
	b.WriteString(Meta.Render(" Suggestions:") + "\n")
	for _, hint := range s.Hints() {
		b.WriteString(Meta.Render("  • "+hint) + "\n")
	}
	if s.Source == api.SourceLocal {
		b.WriteString(Meta.Render("  (press 1 to search Wikipedia)") + "\n")
	}
	return b.String()
}

// renderPanel renders the knowledge panel, or "" when hidden.
func renderPanel(m knowledge.Model, width int) string {
	if !m.Visible() {
		return ""
	}
	sum := m.Summary()
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	lines := []string{PanelTitle.Render(sum.Title)}
	if sum.Description != "" {
		lines = append(lines, Meta.Render(sum.Description))
	}
	if extract := m.Extract(); extract != "" {
		lines = append(lines, "", wordwrap.String(Snippet.Render(extract), inner))
	}
	if m.Expandable() {
		hint := "e: show more"
		if m.Expanded() {
			hint = "e: show less"
		}
		lines = append(lines, StatusBarKey.Render(hint))
	}
	if sum.URL != "" {
		lines = append(lines, NormalItem.UnsetPadding().Render(sum.URL))
	}
	if sum.Thumbnail != "" {
		lines = append(lines, Meta.Render("image: "+sum.Thumbnail))
	}
	return PanelBox.Width(inner).Render(strings.Join(lines, "\n"))
}
