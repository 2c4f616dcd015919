package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/mysearch/internal/api"
	"github.com/abelbrown/mysearch/internal/pagination"
	"github.com/abelbrown/mysearch/internal/session"
	"github.com/abelbrown/mysearch/internal/suggest"
)

// View renders the current state.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showDebug {
		return lipgloss.JoinVertical(lipgloss.Left,
			debugOverlay(a.ring, a.width, a.height-1),
			debugStatusBar(a.width, a.session.QueryID()),
		)
	}

	rows := a.chrome()
	rows = append(rows, a.results.View(), a.statusBar())
	return strings.Join(rows, "\n")
}

// chrome renders everything above the scrollable area.
func (a App) chrome() []string {
	rows := []string{a.header(), SearchBox.Width(a.width).Render(a.input.View())}
	if a.mode == ModeAdmin {
		return append(rows, Meta.Render(" Admin  esc:back  tab:next field  enter:submit  ctrl+r:refresh"))
	}
	rows = append(rows, a.dropdown()...)
	rows = append(rows, renderTabs(a.session.Source()))
	if s := a.session.Session(); s.Status == session.Ready && s.TotalHits > 0 {
		rows = append(rows, Meta.Render(" "+s.Stats()))
	}
	return rows
}

func (a App) header() string {
	logo := Logo.Render("MySearch")
	var health string
	switch {
	case a.snapshot.FetchedAt.IsZero():
		health = Meta.Render("○ connecting")
	case a.snapshot.Up():
		health = HealthUp.Render("● up")
	default:
		health = HealthDown.Render("● down")
	}
	gap := a.width - lipgloss.Width(logo) - lipgloss.Width(health) - 1
	if gap < 1 {
		gap = 1
	}
	return logo + strings.Repeat(" ", gap) + health
}

// dropdown renders one line per visible suggestion.
func (a App) dropdown() []string {
	items := a.suggest.Items()
	if len(items) == 0 {
		return nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		text := it.Text
		if it.Kind == suggest.Remote {
			text = "W " + text
		}
		text = truncateLine(text, a.width-2)
		if room := a.width - 4 - utf8.RuneCountInString(text); it.Description != "" && room > 3 {
			text += "  " + SuggestionDesc.Render(truncateRunes(it.Description, room))
		}
		style := SuggestionItem
		if it.Index == a.suggest.Selected() {
			style = SuggestionSelected
		}
		lines = append(lines, style.Width(a.width).Render(text))
	}
	return lines
}

func (a App) statusBar() string {
	if a.status != "" {
		if a.statusErr {
			return ErrorStyle.Width(a.width).Render(truncateLine(a.status, a.width-2))
		}
		return StatusBar.Width(a.width).Render(truncateLine(a.status, a.width-2))
	}

	hint := func(k, desc string) string {
		return StatusBarKey.Render(k) + StatusBarText.Render(":"+desc)
	}
	var parts []string
	switch {
	case a.mode == ModeAdmin:
		parts = []string{hint("esc", "search"), hint("enter", "send"), hint("ctrl+r", "refresh")}
	case a.focus == focusInput:
		parts = []string{hint("enter", "search"), hint("↑↓", "suggestions"), hint("tab", "source"), hint("esc", "results")}
	case a.focus == focusHistory:
		parts = []string{hint("enter", "search again"), hint("j/k", "move"), hint("/", "type"), hint("a", "admin"), hint("q", "quit")}
	default:
		parts = []string{hint("j/k", "move"), hint("enter", "open"), hint("h/l", "page"), hint("1-3", "source"),
			hint("e", "expand"), hint("y", "copy"), hint("H", "home"), hint("?", "debug"), hint("q", "quit")}
	}
	if a.session.Session().Status == session.Loading {
		parts = append([]string{a.spinner.View()}, parts...)
	}
	return StatusBar.Width(a.width).Render(strings.Join(parts, "  "))
}

// refresh rebuilds the scrollable content and fits the viewport between
// the chrome and the status bar.
func (a *App) refresh() {
	if !a.ready {
		return
	}
	h := a.height - len(a.chrome()) - 1
	if h < 1 {
		h = 1
	}
	a.results.Width = a.width
	a.results.Height = h

	var content string
	switch {
	case a.mode == ModeAdmin:
		content = renderDashboard(a.snapshot, a.now(), a.width) + "\n" + a.admin.view()
		a.offsets = nil
	default:
		content = a.searchContent()
	}
	a.results.SetContent(content)

	if a.follow {
		a.follow = false
		a.ensureVisible()
	}
}

// searchContent renders the page body for the current session and records
// the first line of each result in a.offsets.
func (a *App) searchContent() string {
	s := a.session.Session()
	a.offsets = nil

	switch {
	case s.Status == session.Idle:
		return a.homeContent()
	case s.Status == session.Loading:
		return "\n " + a.spinner.View() + " Searching for " + PanelTitle.Render(s.Query()) + "…"
	case s.NoResults():
		return "\n" + renderNoResults(s)
	}

	var b strings.Builder
	line := 0
	write := func(block string) {
		b.WriteString(block)
		b.WriteString("\n")
		line += strings.Count(block, "\n") + 1
	}

	if panel := renderPanel(a.panel, a.width); panel != "" {
		write(panel)
	} else if a.panel.Loading() {
		write(Meta.Render(" loading summary…"))
	}

	query := s.Query()
	for i, doc := range s.Results {
		a.offsets = append(a.offsets, line)
		write(renderResult(doc, query, a.snippetN, a.width, i == a.cursor && a.focus == focusResults, a.visited[doc.URL]))
		write("")
	}
	a.offsets = append(a.offsets, line)

	if p := renderPagination(pagination.Compute(s.Page, s.TotalPages, a.maxPages)); p != "" {
		write(" " + p)
	}
	return b.String()
}

// homeContent lists recent searches.
func (a App) homeContent() string {
	var b strings.Builder
	b.WriteString("\n")
	if len(a.recent) == 0 {
		b.WriteString(HelpStyle.Render("Type a query and press enter.\nPress tab to switch between Wikipedia, local and all sources."))
		return b.String()
	}
	b.WriteString(SectionHeader.Render(" Recent searches") + "\n")
	for i, e := range a.recent {
		label := e.Query
		if src, err := api.ParseSource(e.Source); err == nil {
			label += "  " + Meta.Render(src.Label())
		}
		if a.focus == focusHistory && i == a.cursor {
			b.WriteString(SelectedItem.Render("> "+label) + "\n")
		} else {
			b.WriteString(NormalItem.Render("  "+label) + "\n")
		}
	}
	return b.String()
}

// ensureVisible scrolls so the whole cursor result is on screen.
func (a *App) ensureVisible() {
	if a.cursor < 0 || a.cursor+1 >= len(a.offsets) {
		return
	}
	top, bottom := a.offsets[a.cursor], a.offsets[a.cursor+1]
	switch {
	case top < a.results.YOffset:
		a.results.SetYOffset(top)
	case bottom > a.results.YOffset+a.results.Height:
		a.results.SetYOffset(max(bottom-a.results.Height, top))
	}
}

// truncateLine cuts a single display line to width runes.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncateRunes(s, width)
}
