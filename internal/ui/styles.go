package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorLink      = lipgloss.Color("39")  // Blue
	colorError     = lipgloss.Color("196") // Red
)

// Logo style for the "MySearch" wordmark.
var Logo = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// SearchBox style for the query input line.
var SearchBox = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// SuggestionItem style for an unselected dropdown row.
var SuggestionItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252")).
	Background(lipgloss.Color("237")).
	Padding(0, 1)

// SuggestionSelected style for the highlighted dropdown row.
var SuggestionSelected = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// SuggestionDesc style for remote suggestion descriptions.
var SuggestionDesc = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Tab style for an inactive source tab.
var Tab = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// ActiveTab style for the selected source tab.
var ActiveTab = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorLink).
	Underline(true).
	Padding(0, 1)

// SelectedItem style for the title of the highlighted result.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unvisited result titles.
var NormalItem = lipgloss.NewStyle().
	Foreground(colorLink).
	Padding(0, 1)

// VisitedItem style for results the user has opened before.
var VisitedItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("134")).
	Padding(0, 1)

// Breadcrumb style for the host › path line above a title.
var Breadcrumb = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// SourceBadge style for the encyclopedia "W" badge.
var SourceBadge = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Bold(true).
	Padding(0, 1).
	MarginRight(1)

// Snippet style for result body text.
var Snippet = lipgloss.NewStyle().
	Foreground(lipgloss.Color("250"))

// Match style for emphasized query tokens inside a snippet.
var Match = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// Meta style for the word count prefix and stats line.
var Meta = lipgloss.NewStyle().
	Foreground(colorMuted)

// PageCurrent style for the current page number.
var PageCurrent = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// PageNumber style for other page numbers.
var PageNumber = lipgloss.NewStyle().
	Foreground(colorLink).
	Padding(0, 1)

// PanelBox style for the knowledge panel.
var PanelBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// PanelTitle style for the knowledge panel heading.
var PanelTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// HealthUp and HealthDown color the backend indicator.
var (
	HealthUp   = lipgloss.NewStyle().Foreground(colorSuccess)
	HealthDown = lipgloss.NewStyle().Foreground(colorError)
)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// SuccessStyle for confirmation banners.
var SuccessStyle = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// SectionHeader style for dashboard and form headings.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1)

// StatValue style for dashboard totals.
var StatValue = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// FieldLabel and FieldFocused style crawler form labels.
var (
	FieldLabel   = lipgloss.NewStyle().Foreground(colorSecondary).Width(10)
	FieldFocused = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true).Width(10)
)

// DebugHeaderStyle for section headers in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)
