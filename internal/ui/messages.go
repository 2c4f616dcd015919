// Package ui provides the Bubble Tea TUI for MySearch.
package ui

import "github.com/abelbrown/mysearch/internal/store"

// HistoryLoaded is sent when recent searches are read from the store.
type HistoryLoaded struct {
	Entries []store.Entry
	Err     error
}

// VisitedLoaded reports which result URLs have been opened before.
type VisitedLoaded struct {
	Visited map[string]bool
	Err     error
}

// URLCopied is sent after a result URL was copied to the clipboard.
type URLCopied struct {
	URL string
	Err error
}
