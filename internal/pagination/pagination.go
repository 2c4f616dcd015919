// Package pagination computes the bounded, centered window of page links.
package pagination

// DefaultMaxVisible is the number of page links shown at once.
const DefaultMaxVisible = 5

// Window is the set of page indices (0-based) to render as links.
type Window struct {
	Pages   []int
	HasPrev bool
	HasNext bool

	current int
	total   int
}

// Compute returns the window for page out of totalPages, showing at most
// maxVisible links. The span is centered on page, clamped to
// [0, totalPages-1] and shifted back when clamped at the high end.
// The window is empty when totalPages <= 1 or maxVisible <= 0.
// Pure: same input, same output.
func Compute(page, totalPages, maxVisible int) Window {
	if totalPages <= 1 || maxVisible <= 0 {
		return Window{}
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}

	start := page - maxVisible/2
	if start < 0 {
		start = 0
	}
	end := start + maxVisible - 1
	if end > totalPages-1 {
		end = totalPages - 1
	}
	if end-start < maxVisible-1 {
		start = end - maxVisible + 1
		if start < 0 {
			start = 0
		}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return Window{
		Pages:   pages,
		HasPrev: page > 0,
		HasNext: page < totalPages-1,
		current: page,
		total:   totalPages,
	}
}

// Empty reports whether there is nothing to render.
func (w Window) Empty() bool { return len(w.Pages) == 0 }

// Current is the page the window was computed for, clamped into range.
func (w Window) Current() int { return w.current }

// ShowFirst reports whether a jump-to-first link precedes the window.
func (w Window) ShowFirst() bool { return len(w.Pages) > 0 && w.Pages[0] > 0 }

// LeadingGap reports whether pages are elided between the first link and the window.
func (w Window) LeadingGap() bool { return len(w.Pages) > 0 && w.Pages[0] > 1 }

// ShowLast reports whether a jump-to-last link follows the window.
func (w Window) ShowLast() bool {
	return len(w.Pages) > 0 && w.Pages[len(w.Pages)-1] < w.total-1
}

// TrailingGap reports whether pages are elided between the window and the last link.
func (w Window) TrailingGap() bool {
	return len(w.Pages) > 0 && w.Pages[len(w.Pages)-1] < w.total-2
}

// Last is the final page index, or -1 for an empty window.
func (w Window) Last() int { return w.total - 1 }
