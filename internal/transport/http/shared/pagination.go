package shared

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Page is a limit/offset window parsed from ?limit= and ?offset=.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads the window from the query, ignoring malformed values and
// clamping the limit to MaxPageSize.
func ParsePage(r *http.Request) Page {
	page := Page{Limit: DefaultPageSize}
	query := r.URL.Query()
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 {
		page.Limit = min(v, MaxPageSize)
	}
	if v, err := strconv.Atoi(query.Get("offset")); err == nil && v >= 0 {
		page.Offset = v
	}
	return page
}

// Bounds returns the [start, end) slice indexes of the page within total items.
func (p Page) Bounds(total int) (int, int) {
	start := min(p.Offset, total)
	return start, min(start+p.Limit, total)
}

// Meta is the response meta block for a page of total items.
func (p Page) Meta(total int) map[string]any {
	return map[string]any{"total": total, "limit": p.Limit, "offset": p.Offset}
}
