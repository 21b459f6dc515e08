package pagination

import "strconv"

// DefaultPageSize is the fixed window used by every listing view.
const DefaultPageSize = 3

// Window is the (offset, limit) pair derived from a 1-based page number.
type Window struct {
	Page   int
	Size   int
	Offset int
	Limit  int
}

// NewWindow normalizes page (absent or non-positive becomes 1) and computes
// the fetch window.
func NewWindow(page, size int) Window {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return Window{
		Page:   page,
		Size:   size,
		Offset: (page - 1) * size,
		Limit:  size,
	}
}

// ParsePage reads a page query parameter, defaulting to 1 on absent or
// malformed input.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Meta describes the page window relative to the total item count. It is
// attached to listing responses as response meta.
type Meta struct {
	CurrentPage     int  `json:"current_page"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
	NextPage        int  `json:"next_page"`
	PreviousPage    int  `json:"previous_page"`
	LastPage        int  `json:"last_page"`
	Total           int  `json:"total"`
}

// Meta derives page metadata for total items.
func (w Window) Meta(total int) Meta {
	return Meta{
		CurrentPage:     w.Page,
		HasNextPage:     w.Size*w.Page < total,
		HasPreviousPage: w.Page > 1,
		NextPage:        w.Page + 1,
		PreviousPage:    w.Page - 1,
		LastPage:        (total + w.Size - 1) / w.Size,
		Total:           total,
	}
}
