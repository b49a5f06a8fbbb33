package shared

// Filter carries pagination, ordering and free-text search for list queries.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Normalize clamps pagination values to sane defaults.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}
}

// Offset returns the row offset for the current page.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of a list result.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated assembles a page from the items and the overall row count.
// The pageSize must already be normalized to a positive value.
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
