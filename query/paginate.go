package query

// DefaultPageSize is the number of rows per page
const DefaultPageSize = 50

// Page is one window of a result set. Number is 1-indexed.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	Size       int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// Paginate cuts rows into the requested page. Out of range pages are clamped
// to the nearest valid one; an empty set always yields page 1.
func Paginate[T any](rows []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	page = ClampPage(page, total, size)

	start := (page - 1) * size
	end := min(start+size, total)
	items := make([]T, end-start)
	copy(items, rows[start:end])

	return Page[T]{
		Items:      items,
		Number:     page,
		Size:       size,
		TotalPages: pages,
		TotalItems: total,
	}
}

// ClampPage keeps page within [1, last page] for total rows
func ClampPage(page, total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	last := (total + size - 1) / size
	if last == 0 {
		return 1
	}
	if page > last {
		return last
	}
	if page < 1 {
		return 1
	}
	return page
}

// First returns the 1-based position of the first item, 0 when empty
func (p Page[T]) First() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Number-1)*p.Size + 1
}

// Last returns the 1-based position of the last item, 0 when empty
func (p Page[T]) Last() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.First() + len(p.Items) - 1
}

// HasNext reports whether a later page exists
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrev reports whether an earlier page exists
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// Query bundles a complete view request
type Query struct {
	Filter   Filter
	Sort     Sort
	Page     int
	PageSize int
}

// Run filters, sorts and paginates rows in one pass
func Run[T Filterable](rows []T, q Query) Page[T] {
	return Paginate(SortRows(Apply(rows, q.Filter), q.Sort), q.Page, q.PageSize)
}
