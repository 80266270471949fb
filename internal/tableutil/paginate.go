// Package tableutil provides the generic in-memory windowing and ordering
// helpers behind the admin list endpoints. Both operate on the full fetched
// slice; nothing here touches the database.
package tableutil

// DefaultPageSize is used when a caller supplies no size or a non-positive one.
const DefaultPageSize = 10

// Pager windows an ordered slice into fixed-size pages. Page numbers are
// 1-based and always clamped to [1, TotalPages]; an empty input yields zero
// total pages and an empty page without error.
type Pager[T any] struct {
	items []T
	page  int
	size  int
}

// NewPager creates a pager over items with the given page size, positioned on
// page 1.
func NewPager[T any](items []T, pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager[T]{items: items, page: 1, size: pageSize}
}

// TotalPages is ceil(len(items) / pageSize). Zero when there are no items.
func (p *Pager[T]) TotalPages() int {
	return (len(p.items) + p.size - 1) / p.size
}

// CurrentPage returns the current 1-based page number.
func (p *Pager[T]) CurrentPage() int { return p.page }

// PageSize returns the current page size.
func (p *Pager[T]) PageSize() int { return p.size }

// TotalItems returns the length of the underlying slice.
func (p *Pager[T]) TotalItems() int { return len(p.items) }

// Page returns the current page's slice of items.
func (p *Pager[T]) Page() []T {
	start := (p.page - 1) * p.size
	if start >= len(p.items) {
		return []T{}
	}
	end := start + p.size
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end]
}

// SetPage moves to the requested page, clamped to the valid range. Requests
// against an empty pager land on page 1 (whose Page() is empty).
func (p *Pager[T]) SetPage(page int) {
	total := p.TotalPages()
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	p.page = page
}

// SetPageSize changes the page size, recomputes the page count and pulls the
// current page back if it now points past the last page.
func (p *Pager[T]) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	p.size = size
	if total := p.TotalPages(); p.page > total {
		if total < 1 {
			total = 1
		}
		p.page = total
	}
}

// First moves to page 1.
func (p *Pager[T]) First() { p.SetPage(1) }

// Last moves to the last page.
func (p *Pager[T]) Last() { p.SetPage(p.TotalPages()) }

// Next advances one page if possible.
func (p *Pager[T]) Next() { p.SetPage(p.page + 1) }

// Previous steps back one page if possible.
func (p *Pager[T]) Previous() { p.SetPage(p.page - 1) }

// CanNext reports whether a further page exists.
func (p *Pager[T]) CanNext() bool { return p.page < p.TotalPages() }

// CanPrevious reports whether an earlier page exists.
func (p *Pager[T]) CanPrevious() bool { return p.page > 1 }
