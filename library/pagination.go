package library

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 10

// Paginator derives page windows from a row count and a fixed page size.
type Paginator struct {
	total    int
	pageSize int
}

// NewPaginator returns a Paginator for total rows. A pageSize below 1 falls
// back to DefaultPageSize.
func NewPaginator(total, pageSize int) Paginator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	return Paginator{total: total, pageSize: pageSize}
}

func (p Paginator) Total() int    { return p.total }
func (p Paginator) PageSize() int { return p.pageSize }

// TotalPages is ceil(total/pageSize), never less than 1.
func (p Paginator) TotalPages() int {
	pages := (p.total + p.pageSize - 1) / p.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp moves page into [1, TotalPages()].
func (p Paginator) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if last := p.TotalPages(); page > last {
		return last
	}
	return page
}

// OffsetFor returns the number of rows preceding page.
func (p Paginator) OffsetFor(page int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * p.pageSize
}

func (p Paginator) CanGoPrev(page int) bool { return page > 1 }

func (p Paginator) CanGoNext(page int) bool { return page < p.TotalPages() }
