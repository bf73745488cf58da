package library

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// PageStore is the read side of the book store the presenter needs.
type PageStore interface {
	CountBooks() (int, error)
	GetPage(offset, limit int) ([]*Book, error)
}

// PagePolicy decides what happens to the current page when the row count
// shrinks underneath it.
type PagePolicy int

const (
	// PageKeep leaves the page number alone after a mutation, so deleting the
	// last row of the last page shows an empty page until the user navigates.
	PageKeep PagePolicy = iota
	// PageReclamp pulls the page back into [1, TotalPages] on every refresh.
	PageReclamp
)

// Row is one displayed line. ID is the backing book and is the only thing
// used to identify the selection.
type Row struct {
	Number int
	ID     int64
	Title  string
	Author string
	Status Status
}

// ListPresenter keeps the current page of books and the navigation state.
type ListPresenter struct {
	store    PageStore
	pageSize int
	policy   PagePolicy

	page      int
	paginator Paginator
	rows      []Row
}

// NewListPresenter returns a presenter positioned on page 1. Call Load to
// fetch the first page.
func NewListPresenter(store PageStore, pageSize int, policy PagePolicy) *ListPresenter {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &ListPresenter{
		store:     store,
		pageSize:  pageSize,
		policy:    policy,
		page:      1,
		paginator: NewPaginator(0, pageSize),
	}
}

// Load shows the first page.
func (p *ListPresenter) Load() error { return p.show(1) }

// Refresh re-reads the current page, typically after a mutation.
func (p *ListPresenter) Refresh() error { return p.show(p.page) }

// Next moves one page forward. It is a no-op on the last page.
func (p *ListPresenter) Next() error {
	if !p.CanGoNext() {
		return nil
	}
	return p.show(p.page + 1)
}

// Prev moves one page back. It is a no-op on the first page.
func (p *ListPresenter) Prev() error {
	if !p.CanGoPrev() {
		return nil
	}
	return p.show(p.page - 1)
}

// GoTo jumps to page, clamped into the valid range.
func (p *ListPresenter) GoTo(page int) error {
	count, err := p.store.CountBooks()
	if err != nil {
		return err
	}
	return p.showWithCount(NewPaginator(count, p.pageSize).Clamp(page), count)
}

func (p *ListPresenter) show(page int) error {
	count, err := p.store.CountBooks()
	if err != nil {
		return err
	}
	if p.policy == PageReclamp {
		page = NewPaginator(count, p.pageSize).Clamp(page)
	}
	return p.showWithCount(page, count)
}

// showWithCount fetches page and swaps in the new snapshot. On failure the
// previous snapshot stays in place.
func (p *ListPresenter) showWithCount(page, count int) error {
	if page < 1 {
		page = 1
	}
	pg := NewPaginator(count, p.pageSize)
	books, err := p.store.GetPage(pg.OffsetFor(page), p.pageSize)
	if err != nil {
		return err
	}

	rows := make([]Row, len(books))
	for i, b := range books {
		rows[i] = Row{Number: i + 1, ID: b.ID, Title: b.Title, Author: b.Author, Status: b.Status}
	}
	p.page, p.paginator, p.rows = page, pg, rows

	log.Debug().Int("page", page).Int("total_pages", pg.TotalPages()).Int("rows", len(rows)).Msg("Page loaded")
	return nil
}

// Rows returns a copy of the rows on the current page.
func (p *ListPresenter) Rows() []Row {
	out := make([]Row, len(p.rows))
	copy(out, p.rows)
	return out
}

// Resolve maps a 1-based row number on the current page to its book id.
func (p *ListPresenter) Resolve(number int) (int64, error) {
	if number < 1 || number > len(p.rows) {
		return 0, fmt.Errorf("%w: %d", ErrNoSelection, number)
	}
	return p.rows[number-1].ID, nil
}

func (p *ListPresenter) Page() int       { return p.page }
func (p *ListPresenter) PageSize() int   { return p.pageSize }
func (p *ListPresenter) TotalPages() int { return p.paginator.TotalPages() }
func (p *ListPresenter) Total() int      { return p.paginator.Total() }
func (p *ListPresenter) CanGoPrev() bool { return p.paginator.CanGoPrev(p.page) }
func (p *ListPresenter) CanGoNext() bool { return p.paginator.CanGoNext(p.page) }

// PageInfo renders the "Page X of Y" label.
func (p *ListPresenter) PageInfo() string {
	return fmt.Sprintf("Page %d of %d", p.page, p.TotalPages())
}
