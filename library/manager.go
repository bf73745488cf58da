package library

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// Options configures a LibraryManager.
type Options struct {
	DBPath   string
	PageSize int
	Policy   PagePolicy
}

// LibraryManager is a thin façade over the Database and the list presenter,
// keeping CLI code simple. Every mutation refreshes the visible page.
type LibraryManager struct {
	db   *Database
	list *ListPresenter
}

// NewLibraryManager opens (or creates) the SQLite database and loads page 1.
func NewLibraryManager(opts Options) (*LibraryManager, error) {
	db, err := NewDatabase(opts.DBPath)
	if err != nil {
		return nil, err
	}
	lm := &LibraryManager{db: db, list: NewListPresenter(db, opts.PageSize, opts.Policy)}
	if err := lm.list.Load(); err != nil {
		db.Close()
		return nil, err
	}
	return lm, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// List exposes the presenter for rendering.
func (lm *LibraryManager) List() *ListPresenter { return lm.list }

// afterMutation refreshes the page once the store may have changed. A
// refresh failure is only reported when the operation itself succeeded.
func (lm *LibraryManager) afterMutation(err error) error {
	if errors.Is(err, ErrValidation) {
		return err
	}
	if rerr := lm.list.Refresh(); rerr != nil {
		log.Error().Err(rerr).Msg("Failed to refresh book list")
		if err == nil {
			return rerr
		}
	}
	return err
}

// ------------------ Book commands ------------------

func (lm *LibraryManager) AddBook(title, author string) (int64, error) {
	id, err := lm.db.AddBook(title, author)
	if err != nil {
		return 0, err
	}
	return id, lm.afterMutation(nil)
}

func (lm *LibraryManager) EditBook(id int64, title, author string) error {
	return lm.afterMutation(lm.db.UpdateBook(id, title, author))
}

func (lm *LibraryManager) DeleteBook(id int64) error {
	return lm.afterMutation(lm.db.DeleteBook(id))
}

// ToggleRead flips the book between read and unread.
func (lm *LibraryManager) ToggleRead(id int64) (Status, error) {
	status, err := lm.db.ToggleStatus(id)
	return status, lm.afterMutation(err)
}

func (lm *LibraryManager) SetStatus(id int64, status Status) error {
	return lm.afterMutation(lm.db.SetStatus(id, status))
}

func (lm *LibraryManager) GetBook(id int64) (*Book, error) { return lm.db.GetBook(id) }
func (lm *LibraryManager) GetAllBooks() ([]*Book, error)   { return lm.db.GetAllBooks() }

// Selected returns the book behind a row number of the visible page.
func (lm *LibraryManager) Selected(row int) (*Book, error) {
	id, err := lm.list.Resolve(row)
	if err != nil {
		return nil, err
	}
	b, err := lm.db.GetBook(id)
	if errors.Is(err, ErrNotFound) {
		return nil, lm.afterMutation(err)
	}
	return b, err
}

// ------------------ Navigation ------------------

func (lm *LibraryManager) NextPage() error      { return lm.list.Next() }
func (lm *LibraryManager) PrevPage() error      { return lm.list.Prev() }
func (lm *LibraryManager) GoToPage(n int) error { return lm.list.GoTo(n) }
func (lm *LibraryManager) RefreshPage() error   { return lm.list.Refresh() }

// ------------------ CSV ------------------

// ExportCSV writes every book to path and returns the path actually written.
func (lm *LibraryManager) ExportCSV(path string) (string, error) {
	books, err := lm.db.GetAllBooks()
	if err != nil {
		return "", err
	}
	out, err := ExportCSV(path, books)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("CSV export failed")
		return "", err
	}
	log.Info().Str("path", out).Int("books", len(books)).Msg("Exported book list")
	return out, nil
}

// ImportCSV adds every record of r. Parsing happens up front and the inserts
// share one transaction, so a failed import adds nothing.
func (lm *LibraryManager) ImportCSV(r io.Reader) (int, error) {
	records, err := ReadCSV(r)
	if err != nil {
		return 0, err
	}
	ids, err := lm.db.AddBooks(records)
	if err != nil {
		return 0, lm.afterMutation(err)
	}
	return len(ids), lm.afterMutation(nil)
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b *Book) string {
	return fmt.Sprintf("%-5d %-30s %-25s %-6s", b.ID, b.Title, b.Author, b.Status)
}
