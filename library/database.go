package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Database provides high-level helpers around a SQLite connection.
type Database struct {
	db *sql.DB

	addBookStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, creates the
// books table when missing, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, storageErr("create db dir", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageErr("open sqlite", err)
	}
	// One handle for the whole process; there is a single reader and writer.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("path", dbPath).Msg("Book store opened")
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addBookStmt != nil {
		d.addBookStmt.Close()
	}
	if err := d.db.Close(); err != nil {
		return storageErr("close", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func applySchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return storageErr("enable WAL", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY,
            title TEXT,
            author TEXT,
            status TEXT
        );`); err != nil {
		return storageErr("create books table", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Prepare(`INSERT INTO books(title,author,status) VALUES(?,?,?)`); err != nil {
		return storageErr("prepare insert", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// CRUD helpers
// ---------------------------------------------------------------------------

// AddBook inserts a new unread book and returns its id.
func (d *Database) AddBook(title, author string) (int64, error) {
	title, author, err := normalizeBook(title, author)
	if err != nil {
		return 0, err
	}
	res, err := d.addBookStmt.Exec(title, author, string(StatusUnread))
	if err != nil {
		return 0, storageErr("insert book", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert book", err)
	}
	log.Debug().Int64("id", id).Str("title", title).Msg("Book added")
	return id, nil
}

// AddBooks inserts records in a single transaction and returns their ids. Any
// failure rolls back the whole batch.
func (d *Database) AddBooks(records []ImportRecord) ([]int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, storageErr("import books", err)
	}
	defer tx.Rollback()

	stmt := tx.Stmt(d.addBookStmt)
	defer stmt.Close()

	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		title, author, err := normalizeBook(rec.Title, rec.Author)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", rec.Line, err)
		}
		status := rec.Status
		if status == "" {
			status = StatusUnread
		}
		if !status.Valid() {
			return nil, fmt.Errorf("line %d: %w: unknown status %q", rec.Line, ErrValidation, status)
		}
		res, err := stmt.Exec(title, author, string(status))
		if err != nil {
			log.Error().Err(err).Int("line", rec.Line).Msg("Import insert failed")
			return nil, fmt.Errorf("line %d: %w", rec.Line, storageErr("import books", err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, storageErr("import books", err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("import books", err)
	}
	log.Debug().Int("books", len(ids)).Msg("Books imported")
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(s rowScanner) (*Book, error) {
	var (
		b      Book
		title  sql.NullString
		author sql.NullString
		status sql.NullString
	)
	if err := s.Scan(&b.ID, &title, &author, &status); err != nil {
		return nil, err
	}
	b.Title, b.Author, b.Status = title.String, author.String, Status(status.String)
	if !title.Valid || !author.Valid || !b.Status.Valid() {
		return nil, fmt.Errorf("corrupt row %d", b.ID)
	}
	return &b, nil
}

func (d *Database) GetBook(id int64) (*Book, error) {
	b, err := scanBook(d.db.QueryRow(`SELECT id,title,author,status FROM books WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storageErr("get book", err)
	}
	return b, nil
}

func (d *Database) queryBooks(op, query string, args ...any) ([]*Book, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return books, nil
}

// GetAllBooks returns every book in insertion order.
func (d *Database) GetAllBooks() ([]*Book, error) {
	return d.queryBooks("list books", `SELECT id,title,author,status FROM books ORDER BY id`)
}

// GetPage returns up to limit books after skipping offset, ordered by id.
func (d *Database) GetPage(offset, limit int) ([]*Book, error) {
	if limit < 1 {
		return []*Book{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	return d.queryBooks("list page",
		`SELECT id,title,author,status FROM books ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

// CountBooks returns the number of stored books.
func (d *Database) CountBooks() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, storageErr("count books", err)
	}
	return n, nil
}

// exec runs a single-row mutation and maps "no row touched" to ErrNotFound.
func (d *Database) exec(op string, id int64, query string, args ...any) error {
	res, err := d.db.Exec(query, args...)
	if err != nil {
		log.Error().Err(err).Str("op", op).Int64("id", id).Msg("Storage operation failed")
		return storageErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// UpdateBook replaces the title and author of an existing book.
func (d *Database) UpdateBook(id int64, title, author string) error {
	title, author, err := normalizeBook(title, author)
	if err != nil {
		return err
	}
	if err := d.exec("update book", id, `UPDATE books SET title=?, author=? WHERE id=?`, title, author, id); err != nil {
		return err
	}
	log.Debug().Int64("id", id).Msg("Book updated")
	return nil
}

// SetStatus stores status for the book with the given id.
func (d *Database) SetStatus(id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return d.exec("set status", id, `UPDATE books SET status=? WHERE id=?`, string(status), id)
}

// ToggleStatus flips read/unread in one transaction and returns the new status.
func (d *Database) ToggleStatus(id int64) (Status, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return "", storageErr("toggle status", err)
	}
	defer tx.Rollback()

	var current sql.NullString
	err = tx.QueryRow(`SELECT status FROM books WHERE id=?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound(id)
	}
	if err != nil {
		return "", storageErr("toggle status", err)
	}
	if !current.Valid || !Status(current.String).Valid() {
		return "", storageErr("toggle status", fmt.Errorf("corrupt row %d", id))
	}

	next := Status(current.String).Toggle()
	if _, err := tx.Exec(`UPDATE books SET status=? WHERE id=?`, string(next), id); err != nil {
		return "", storageErr("toggle status", err)
	}
	if err := tx.Commit(); err != nil {
		return "", storageErr("toggle status", err)
	}
	log.Debug().Int64("id", id).Str("status", next.String()).Msg("Book status toggled")
	return next, nil
}

// DeleteBook removes the book permanently.
func (d *Database) DeleteBook(id int64) error {
	if err := d.exec("delete book", id, `DELETE FROM books WHERE id=?`, id); err != nil {
		return err
	}
	log.Debug().Int64("id", id).Msg("Book deleted")
	return nil
}
