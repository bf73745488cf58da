package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newManager(t *testing.T) *LibraryManager {
	dir := t.TempDir()
	mgr, err := NewLibraryManager(Options{DBPath: filepath.Join(dir, "lib.db"), PageSize: 10})
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestManagerAddRefreshesPage(t *testing.T) {
	mgr := newManager(t)

	if _, err := mgr.AddBook("Dune", "Herbert"); err != nil {
		t.Fatalf("add: %v", err)
	}
	rows := mgr.List().Rows()
	if len(rows) != 1 || rows[0].Title != "Dune" || rows[0].Status != StatusUnread {
		t.Fatalf("rows after add: %+v", rows)
	}
}

func TestManagerRejectsEmptyTitle(t *testing.T) {
	mgr := newManager(t)
	mgr.AddBook("Dune", "Herbert")

	if _, err := mgr.AddBook("  ", "Someone"); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if got := mgr.List().Total(); got != 1 {
		t.Fatalf("count changed to %d", got)
	}
}

func TestEditSecondOfDuplicateTitles(t *testing.T) {
	mgr := newManager(t)
	firstID, _ := mgr.AddBook("Echo", "Alice")
	mgr.AddBook("Echo", "Bob")

	second, err := mgr.Selected(2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if second.Author != "Bob" {
		t.Fatalf("row 2 resolved to %+v", second)
	}
	if err := mgr.EditBook(second.ID, "Echo", "Robert"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	first, _ := mgr.GetBook(firstID)
	if first.Author != "Alice" {
		t.Fatalf("first book was modified: %+v", first)
	}
	rows := mgr.List().Rows()
	if rows[1].Author != "Robert" {
		t.Fatalf("page not refreshed after edit: %+v", rows)
	}
}

func TestToggleAndDeleteBySelectedRow(t *testing.T) {
	mgr := newManager(t)
	mgr.AddBook("Echo", "Alice")
	mgr.AddBook("Echo", "Bob")

	b, _ := mgr.Selected(2)
	status, err := mgr.ToggleRead(b.ID)
	if err != nil || status != StatusRead {
		t.Fatalf("toggle = %q, %v", status, err)
	}
	if rows := mgr.List().Rows(); rows[0].Status != StatusUnread || rows[1].Status != StatusRead {
		t.Fatalf("wrong row toggled: %+v", rows)
	}

	if err := mgr.DeleteBook(b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows := mgr.List().Rows()
	if len(rows) != 1 || rows[0].Author != "Alice" {
		t.Fatalf("rows after delete: %+v", rows)
	}
}

func TestStaleSelectionIsNotFoundAndRefreshes(t *testing.T) {
	mgr := newManager(t)
	id, _ := mgr.AddBook("Dune", "Herbert")

	// Removed behind the presenter's back, so row 1 still shows it.
	if err := mgr.db.DeleteBook(id); err != nil {
		t.Fatalf("raw delete: %v", err)
	}
	if len(mgr.List().Rows()) != 1 {
		t.Fatalf("expected stale row before refresh")
	}

	if _, err := mgr.Selected(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if len(mgr.List().Rows()) != 0 {
		t.Fatalf("list was not refreshed after not-found")
	}

	if err := mgr.EditBook(id, "A", "B"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("edit: want ErrNotFound, got %v", err)
	}
	if _, err := mgr.ToggleRead(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle: want ErrNotFound, got %v", err)
	}
	if err := mgr.DeleteBook(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: want ErrNotFound, got %v", err)
	}
}

func TestDeleteLastRowKeepsEmptyPage(t *testing.T) {
	mgr := newManager(t)
	for i := 1; i <= 11; i++ {
		mgr.AddBook(fmt.Sprintf("Book %d", i), "Author")
	}
	if err := mgr.NextPage(); err != nil {
		t.Fatalf("next: %v", err)
	}
	b, err := mgr.Selected(1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := mgr.DeleteBook(b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list := mgr.List()
	if list.Page() != 2 || len(list.Rows()) != 0 {
		t.Fatalf("page %d with %d rows, want empty page 2", list.Page(), len(list.Rows()))
	}
	if !list.CanGoPrev() || list.CanGoNext() {
		t.Fatalf("navigation flags wrong on empty trailing page")
	}
}

func TestExportAndImportRoundTrip(t *testing.T) {
	mgr := newManager(t)
	mgr.AddBook("Dune", "Herbert")
	id, _ := mgr.AddBook("Eats, Shoots & Leaves", "Truss")
	mgr.ToggleRead(id)

	out, err := mgr.ExportCSV(filepath.Join(t.TempDir(), "books"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasSuffix(out, ".csv") {
		t.Fatalf("default extension not applied: %s", out)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	other := newManager(t)
	n, err := other.ImportCSV(f)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d books, want 2", n)
	}

	got, _ := other.GetAllBooks()
	if got[0].Title != "Dune" || got[0].Status != StatusUnread {
		t.Fatalf("first imported: %+v", got[0])
	}
	if got[1].Title != "Eats, Shoots & Leaves" || got[1].Status != StatusRead {
		t.Fatalf("second imported: %+v", got[1])
	}
	if len(other.List().Rows()) != 2 {
		t.Fatalf("import did not refresh the page")
	}
}

func TestImportMalformedAddsNothing(t *testing.T) {
	mgr := newManager(t)

	n, err := mgr.ImportCSV(strings.NewReader("Title,Author\nDune,Herbert\n,Nobody\n"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if n != 0 || mgr.List().Total() != 0 {
		t.Fatalf("malformed file added books")
	}
}

func TestExportFailureIsExportError(t *testing.T) {
	mgr := newManager(t)
	mgr.AddBook("Dune", "Herbert")

	_, err := mgr.ExportCSV(filepath.Join(t.TempDir(), "nope", "out.csv"))
	if !errors.Is(err, ErrExport) {
		t.Fatalf("want ErrExport, got %v", err)
	}
}

func TestImportStorageFailureAddsNothing(t *testing.T) {
	mgr := newManager(t)
	mgr.AddBook("Dune", "Herbert")
	if _, err := mgr.db.db.Exec(`CREATE TRIGGER no_b BEFORE INSERT ON books
		WHEN NEW.title = 'B' BEGIN SELECT RAISE(ABORT, 'disk'); END`); err != nil {
		t.Fatalf("trigger: %v", err)
	}

	n, err := mgr.ImportCSV(strings.NewReader("Title,Author,Status\nA,X,unread\nB,Y,read\n"))
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("want ErrStorage, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("error does not name the line: %v", err)
	}
	if n != 0 {
		t.Fatalf("imported %d, want 0", n)
	}
	if got := mgr.List().Total(); got != 1 {
		t.Fatalf("count = %d after failed import, want 1", got)
	}
}
