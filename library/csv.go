package library

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

var csvHeader = []string{"Title", "Author", "Status"}

// WriteCSV writes the header and one record per book.
func WriteCSV(w io.Writer, books []*Book) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range books {
		if err := cw.Write([]string{b.Title, b.Author, b.Status.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EnsureCSVExtension appends ".csv" when path has no extension.
func EnsureCSVExtension(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".csv"
	}
	return path
}

// ExportCSV renders books and atomically replaces the file at path. The final
// path, with the default extension applied, is returned.
func ExportCSV(path string, books []*Book) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: no destination given", ErrExport)
	}
	path = EnsureCSVExtension(path)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, books); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	// atomic.WriteFile leaves new files at the temp file's 0600.
	if err := os.Chmod(path, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	return path, nil
}

// ImportRecord is one parsed CSV line.
type ImportRecord struct {
	Line   int
	Title  string
	Author string
	Status Status
}

// ReadCSV parses a book CSV. The header must name Title and Author columns;
// Status is optional and defaults to unread.
func ReadCSV(r io.Reader) ([]ImportRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	titleCol, okT := cols["title"]
	authorCol, okA := cols["author"]
	if !okT || !okA {
		return nil, fmt.Errorf("%w: header must contain Title and Author", ErrValidation)
	}
	statusCol, hasStatus := cols["status"]

	field := func(rec []string, i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var records []ImportRecord
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		line, _ := cr.FieldPos(0)

		title, author, err := normalizeBook(field(rec, titleCol), field(rec, authorCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		status := StatusUnread
		if raw := field(rec, statusCol); hasStatus && strings.TrimSpace(raw) != "" {
			if status, err = ParseStatus(raw); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		records = append(records, ImportRecord{Line: line, Title: title, Author: author, Status: status})
	}
	return records, nil
}
