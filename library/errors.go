package library

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input the store refuses to persist, such as a blank title.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound is returned when an operation targets an id that no longer exists.
	ErrNotFound = errors.New("book not found")
	// ErrStorage wraps any failure of the underlying database.
	ErrStorage = errors.New("storage error")
	// ErrExport wraps filesystem failures while writing a CSV export.
	ErrExport = errors.New("export failed")
	// ErrNoSelection is returned when a row number does not exist on the current page.
	ErrNoSelection = errors.New("no such row on this page")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func notFound(id int64) error {
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}
