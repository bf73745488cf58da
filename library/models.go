package library

import (
	"fmt"
	"strings"
)

// Status is the reading state of a book.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusUnread || s == StatusRead
}

// Toggle flips read to unread and anything else to read.
func (s Status) Toggle() Status {
	if s == StatusRead {
		return StatusUnread
	}
	return StatusRead
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts "read" or "unread" in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return st, nil
}

// Book is one entry of the personal book list.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Status Status `json:"status"`
}

// normalizeBook trims title and author and rejects blank values.
func normalizeBook(title, author string) (string, string, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return "", "", fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if author == "" {
		return "", "", fmt.Errorf("%w: author cannot be empty", ErrValidation)
	}
	return title, author, nil
}
