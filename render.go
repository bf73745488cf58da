package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/mkussad/book-library/library"
)

const (
	defaultWidth = 80
	numberWidth  = 4
	statusWidth  = 6
	minTextWidth = 10
)

// terminalWidth returns the column count of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return defaultWidth
	}
	return cols
}

// columnWidths splits the space left after the fixed columns between title
// and author.
func columnWidths(width int) (title, author int) {
	free := width - numberWidth - statusWidth - 3
	title = free * 55 / 100
	author = free - title
	if title < minTextWidth {
		title = minTextWidth
	}
	if author < minTextWidth {
		author = minTextWidth
	}
	return title, author
}

func truncateString(s string, maxLength int) string {
	return runewidth.Truncate(s, maxLength, "...")
}

func pad(s string, width int) string {
	return runewidth.FillRight(truncateString(s, width), width)
}

// renderPage prints the visible rows, the page label and which directions
// are available.
func renderPage(w io.Writer, list *library.ListPresenter, width int) {
	tw, aw := columnWidths(width)
	line := numberWidth + tw + aw + statusWidth + 3

	fmt.Fprintf(w, "%s %s %s %s\n",
		pad("#", numberWidth), pad("Title", tw), pad("Author", aw), "Read")
	fmt.Fprintln(w, strings.Repeat("-", line))

	rows := list.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no books on this page)")
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s %s %s %s\n",
			pad(fmt.Sprint(row.Number), numberWidth), pad(row.Title, tw), pad(row.Author, aw), row.Status)
	}

	fmt.Fprintln(w, strings.Repeat("-", line))
	fmt.Fprintf(w, "%s (%d books)", list.PageInfo(), list.Total())
	var nav []string
	if list.CanGoPrev() {
		nav = append(nav, "← prev")
	}
	if list.CanGoNext() {
		nav = append(nav, "next →")
	}
	if len(nav) > 0 {
		fmt.Fprintf(w, "  %s", strings.Join(nav, " | "))
	}
	fmt.Fprintln(w)
}
