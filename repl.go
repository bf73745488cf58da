package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/mkussad/book-library/library"
)

// prompter is the subset of *liner.State the REPL reads input with.
type prompter interface {
	Prompt(prompt string) (string, error)
	PromptWithSuggestion(prompt, text string, pos int) (string, error)
}

type historian interface {
	AppendHistory(item string)
}

var replCommands = []string{
	"list", "next", "prev", "page", "add", "edit", "toggle", "delete", "export", "help", "clear", "exit", "quit",
}

// completeCommand provides tab completion for command names.
func completeCommand(line string) []string {
	var out []string
	prefix := strings.ToLower(line)
	for _, c := range replCommands {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// repl is the interactive command loop over one LibraryManager.
type repl struct {
	mgr   *library.LibraryManager
	in    prompter
	out   io.Writer
	width int
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Book Library")
	fmt.Fprintln(r.out, "Type 'help' for available commands.")
	fmt.Fprintln(r.out)
	r.render()

	for ctx.Err() == nil {
		line, err := r.in.Prompt("\nbooks> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if h, ok := r.in.(historian); ok {
			h.AppendHistory(line)
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		case "help", "?":
			r.printHelp()
		case "list", "ls", "l":
			r.cmdList()
		case "next", "n":
			r.cmdNext()
		case "prev", "previous", "p":
			r.cmdPrev()
		case "page", "g", "goto":
			r.cmdPage(args)
		case "add", "a":
			r.cmdAdd()
		case "edit", "e":
			r.cmdEdit(args)
		case "toggle", "read", "t":
			r.cmdToggle(args)
		case "delete", "del", "rm":
			r.cmdDelete(args)
		case "export", "x":
			r.cmdExport(args)
		case "clear", "cls":
			fmt.Fprint(r.out, "\033[H\033[2J")
		default:
			fmt.Fprintf(r.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
	return nil
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  list | ls          show the current page")
	fmt.Fprintln(r.out, "  next | n           next page")
	fmt.Fprintln(r.out, "  prev | p           previous page")
	fmt.Fprintln(r.out, "  page N             jump to page N")
	fmt.Fprintln(r.out, "  add                add a book")
	fmt.Fprintln(r.out, "  edit ROW           edit the book on row ROW of this page")
	fmt.Fprintln(r.out, "  toggle ROW         mark the book on row ROW read/unread")
	fmt.Fprintln(r.out, "  delete ROW         delete the book on row ROW")
	fmt.Fprintln(r.out, "  export [PATH]      export all books to CSV")
	fmt.Fprintln(r.out, "  exit | quit        leave")
}

func (r *repl) render() {
	renderPage(r.out, r.mgr.List(), r.width)
}

// report prints err the way its kind calls for. Nothing here ends the loop.
func (r *repl) report(err error) {
	switch {
	case errors.Is(err, library.ErrValidation):
		fmt.Fprintf(r.out, "Missing information: %v\n", err)
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintln(r.out, "That book no longer exists. The list has been refreshed.")
		r.render()
	case errors.Is(err, library.ErrNoSelection):
		fmt.Fprintf(r.out, "%v\n", err)
	case errors.Is(err, library.ErrExport):
		fmt.Fprintf(r.out, "Export error: %v\n", err)
	default:
		fmt.Fprintf(r.out, "Database error: %v\n", err)
	}
}

// confirm asks a yes/no question; anything but y/yes is no.
func (r *repl) confirm(question string) bool {
	ans, err := r.in.Prompt(question + " [y/N]: ")
	return err == nil && isYes(ans)
}

// askRequired prompts until a non-blank answer is given or the user declines
// to try again. current, when non-empty, is offered as editable text.
func (r *repl) askRequired(prompt, field, current string) (string, bool) {
	for {
		var (
			ans string
			err error
		)
		if current != "" {
			ans, err = r.in.PromptWithSuggestion(prompt, current, -1)
		} else {
			ans, err = r.in.Prompt(prompt)
		}
		if err != nil {
			return "", false
		}
		if ans = strings.TrimSpace(ans); ans != "" {
			return ans, true
		}
		if !r.confirm(field + " cannot be empty. Try again?") {
			return "", false
		}
	}
}

// rowArg parses the single row-number argument of edit/toggle/delete.
func (r *repl) rowArg(cmd string, args []string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "Usage: %s ROW\n", cmd)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "Invalid row: %s\n", args[0])
		return 0, false
	}
	return n, true
}

func (r *repl) cmdList() {
	if err := r.mgr.RefreshPage(); err != nil {
		r.report(err)
		return
	}
	r.render()
}

func (r *repl) cmdNext() {
	if !r.mgr.List().CanGoNext() {
		fmt.Fprintln(r.out, "Already on the last page.")
		return
	}
	if err := r.mgr.NextPage(); err != nil {
		r.report(err)
		return
	}
	r.render()
}

func (r *repl) cmdPrev() {
	if !r.mgr.List().CanGoPrev() {
		fmt.Fprintln(r.out, "Already on the first page.")
		return
	}
	if err := r.mgr.PrevPage(); err != nil {
		r.report(err)
		return
	}
	r.render()
}

func (r *repl) cmdPage(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "Usage: page N")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "Invalid page number: %s\n", args[0])
		return
	}
	if err := r.mgr.GoToPage(n); err != nil {
		r.report(err)
		return
	}
	r.render()
}

func (r *repl) cmdAdd() {
	title, ok := r.askRequired("Title: ", "Title", "")
	if !ok {
		return
	}
	author, ok := r.askRequired(fmt.Sprintf("Author of '%s': ", title), "Author", "")
	if !ok {
		return
	}
	id, err := r.mgr.AddBook(title, author)
	if err != nil {
		r.report(err)
		return
	}
	fmt.Fprintf(r.out, "Book added successfully! (ID %d)\n", id)
	r.render()
}

func (r *repl) cmdEdit(args []string) {
	row, ok := r.rowArg("edit", args)
	if !ok {
		return
	}
	b, err := r.mgr.Selected(row)
	if err != nil {
		r.report(err)
		return
	}
	title, ok := r.askRequired("Title: ", "Title", b.Title)
	if !ok {
		return
	}
	author, ok := r.askRequired(fmt.Sprintf("Author of '%s': ", title), "Author", b.Author)
	if !ok {
		return
	}
	if err := r.mgr.EditBook(b.ID, title, author); err != nil {
		r.report(err)
		return
	}
	fmt.Fprintln(r.out, "Book updated.")
	r.render()
}

func (r *repl) cmdToggle(args []string) {
	row, ok := r.rowArg("toggle", args)
	if !ok {
		return
	}
	b, err := r.mgr.Selected(row)
	if err != nil {
		r.report(err)
		return
	}
	status, err := r.mgr.ToggleRead(b.ID)
	if err != nil {
		r.report(err)
		return
	}
	fmt.Fprintf(r.out, "'%s' marked as %s.\n", b.Title, status)
	r.render()
}

func (r *repl) cmdDelete(args []string) {
	row, ok := r.rowArg("delete", args)
	if !ok {
		return
	}
	b, err := r.mgr.Selected(row)
	if err != nil {
		r.report(err)
		return
	}
	if !r.confirm(fmt.Sprintf("Delete '%s' by %s?", b.Title, b.Author)) {
		fmt.Fprintln(r.out, "Deletion cancelled.")
		return
	}
	if err := r.mgr.DeleteBook(b.ID); err != nil {
		r.report(err)
		return
	}
	fmt.Fprintln(r.out, "Book deleted.")
	r.render()
}

func (r *repl) cmdExport(args []string) {
	path := strings.Join(args, " ")
	if path == "" {
		ans, err := r.in.Prompt("Save as (.csv): ")
		if err != nil {
			return
		}
		path = strings.TrimSpace(ans)
	}
	if path == "" {
		fmt.Fprintln(r.out, "Export cancelled.")
		return
	}
	out, err := r.mgr.ExportCSV(path)
	if err != nil {
		r.report(err)
		return
	}
	fmt.Fprintf(r.out, "Book library exported to %s successfully!\n", out)
}
