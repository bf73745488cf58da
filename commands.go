package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mkussad/book-library/config"
	"github.com/mkussad/book-library/library"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "book-library",
		Short:         "Keep a personal list of books and what you have read",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			a.setup(cfg)
			return nil
		},
		RunE: a.runShell,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	pf.String("db", config.DefaultDatabasePath, "path to the SQLite database")
	pf.Int("page-size", config.DefaultPageSize, "books shown per page")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newToggleCmd(a),
		newStatusCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
	)
	return root
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid book ID: %s", s)
	}
	return id, nil
}

// runShell starts the interactive REPL.
func (a *app) runShell(cmd *cobra.Command, _ []string) error {
	mgr, err := a.manager()
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	a.mu.Lock()
	a.line = line
	a.mu.Unlock()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	if path := a.cfg.HistoryFile; path != "" {
		if f, err := os.Open(path); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	r := &repl{mgr: mgr, in: line, out: cmd.OutOrStdout(), width: terminalWidth(cmd.OutOrStdout())}
	runErr := r.run(cmd.Context())

	if path := a.cfg.HistoryFile; path != "" {
		if f, err := os.Create(path); err == nil {
			line.WriteHistory(f)
			f.Close()
		} else {
			log.Warn().Err(err).Str("path", path).Msg("Could not save history")
		}
	}
	return runErr
}

func newAddCmd(a *app) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book (status starts as unread)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			id, err := mgr.AddBook(title, author)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added book ID %d.\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			if err := mgr.GoToPage(page); err != nil {
				return err
			}
			renderPage(cmd.OutOrStdout(), mgr.List(), terminalWidth(cmd.OutOrStdout()))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the title and/or author of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			b, err := mgr.GetBook(id)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("title") {
				title = b.Title
			}
			if !cmd.Flags().Changed("author") {
				author = b.Author
			}
			if err := mgr.EditBook(id, title, author); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated book ID %d.\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&author, "author", "", "new author")
	return cmd
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark a book read if unread, unread if read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			status, err := mgr.ToggleRead(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book ID %d is now %s.\n", id, status)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID read|unread",
		Short: "Set the read status of a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := library.ParseStatus(args[1])
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			if err := mgr.SetStatus(id, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book ID %d is now %s.\n", id, status)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a book permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			b, err := mgr.GetBook(id)
			if err != nil {
				return err
			}
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete '%s' by %s? [y/N]: ", b.Title, b.Author)
				sc := bufio.NewScanner(cmd.InOrStdin())
				if !sc.Scan() || !isYes(sc.Text()) {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
					return nil
				}
			}
			if err := mgr.DeleteBook(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted book ID %d.\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export PATH",
		Short: "Export all books to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			out, err := mgr.ExportCSV(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book library exported to %s successfully!\n", out)
			return nil
		},
	}
}
