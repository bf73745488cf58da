package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mkussad/book-library/config"
	"github.com/mkussad/book-library/library"
	"github.com/mkussad/book-library/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// newFlagSet leaves config-backed flags without their own defaults so that
// config.Load supplies them.
func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("import_books", pflag.ContinueOnError)
	flags.String("config", "", "path to a YAML config file")
	flags.String("db", config.DefaultDatabasePath, "path to the SQLite database")
	flags.String("log-level", "", "log level (debug, info, warn, error; default warn)")
	return flags
}

func run(args []string) int {
	flags := newFlagSet()
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: import_books [--db PATH] FILE.csv...")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Setup(logger.Config{Level: cfg.LogLevel, Format: logger.ParseLogFormat(cfg.LogFormat)})

	manager, err := library.NewLibraryManager(library.Options{DBPath: cfg.DatabasePath, PageSize: cfg.PageSize})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return 1
	}
	defer manager.Close()

	successCount := 0
	errorCount := 0

	for _, path := range flags.Args() {
		fmt.Printf("Importing %s... ", filepath.Base(path))

		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		n, err := manager.ImportCSV(f)
		f.Close()

		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		successCount += n
		fmt.Printf("SUCCESS (%d books)\n", n)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	// Display summary of stored books
	if successCount > 0 {
		books, err := manager.GetAllBooks()
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
		} else {
			fmt.Println("\nBooks now in the library:")
			fmt.Printf("%-5s %-30s %-25s %-6s\n", "ID", "Title", "Author", "Status")
			fmt.Println(strings.Repeat("-", 69))
			for _, book := range books {
				fmt.Println(library.PrettyBook(book))
			}
		}
	}

	if errorCount > 0 {
		return 1
	}
	return 0
}
