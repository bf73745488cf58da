package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"

	"github.com/mkussad/book-library/config"
	"github.com/mkussad/book-library/library"
	"github.com/mkussad/book-library/logger"
)

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code. The store
// is closed before run returns, or before exiting on a termination signal.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	done := make(chan struct{})
	defer close(done)
	defer a.close()

	go func() {
		select {
		case <-ctx.Done():
			a.close()
			fmt.Fprintln(stderr, "\nTerminated.")
			os.Exit(1)
		case <-done:
		}
	}()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries the resources opened for one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	cfg        *config.Config

	mu        sync.Mutex
	mgr       *library.LibraryManager
	line      *liner.State
	closeOnce sync.Once
}

// setup stores cfg and configures logging from it.
func (a *app) setup(cfg *config.Config) {
	a.cfg = cfg
	logger.Setup(logger.Config{
		Level:  cfg.LogLevel,
		Format: logger.ParseLogFormat(cfg.LogFormat),
		Output: a.stderr,
	})
}

// manager opens the book store on first use.
func (a *app) manager() (*library.LibraryManager, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mgr != nil {
		return a.mgr, nil
	}
	policy := library.PageKeep
	if a.cfg.ReclampAfterDelete {
		policy = library.PageReclamp
	}
	mgr, err := library.NewLibraryManager(library.Options{
		DBPath:   a.cfg.DatabasePath,
		PageSize: a.cfg.PageSize,
		Policy:   policy,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.mgr = mgr
	return mgr, nil
}

// close restores the terminal and closes the store. Safe to call from the
// signal goroutine and from run.
func (a *app) close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		line, mgr := a.line, a.mgr
		a.mu.Unlock()

		if line != nil {
			line.Close()
		}
		if mgr != nil {
			if err := mgr.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		}
	})
}
