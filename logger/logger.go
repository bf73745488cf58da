// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFormat defines the available log formats
type LogFormat string

const (
	// FormatJSON is the JSON format
	FormatJSON LogFormat = "json"
	// FormatConsole is the console format
	FormatConsole LogFormat = "console"
)

// ParseLogFormat parses a string into a LogFormat. Unknown values fall back
// to the console format.
func ParseLogFormat(format string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return FormatJSON
	default:
		return FormatConsole
	}
}

// Config holds the configuration for the logger
type Config struct {
	// Level is the log level (debug, info, warn, error)
	Level string
	// Format is the log format (json, console)
	Format LogFormat
	// Output is the output writer (default: os.Stderr, so stdout stays for the book list)
	Output io.Writer
}

// Setup builds a logger from cfg, installs it as the global zerolog logger
// and returns it.
func Setup(cfg Config) zerolog.Logger {
	level := zerolog.WarnLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var l zerolog.Logger
	switch cfg.Format {
	case FormatJSON:
		l = zerolog.New(output)
	default:
		l = zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen})
	}
	l = l.Level(level).With().Timestamp().Logger()

	log.Logger = l
	zerolog.SetGlobalLevel(level)
	return l
}
