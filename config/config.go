// Package config loads book-library settings from defaults, an optional YAML
// file, BOOKLIST_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every key when reading the environment.
	EnvPrefix = "BOOKLIST"
	// FileName is the config file searched for when none is given explicitly.
	FileName = "book-library"

	DefaultDatabasePath = "book_library.db"
	DefaultPageSize     = 10
)

var ErrInvalid = errors.New("invalid config")

// Config holds all configuration options.
type Config struct {
	DatabasePath       string
	PageSize           int
	ReclampAfterDelete bool
	HistoryFile        string
	LogLevel           string
	LogFormat          string

	// Source is the config file that was read, empty when none was found.
	Source string
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"db":         "database_path",
	"page-size":  "page_size",
	"log-level":  "log_level",
	"log-format": "log_format",
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".book_library_history")
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "book-library")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "book-library")
	}
	return ""
}

// Load reads configuration. An explicit configPath must exist; otherwise
// book-library.yaml is looked up in the working directory and then in the
// user config directory. flags may be nil; only flags the user actually set
// override other sources.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("reclamp_after_delete", false)
	v.SetDefault("history_file", defaultHistoryFile())
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		DatabasePath:       strings.TrimSpace(v.GetString("database_path")),
		PageSize:           v.GetInt("page_size"),
		ReclampAfterDelete: v.GetBool("reclamp_after_delete"),
		HistoryFile:        v.GetString("history_file"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		Source:             v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("config_file", cfg.Source).
		Str("database_path", cfg.DatabasePath).
		Int("page_size", cfg.PageSize).
		Bool("reclamp_after_delete", cfg.ReclampAfterDelete).
		Msg("Configuration loaded")
	return cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database_path cannot be empty", ErrInvalid)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("%w: page_size must be at least 1, got %d", ErrInvalid, c.PageSize)
	}
	return nil
}
