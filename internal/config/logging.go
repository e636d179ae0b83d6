package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("ADAPTIQ_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// DefaultLogFile is $XDG_STATE_HOME/adaptiq/adaptiq.log, falling back to
// ~/.local/state.
func DefaultLogFile() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "adaptiq", "adaptiq.log"), nil
}

// SetupLogging installs a text slog handler writing to w as the default
// logger.
func SetupLogging(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// OpenLog opens the configured log file for appending, or the default one.
// The TUI owns the terminal, so interactive runs log here.
func (c Config) OpenLog() (io.WriteCloser, error) {
	path := c.LogFile
	if path == "" {
		var err error
		if path, err = DefaultLogFile(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
