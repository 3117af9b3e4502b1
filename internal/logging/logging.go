// Package logging wires slog for the relay: a tint handler on stdout plus a plain text log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// ParseLevel maps debug|info|warn|error (case-insensitive) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// New builds a logger writing colored output to stdout and plain text to file.
// A nil file logs to stdout only.
func New(stdout *os.File, file io.Writer, level slog.Level) *slog.Logger {
	stdoutHandler := tint.NewHandler(stdout, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    !isatty.IsTerminal(stdout.Fd()),
	})

	if file == nil {
		return slog.New(stdoutHandler)
	}

	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewMultiHandler(stdoutHandler, fileHandler))
}
