// Package logging builds the process-wide slog logger. Output goes to stdout,
// and optionally to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the logger. Zero values fall back to text output at Info.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text, json

	// File rotation. Empty File disables the file sink.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// OptionsFromEnv reads LOG_* variables.
func OptionsFromEnv() Options {
	o := Options{
		Level:      strings.ToLower(os.Getenv("LOG_LEVEL")),
		Format:     strings.ToLower(os.Getenv("LOG_FORMAT")),
		File:       os.Getenv("LOG_FILE"),
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 7,
		Compress:   true,
	}
	if n, err := strconv.Atoi(os.Getenv("LOG_MAX_SIZE_MB")); err == nil && n > 0 {
		o.MaxSizeMB = n
	}
	if n, err := strconv.Atoi(os.Getenv("LOG_MAX_BACKUPS")); err == nil && n >= 0 {
		o.MaxBackups = n
	}
	if n, err := strconv.Atoi(os.Getenv("LOG_MAX_AGE_DAYS")); err == nil && n > 0 {
		o.MaxAgeDays = n
	}
	if b, err := strconv.ParseBool(os.Getenv("LOG_COMPRESS")); err == nil {
		o.Compress = b
	}
	return o
}

// New creates a logger for the given options. The returned closer flushes the
// file sink and must be called on shutdown; it is a no-op without one.
func New(o Options) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if o.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
			Compress:   o.Compress,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	return slog.New(newHandler(out, o)), closer
}

func newHandler(w io.Writer, o Options) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(o.Level)}
	if o.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a level name to slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
