// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"recipe-assistant/internal/config"
)

// Options controls where and how logs are written.
type Options struct {
	Level  *slog.LevelVar
	Format string // "json" or "text"
	File   string // rotated log file, empty for stderr only
	Stderr io.Writer
}

// New returns a logger plus a close function for the rotated file (a no-op
// when no file is configured).
func New(opts Options) (*slog.Logger, func() error) {
	out := opts.Stderr
	if out == nil {
		out = os.Stderr
	}
	closeFn := func() error { return nil }

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(out, rotator)
		closeFn = rotator.Close
	}

	level := opts.Level
	if level == nil {
		level = new(slog.LevelVar)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(handler), closeFn
}

// FromConfig builds the logger described by cfg. The returned LevelVar can be
// handed to config.Loader.Watch to change the level at runtime.
func FromConfig(cfg config.LogConfig) (*slog.Logger, *slog.LevelVar, func() error, error) {
	level := new(slog.LevelVar)
	parsed, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, nil, err
	}
	level.Set(parsed)

	logger, closeFn := New(Options{Level: level, Format: cfg.Format, File: cfg.File})
	return logger, level, closeFn, nil
}
