// Package logger builds the process-wide slog handler.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekisa-team/scribe/internal/env"
)

// Options configures logger construction.
type Options struct {
	logToFile bool
	logFile   string
	level     slog.Leveler
}

// Option mutates Options.
type Option func(*Options)

// WithLogToFile enables mirroring log records to a rotating file.
func WithLogToFile(enabled bool) Option {
	return func(o *Options) { o.logToFile = enabled }
}

// WithLogFile sets the path of the rotating log file.
func WithLogFile(path string) Option {
	return func(o *Options) { o.logFile = path }
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Leveler) Option {
	return func(o *Options) { o.level = level }
}

// New creates a logger for the given environment: a tinted console handler
// in development, JSON in production, optionally mirrored to a rotating
// file sink.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	options := &Options{
		logFile: "logs/scribe.log",
		level:   slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(options)
	}

	var console slog.Handler
	if environment.IsProduction() {
		console = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: options.level})
	} else {
		console = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      options.level,
			TimeFormat: time.Kitchen,
		})
	}

	if !options.logToFile {
		return slog.New(console)
	}

	var file io.Writer = &lumberjack.Logger{
		Filename:   options.logFile,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: options.level})

	return slog.New(fanout{console, fileHandler})
}

// fanout dispatches each record to every wrapped handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
