package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how the default logger is built.
type Options struct {
	Env   string
	Level string
	// File enables an additional JSON log with size-based rotation.
	File string
}

// SetupLogger installs the default slog logger. Development uses a text
// handler, production uses JSON.
func SetupLogger(opts Options, out io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: stringToLogLevel(opts.Level),
	}

	var handler slog.Handler = slog.NewTextHandler(out, handlerOpts)

	if opts.Env == "production" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	if strings.TrimSpace(opts.File) != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		handler = &fanout{handlers: []slog.Handler{handler, slog.NewJSONHandler(rotator, handlerOpts)}}
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func stringToLogLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout sends every record to all handlers.
type fanout struct {
	handlers []slog.Handler
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: hs}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &fanout{handlers: hs}
}
