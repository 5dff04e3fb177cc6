// Package logger wraps log/slog with the configuration and helpers used
// across the gateway.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// LogLevel is the logging threshold
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds the logger configuration
type Config struct {
	Level      LogLevel
	OutputFile string
	EnableJSON bool

	// Output replaces stdout when set
	Output io.Writer
}

// Logger wraps an slog.Logger
type Logger struct {
	logger *slog.Logger
}

// New creates a logger writing to stdout (or cfg.Output) and, if set, to
// cfg.OutputFile.
func New(config Config) (*Logger, error) {
	var writers []io.Writer

	if config.Output != nil {
		writers = append(writers, config.Output)
	} else {
		writers = append(writers, os.Stdout)
	}

	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0755); err != nil {
			return nil, err
		}

		file, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	out := io.MultiWriter(writers...)

	opts := &slog.HandlerOptions{
		Level:     mapLogLevel(config.Level),
		AddSource: true,
	}

	var handler slog.Handler
	if config.EnableJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &Logger{
		logger: slog.New(contextHandler{Handler: handler}),
	}, nil
}

func mapLogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs at debug level
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs at info level
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs at warn level
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs at error level
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// DebugContext logs at debug level with the request attributes in ctx
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

// InfoContext logs at info level with the request attributes in ctx
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

// WarnContext logs at warn level with the request attributes in ctx
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

// ErrorContext logs at error level with the request attributes in ctx
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// With returns a logger that adds args to every record
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// Enabled reports whether records at level are emitted
func (l *Logger) Enabled(level LogLevel) bool {
	return l.logger.Enabled(context.Background(), mapLogLevel(level))
}
