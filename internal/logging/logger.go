package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds logging configuration
type Config struct {
	Level  string
	Format string
	Output string
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
}

// Logger wraps slog.Logger with component helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a structured logger from configuration
func NewLogger(cfg *Config) *Logger {
	return NewLoggerTo(writerFor(cfg.Output), cfg)
}

// NewLoggerTo creates a logger writing to w, ignoring cfg.Output
func NewLoggerTo(w io.Writer, cfg *Config) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func writerFor(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}

func parseLevel(s string) slog.Level {
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

// WithComponent adds component context to logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

// WithRun tags entries with a run ID
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{Logger: l.Logger.With("run_id", runID)}
}

// Browser logs DevTools-level events
func (l *Logger) Browser(msg string, args ...any) {
	l.Logger.Debug(msg, append([]any{"subsystem", "browser"}, args...)...)
}

// Store logs persistence events
func (l *Logger) Store(msg string, args ...any) {
	l.Logger.Debug(msg, append([]any{"subsystem", "store"}, args...)...)
}

// Performance logs how long an operation took
func (l *Logger) Performance(operation string, duration time.Duration, args ...any) {
	l.Logger.Info("performance", append([]any{"operation", operation, "duration_ms", duration.Milliseconds()}, args...)...)
}

var defaultLogger *Logger

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the default logger instance
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(DefaultConfig())
	}
	return defaultLogger
}
