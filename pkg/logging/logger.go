// Package logging is the process-wide slog setup. Packages take a component
// logger from New; the CLI picks level and format once at startup.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace is below debug and logs every graph mutation
const LevelTrace = slog.LevelDebug - 4

type contextKey string

const requestIDKey contextKey = "requestID"

var (
	level  = new(slog.LevelVar)
	logger = slog.New(NewCompactHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
)

// SetLevel changes the minimum level. Loggers from New follow the change.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetJSONOutput switches to one JSON object per record on w. Component
// loggers created before the switch keep the compact format, so call it
// before building adapters.
func SetJSONOutput(w io.Writer) {
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// New returns a logger tagged with the given component name
func New(component string) *slog.Logger {
	return logger.With(ComponentKey, component)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func withRequestID(ctx context.Context, args []any) []any {
	if requestID := GetRequestID(ctx); requestID != "" {
		return append([]any{RequestIDKey, requestID}, args...)
	}
	return args
}

// Trace logs graph mutations and other per-entity detail
func Trace(msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs at DEBUG level
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs at INFO level
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// InfoContext logs at INFO level with the request ID of ctx
func InfoContext(ctx context.Context, msg string, args ...any) {
	logger.InfoContext(ctx, msg, withRequestID(ctx, args)...)
}

// Warn logs at WARN level
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// WarnContext logs at WARN level with the request ID of ctx
func WarnContext(ctx context.Context, msg string, args ...any) {
	logger.WarnContext(ctx, msg, withRequestID(ctx, args)...)
}

// Error logs at ERROR level
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}
