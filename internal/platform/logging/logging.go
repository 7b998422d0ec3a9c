// Package logging builds the relay's slog logger and carries it through
// request contexts.
//
//	logger := logging.New("info", "json", os.Stderr)
//	ctx = logging.WithLogger(ctx, logger)
//	logger = logging.FromContext(ctx)
//
// Error logs carry the operation name, the identifiers involved, and the
// full error chain:
//
//	logger.ErrorContext(ctx, "crm query failed",
//	    slog.String("operation", "TasksByAssignee"),
//	    slog.String("user_id", userID),
//	    slog.Any("error", err),
//	)
//
// The handler redacts credentials by field name and by value pattern, so a
// CRM URL carrying ?auth=... or a webhook secret path is safe to log.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type contextKey struct{}

// New builds the process logger. level accepts any slog level name ("debug",
// "WARN", "info+2"); unknown values fall back to info. format "text" selects
// the text handler and anything else JSON. Debug level adds source
// locations.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: newRedactAttr(),
	}

	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// WithLogger stores logger in ctx for FromContext.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request logger set by the HTTP middleware, or
// slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
