package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/logging"
)

// Logging returns middleware that logs one line when a request arrives and one
// when it completes. The child logger carries the request ID and is stored in
// the context so that handlers and services log under the same ID.
//
// Query strings are never logged: portal callbacks carry AUTH_ID there.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			child := logger.With(slog.String("request_id", RequestIDFromContext(ctx)))
			ctx = logging.WithLogger(ctx, child)

			child.InfoContext(ctx, "request received",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)

			if child.Enabled(ctx, slog.LevelDebug) {
				attrs := logging.RedactHeaders(r.Header)
				args := make([]any, 0, len(attrs))
				for _, a := range attrs {
					args = append(args, a)
				}
				child.DebugContext(ctx, "request headers", args...)
			}

			rw := wrap(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			level := slog.LevelInfo
			if rw.statusCode >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			child.Log(ctx, level, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.Int64("bytes", rw.written),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
