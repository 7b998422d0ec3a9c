// Package middleware provides HTTP middleware for the inbound request pipeline.
//
// The router applies them with chi's Use in this order:
//
//	Recovery → RequestID → OpenTelemetry → Logging → Timeout → Handler
package middleware

import "net/http"

// responseWriter records what a handler sent so that Recovery, OpenTelemetry
// and Logging can report on the finished request. One instance is shared by
// the whole chain; see wrap.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
}

// wrap returns w itself when an outer middleware already wrapped it, so the
// chain records status and size once.
func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Flush forwards to the underlying writer when it supports flushing.
func (rw *responseWriter) Flush() {
	rw.headerWritten = true
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
