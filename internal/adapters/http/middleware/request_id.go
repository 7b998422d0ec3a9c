package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/httpclient"
)

const (
	headerRequestID = "X-Request-ID"

	// maxRequestIDLen bounds caller-supplied IDs; longer values are replaced.
	maxRequestIDLen = 128
)

type requestIDKey struct{}

// WithRequestID stores id in ctx for this package and for httpclient, so
// outbound portal calls carry the same X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	return httpclient.WithRequestID(ctx, id)
}

// RequestIDFromContext returns the request ID or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestID reuses an inbound X-Request-ID when it is present and reasonably
// sized, otherwise it generates a random UUID. The ID is echoed in the
// response headers.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
			}
			w.Header().Set(headerRequestID, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}
