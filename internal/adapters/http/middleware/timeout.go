package middleware

import (
	"bytes"
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/dto"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
)

// Timeout bounds each request. The handler runs on its own goroutine with a
// deadline-carrying context and writes into a buffer; if the deadline passes
// first a 504 problem response is sent and the buffered output is discarded.
// A panic in the handler is re-raised on the serving goroutine so Recovery
// still sees it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			bw := &bufferedWriter{header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if v := recover(); v != nil {
						panicked <- v
					}
				}()
				next.ServeHTTP(bw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case v := <-panicked:
				panic(v)
			case <-done:
				bw.copyTo(w)
			case <-ctx.Done():
				bw.abandon()
				dto.WriteErrorResponse(w, r, &domain.TimeoutError{Op: "http.request", Err: ctx.Err()})
			}
		})
	}
}

// bufferedWriter holds a handler's response until Timeout decides whether to
// send it. Header is only touched by the handler goroutine; the body and
// status are shared with the timeout path and guarded by mu.
type bufferedWriter struct {
	header http.Header

	mu        sync.Mutex
	body      bytes.Buffer
	status    int
	abandoned bool
}

func (bw *bufferedWriter) Header() http.Header {
	return bw.header
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.status == 0 {
		bw.status = code
	}
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.abandoned {
		return 0, http.ErrHandlerTimeout
	}
	if bw.status == 0 {
		bw.status = http.StatusOK
	}
	return bw.body.Write(b)
}

// abandon makes further handler writes fail once the 504 has been sent.
func (bw *bufferedWriter) abandon() {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	bw.abandoned = true
}

// copyTo replays the buffered response. The handler has returned, so the
// header map is no longer written concurrently.
func (bw *bufferedWriter) copyTo(w http.ResponseWriter) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	maps.Copy(w.Header(), bw.header)
	if bw.status != 0 {
		w.WriteHeader(bw.status)
	}
	if bw.body.Len() > 0 {
		_, _ = w.Write(bw.body.Bytes())
	}
}
