package bitrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
)

// maxErrorBodySize limits how much of an error response body is read.
const maxErrorBodySize = 64 << 10

// translateCallError maps a failure to obtain any response into a domain
// error kind. Breaker rejections are transport errors. A rate-limit wait
// the context deadline cuts short is a timeout.
//
// The message reaches chat replies and JSON bodies, so the request URL it
// quotes loses its query string (the auth token travels there).
func translateCallError(method string, err error) error {
	err = stripURLQuery(err)

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.TimeoutError{Op: method, Err: err}
	}
	return &domain.TransportError{Err: fmt.Errorf("%s: %w", method, err)}
}

// stripURLQuery returns the first *url.Error in err's chain with the query
// and userinfo removed from its URL. Any outer wrapping is dropped since its
// text quotes the raw URL; the cause the *url.Error wraps is kept, so
// errors.Is still sees timeouts and cancellation.
func stripURLQuery(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	u, perr := url.Parse(uerr.URL)
	if perr != nil {
		return &url.Error{Op: uerr.Op, URL: "", Err: uerr.Err}
	}
	u.RawQuery = ""
	u.User = nil
	return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
}

// translateStatus maps a non-2xx response to a *domain.TransportError. The
// portal's error description, when the body carries one, becomes the cause.
func translateStatus(method string, resp *http.Response) error {
	var env Envelope
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if json.Unmarshal(body, &env) == nil && env.Error != "" {
		return &domain.TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s: %s: %s", method, env.Error, env.ErrorDescription),
		}
	}
	return &domain.TransportError{
		Status: resp.StatusCode,
		Err:    fmt.Errorf("%s: %s", method, http.StatusText(resp.StatusCode)),
	}
}

// remoteError returns a *domain.RemoteAPIError when the envelope reports one.
func remoteError(env *Envelope) error {
	if env.Error == "" {
		return nil
	}
	return &domain.RemoteAPIError{Code: string(env.Error), Description: string(env.ErrorDescription)}
}
