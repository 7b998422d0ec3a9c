package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrTimeout         = errors.New("timeout")
	ErrTransport       = errors.New("transport error")
	ErrRemoteAPI       = errors.New("remote api error")
	ErrMissingIdentity = errors.New("missing identity")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConfigurationError reports that no credentials could be resolved for a
// CRM call. It is not recoverable without changing the deployment.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return ErrConfiguration.Error() + ": " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// TimeoutError reports that a remote collaborator did not answer within the
// configured bound.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	if e.Op == "" {
		return ErrTimeout.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, ErrTimeout.Error())
}

// Unwrap exposes both the sentinel and the underlying cause (usually
// context.DeadlineExceeded).
func (e *TimeoutError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTimeout}
	}
	return []error{ErrTimeout, e.Err}
}

// TransportError is a connection-level failure, a non-2xx status, or a body
// that could not be decoded. Status is zero when no response was received.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", ErrTransport.Error(), e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", ErrTransport.Error(), e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrTransport.Error(), e.Err)
	default:
		return ErrTransport.Error()
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// RemoteAPIError is an application-level rejection reported by the CRM in
// the response envelope.
type RemoteAPIError struct {
	Code        string
	Description string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *RemoteAPIError) Unwrap() error {
	return ErrRemoteAPI
}

// MissingIdentityError reports that an operation needs the caller's CRM user
// id and none was supplied or resolved.
type MissingIdentityError struct {
	Op string
}

func (e *MissingIdentityError) Error() string {
	if e.Op == "" {
		return "no user id supplied (identify yourself first)"
	}
	return e.Op + ": no user id supplied (identify yourself first)"
}

func (e *MissingIdentityError) Unwrap() error {
	return ErrMissingIdentity
}
