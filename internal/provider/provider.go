// Package provider contains the clients for the hosted language-model
// backends. Every client implements Client and reports failures as *Error so
// the dispatcher can decide whether to fall back to another backend.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/edgard/relaybot/internal/chat"
)

// Client sends a conversation to one backend and returns the generated text.
// The deadline of ctx bounds the call.
type Client interface {
	Name() string
	Generate(ctx context.Context, history []chat.Message) (string, error)
}

// Kind classifies a provider failure.
type Kind int

const (
	KindUnavailable Kind = iota
	KindUnauthorized
	KindRateLimited
	KindTimeout
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrEmptyReply is wrapped when a backend answers successfully with no text.
var ErrEmptyReply = errors.New("empty reply")

// Error is the typed failure returned by every Client.
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind of a provider error.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

// FromStatus maps a non-success HTTP status code to a Kind.
func FromStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnavailable
	}
}

// Normalize converts an arbitrary error from a backend call into *Error.
// Errors that already are *Error pass through unchanged.
func Normalize(name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}

	kind := KindTransport
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.Is(err, ErrEmptyReply):
		kind = KindUnavailable
	}
	return &Error{Provider: name, Kind: kind, Err: err}
}

func statusError(name string, status int, err error) *Error {
	return &Error{Provider: name, Kind: FromStatus(status), Status: status, Err: err}
}
