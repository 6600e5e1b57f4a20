package remote

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Fetcher matches exactly one of them
// through errors.Is.
var (
	// ErrTransport covers unreachable hosts, timeouts and non-2xx responses.
	ErrTransport = errors.New("transport error")

	// ErrDecode covers malformed or empty payloads.
	ErrDecode = errors.New("decode error")
)

// FetchError describes a failed fetch.
type FetchError struct {
	// Op is "policy" or "store".
	Op         string
	Kind       error
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch: %v: status %d: %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func transportError(op string, statusCode int, err error) *FetchError {
	return &FetchError{Op: op, Kind: ErrTransport, StatusCode: statusCode, Err: err}
}

func decodeError(op string, err error) *FetchError {
	return &FetchError{Op: op, Kind: ErrDecode, Err: err}
}

// KindOf returns a short label for the error kind, for logs and metrics.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
