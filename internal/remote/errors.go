package remote

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by operations that need an existing reminder and
// found none. Get itself reports absence as a nil reminder, not an error.
var ErrNotFound = errors.New("reminder not found")

// RemoteError is a non-200 response. The body is kept verbatim for
// diagnostics and is never interpreted.
type RemoteError struct {
	Op         Op
	StatusCode int
	Body       []byte
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: reminders API error (status %d): %s", e.Op, e.StatusCode, string(e.Body))
}

// TransportError is a failure to reach the endpoint or read its response.
type TransportError struct {
	Op  Op
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of a RemoteError anywhere in err's
// chain, or 0.
func StatusCode(err error) int {
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		return rerr.StatusCode
	}
	return 0
}
