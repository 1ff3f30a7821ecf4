package client

import (
	stderrors "errors"
	"fmt"
)

/*
TransportError is a transport-level failure: connection refused, DNS
failure, an unparsable response body, or an aborted attempt. Unlike a
JSON-RPC error it does not represent a protocol outcome, which is why the
client retries it. Timeout distinguishes "the server never responded"
from "the server actively refused".
*/
type TransportError struct {
	// Timeout marks an attempt aborted by the per-attempt deadline
	Timeout bool
	// Attempts is how many attempts were made before giving up
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	kind := "transport failure"

	if e.Timeout {
		kind = "request timed out"
	}

	if e.Attempts > 1 {
		return fmt.Sprintf("%s after %d attempts: %v", kind, e.Attempts, e.Err)
	}

	return fmt.Sprintf("%s: %v", kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var transportErr *TransportError
	return stderrors.As(err, &transportErr) && transportErr.Timeout
}
