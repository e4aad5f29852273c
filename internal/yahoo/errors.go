package yahoo

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrNetwork = errors.New("yahoo: network error")
	ErrDecode  = errors.New("yahoo: decode error")
)

// NetworkError reports a request that never produced a usable response:
// the URL could not be built, the transport failed, or the provider answered
// with a non-2xx status.
type NetworkError struct {
	Op          string
	URL         string
	StatusCode  int    // zero when no response was received
	Description string // provider-supplied reason, if the body carried one
	Err         error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Description != "":
		return fmt.Sprintf("yahoo %s: status %d: %s", e.Op, e.StatusCode, e.Description)
	case e.StatusCode != 0:
		return fmt.Sprintf("yahoo %s: status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("yahoo %s: %v", e.Op, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// DecodeError reports a response body that does not have the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("yahoo %s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
