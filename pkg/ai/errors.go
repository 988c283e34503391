package ai

import (
	"errors"
	"fmt"
)

// ContentFilterError reports that the inference service blocked the
// request through its own content-policy signaling. It is detected from
// the service's error channel, never by inspecting response text.
type ContentFilterError struct {
	Reason string
}

func (e *ContentFilterError) Error() string {
	if e.Reason == "" {
		return "content filter blocked the request"
	}
	return fmt.Sprintf("content filter blocked the request: %s", e.Reason)
}

// TransportError reports that a request never produced a usable response:
// network failures, HTTP errors, and timeouts all classify here.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsContentFiltered reports whether err carries a *ContentFilterError.
func IsContentFiltered(err error) bool {
	var cfe *ContentFilterError
	return errors.As(err, &cfe)
}

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
