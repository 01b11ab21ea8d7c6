package client

import (
	"fmt"
)

// TransportError reports a request that never produced a usable response:
// the request could not be built or sent, or the response body was malformed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError reports a non-success status returned by the service. Message
// is the service-provided message when the body carries one.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("failed to %s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
}
