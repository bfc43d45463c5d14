package predictor

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every prediction failure via errors.Is. Callers that
// only need to tell the user "try again later" can stop there; diagnostics
// use errors.As on the concrete types below.
var ErrUnavailable = errors.New("prediction service unavailable")

// NetworkError means the request never produced an HTTP response: DNS,
// refused connection, timeout or cancellation.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

// TransportError is a non-2xx response.
type TransportError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("prediction service %s returned status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Is(target error) bool { return target == ErrUnavailable }

// ProtocolError is a 2xx response whose body is not the expected JSON.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid prediction response: %s: %v", e.Reason, e.Err)
	}
	return "invalid prediction response: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrUnavailable }

// Kind names the failure class for logs and metrics: "network", "transport",
// "protocol", or "unknown" for errors from elsewhere.
func Kind(err error) string {
	var netErr *NetworkError
	var trErr *TransportError
	var protoErr *ProtocolError
	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &trErr):
		return "transport"
	case errors.As(err, &protoErr):
		return "protocol"
	default:
		return "unknown"
	}
}

// StatusCode returns the upstream HTTP status for a TransportError, else 0.
func StatusCode(err error) int {
	var trErr *TransportError
	if errors.As(err, &trErr) {
		return trErr.StatusCode
	}
	return 0
}
