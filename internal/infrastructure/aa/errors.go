package aa

import (
	"errors"
	"fmt"
)

// ProtocolError means the aggregator network received the request and rejected
// it. It carries the remote status code and body and is generally not
// retryable.
type ProtocolError struct {
	Code       string
	Message    string
	StatusCode int
	Body       string
}

type errorResponse struct {
	Code    string `json:"errorCode"`
	Message string `json:"errorMsg"`
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("aa protocol error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

// TransportError means the request never completed: connection failure,
// timeout, or a garbled response. Retryable for idempotent calls.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("aa transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsProtocolError(err error) (*ProtocolError, bool) {
	var protoErr *ProtocolError
	ok := errors.As(err, &protoErr)
	return protoErr, ok
}

func IsTransportError(err error) (*TransportError, bool) {
	var transportErr *TransportError
	ok := errors.As(err, &transportErr)
	return transportErr, ok
}
