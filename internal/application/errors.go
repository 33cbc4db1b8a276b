package application

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	// ConsentStatus carries the entity's current state where that is what
	// the caller needs to decide between retry-now, retry-later and final.
	ConsentStatus domain.ConsentStatus
	Err           error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeConsentNotGranted = "CONSENT_NOT_GRANTED"
	ErrCodeNotReady          = "NOT_READY"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeCancelled         = "CANCELLED"
	ErrCodeTransport         = "TRANSPORT_FAILURE"
	ErrCodeProtocol          = "PROTOCOL_REJECTED"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeInvalidInput      = "INVALID_INPUT"
)

func NewConsentNotGrantedError(current domain.ConsentStatus) *ServiceError {
	return &ServiceError{
		Code:          ErrCodeConsentNotGranted,
		Message:       fmt.Sprintf("consent is %s, data may only be requested once it is GRANTED", current),
		HTTPStatus:    http.StatusConflict,
		ConsentStatus: current,
	}
}

func NewNotReadyError(sessionID string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotReady,
		Message:    fmt.Sprintf("session %s is still being prepared, retry after a backoff", sessionID),
		HTTPStatus: http.StatusAccepted,
	}
}

func NewNotFoundError(kind, id string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s %q not found", kind, id),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewCancelledError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeCancelled,
		Message:    "operation cancelled before the network call completed",
		HTTPStatus: http.StatusRequestTimeout,
		Err:        err,
	}
}

func NewTransportError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeTransport,
		Message:    "aggregator network unreachable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewProtocolError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProtocol,
		Message:    "aggregator network rejected the request",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
