package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/aa"
)

// ErrorCategory represents the nature of an error for retry logic
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines error category for retry and logging purposes
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	if errors.Is(err, domain.ErrInvalidTransition) {
		return CategoryBusinessRule
	}
	if errors.Is(err, domain.ErrMissingSubject) || errors.Is(err, domain.ErrInvalidDuration) {
		return CategoryClientError
	}
	if errors.Is(err, ErrConsentNotFound) || errors.Is(err, ErrSessionNotFound) {
		return CategoryClientError
	}
	if errors.Is(err, ErrRemoteIDConflict) {
		return CategoryBusinessRule
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput, ErrCodeNotFound:
			return CategoryClientError
		case ErrCodeConsentNotGranted, ErrCodeNotReady:
			return CategoryBusinessRule
		case ErrCodeTransport, ErrCodeCancelled:
			return CategoryTransient
		case ErrCodeProtocol:
			return CategoryPermanent
		case ErrCodeInternal:
			return CategoryInfrastructure
		}
	}

	if _, ok := aa.IsTransportError(err); ok {
		return CategoryTransient
	}
	if protoErr, ok := aa.IsProtocolError(err); ok {
		if protoErr.StatusCode >= 500 {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	// Default: Transient (safe fallback)
	return CategoryTransient
}

// IsRetryable returns true if the error category suggests retry
func IsRetryable(err error) bool {
	category := CategorizeError(err)
	return category == CategoryTransient || category == CategoryInfrastructure
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case errors.Is(err, domain.ErrMissingSubject),
		errors.Is(err, domain.ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrRemoteIDImmutable),
		errors.Is(err, ErrRemoteIDConflict):
		return http.StatusConflict
	case errors.Is(err, ErrConsentNotFound),
		errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	if _, ok := aa.IsTransportError(err); ok {
		return http.StatusBadGateway
	}
	if _, ok := aa.IsProtocolError(err); ok {
		return http.StatusBadGateway
	}

	// Default to 500
	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	if errors.Is(err, domain.ErrInvalidTransition) {
		return "INVALID_TRANSITION"
	}
	if errors.Is(err, ErrRemoteIDConflict) {
		return "REMOTE_ID_CONFLICT"
	}
	if errors.Is(err, ErrConsentNotFound) || errors.Is(err, ErrSessionNotFound) {
		return ErrCodeNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrCodeCancelled
	}
	if _, ok := aa.IsTransportError(err); ok {
		return ErrCodeTransport
	}
	if _, ok := aa.IsProtocolError(err); ok {
		return ErrCodeProtocol
	}

	return ErrCodeInternal
}
