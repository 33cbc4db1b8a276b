package services

import (
	"context"
	"errors"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/aa"
)

// mapNetworkError translates a protocol-client failure into the application
// taxonomy. Cancellation is checked first: a context fired mid-call often
// surfaces wrapped in a transport error.
func mapNetworkError(err error) *application.ServiceError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return application.NewCancelledError(err)
	}
	if _, ok := aa.IsTransportError(err); ok {
		return application.NewTransportError(err)
	}
	if _, ok := aa.IsProtocolError(err); ok {
		return application.NewProtocolError(err)
	}
	return application.NewInternalError(err)
}
