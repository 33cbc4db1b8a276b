package aa

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/config"
)

// RetryClient retries the idempotent read operations on transient transport
// failures. CreateConsent and RequestFetch are effectful creates and are never
// auto-retried; a retry there is the caller's explicit decision.
//
// maxRetries counts retries after the first attempt, so a zero (or unset)
// retry config still performs a single call.
type RetryClient struct {
	inner      Client
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryClient(inner Client, cfg config.RetryConfig) Client {
	maxRetries := int(cfg.MaxRetries)
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: maxRetries,
	}
}

func (r *RetryClient) CreateConsent(ctx context.Context, req ConsentCreateRequest) (*ConsentCreateResponse, error) {
	return r.inner.CreateConsent(ctx, req)
}

func (r *RetryClient) RequestFetch(ctx context.Context, remoteID string, from, to time.Time) (string, error) {
	return r.inner.RequestFetch(ctx, remoteID, from, to)
}

// GetConsentStatus with retry logic
func (r *RetryClient) GetConsentStatus(ctx context.Context, remoteID string) (string, error) {
	resp, err := retry(
		r,
		ctx,
		func(ctx context.Context) (*string, error) {
			s, err := r.inner.GetConsentStatus(ctx, remoteID)
			if err != nil {
				return nil, err
			}
			return &s, nil
		},
	)
	if err != nil {
		return "", err
	}
	return *resp, nil
}

// FetchSession with retry logic
func (r *RetryClient) FetchSession(ctx context.Context, sessionID string) (*FIPayload, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*FIPayload, error) {
			return r.inner.FetchSession(ctx, sessionID)
		},
	)
}

// Generic retry helper
func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Only transport failures are worth another attempt; a ProtocolError means the
// network saw and rejected the request.
func isRetryable(err error) bool {
	_, ok := IsTransportError(err)
	return ok
}

// Backoff calculation with exponential delay and jitter
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
