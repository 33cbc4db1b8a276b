package aa_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/config"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/aa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRetryClient(inner aa.Client) aa.Client {
	return aa.NewRetryClient(inner, config.RetryConfig{
		BaseDelay:  0,
		MaxRetries: 2,
	})
}

func TestRetryClient_GetConsentStatus_RetriesOnTransportError(t *testing.T) {
	attempts := 0
	mockClient := &aa.MockClient{
		GetConsentStatusFn: func(ctx context.Context, remoteID string) (string, error) {
			attempts++
			if attempts < 3 {
				return "", &aa.TransportError{Op: "GET status", Err: errors.New("connection reset")}
			}
			return "ACTIVE", nil
		},
	}

	status, err := newRetryClient(mockClient).GetConsentStatus(context.Background(), "remote-1")

	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", status)
	assert.Equal(t, 3, attempts)
}

func TestRetryClient_GetConsentStatus_DoesNotRetryProtocolError(t *testing.T) {
	mockClient := &aa.MockClient{
		GetConsentStatusFn: func(ctx context.Context, remoteID string) (string, error) {
			return "", &aa.ProtocolError{Code: "NotFound", StatusCode: 404}
		},
	}

	_, err := newRetryClient(mockClient).GetConsentStatus(context.Background(), "remote-1")

	require.Error(t, err)
	_, ok := aa.IsProtocolError(err)
	assert.True(t, ok)
	assert.Equal(t, 1, mockClient.GetCalls("GetConsentStatus"))
}

func TestRetryClient_GetConsentStatus_ExhaustsRetries(t *testing.T) {
	mockClient := &aa.MockClient{
		GetConsentStatusFn: func(ctx context.Context, remoteID string) (string, error) {
			return "", &aa.TransportError{Op: "GET status", Err: errors.New("timeout")}
		},
	}

	_, err := newRetryClient(mockClient).GetConsentStatus(context.Background(), "remote-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum retries exceeded")
	assert.Equal(t, 3, mockClient.GetCalls("GetConsentStatus"))
}

func TestRetryClient_FetchSession_RetriesOnTransportError(t *testing.T) {
	attempts := 0
	mockClient := &aa.MockClient{
		FetchSessionFn: func(ctx context.Context, sessionID string) (*aa.FIPayload, error) {
			attempts++
			if attempts == 1 {
				return nil, &aa.TransportError{Op: "GET fetch", Err: errors.New("connection reset")}
			}
			return &aa.FIPayload{Status: "READY"}, nil
		},
	}

	payload, err := newRetryClient(mockClient).FetchSession(context.Background(), "session-1")

	require.NoError(t, err)
	assert.True(t, payload.Ready())
	assert.Equal(t, 2, attempts)
}

func TestRetryClient_CreateConsent_NeverRetried(t *testing.T) {
	mockClient := &aa.MockClient{
		CreateConsentFn: func(ctx context.Context, req aa.ConsentCreateRequest) (*aa.ConsentCreateResponse, error) {
			return nil, &aa.TransportError{Op: "POST consents", Err: errors.New("timeout")}
		},
	}

	_, err := newRetryClient(mockClient).CreateConsent(context.Background(), aa.ConsentCreateRequest{})

	require.Error(t, err)
	assert.Equal(t, 1, mockClient.GetCalls("CreateConsent"))
}

func TestRetryClient_RequestFetch_NeverRetried(t *testing.T) {
	mockClient := &aa.MockClient{
		RequestFetchFn: func(ctx context.Context, remoteID string, from, to time.Time) (string, error) {
			return "", &aa.TransportError{Op: "POST FI request", Err: errors.New("timeout")}
		},
	}

	_, err := newRetryClient(mockClient).RequestFetch(context.Background(), "remote-1", time.Now(), time.Now())

	require.Error(t, err)
	assert.Equal(t, 1, mockClient.GetCalls("RequestFetch"))
}

func TestRetryClient_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockClient := &aa.MockClient{}
	_, err := newRetryClient(mockClient).GetConsentStatus(ctx, "remote-1")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, mockClient.GetCalls("GetConsentStatus"))
}

func TestRetryClient_ZeroRetries_StillAttemptsOnce(t *testing.T) {
	mockClient := &aa.MockClient{}
	client := aa.NewRetryClient(mockClient, config.RetryConfig{MaxRetries: 0})

	status, err := client.GetConsentStatus(context.Background(), "remote-1")

	require.NoError(t, err)
	assert.Equal(t, "PENDING", status)
	assert.Equal(t, 1, mockClient.GetCalls("GetConsentStatus"))
}

func TestRetryClient_ZeroRetries_SurfacesTransportError(t *testing.T) {
	mockClient := &aa.MockClient{
		GetConsentStatusFn: func(ctx context.Context, remoteID string) (string, error) {
			return "", &aa.TransportError{Op: "GET consent", Err: errors.New("timeout")}
		},
	}
	client := aa.NewRetryClient(mockClient, config.RetryConfig{MaxRetries: 0})

	_, err := client.GetConsentStatus(context.Background(), "remote-1")

	require.Error(t, err)
	_, isTransport := aa.IsTransportError(err)
	assert.True(t, isTransport)
	assert.Equal(t, 1, mockClient.GetCalls("GetConsentStatus"))
}
