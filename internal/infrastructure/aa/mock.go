package aa

import (
	"context"
	"sync"
	"time"
)

// MockClient is a test double for Client. Behaviour is overridden per test by
// assigning the Fn fields; unset methods return canned success responses.
type MockClient struct {
	mu    sync.Mutex
	calls map[string]int

	CreateConsentFn    func(ctx context.Context, req ConsentCreateRequest) (*ConsentCreateResponse, error)
	GetConsentStatusFn func(ctx context.Context, remoteID string) (string, error)
	RequestFetchFn     func(ctx context.Context, remoteID string, from, to time.Time) (string, error)
	FetchSessionFn     func(ctx context.Context, sessionID string) (*FIPayload, error)
}

func (m *MockClient) inc(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

func (m *MockClient) GetCalls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockClient) CreateConsent(ctx context.Context, req ConsentCreateRequest) (*ConsentCreateResponse, error) {
	m.inc("CreateConsent")
	if m.CreateConsentFn != nil {
		return m.CreateConsentFn(ctx, req)
	}
	return &ConsentCreateResponse{
		RemoteID:    "remote-123",
		ApprovalURL: "https://aa.example.com/approve/remote-123",
	}, nil
}

func (m *MockClient) GetConsentStatus(ctx context.Context, remoteID string) (string, error) {
	m.inc("GetConsentStatus")
	if m.GetConsentStatusFn != nil {
		return m.GetConsentStatusFn(ctx, remoteID)
	}
	return "PENDING", nil
}

func (m *MockClient) RequestFetch(ctx context.Context, remoteID string, from, to time.Time) (string, error) {
	m.inc("RequestFetch")
	if m.RequestFetchFn != nil {
		return m.RequestFetchFn(ctx, remoteID, from, to)
	}
	return "session-123", nil
}

func (m *MockClient) FetchSession(ctx context.Context, sessionID string) (*FIPayload, error) {
	m.inc("FetchSession")
	if m.FetchSessionFn != nil {
		return m.FetchSessionFn(ctx, sessionID)
	}
	return &FIPayload{Status: "READY"}, nil
}
