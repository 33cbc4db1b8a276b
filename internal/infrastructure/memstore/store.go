// Package memstore provides in-process implementations of the consent and
// session stores. Mutations run under the store lock, which gives the
// per-handle serialization the lifecycle manager relies on; callers never do
// I/O inside an Update closure, so the lock is never held across a network
// call.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
)

type ConsentStore struct {
	mu       sync.RWMutex
	consents map[string]*domain.ConsentRequest
	byRemote map[string]string
}

func NewConsentStore() *ConsentStore {
	return &ConsentStore{
		consents: make(map[string]*domain.ConsentRequest),
		byRemote: make(map[string]string),
	}
}

func (s *ConsentStore) Save(ctx context.Context, consent *domain.ConsentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.consents[consent.Handle] = cloneConsent(consent)
	if consent.RemoteID != nil {
		s.byRemote[*consent.RemoteID] = consent.Handle
	}
	return nil
}

func (s *ConsentStore) FindByHandle(ctx context.Context, handle string) (*domain.ConsentRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	consent, ok := s.consents[handle]
	if !ok {
		return nil, application.ErrConsentNotFound
	}
	return cloneConsent(consent), nil
}

func (s *ConsentStore) FindByRemoteID(ctx context.Context, remoteID string) (*domain.ConsentRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handle, ok := s.byRemote[remoteID]
	if !ok {
		return nil, application.ErrConsentNotFound
	}
	consent, ok := s.consents[handle]
	if !ok {
		return nil, application.ErrConsentNotFound
	}
	return cloneConsent(consent), nil
}

func (s *ConsentStore) Update(ctx context.Context, handle string, fn func(*domain.ConsentRequest) error) (*domain.ConsentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.consents[handle]
	if !ok {
		return nil, application.ErrConsentNotFound
	}

	next := cloneConsent(current)
	if err := fn(next); err != nil {
		return nil, err
	}

	s.consents[handle] = next
	if next.RemoteID != nil {
		s.byRemote[*next.RemoteID] = handle
	}
	return cloneConsent(next), nil
}

func (s *ConsentStore) FindExpiring(ctx context.Context, cutoff time.Time, limit int) ([]*domain.ConsentRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expiring []*domain.ConsentRequest
	for _, consent := range s.consents {
		if consent.Status == domain.StatusPending && consent.ExpiresAt.Before(cutoff) {
			expiring = append(expiring, cloneConsent(consent))
		}
	}

	sort.Slice(expiring, func(i, j int) bool {
		return expiring[i].ExpiresAt.Before(expiring[j].ExpiresAt)
	})
	if limit > 0 && len(expiring) > limit {
		expiring = expiring[:limit]
	}
	return expiring, nil
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.FetchSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.FetchSession),
	}
}

func (s *SessionStore) Save(ctx context.Context, session *domain.FetchSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.SessionID] = cloneSession(session)
	return nil
}

func (s *SessionStore) FindByID(ctx context.Context, sessionID string) (*domain.FetchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, application.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *SessionStore) Update(ctx context.Context, sessionID string, fn func(*domain.FetchSession) error) (*domain.FetchSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[sessionID]
	if !ok {
		return nil, application.ErrSessionNotFound
	}

	next := cloneSession(current)
	if err := fn(next); err != nil {
		return nil, err
	}

	s.sessions[sessionID] = next
	return cloneSession(next), nil
}

// Stores hand out copies so callers can never mutate shared state behind the
// lock's back.

func cloneConsent(c *domain.ConsentRequest) *domain.ConsentRequest {
	clone := *c
	clone.Categories = append([]string(nil), c.Categories...)
	if c.RemoteID != nil {
		remoteID := *c.RemoteID
		clone.RemoteID = &remoteID
	}
	if c.ApprovalURL != nil {
		approvalURL := *c.ApprovalURL
		clone.ApprovalURL = &approvalURL
	}
	return &clone
}

func cloneSession(s *domain.FetchSession) *domain.FetchSession {
	clone := *s
	clone.Records = append([]domain.NormalizedRecord(nil), s.Records...)
	return &clone
}
