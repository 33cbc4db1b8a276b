package application

import (
	"context"
	"errors"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
)

var (
	ErrConsentNotFound = errors.New("consent not found")
	ErrSessionNotFound = errors.New("fetch session not found")
	// ErrRemoteIDConflict means another consent already holds the
	// network-assigned identifier being persisted.
	ErrRemoteIDConflict = errors.New("remote id already bound to another consent")
)

// ConsentStore is the port for consent persistence. Update serializes all
// mutations for a given handle: the store loads the current record, runs fn
// on it under per-handle exclusivity, and persists the result if fn returns
// nil. That discipline is what keeps webhook ingestion and polling
// reconciliation from racing each other. Implementations must not invoke fn
// while the caller could be blocked on a network call; callers in turn never
// perform I/O inside fn.
type ConsentStore interface {
	Save(ctx context.Context, consent *domain.ConsentRequest) error
	FindByHandle(ctx context.Context, handle string) (*domain.ConsentRequest, error)
	FindByRemoteID(ctx context.Context, remoteID string) (*domain.ConsentRequest, error)
	Update(ctx context.Context, handle string, fn func(*domain.ConsentRequest) error) (*domain.ConsentRequest, error)
	// FindExpiring lists PENDING consents whose window closed before cutoff.
	FindExpiring(ctx context.Context, cutoff time.Time, limit int) ([]*domain.ConsentRequest, error)
}

// SessionStore is the port for fetch-session persistence, with the same
// Update discipline as ConsentStore.
type SessionStore interface {
	Save(ctx context.Context, session *domain.FetchSession) error
	FindByID(ctx context.Context, sessionID string) (*domain.FetchSession, error)
	Update(ctx context.Context, sessionID string, fn func(*domain.FetchSession) error) (*domain.FetchSession, error)
}
