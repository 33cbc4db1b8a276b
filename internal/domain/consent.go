// Package domain defines the domain models for the data gateway.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConsentStatus represents the current state of a consent in its lifecycle
type ConsentStatus string

const (
	StatusPending ConsentStatus = "PENDING"
	StatusGranted ConsentStatus = "GRANTED"
	StatusDenied  ConsentStatus = "DENIED"
	StatusExpired ConsentStatus = "EXPIRED"
	StatusRevoked ConsentStatus = "REVOKED"
)

// ConsentRequest represents one authorization instance granted (or awaited)
// from a data subject. Handle is the local identifier; RemoteID is assigned
// by the aggregator network once the consent is registered there.
type ConsentRequest struct {
	Handle      string
	SubjectID   string
	Categories  []string
	PurposeText string
	PurposeCode string

	Status      ConsentStatus
	RemoteID    *string
	ApprovalURL *string

	CreatedAt time.Time
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// NewConsentRequest builds a PENDING consent with a freshly issued handle.
func NewConsentRequest(subjectID string, categories []string, purposeText, purposeCode string, duration time.Duration) (*ConsentRequest, error) {
	if subjectID == "" {
		return nil, ErrMissingSubject
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	now := time.Now().UTC()
	return &ConsentRequest{
		Handle:      uuid.New().String(),
		SubjectID:   subjectID,
		Categories:  categories,
		PurposeText: purposeText,
		PurposeCode: purposeCode,
		Status:      StatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(duration),
		UpdatedAt:   now,
	}, nil
}

// CanTransitionTo validates whether a consent can move from its current status
// to the target status. Terminal states (Granted, Denied, Expired, Revoked) do
// not allow any further transitions.
//
// Valid transitions are:
//   - Pending → Granted, Denied, Expired, Revoked
func (c *ConsentRequest) CanTransitionTo(target ConsentStatus) error {
	switch c.Status {
	case StatusGranted, StatusDenied, StatusExpired, StatusRevoked:
		return NewInvalidTransitionError(c.Status, target)

	case StatusPending:
		switch target {
		case StatusGranted, StatusDenied, StatusExpired, StatusRevoked:
			return nil
		case StatusPending:
			// no-op transition, duplicate notification
			return nil
		}
	}
	return NewInvalidTransitionError(c.Status, target)
}

// TransitionTo applies a status change after validating it.
func (c *ConsentRequest) TransitionTo(target ConsentStatus) error {
	if err := c.CanTransitionTo(target); err != nil {
		return err
	}
	c.Status = target
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *ConsentRequest) IsTerminal() bool {
	switch c.Status {
	case StatusGranted, StatusDenied, StatusExpired, StatusRevoked:
		return true
	default:
		return false
	}
}

// IsExpiredAt reports whether a still-pending consent has outlived its window.
func (c *ConsentRequest) IsExpiredAt(now time.Time) bool {
	return c.Status == StatusPending && now.After(c.ExpiresAt)
}

// SetRemoteID records the network-assigned identifier. It may be set at most
// once; a second call with a different value is rejected.
func (c *ConsentRequest) SetRemoteID(remoteID string) error {
	if c.RemoteID != nil {
		if *c.RemoteID == remoteID {
			return nil
		}
		return ErrRemoteIDImmutable
	}
	c.RemoteID = &remoteID
	c.UpdatedAt = time.Now().UTC()
	return nil
}
