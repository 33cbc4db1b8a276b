package testhelpers

import (
	"testing"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application/services"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewPendingConsent returns a freshly created consent awaiting approval.
func NewPendingConsent(t *testing.T) *domain.ConsentRequest {
	consent, err := domain.NewConsentRequest(
		"subject-"+uuid.New().String(),
		[]string{"DEPOSIT"},
		"Account aggregation",
		"101",
		30*24*time.Hour,
	)
	require.NoError(t, err)
	return consent
}

// NewGrantedConsent returns a consent that has been registered with the
// network and approved by the subject.
func NewGrantedConsent(t *testing.T) *domain.ConsentRequest {
	consent := NewPendingConsent(t)

	remoteID := "remote-" + uuid.New().String()
	require.NoError(t, consent.SetRemoteID(remoteID))
	require.NoError(t, consent.TransitionTo(domain.StatusGranted))

	return consent
}

// NewFetchSessionFor returns an unfetched session tied to the given consent.
func NewFetchSessionFor(consent *domain.ConsentRequest) *domain.FetchSession {
	now := time.Now().UTC()
	return domain.NewFetchSession(
		"session-"+uuid.New().String(),
		consent.Handle,
		now.Add(-30*24*time.Hour),
		now,
	)
}

// DefaultCreateConsentCommand returns a valid consent creation command.
func DefaultCreateConsentCommand() services.CreateConsentCommand {
	return services.CreateConsentCommand{
		SubjectID:  "subject-" + uuid.New().String(),
		Categories: []string{"DEPOSIT"},
		Purpose:    "Account aggregation",
		Duration:   30 * 24 * time.Hour,
	}
}
