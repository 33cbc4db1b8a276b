package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingConsent(t *testing.T) *domain.ConsentRequest {
	t.Helper()
	consent, err := domain.NewConsentRequest(
		"user-42",
		[]string{"DEPOSIT"},
		"Account aggregation",
		"101",
		30*24*time.Hour,
	)
	require.NoError(t, err)
	return consent
}

func TestNewConsentRequest(t *testing.T) {
	t.Run("creates pending consent successfully", func(t *testing.T) {
		consent, err := domain.NewConsentRequest(
			"user-42",
			[]string{"DEPOSIT", "TERM_DEPOSIT"},
			"Account aggregation",
			"101",
			30*24*time.Hour,
		)

		require.NoError(t, err)
		assert.NotEmpty(t, consent.Handle)
		assert.Equal(t, "user-42", consent.SubjectID)
		assert.Equal(t, []string{"DEPOSIT", "TERM_DEPOSIT"}, consent.Categories)
		assert.Equal(t, domain.StatusPending, consent.Status)
		assert.Nil(t, consent.RemoteID)
		assert.NotZero(t, consent.CreatedAt)
		assert.Equal(t, consent.CreatedAt.Add(30*24*time.Hour), consent.ExpiresAt)
	})

	t.Run("issues a unique handle per consent", func(t *testing.T) {
		first := newPendingConsent(t)
		second := newPendingConsent(t)

		assert.NotEqual(t, first.Handle, second.Handle)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		_, err := domain.NewConsentRequest("", []string{"DEPOSIT"}, "p", "101", time.Hour)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingSubject)
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		_, err := domain.NewConsentRequest("user-42", []string{"DEPOSIT"}, "p", "101", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)

		_, err = domain.NewConsentRequest("user-42", []string{"DEPOSIT"}, "p", "101", -time.Hour)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	})
}

func TestConsentRequest_TransitionTo(t *testing.T) {
	targets := []domain.ConsentStatus{
		domain.StatusGranted,
		domain.StatusDenied,
		domain.StatusExpired,
		domain.StatusRevoked,
	}

	t.Run("pending can reach every terminal status", func(t *testing.T) {
		for _, target := range targets {
			consent := newPendingConsent(t)

			require.NoError(t, consent.TransitionTo(target))
			assert.Equal(t, target, consent.Status)
			assert.True(t, consent.IsTerminal())
		}
	})

	t.Run("pending to pending is a no-op", func(t *testing.T) {
		consent := newPendingConsent(t)

		require.NoError(t, consent.TransitionTo(domain.StatusPending))
		assert.Equal(t, domain.StatusPending, consent.Status)
	})

	t.Run("terminal statuses allow no further transitions", func(t *testing.T) {
		for _, from := range targets {
			for _, to := range append(targets, domain.StatusPending) {
				consent := newPendingConsent(t)
				require.NoError(t, consent.TransitionTo(from))

				err := consent.TransitionTo(to)

				require.Error(t, err, "expected %s -> %s to be rejected", from, to)
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.Equal(t, from, consent.Status)
			}
		}
	})

	t.Run("random notification sequences settle on the first terminal status", func(t *testing.T) {
		// Webhooks arrive duplicated and out of order. Whatever the order,
		// the first terminal status wins and everything after is rejected
		// without changing the record.
		rng := rand.New(rand.NewSource(1))

		for range 100 {
			consent := newPendingConsent(t)
			var settled domain.ConsentStatus

			for range 20 {
				target := targets[rng.Intn(len(targets))]
				err := consent.TransitionTo(target)

				if settled == "" {
					require.NoError(t, err)
					settled = target
					continue
				}
				require.Error(t, err)
			}

			assert.Equal(t, settled, consent.Status)
		}
	})
}

func TestConsentRequest_IsExpiredAt(t *testing.T) {
	t.Run("pending consent past its window is expired", func(t *testing.T) {
		consent := newPendingConsent(t)

		assert.False(t, consent.IsExpiredAt(consent.ExpiresAt.Add(-time.Minute)))
		assert.True(t, consent.IsExpiredAt(consent.ExpiresAt.Add(time.Minute)))
	})

	t.Run("granted consent is never reported expired", func(t *testing.T) {
		consent := newPendingConsent(t)
		require.NoError(t, consent.TransitionTo(domain.StatusGranted))

		assert.False(t, consent.IsExpiredAt(consent.ExpiresAt.Add(time.Hour)))
	})
}

func TestConsentRequest_SetRemoteID(t *testing.T) {
	t.Run("sets the id once", func(t *testing.T) {
		consent := newPendingConsent(t)

		require.NoError(t, consent.SetRemoteID("remote-1"))
		require.NotNil(t, consent.RemoteID)
		assert.Equal(t, "remote-1", *consent.RemoteID)
	})

	t.Run("repeating the same id is a no-op", func(t *testing.T) {
		consent := newPendingConsent(t)
		require.NoError(t, consent.SetRemoteID("remote-1"))

		require.NoError(t, consent.SetRemoteID("remote-1"))
		assert.Equal(t, "remote-1", *consent.RemoteID)
	})

	t.Run("rejects a different id", func(t *testing.T) {
		consent := newPendingConsent(t)
		require.NoError(t, consent.SetRemoteID("remote-1"))

		err := consent.SetRemoteID("remote-2")

		assert.ErrorIs(t, err, domain.ErrRemoteIDImmutable)
		assert.Equal(t, "remote-1", *consent.RemoteID)
	})
}

func TestStatusFromRemote(t *testing.T) {
	cases := map[string]domain.ConsentStatus{
		"ACTIVE":   domain.StatusGranted,
		"PAUSED":   domain.StatusPending,
		"PENDING":  domain.StatusPending,
		"REVOKED":  domain.StatusRevoked,
		"EXPIRED":  domain.StatusExpired,
		"REJECTED": domain.StatusDenied,
	}

	for remote, want := range cases {
		assert.Equal(t, want, domain.StatusFromRemote(remote), "remote status %s", remote)
	}

	t.Run("tolerates casing and whitespace", func(t *testing.T) {
		assert.Equal(t, domain.StatusGranted, domain.StatusFromRemote(" active "))
		assert.Equal(t, domain.StatusRevoked, domain.StatusFromRemote("Revoked"))
	})

	t.Run("unknown vocabulary fails closed to pending", func(t *testing.T) {
		assert.Equal(t, domain.StatusPending, domain.StatusFromRemote("SUSPENDED"))
		assert.Equal(t, domain.StatusPending, domain.StatusFromRemote(""))
	})
}
