package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/application/services/testhelpers"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/persistence/postgres"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConsentStoreTestSuite struct {
	suite.Suite
	testDB       *testhelpers.TestDatabase
	consentStore *postgres.ConsentStore
	sessionStore *postgres.SessionStore
}

func TestConsentStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed store tests in short mode")
	}
	suite.Run(t, new(ConsentStoreTestSuite))
}

func (suite *ConsentStoreTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.consentStore = postgres.NewConsentStore(suite.testDB.DB)
	suite.sessionStore = postgres.NewSessionStore(suite.testDB.DB)
}

func (suite *ConsentStoreTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *ConsentStoreTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
}

func (suite *ConsentStoreTestSuite) Test_SaveAndFindByHandle() {
	t := suite.T()
	ctx := context.Background()
	consent := testhelpers.NewPendingConsent(t)

	require.NoError(t, suite.consentStore.Save(ctx, consent))

	found, err := suite.consentStore.FindByHandle(ctx, consent.Handle)
	require.NoError(t, err)

	assert.Equal(t, consent.Handle, found.Handle)
	assert.Equal(t, consent.SubjectID, found.SubjectID)
	assert.Equal(t, consent.Categories, found.Categories)
	assert.Equal(t, domain.StatusPending, found.Status)
	assert.Nil(t, found.RemoteID)
	assert.WithinDuration(t, consent.ExpiresAt, found.ExpiresAt, time.Millisecond)
}

func (suite *ConsentStoreTestSuite) Test_FindByHandle_NotFound() {
	t := suite.T()

	_, err := suite.consentStore.FindByHandle(context.Background(), "550e8400-e29b-41d4-a716-446655440000")

	assert.ErrorIs(t, err, application.ErrConsentNotFound)
}

func (suite *ConsentStoreTestSuite) Test_Update_SetsRemoteIDAndFindsByIt() {
	t := suite.T()
	ctx := context.Background()
	consent := testhelpers.NewPendingConsent(t)
	require.NoError(t, suite.consentStore.Save(ctx, consent))

	updated, err := suite.consentStore.Update(ctx, consent.Handle, func(c *domain.ConsentRequest) error {
		if err := c.SetRemoteID("remote-1"); err != nil {
			return err
		}
		url := "https://aa.example.com/approve/remote-1"
		c.ApprovalURL = &url
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, updated.RemoteID)

	found, err := suite.consentStore.FindByRemoteID(ctx, "remote-1")
	require.NoError(t, err)
	assert.Equal(t, consent.Handle, found.Handle)
	require.NotNil(t, found.ApprovalURL)
	assert.Equal(t, "https://aa.example.com/approve/remote-1", *found.ApprovalURL)
}

func (suite *ConsentStoreTestSuite) Test_Update_DuplicateRemoteIDConflicts() {
	t := suite.T()
	ctx := context.Background()

	first := testhelpers.NewPendingConsent(t)
	require.NoError(t, suite.consentStore.Save(ctx, first))
	_, err := suite.consentStore.Update(ctx, first.Handle, func(c *domain.ConsentRequest) error {
		return c.SetRemoteID("remote-dup")
	})
	require.NoError(t, err)

	second := testhelpers.NewPendingConsent(t)
	require.NoError(t, suite.consentStore.Save(ctx, second))
	_, err = suite.consentStore.Update(ctx, second.Handle, func(c *domain.ConsentRequest) error {
		return c.SetRemoteID("remote-dup")
	})
	require.ErrorIs(t, err, application.ErrRemoteIDConflict)

	found, err := suite.consentStore.FindByHandle(ctx, second.Handle)
	require.NoError(t, err)
	assert.Nil(t, found.RemoteID)
}

func (suite *ConsentStoreTestSuite) Test_Update_RejectedMutationRollsBack() {
	t := suite.T()
	ctx := context.Background()
	consent := testhelpers.NewGrantedConsent(t)
	require.NoError(t, suite.consentStore.Save(ctx, consent))

	_, err := suite.consentStore.Update(ctx, consent.Handle, func(c *domain.ConsentRequest) error {
		return c.TransitionTo(domain.StatusRevoked)
	})
	require.Error(t, err)

	found, err := suite.consentStore.FindByHandle(ctx, consent.Handle)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusGranted, found.Status)
}

func (suite *ConsentStoreTestSuite) Test_Update_ConcurrentTransitionsSerialized() {
	t := suite.T()
	ctx := context.Background()
	consent := testhelpers.NewPendingConsent(t)
	require.NoError(t, suite.consentStore.Save(ctx, consent))

	const goroutines = 10
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.consentStore.Update(ctx, consent.Handle, func(c *domain.ConsentRequest) error {
				return c.TransitionTo(domain.StatusGranted)
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	found, err := suite.consentStore.FindByHandle(ctx, consent.Handle)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusGranted, found.Status)
}

func (suite *ConsentStoreTestSuite) Test_FindExpiring() {
	t := suite.T()
	ctx := context.Background()

	makeConsent := func(expiresIn time.Duration) *domain.ConsentRequest {
		c := testhelpers.NewPendingConsent(t)
		c.ExpiresAt = time.Now().UTC().Add(expiresIn)
		c.CreatedAt = c.ExpiresAt.Add(-30 * 24 * time.Hour)
		require.NoError(t, suite.consentStore.Save(ctx, c))
		return c
	}

	overdue := makeConsent(-time.Hour)
	moreOverdue := makeConsent(-2 * time.Hour)
	makeConsent(time.Hour) // still inside its window

	granted := testhelpers.NewGrantedConsent(t)
	granted.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	granted.CreatedAt = granted.ExpiresAt.Add(-30 * 24 * time.Hour)
	require.NoError(t, suite.consentStore.Save(ctx, granted))

	expiring, err := suite.consentStore.FindExpiring(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)

	require.Len(t, expiring, 2)
	assert.Equal(t, moreOverdue.Handle, expiring[0].Handle)
	assert.Equal(t, overdue.Handle, expiring[1].Handle)

	limited, err := suite.consentStore.FindExpiring(ctx, time.Now().UTC(), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, moreOverdue.Handle, limited[0].Handle)
}

func (suite *ConsentStoreTestSuite) Test_SessionStore_RoundTrip() {
	t := suite.T()
	ctx := context.Background()

	consent := testhelpers.NewGrantedConsent(t)
	require.NoError(t, suite.consentStore.Save(ctx, consent))

	session := testhelpers.NewFetchSessionFor(consent)
	require.NoError(t, suite.sessionStore.Save(ctx, session))

	found, err := suite.sessionStore.FindByID(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, consent.Handle, found.ConsentHandle)
	assert.False(t, found.Fetched)
	assert.Empty(t, found.Records)

	amount := decimal.RequireFromString("250.00")
	txnID := "txn-1"
	updated, err := suite.sessionStore.Update(ctx, session.SessionID, func(s *domain.FetchSession) error {
		s.Fetched = true
		s.Records = []domain.NormalizedRecord{{
			AccountID:      "acc-1",
			AccountType:    "SAVINGS",
			Currency:       "INR",
			CurrentBalance: decimal.RequireFromString("1500.25"),
			TransactionID:  &txnID,
			Amount:         &amount,
		}}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.Fetched)

	found, err = suite.sessionStore.FindByID(ctx, session.SessionID)
	require.NoError(t, err)
	assert.True(t, found.Fetched)
	require.Len(t, found.Records, 1)

	record := found.Records[0]
	assert.Equal(t, "acc-1", record.AccountID)
	assert.True(t, record.CurrentBalance.Equal(decimal.RequireFromString("1500.25")))
	require.NotNil(t, record.Amount)
	assert.True(t, record.Amount.Equal(amount))
	require.NotNil(t, record.TransactionID)
	assert.Equal(t, "txn-1", *record.TransactionID)
}

func (suite *ConsentStoreTestSuite) Test_SessionStore_NotFound() {
	t := suite.T()

	_, err := suite.sessionStore.FindByID(context.Background(), "no-such-session")

	assert.ErrorIs(t, err, application.ErrSessionNotFound)
}
