package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/config"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/aa"
)

// FetchService drives the two-step request-then-fetch handshake for an
// approved consent and normalizes the payload into canonical records.
type FetchService struct {
	consents *ConsentService
	sessions application.SessionStore
	client   aa.Client
	cfg      config.ConsentConfig
	logger   *slog.Logger
}

func NewFetchService(
	consents *ConsentService,
	sessions application.SessionStore,
	client aa.Client,
	cfg config.ConsentConfig,
	logger *slog.Logger,
) *FetchService {
	return &FetchService{
		consents: consents,
		sessions: sessions,
		client:   client,
		cfg:      cfg,
		logger:   logger,
	}
}

// RequestData asks the network to start assembling data for a granted
// consent. The retrieval window is [now - lookback, now]. The consent status
// is reconciled first, so a consent that was granted (or revoked) since the
// last poll is seen in its current state.
func (s *FetchService) RequestData(ctx context.Context, handle string) (*domain.FetchSession, error) {
	consent, err := s.consents.GetStatus(ctx, handle)
	if err != nil {
		return nil, err
	}

	if consent.Status != domain.StatusGranted {
		return nil, application.NewConsentNotGrantedError(consent.Status)
	}

	if consent.RemoteID == nil {
		return nil, application.NewInternalError(fmt.Errorf("consent %s is GRANTED but has no remote id", handle))
	}

	now := time.Now().UTC()
	rangeFrom := now.Add(-s.cfg.Lookback)

	sessionID, err := s.client.RequestFetch(ctx, *consent.RemoteID, rangeFrom, now)
	if err != nil {
		return nil, mapNetworkError(err)
	}

	session := domain.NewFetchSession(sessionID, handle, rangeFrom, now)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("fetch session requested",
		"session_id", sessionID,
		"handle", handle,
		"range_from", rangeFrom,
		"range_to", now)

	return session, nil
}

// FetchData retrieves and normalizes the payload for a session. The network
// answers with a processing marker until the provider has assembled the data;
// that surfaces as a NotReady error for the caller to poll on. Once a session
// has been fetched its normalized records are cached on the session, so
// re-fetching is safe and returns the identical result.
func (s *FetchService) FetchData(ctx context.Context, sessionID string) ([]domain.NormalizedRecord, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, application.NewNotFoundError("fetch session", sessionID)
	}

	if session.Fetched {
		return session.Records, nil
	}

	payload, err := s.client.FetchSession(ctx, session.SessionID)
	if err != nil {
		return nil, mapNetworkError(err)
	}

	if !payload.Ready() {
		return nil, application.NewNotReadyError(sessionID)
	}

	records := NormalizeFIPayload(payload, s.logger)

	updated, err := s.sessions.Update(ctx, sessionID, func(fs *domain.FetchSession) error {
		if fs.Fetched {
			// A concurrent fetch won the race; keep its result.
			return nil
		}
		fs.Records = records
		fs.Fetched = true
		return nil
	})
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("fetch session completed",
		"session_id", sessionID,
		"handle", session.ConsentHandle,
		"records", len(updated.Records))

	return updated.Records, nil
}
