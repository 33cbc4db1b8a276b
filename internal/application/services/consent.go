package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/config"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/aa"
)

// ConsentService owns the consent lifecycle: creation, status reconciliation
// against the network, and webhook ingestion. All writes go through the
// store's Update so that concurrent polling and webhook delivery for the same
// handle are serialized.
type ConsentService struct {
	consents application.ConsentStore
	client   aa.Client
	cfg      config.ConsentConfig
	logger   *slog.Logger
}

func NewConsentService(
	consents application.ConsentStore,
	client aa.Client,
	cfg config.ConsentConfig,
	logger *slog.Logger,
) *ConsentService {
	return &ConsentService{
		consents: consents,
		client:   client,
		cfg:      cfg,
		logger:   logger,
	}
}

type CreateConsentCommand struct {
	SubjectID  string
	Categories []string
	Purpose    string
	Duration   time.Duration
}

// CreateConsent registers a new consent with the aggregator network in two
// phases: the PENDING record is persisted first, then the network is called,
// then the outcome is reconciled onto the record. A crash between the phases
// leaves an inspectable PENDING consent with no remote id rather than a
// silently lost one. If the network call fails the consent is moved to DENIED
// and the failure is surfaced.
func (s *ConsentService) CreateConsent(ctx context.Context, cmd CreateConsentCommand) (*domain.ConsentRequest, error) {
	categories := cmd.Categories
	if len(categories) == 0 {
		categories = s.cfg.Categories()
	}
	purpose := cmd.Purpose
	if purpose == "" {
		purpose = s.cfg.PurposeText
	}
	duration := cmd.Duration
	if duration == 0 {
		duration = s.cfg.DefaultDuration
	}

	consent, err := domain.NewConsentRequest(cmd.SubjectID, categories, purpose, s.cfg.PurposeCode, duration)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	if err := s.consents.Save(ctx, consent); err != nil {
		return nil, application.NewInternalError(err)
	}

	now := time.Now().UTC()
	resp, err := s.client.CreateConsent(ctx, aa.ConsentCreateRequest{
		SubjectID:   consent.SubjectID,
		Categories:  consent.Categories,
		PurposeText: consent.PurposeText,
		PurposeCode: consent.PurposeCode,
		Start:       consent.CreatedAt,
		Expiry:      consent.ExpiresAt,
		RangeFrom:   now.Add(-s.cfg.Lookback),
		RangeTo:     now,
	})
	if err != nil {
		svcErr := mapNetworkError(err)
		svcErr.ConsentStatus = domain.StatusDenied

		// The network never acknowledged this consent, so it must not
		// linger as PENDING. The write must survive a fired deadline.
		denied, updateErr := s.consents.Update(context.WithoutCancel(ctx), consent.Handle, func(c *domain.ConsentRequest) error {
			return c.TransitionTo(domain.StatusDenied)
		})
		if updateErr != nil {
			s.logger.Error("failed to deny unacknowledged consent",
				"handle", consent.Handle,
				"error", updateErr)
			return consent, svcErr
		}

		s.logger.Warn("consent creation rejected",
			"handle", consent.Handle,
			"subject_id", consent.SubjectID,
			"error", err)
		return denied, svcErr
	}

	created, err := s.consents.Update(ctx, consent.Handle, func(c *domain.ConsentRequest) error {
		if err := c.SetRemoteID(resp.RemoteID); err != nil {
			return err
		}
		c.ApprovalURL = &resp.ApprovalURL
		return nil
	})
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("consent created",
		"handle", created.Handle,
		"remote_id", resp.RemoteID,
		"subject_id", created.SubjectID,
		"expires_at", created.ExpiresAt)

	return created, nil
}

// GetStatus returns the consent in its current status, reconciling against
// the network when the local record is still PENDING. Terminal statuses are
// cached and never re-queried. A pending consent past its expiry is moved to
// EXPIRED without consulting the network; even a remote ACTIVE cannot revive
// it.
func (s *ConsentService) GetStatus(ctx context.Context, handle string) (*domain.ConsentRequest, error) {
	consent, err := s.findByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	if consent.IsTerminal() {
		return consent, nil
	}

	if consent.IsExpiredAt(time.Now().UTC()) {
		return s.consents.Update(ctx, handle, applyRemoteStatus(domain.StatusExpired))
	}

	if consent.RemoteID == nil {
		// Created locally but never acknowledged by the network; nothing
		// to reconcile against.
		s.logger.Warn("consent has no remote id, skipping reconciliation", "handle", handle)
		return consent, nil
	}

	remote, err := s.client.GetConsentStatus(ctx, *consent.RemoteID)
	if err != nil {
		// Cached status stays untouched: a network failure is not a denial.
		svcErr := mapNetworkError(err)
		svcErr.ConsentStatus = consent.Status
		return nil, svcErr
	}

	mapped := domain.StatusFromRemote(remote)
	updated, err := s.consents.Update(ctx, handle, applyRemoteStatus(mapped))
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	if updated.Status != consent.Status {
		s.logger.Info("consent status reconciled",
			"handle", handle,
			"remote_status", remote,
			"status", updated.Status)
	}

	return updated, nil
}

// IngestWebhook applies an asynchronous status notification from the network.
// Webhooks arrive out of order and duplicated; applying the same notification
// twice is a no-op, and notifications for consents already in a terminal
// status are discarded.
func (s *ConsentService) IngestWebhook(ctx context.Context, remoteID, remoteStatus string) (*domain.ConsentRequest, error) {
	consent, err := s.consents.FindByRemoteID(ctx, remoteID)
	if err != nil {
		return nil, application.NewNotFoundError("consent", remoteID)
	}

	if consent.IsTerminal() {
		return consent, nil
	}

	mapped := domain.StatusFromRemote(remoteStatus)
	updated, err := s.consents.Update(ctx, consent.Handle, applyRemoteStatus(mapped))
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("webhook applied",
		"remote_id", remoteID,
		"remote_status", remoteStatus,
		"status", updated.Status)

	return updated, nil
}

func (s *ConsentService) findByHandle(ctx context.Context, handle string) (*domain.ConsentRequest, error) {
	consent, err := s.consents.FindByHandle(ctx, handle)
	if err != nil {
		return nil, application.NewNotFoundError("consent", handle)
	}
	return consent, nil
}

// applyRemoteStatus builds the reconciliation step shared by polling and
// webhook ingestion. Terminal statuses never move, local expiry takes
// precedence over whatever the network reports, and a mapped PENDING leaves
// the record as it is.
func applyRemoteStatus(mapped domain.ConsentStatus) func(*domain.ConsentRequest) error {
	return func(c *domain.ConsentRequest) error {
		if c.IsTerminal() {
			return nil
		}
		if c.IsExpiredAt(time.Now().UTC()) {
			return c.TransitionTo(domain.StatusExpired)
		}
		if mapped == domain.StatusPending {
			return nil
		}
		return c.TransitionTo(mapped)
	}
}
