package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
)

// ExpirationWorker sweeps pending consents whose approval window has closed
// and marks them EXPIRED. GetStatus performs the same transition lazily on
// read; the worker only keeps the store from accumulating stale PENDING rows
// that nobody polls anymore.
type ExpirationWorker struct {
	consents  application.ConsentStore
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewExpirationWorker(
	consents application.ConsentStore,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		consents:  consents,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("expiration worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.processExpirations(ctx); err != nil {
		w.logger.Error("expiration processing failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopping")
			return
		case <-ticker.C:
			if err := w.processExpirations(ctx); err != nil {
				w.logger.Error("expiration processing failed", "error", err)
			}
		}
	}
}

func (w *ExpirationWorker) processExpirations(ctx context.Context) error {
	now := time.Now().UTC()

	expiring, err := w.consents.FindExpiring(ctx, now, w.batchSize)
	if err != nil {
		return err
	}

	if len(expiring) == 0 {
		return nil
	}

	var expired int

	for _, consent := range expiring {
		_, err := w.consents.Update(ctx, consent.Handle, func(c *domain.ConsentRequest) error {
			if !c.IsExpiredAt(now) {
				// The consent moved since the sweep query; leave it alone.
				return nil
			}
			return c.TransitionTo(domain.StatusExpired)
		})
		if err != nil {
			if application.IsRetryable(err) {
				// Left for the next sweep to pick up.
				w.logger.Warn("failed to expire consent, will retry next sweep",
					"handle", consent.Handle,
					"category", application.CategorizeError(err),
					"error", err)
			} else {
				w.logger.Error("failed to expire consent",
					"handle", consent.Handle,
					"category", application.CategorizeError(err),
					"error", err)
			}
			continue
		}
		expired++
	}

	w.logger.Info("processed expiration sweep",
		"candidates", len(expiring),
		"marked_expired", expired)

	return nil
}
