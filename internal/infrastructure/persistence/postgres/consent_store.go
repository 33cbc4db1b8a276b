package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

const consentColumns = `handle, subject_id, categories, purpose_text, purpose_code,
	       status, remote_id, approval_url, created_at, expires_at, updated_at`

// ConsentStore persists consents in PostgreSQL. Update runs inside a
// transaction with a row-level lock, which is what serializes concurrent
// mutations for the same handle.
type ConsentStore struct {
	db *DB
}

func NewConsentStore(db *DB) *ConsentStore {
	return &ConsentStore{db: db}
}

func (s *ConsentStore) Save(ctx context.Context, consent *domain.ConsentRequest) error {
	query := `
		INSERT INTO consents (` + consentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	m := toConsentModel(consent)
	_, err := s.db.Pool.Exec(ctx, query,
		m.Handle,
		m.SubjectID,
		m.Categories,
		m.PurposeText,
		m.PurposeCode,
		m.Status,
		m.RemoteID,
		m.ApprovalURL,
		m.CreatedAt,
		m.ExpiresAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return application.ErrRemoteIDConflict
		}
		return fmt.Errorf("failed to create consent: %w", err)
	}

	return nil
}

// FindByHandle retrieves a consent by its local handle
func (s *ConsentStore) FindByHandle(ctx context.Context, handle string) (*domain.ConsentRequest, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE handle = $1`
	return findConsent(ctx, s.db.Pool, query, handle)
}

// FindByRemoteID retrieves a consent by the network-assigned identifier
func (s *ConsentStore) FindByRemoteID(ctx context.Context, remoteID string) (*domain.ConsentRequest, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE remote_id = $1`
	return findConsent(ctx, s.db.Pool, query, remoteID)
}

// Update loads the consent under FOR UPDATE, applies fn, and writes the
// result back in the same transaction.
func (s *ConsentStore) Update(ctx context.Context, handle string, fn func(*domain.ConsentRequest) error) (*domain.ConsentRequest, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + consentColumns + ` FROM consents WHERE handle = $1 FOR UPDATE`
	consent, err := findConsent(ctx, tx, query, handle)
	if err != nil {
		return nil, err
	}

	if err := fn(consent); err != nil {
		return nil, err
	}

	m := toConsentModel(consent)
	_, err = tx.Exec(ctx, `
		UPDATE consents
		SET status = $2, remote_id = $3, approval_url = $4, updated_at = $5
		WHERE handle = $1
	`, m.Handle, m.Status, m.RemoteID, m.ApprovalURL, m.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, application.ErrRemoteIDConflict
		}
		return nil, fmt.Errorf("failed to update consent: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update tx: %w", err)
	}

	return consent, nil
}

// FindExpiring lists pending consents whose window closed before cutoff
func (s *ConsentStore) FindExpiring(ctx context.Context, cutoff time.Time, limit int) ([]*domain.ConsentRequest, error) {
	query := `
		SELECT ` + consentColumns + `
		FROM consents
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at
		LIMIT $3
	`

	rows, err := s.db.Pool.Query(ctx, query, string(domain.StatusPending), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query expiring consents: %w", err)
	}
	defer rows.Close()

	var consents []*domain.ConsentRequest
	for rows.Next() {
		consent, err := scanConsent(rows)
		if err != nil {
			return nil, err
		}
		consents = append(consents, consent)
	}
	return consents, rows.Err()
}

// findConsent runs a single-row lookup against either the pool or an open
// transaction.
func findConsent(ctx context.Context, ex Executor, query string, args ...any) (*domain.ConsentRequest, error) {
	return scanConsent(ex.QueryRow(ctx, query, args...))
}

func scanConsent(row pgx.Row) (*domain.ConsentRequest, error) {
	var m consentModel
	err := row.Scan(
		&m.Handle,
		&m.SubjectID,
		&m.Categories,
		&m.PurposeText,
		&m.PurposeCode,
		&m.Status,
		&m.RemoteID,
		&m.ApprovalURL,
		&m.CreatedAt,
		&m.ExpiresAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrConsentNotFound
		}
		return nil, fmt.Errorf("scan consent: %w", err)
	}
	return m.toDomain(), nil
}
