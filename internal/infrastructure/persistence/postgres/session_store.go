package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `session_id, consent_handle, requested_at, range_from, range_to, fetched, records`

// SessionStore persists fetch sessions. The normalized records are stored as
// a JSONB document; they are written once when the session completes and only
// ever read back whole.
type SessionStore struct {
	db *DB
}

func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Save(ctx context.Context, session *domain.FetchSession) error {
	records, err := json.Marshal(session.Records)
	if err != nil {
		return fmt.Errorf("marshal session records: %w", err)
	}

	query := `
		INSERT INTO fetch_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.Pool.Exec(ctx, query,
		session.SessionID,
		session.ConsentHandle,
		session.RequestedAt,
		session.RangeFrom,
		session.RangeTo,
		session.Fetched,
		records,
	)
	if err != nil {
		return fmt.Errorf("failed to create fetch session: %w", err)
	}

	return nil
}

func (s *SessionStore) FindByID(ctx context.Context, sessionID string) (*domain.FetchSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM fetch_sessions WHERE session_id = $1`
	return findSession(ctx, s.db.Pool, query, sessionID)
}

func (s *SessionStore) Update(ctx context.Context, sessionID string, fn func(*domain.FetchSession) error) (*domain.FetchSession, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + sessionColumns + ` FROM fetch_sessions WHERE session_id = $1 FOR UPDATE`
	session, err := findSession(ctx, tx, query, sessionID)
	if err != nil {
		return nil, err
	}

	if err := fn(session); err != nil {
		return nil, err
	}

	records, err := json.Marshal(session.Records)
	if err != nil {
		return nil, fmt.Errorf("marshal session records: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE fetch_sessions
		SET fetched = $2, records = $3
		WHERE session_id = $1
	`, session.SessionID, session.Fetched, records)
	if err != nil {
		return nil, fmt.Errorf("failed to update fetch session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update tx: %w", err)
	}

	return session, nil
}

func findSession(ctx context.Context, ex Executor, query string, args ...any) (*domain.FetchSession, error) {
	return scanSession(ex.QueryRow(ctx, query, args...))
}

func scanSession(row pgx.Row) (*domain.FetchSession, error) {
	var (
		session domain.FetchSession
		records []byte
	)
	err := row.Scan(
		&session.SessionID,
		&session.ConsentHandle,
		&session.RequestedAt,
		&session.RangeFrom,
		&session.RangeTo,
		&session.Fetched,
		&records,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan fetch session: %w", err)
	}

	if len(records) > 0 {
		if err := json.Unmarshal(records, &session.Records); err != nil {
			return nil, fmt.Errorf("unmarshal session records: %w", err)
		}
	}
	return &session, nil
}
