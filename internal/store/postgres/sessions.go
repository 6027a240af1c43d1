package postgres

import (
	"context"
	"errors"
	"time"

	"StravaFriendsDashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionsStore struct {
	pool *pgxpool.Pool
}

func NewSessionsStore(pool *pgxpool.Pool) *SessionsStore {
	return &SessionsStore{pool: pool}
}

func (s *SessionsStore) CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error) {
	const q = `
		INSERT INTO sessions (user_id, expires_at, ip, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var idUUID pgtype.UUID
	err := s.pool.QueryRow(ctx, q, userID, expiresAt, nullIfEmpty(ip), nullIfEmpty(userAgent)).Scan(&idUUID)
	if err != nil {
		return "", storeErr("create session", err)
	}

	return uuidOrEmpty(idUUID), nil
}

func (s *SessionsStore) GetSession(ctx context.Context, sessionID string) (domain.StoredSession, error) {
	const q = `
		SELECT id, user_id, created_at, expires_at, revoked_at
		FROM sessions
		WHERE id = $1 AND revoked_at IS NULL AND expires_at > now()
	`

	if _, err := uuid.Parse(sessionID); err != nil {
		return domain.StoredSession{}, domain.ErrNotFound
	}

	var (
		sess      domain.StoredSession
		idUUID    pgtype.UUID
		revokedTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, sessionID).Scan(
		&idUUID,
		&sess.UserID,
		&sess.CreatedAt,
		&sess.ExpiresAt,
		&revokedTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StoredSession{}, domain.ErrNotFound
		}
		return domain.StoredSession{}, storeErr("get session", err)
	}

	sess.ID = uuidOrEmpty(idUUID)
	sess.RevokedAt = timestamptzPtr(revokedTS)
	return sess, nil
}

func (s *SessionsStore) RevokeSession(ctx context.Context, sessionID string, when time.Time) error {
	const q = `
		UPDATE sessions
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`

	if _, err := uuid.Parse(sessionID); err != nil {
		return nil
	}

	_, err := s.pool.Exec(ctx, q, sessionID, when)
	if err != nil {
		return storeErr("revoke session", err)
	}
	return nil
}
