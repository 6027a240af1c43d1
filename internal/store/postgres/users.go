package postgres

import (
	"context"
	"errors"

	"StravaFriendsDashboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenSealer encrypts tokens at rest. auth.TokenSealer implements it.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(stored string) (string, error)
}

type plainSealer struct{}

func (plainSealer) Seal(s string) (string, error) { return s, nil }
func (plainSealer) Open(s string) (string, error) { return s, nil }

type UsersStore struct {
	pool   *pgxpool.Pool
	sealer TokenSealer
}

func NewUsersStore(pool *pgxpool.Pool, sealer TokenSealer) *UsersStore {
	if sealer == nil {
		sealer = plainSealer{}
	}
	return &UsersStore{pool: pool, sealer: sealer}
}

// UpsertUser inserts the user or overwrites its mutable fields.
func (s *UsersStore) UpsertUser(ctx context.Context, u domain.User) error {
	const q = `
		INSERT INTO users (id, name, image, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			image = EXCLUDED.image,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()
	`

	access, err := s.sealer.Seal(u.AccessToken)
	if err != nil {
		return storeErr("seal access token", err)
	}
	refresh, err := s.sealer.Seal(u.RefreshToken)
	if err != nil {
		return storeErr("seal refresh token", err)
	}

	if _, err := s.pool.Exec(ctx, q, u.ID, u.Name, u.Image, access, refresh, u.ExpiresAt); err != nil {
		return storeErr("upsert user", err)
	}
	return nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const q = `
		SELECT id, name, image, access_token, refresh_token, expires_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var (
		u       domain.User
		access  string
		refresh string
	)
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&u.ID,
		&u.Name,
		&u.Image,
		&access,
		&refresh,
		&u.ExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, storeErr("get user by id", err)
	}

	if u.AccessToken, err = s.sealer.Open(access); err != nil {
		return domain.User{}, storeErr("open access token", err)
	}
	if u.RefreshToken, err = s.sealer.Open(refresh); err != nil {
		return domain.User{}, storeErr("open refresh token", err)
	}
	return u, nil
}
