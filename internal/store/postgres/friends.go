package postgres

import (
	"context"
	"errors"

	"StravaFriendsDashboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FriendsStore struct {
	pool *pgxpool.Pool
}

func NewFriendsStore(pool *pgxpool.Pool) *FriendsStore {
	return &FriendsStore{pool: pool}
}

// CreateFriend stores the link. The (user_id, friend_id) pair is unique.
func (s *FriendsStore) CreateFriend(ctx context.Context, f domain.FriendLink) (domain.FriendLink, error) {
	const q = `
		INSERT INTO friends (id, user_id, friend_id, friend_name, friend_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := s.pool.QueryRow(ctx, q, f.ID, f.UserID, f.FriendID, f.FriendName, f.FriendImage).Scan(&f.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "friends_pair_uq") {
			return domain.FriendLink{}, domain.ErrFriendExists
		}
		return domain.FriendLink{}, storeErr("create friend", err)
	}
	return f, nil
}

func (s *FriendsStore) ListFriends(ctx context.Context, userID string) ([]domain.FriendLink, error) {
	const q = `
		SELECT id, user_id, friend_id, friend_name, friend_image, created_at
		FROM friends
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, storeErr("list friends", err)
	}
	defer rows.Close()

	var out []domain.FriendLink
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, storeErr("scan friend", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list friends", err)
	}
	return out, nil
}

func (s *FriendsStore) GetFriend(ctx context.Context, userID, friendID string) (domain.FriendLink, error) {
	const q = `
		SELECT id, user_id, friend_id, friend_name, friend_image, created_at
		FROM friends
		WHERE user_id = $1 AND friend_id = $2
	`

	f, err := scanFriend(s.pool.QueryRow(ctx, q, userID, friendID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FriendLink{}, domain.ErrNotFound
		}
		return domain.FriendLink{}, storeErr("get friend", err)
	}
	return f, nil
}

// DeleteFriend removes every link for the pair and returns how many went.
func (s *FriendsStore) DeleteFriend(ctx context.Context, userID, friendID string) (int64, error) {
	const q = `DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`

	ct, err := s.pool.Exec(ctx, q, userID, friendID)
	if err != nil {
		return 0, storeErr("delete friend", err)
	}
	return ct.RowsAffected(), nil
}

func scanFriend(row pgx.Row) (domain.FriendLink, error) {
	var (
		f      domain.FriendLink
		idUUID pgtype.UUID
	)
	if err := row.Scan(&idUUID, &f.UserID, &f.FriendID, &f.FriendName, &f.FriendImage, &f.CreatedAt); err != nil {
		return domain.FriendLink{}, err
	}
	f.ID = uuidOrEmpty(idUUID)
	return f, nil
}
