package service

import (
	"context"
	"time"

	"StravaFriendsDashboard/internal/domain"
)

type UsersStore interface {
	UpsertUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type SessionsStore interface {
	CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error)
	GetSession(ctx context.Context, sessionID string) (domain.StoredSession, error)
	RevokeSession(ctx context.Context, sessionID string, when time.Time) error
}

type ActivitiesStore interface {
	LatestStartDate(ctx context.Context, userID string) (time.Time, bool, error)
	ExistingActivityIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	InsertActivities(ctx context.Context, activities []domain.Activity) (int, error)
	ListActivities(ctx context.Context, userID string, limit, offset int) ([]domain.Activity, error)
	ListActivitiesSince(ctx context.Context, userID string, since time.Time) ([]domain.Activity, error)
	CountActivities(ctx context.Context, userID string) (int, error)
}

type FriendsStore interface {
	CreateFriend(ctx context.Context, f domain.FriendLink) (domain.FriendLink, error)
	ListFriends(ctx context.Context, userID string) ([]domain.FriendLink, error)
	GetFriend(ctx context.Context, userID, friendID string) (domain.FriendLink, error)
	DeleteFriend(ctx context.Context, userID, friendID string) (int64, error)
}

// ActivitySource is the remote service activities are imported from.
type ActivitySource interface {
	GetAthlete(ctx context.Context, accessToken string) (domain.Athlete, error)
	ListActivities(ctx context.Context, accessToken string, page, perPage int, after time.Time) ([]domain.Activity, error)
}

type EventPublisher interface {
	PublishActivitiesSynced(ctx context.Context, userID string, res domain.SyncResult) error
}
