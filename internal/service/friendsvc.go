package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"StravaFriendsDashboard/internal/domain"
	"StravaFriendsDashboard/internal/stats"
)

type FriendsService struct {
	Friends    FriendsStore
	Activities ActivitiesStore
	NewID      func() string
}

func (s *FriendsService) List(ctx context.Context, userID string) ([]domain.FriendLink, error) {
	out, err := s.Friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.FriendLink{}
	}
	return out, nil
}

func (s *FriendsService) Add(ctx context.Context, userID, friendID, friendName, friendImage string) (domain.FriendLink, error) {
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	friendID = strings.TrimSpace(friendID)
	friendName = strings.TrimSpace(friendName)
	fields := map[string]string{}
	if friendID == "" {
		fields["friendId"] = "required"
	}
	if friendName == "" {
		fields["friendName"] = "required"
	}
	if friendID != "" && friendID == userID {
		fields["friendId"] = "cannot add yourself"
	}
	if len(fields) > 0 {
		return domain.FriendLink{}, domain.NewValidationError(fields)
	}

	return s.Friends.CreateFriend(ctx, domain.FriendLink{
		ID:          newID(),
		UserID:      userID,
		FriendID:    friendID,
		FriendName:  friendName,
		FriendImage: strings.TrimSpace(friendImage),
	})
}

// Remove deletes every link from userID to friendID.
func (s *FriendsService) Remove(ctx context.Context, userID, friendID string) error {
	friendID = strings.TrimSpace(friendID)
	if friendID == "" {
		return domain.NewValidationError(map[string]string{"friendId": "required"})
	}

	n, err := s.Friends.DeleteFriend(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats summarizes a friend's stored runs. Only friends in the caller's list
// can be looked up.
func (s *FriendsService) Stats(ctx context.Context, userID, friendID string) (stats.FormattedSummary, error) {
	if _, err := s.Friends.GetFriend(ctx, userID, friendID); err != nil {
		return stats.FormattedSummary{}, err
	}

	acts, err := s.Activities.ListActivitiesSince(ctx, friendID, time.Time{})
	if err != nil {
		return stats.FormattedSummary{}, err
	}
	return stats.Compute(acts).Formatted(), nil
}
