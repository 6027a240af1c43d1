package service

import (
	"context"
	"time"

	"StravaFriendsDashboard/internal/domain"
	"StravaFriendsDashboard/internal/stats"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 200
)

type Pagination struct {
	Page            int `json:"page"`
	PerPage         int `json:"perPage"`
	TotalActivities int `json:"totalActivities"`
	TotalPages      int `json:"totalPages"`
}

type Dashboard struct {
	Stats      stats.FormattedSummary `json:"stats"`
	Activities []domain.Activity      `json:"activities"`
	Pagination Pagination             `json:"pagination"`
}

type FriendSeries struct {
	FriendID   string         `json:"friendId"`
	FriendName string         `json:"friendName"`
	Data       []stats.Bucket `json:"data"`
}

type Graphs struct {
	Period      stats.Period   `json:"period"`
	StartDate   time.Time      `json:"startDate"`
	UserData    []stats.Bucket `json:"userData"`
	FriendsData []FriendSeries `json:"friendsData"`
}

type StatsService struct {
	Activities ActivitiesStore
	Friends    FriendsStore
	Now        func() time.Time
}

// Dashboard returns one page of the user's activities, newest first, alongside
// the running summary over their whole history.
func (s *StatsService) Dashboard(ctx context.Context, userID string, page, perPage int) (Dashboard, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	rows, err := s.Activities.ListActivities(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return Dashboard{}, err
	}
	all, err := s.Activities.ListActivitiesSince(ctx, userID, time.Time{})
	if err != nil {
		return Dashboard{}, err
	}
	total, err := s.Activities.CountActivities(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	if rows == nil {
		rows = []domain.Activity{}
	}
	return Dashboard{
		Stats:      stats.Compute(all).Formatted(),
		Activities: rows,
		Pagination: Pagination{
			Page:            page,
			PerPage:         perPage,
			TotalActivities: total,
			TotalPages:      (total + perPage - 1) / perPage,
		},
	}, nil
}

// Graphs buckets the user's runs over the period window, and those of every
// friend who ran in it when includeFriends is set.
func (s *StatsService) Graphs(ctx context.Context, userID string, period stats.Period, includeFriends bool) (Graphs, error) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	since := period.Since(now)

	own, err := s.Activities.ListActivitiesSince(ctx, userID, since)
	if err != nil {
		return Graphs{}, err
	}
	out := Graphs{
		Period:      period,
		StartDate:   since,
		UserData:    stats.GroupByPeriod(own, period, now),
		FriendsData: []FriendSeries{},
	}
	if !includeFriends {
		return out, nil
	}

	friends, err := s.Friends.ListFriends(ctx, userID)
	if err != nil {
		return Graphs{}, err
	}
	for _, f := range friends {
		acts, err := s.Activities.ListActivitiesSince(ctx, f.FriendID, since)
		if err != nil {
			return Graphs{}, err
		}
		buckets := stats.GroupByPeriod(acts, period, now)
		if len(buckets) == 0 {
			continue
		}
		out.FriendsData = append(out.FriendsData, FriendSeries{
			FriendID:   f.FriendID,
			FriendName: f.FriendName,
			Data:       buckets,
		})
	}
	return out, nil
}
