package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"StravaFriendsDashboard/internal/domain"
)

var errUnexpected = errors.New("unexpected call")

// memUsers, memActivities and memFriends keep just enough state to exercise
// the services without a database.

type memUsers struct {
	mu      sync.Mutex
	users   map[string]domain.User
	upserts int
	err     error
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]domain.User{}} }

func (m *memUsers) UpsertUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.upserts++
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type memActivities struct {
	mu        sync.Mutex
	rows      map[string]domain.Activity
	inserts   int
	insertErr error
}

func newMemActivities(seed ...domain.Activity) *memActivities {
	m := &memActivities{rows: map[string]domain.Activity{}}
	for _, a := range seed {
		m.rows[a.ID] = a
	}
	return m
}

func (m *memActivities) LatestStartDate(_ context.Context, userID string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		latest time.Time
		ok     bool
	)
	for _, a := range m.rows {
		if a.UserID == userID && (!ok || a.StartDate.After(latest)) {
			latest, ok = a.StartDate, true
		}
	}
	return latest, ok, nil
}

func (m *memActivities) ExistingActivityIDs(_ context.Context, userID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]struct{}{}
	for id, a := range m.rows {
		if a.UserID == userID {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *memActivities) InsertActivities(_ context.Context, batch []domain.Activity) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserts++
	n := 0
	for _, a := range batch {
		if _, ok := m.rows[a.ID]; ok {
			continue
		}
		m.rows[a.ID] = a
		n++
	}
	return n, nil
}

func (m *memActivities) sorted(userID string) []domain.Activity {
	var out []domain.Activity
	for _, a := range m.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out
}

func (m *memActivities) ListActivities(_ context.Context, userID string, limit, offset int) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(userID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memActivities) ListActivitiesSince(_ context.Context, userID string, since time.Time) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Activity
	for _, a := range m.sorted(userID) {
		if !a.StartDate.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memActivities) CountActivities(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sorted(userID)), nil
}

type memFriends struct {
	mu   sync.Mutex
	rows []domain.FriendLink
}

func (m *memFriends) CreateFriend(_ context.Context, f domain.FriendLink) (domain.FriendLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == f.UserID && r.FriendID == f.FriendID {
			return domain.FriendLink{}, domain.ErrFriendExists
		}
	}
	f.CreatedAt = time.Unix(int64(len(m.rows)), 0).UTC()
	m.rows = append(m.rows, f)
	return f, nil
}

func (m *memFriends) ListFriends(_ context.Context, userID string) ([]domain.FriendLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FriendLink
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memFriends) GetFriend(_ context.Context, userID, friendID string) (domain.FriendLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.FriendID == friendID {
			return r, nil
		}
	}
	return domain.FriendLink{}, domain.ErrNotFound
}

func (m *memFriends) DeleteFriend(_ context.Context, userID, friendID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.UserID == userID && r.FriendID == friendID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

// fakeSource serves pages from a function and records every request.
type fakeSource struct {
	athlete    domain.Athlete
	athleteErr error
	page       func(page int, after time.Time) ([]domain.Activity, error)

	mu       sync.Mutex
	requests []sourceRequest
}

type sourceRequest struct {
	page    int
	perPage int
	after   time.Time
}

func (f *fakeSource) GetAthlete(_ context.Context, _ string) (domain.Athlete, error) {
	return f.athlete, f.athleteErr
}

func (f *fakeSource) ListActivities(_ context.Context, _ string, page, perPage int, after time.Time) ([]domain.Activity, error) {
	f.mu.Lock()
	f.requests = append(f.requests, sourceRequest{page: page, perPage: perPage, after: after})
	f.mu.Unlock()
	if f.page == nil {
		return nil, nil
	}
	return f.page(page, after)
}

// makeRuns builds n runs whose IDs start at first, one hour apart from base.
func makeRuns(first, n int, base time.Time) []domain.Activity {
	out := make([]domain.Activity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Activity{
			ID:         strconv.Itoa(first + i),
			Name:       "Run " + strconv.Itoa(first+i),
			Type:       domain.ActivityTypeRun,
			Distance:   5000,
			MovingTime: 1500,
			StartDate:  base.Add(time.Duration(first+i) * time.Hour),
		})
	}
	return out
}

type stubPublisher struct {
	calls int
	err   error
}

func (p *stubPublisher) PublishActivitiesSynced(_ context.Context, _ string, _ domain.SyncResult) error {
	p.calls++
	return p.err
}
