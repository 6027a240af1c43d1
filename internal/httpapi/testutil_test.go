package httpapi

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"StravaFriendsDashboard/internal/auth"
	"StravaFriendsDashboard/internal/domain"
	"StravaFriendsDashboard/internal/service"
)

// memStore backs every store interface the services need.
type memStore struct {
	mu         sync.Mutex
	users      map[string]domain.User
	sessions   map[string]domain.StoredSession
	activities map[string]domain.Activity
	friends    []domain.FriendLink
	nextID     int
	revokeErr  error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]domain.User{},
		sessions:   map[string]domain.StoredSession{},
		activities: map[string]domain.Activity{},
	}
}

func (m *memStore) UpsertUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memStore) CreateSession(_ context.Context, userID string, expiresAt time.Time, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := "sess-" + string(rune('0'+m.nextID))
	m.sessions[id] = domain.StoredSession{ID: id, UserID: userID, ExpiresAt: expiresAt}
	return id, nil
}

func (m *memStore) GetSession(_ context.Context, id string) (domain.StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.RevokedAt != nil {
		return domain.StoredSession{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memStore) RevokeSession(_ context.Context, id string, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokeErr != nil {
		return m.revokeErr
	}
	if s, ok := m.sessions[id]; ok {
		s.RevokedAt = &when
		m.sessions[id] = s
	}
	return nil
}

func (m *memStore) userActivities(userID string) []domain.Activity {
	var out []domain.Activity
	for _, a := range m.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

func (m *memStore) LatestStartDate(_ context.Context, userID string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acts := m.userActivities(userID)
	if len(acts) == 0 {
		return time.Time{}, false, nil
	}
	return acts[0].StartDate, true, nil
}

func (m *memStore) ExistingActivityIDs(_ context.Context, userID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]struct{}{}
	for _, a := range m.userActivities(userID) {
		out[a.ID] = struct{}{}
	}
	return out, nil
}

func (m *memStore) InsertActivities(_ context.Context, batch []domain.Activity) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range batch {
		if _, ok := m.activities[a.ID]; !ok {
			m.activities[a.ID] = a
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListActivities(_ context.Context, userID string, limit, offset int) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acts := m.userActivities(userID)
	if offset >= len(acts) {
		return nil, nil
	}
	return acts[offset:min(offset+limit, len(acts))], nil
}

func (m *memStore) ListActivitiesSince(_ context.Context, userID string, since time.Time) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Activity
	for _, a := range m.userActivities(userID) {
		if !a.StartDate.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) CountActivities(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.userActivities(userID)), nil
}

func (m *memStore) CreateFriend(_ context.Context, f domain.FriendLink) (domain.FriendLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.friends {
		if r.UserID == f.UserID && r.FriendID == f.FriendID {
			return domain.FriendLink{}, domain.ErrFriendExists
		}
	}
	m.friends = append(m.friends, f)
	return f, nil
}

func (m *memStore) ListFriends(_ context.Context, userID string) ([]domain.FriendLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FriendLink
	for _, r := range m.friends {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) GetFriend(_ context.Context, userID, friendID string) (domain.FriendLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.friends {
		if r.UserID == userID && r.FriendID == friendID {
			return r, nil
		}
	}
	return domain.FriendLink{}, domain.ErrNotFound
}

func (m *memStore) DeleteFriend(_ context.Context, userID, friendID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.friends[:0]
	var n int64
	for _, r := range m.friends {
		if r.UserID == userID && r.FriendID == friendID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.friends = kept
	return n, nil
}

type stubSource struct {
	athlete    domain.Athlete
	athleteErr error
	pages      [][]domain.Activity
	pageErr    error
}

func (s *stubSource) GetAthlete(context.Context, string) (domain.Athlete, error) {
	return s.athlete, s.athleteErr
}

func (s *stubSource) ListActivities(_ context.Context, _ string, page, _ int, _ time.Time) ([]domain.Activity, error) {
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	if page > len(s.pages) {
		return nil, nil
	}
	return s.pages[page-1], nil
}

type stubOAuth struct {
	token domain.OAuthToken
	err   error
}

func (s *stubOAuth) AuthCodeURL(state string) string {
	return "https://oauth.test/authorize?state=" + state
}

func (s *stubOAuth) Exchange(context.Context, string) (domain.OAuthToken, error) {
	return s.token, s.err
}

type testEnv struct {
	store  *memStore
	source *stubSource
	oauth  *stubOAuth
	codec  auth.CookieCodec
	logs   *bytes.Buffer
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	source := &stubSource{athlete: domain.Athlete{ID: "42", FirstName: "Ada", LastName: "Runner"}}
	oauth := &stubOAuth{token: domain.OAuthToken{AccessToken: "acc", RefreshToken: "ref"}}
	codec := auth.NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"))
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	router := NewRouter(RouterOpts{
		Logger: logger,
		Auth: &service.AuthService{
			OAuth:      oauth,
			Source:     source,
			Users:      store,
			Sessions:   store,
			SessionTTL: time.Hour,
		},
		Sync: &service.SyncService{
			Users:      store,
			Activities: store,
			Source:     source,
			Logger:     logger,
		},
		Stats:       &service.StatsService{Activities: store, Friends: store},
		Friends:     &service.FriendsService{Friends: store, Activities: store},
		CookieCodec: codec,
		SessionTTL:  time.Hour,
		SyncLimit:   2,
		SyncWindow:  time.Minute,
	})

	return &testEnv{store: store, source: source, oauth: oauth, codec: codec, logs: logs, router: router}
}

// signIn stores a user with an open session and returns its cookie.
func (e *testEnv) signIn(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	ctx := context.Background()
	if err := e.store.UpsertUser(ctx, domain.User{ID: userID, Name: "User " + userID, AccessToken: "acc"}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	sessID, err := e.store.CreateSession(ctx, userID, time.Now().Add(time.Hour), "", "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookieName, Value: e.codec.Encode(sessID)}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
