package service

import (
	"context"
	"log/slog"
	"time"

	"StravaFriendsDashboard/internal/domain"
	"StravaFriendsDashboard/internal/observability"
)

const (
	SyncPageSize = 200
	SyncMaxPages = 50

	// tokenLifetime is the fixed expiry recorded for the stored access token.
	tokenLifetime = 6 * time.Hour
)

type SyncService struct {
	Users      UsersStore
	Activities ActivitiesStore
	Source     ActivitySource
	Events     EventPublisher
	Logger     *slog.Logger
	Now        func() time.Time
}

// Synchronize imports every activity newer than the user's watermark. Nothing
// is written unless the token verifies, and no activity is written unless
// every page was fetched.
func (s *SyncService) Synchronize(ctx context.Context, sess domain.Session) (domain.SyncResult, error) {
	now, logger := s.now, s.logger()

	started := now()
	res, pages, err := s.synchronize(ctx, sess)
	took := now().Sub(started)
	if err != nil {
		observability.RecordSync(resultLabel(err), pages, 0, took, now())
		logger.Warn("sync failed", "user_id", sess.UserID, "pages", pages, "err", err)
		return domain.SyncResult{}, err
	}
	observability.RecordSync(observability.ResultOK, res.Pages, res.InsertedCount, took, now())
	logger.Info("sync completed",
		"user_id", sess.UserID,
		"fetched", res.Fetched,
		"inserted", res.InsertedCount,
		"pages", res.Pages,
	)

	if s.Events != nil && res.InsertedCount > 0 {
		if err := s.Events.PublishActivitiesSynced(ctx, sess.UserID, res); err != nil {
			logger.Warn("publish sync event failed", "user_id", sess.UserID, "err", err)
		}
	}
	return res, nil
}

func (s *SyncService) synchronize(ctx context.Context, sess domain.Session) (domain.SyncResult, int, error) {
	athlete, err := s.Source.GetAthlete(ctx, sess.AccessToken)
	if err != nil {
		return domain.SyncResult{}, 0, syncErr("verify athlete", err)
	}
	if athlete.ID != sess.UserID {
		return domain.SyncResult{}, 0, &domain.SyncError{Kind: domain.ErrAuthentication, Op: "verify athlete"}
	}

	watermark, hasWatermark, err := s.Activities.LatestStartDate(ctx, sess.UserID)
	if err != nil {
		return domain.SyncResult{}, 0, syncErr("read watermark", err)
	}

	user := domain.User{
		ID:           sess.UserID,
		Name:         athlete.DisplayName(),
		Image:        athlete.Image,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    s.now().Add(tokenLifetime).Unix(),
	}
	if err := s.Users.UpsertUser(ctx, user); err != nil {
		return domain.SyncResult{}, 0, syncErr("upsert user", err)
	}

	var after time.Time
	if hasWatermark {
		after = watermark
	}

	var (
		fetched []domain.Activity
		pages   int
	)
	for page := 1; page <= SyncMaxPages; page++ {
		items, err := s.Source.ListActivities(ctx, sess.AccessToken, page, SyncPageSize, after)
		pages++
		if err != nil {
			return domain.SyncResult{}, pages, syncErr("fetch activities", err)
		}
		if len(items) == 0 {
			break
		}
		fetched = append(fetched, items...)
	}

	existing, err := s.Activities.ExistingActivityIDs(ctx, sess.UserID)
	if err != nil {
		return domain.SyncResult{}, pages, syncErr("read existing ids", err)
	}
	fresh := dedupe(fetched, existing, sess.UserID)

	inserted, err := s.Activities.InsertActivities(ctx, fresh)
	if err != nil {
		return domain.SyncResult{}, pages, syncErr("insert activities", err)
	}

	res := domain.SyncResult{
		InsertedCount: inserted,
		Fetched:       len(fetched),
		Pages:         pages,
		Profile:       user.Profile(),
	}
	if newest, ok := newestStart(fresh, watermark, hasWatermark); ok {
		res.Watermark = &newest
	}
	return res, pages, nil
}

// dedupe drops activities already stored or repeated earlier in the batch,
// keeping source order, and stamps the owner on the survivors.
func dedupe(fetched []domain.Activity, existing map[string]struct{}, userID string) []domain.Activity {
	seen := make(map[string]struct{}, len(fetched))
	out := make([]domain.Activity, 0, len(fetched))
	for _, a := range fetched {
		if _, ok := existing[a.ID]; ok {
			continue
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		a.UserID = userID
		out = append(out, a)
	}
	return out
}

func newestStart(batch []domain.Activity, watermark time.Time, hasWatermark bool) (time.Time, bool) {
	newest, ok := watermark, hasWatermark
	for _, a := range batch {
		if !ok || a.StartDate.After(newest) {
			newest, ok = a.StartDate, true
		}
	}
	return newest, ok
}

func syncErr(op string, err error) error {
	return &domain.SyncError{Kind: domain.SyncErrorKind(err), Op: op, Err: err}
}

func resultLabel(err error) string {
	switch domain.SyncErrorKind(err) {
	case domain.ErrAuthentication:
		return observability.ResultAuthFailed
	case domain.ErrRemoteUnavailable:
		return observability.ResultRemoteFailed
	default:
		return observability.ResultStoreFailed
	}
}

func (s *SyncService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *SyncService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
