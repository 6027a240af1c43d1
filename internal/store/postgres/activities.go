package postgres

import (
	"context"
	"time"

	"StravaFriendsDashboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivitiesStore struct {
	pool *pgxpool.Pool
}

func NewActivitiesStore(pool *pgxpool.Pool) *ActivitiesStore {
	return &ActivitiesStore{pool: pool}
}

// LatestStartDate returns the newest stored start date for the user. ok is
// false when the user has no activities.
func (s *ActivitiesStore) LatestStartDate(ctx context.Context, userID string) (time.Time, bool, error) {
	const q = `SELECT max(start_date) FROM activities WHERE user_id = $1`

	var latest pgtype.Timestamptz
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&latest); err != nil {
		return time.Time{}, false, storeErr("latest activity start date", err)
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return latest.Time.UTC(), true, nil
}

func (s *ActivitiesStore) ExistingActivityIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	const q = `SELECT id FROM activities WHERE user_id = $1`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, storeErr("existing activity ids", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storeErr("existing activity ids", err)
	}

	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// InsertActivities writes all rows in one statement and skips IDs that already
// exist. It returns the number of rows actually inserted.
func (s *ActivitiesStore) InsertActivities(ctx context.Context, activities []domain.Activity) (int, error) {
	if len(activities) == 0 {
		return 0, nil
	}

	const q = `
		INSERT INTO activities (id, user_id, name, type, distance, moving_time, start_date)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::float8[], $6::int4[], $7::timestamptz[])
		ON CONFLICT (id) DO NOTHING
	`

	n := len(activities)
	var (
		ids        = make([]string, n)
		userIDs    = make([]string, n)
		names      = make([]string, n)
		types      = make([]string, n)
		distances  = make([]float64, n)
		movingTime = make([]int32, n)
		starts     = make([]time.Time, n)
	)
	for i, a := range activities {
		ids[i] = a.ID
		userIDs[i] = a.UserID
		names[i] = a.Name
		types[i] = a.Type
		distances[i] = a.Distance
		movingTime[i] = int32(a.MovingTime)
		starts[i] = a.StartDate
	}

	ct, err := s.pool.Exec(ctx, q, ids, userIDs, names, types, distances, movingTime, starts)
	if err != nil {
		return 0, storeErr("insert activities", err)
	}
	return int(ct.RowsAffected()), nil
}

// ListActivities returns a page of the user's activities, newest first.
func (s *ActivitiesStore) ListActivities(ctx context.Context, userID string, limit, offset int) ([]domain.Activity, error) {
	const q = `
		SELECT id, user_id, name, type, distance, moving_time, start_date
		FROM activities
		WHERE user_id = $1
		ORDER BY start_date DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return s.query(ctx, "list activities", q, userID, limit, offset)
}

// ListActivitiesSince returns every activity of the user that started at or
// after since, newest first. A zero since returns the full history.
func (s *ActivitiesStore) ListActivitiesSince(ctx context.Context, userID string, since time.Time) ([]domain.Activity, error) {
	const q = `
		SELECT id, user_id, name, type, distance, moving_time, start_date
		FROM activities
		WHERE user_id = $1 AND start_date >= $2
		ORDER BY start_date DESC, id DESC
	`
	if since.IsZero() {
		since = time.Unix(0, 0)
	}
	return s.query(ctx, "list activities since", q, userID, since)
}

func (s *ActivitiesStore) CountActivities(ctx context.Context, userID string) (int, error) {
	const q = `SELECT count(*) FROM activities WHERE user_id = $1`

	var n int
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, storeErr("count activities", err)
	}
	return n, nil
}

func (s *ActivitiesStore) query(ctx context.Context, op, q string, args ...any) ([]domain.Activity, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		var (
			a          domain.Activity
			movingTime int32
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Distance, &movingTime, &a.StartDate); err != nil {
			return nil, storeErr(op, err)
		}
		a.MovingTime = int(movingTime)
		a.StartDate = a.StartDate.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}
