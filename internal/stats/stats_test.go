package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StravaFriendsDashboard/internal/domain"
)

func TestComputeOnlyCountsRuns(t *testing.T) {
	records := []domain.Activity{
		{ID: "1", Type: "Run", Distance: 5000, MovingTime: 1500},
		{ID: "2", Type: "Ride", Distance: 20000, MovingTime: 3600},
	}

	got := Compute(records)

	assert.Equal(t, 1, got.TotalActivities)
	assert.Equal(t, 5000.0, got.TotalDistance)
	assert.Equal(t, 1500, got.TotalTime)
	assert.Equal(t, 5000.0, got.AverageDistance)
	assert.Equal(t, 1500.0, got.AverageTime)
}

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Compute(nil))
	assert.Equal(t, Summary{}, Compute([]domain.Activity{{Type: "Swim", Distance: 100}}))
}

func TestComputeAverages(t *testing.T) {
	got := Compute([]domain.Activity{
		{Type: "Run", Distance: 3000, MovingTime: 900},
		{Type: "Run", Distance: 6000, MovingTime: 2100},
	})
	assert.Equal(t, 2, got.TotalActivities)
	assert.InDelta(t, 4500.0, got.AverageDistance, 1e-9)
	assert.InDelta(t, 1500.0, got.AverageTime, 1e-9)
}

func TestGroupByPeriodSameDay(t *testing.T) {
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	records := []domain.Activity{
		{ID: "a", Type: "Run", Distance: 3000, MovingTime: 1000, StartDate: time.Date(2025, time.March, 18, 7, 0, 0, 0, time.UTC)},
		{ID: "b", Type: "Run", Distance: 4000, MovingTime: 1200, StartDate: time.Date(2025, time.March, 18, 19, 30, 0, 0, time.UTC)},
	}

	got := GroupByPeriod(records, PeriodMonth, now)

	require.Len(t, got, 1)
	assert.Equal(t, "2025-03-18", got[0].Date)
	assert.Equal(t, 7000.0, got[0].TotalDistance)
	assert.Equal(t, 2200, got[0].TotalTime)
	assert.Equal(t, 2, got[0].ActivityCount)
	assert.Len(t, got[0].Activities, 2)
}

func TestGroupByPeriodFiltersAndSorts(t *testing.T) {
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	records := []domain.Activity{
		{ID: "late", Type: "Run", Distance: 1000, StartDate: now.Add(-24 * time.Hour)},
		{ID: "early", Type: "Run", Distance: 2000, StartDate: now.Add(-6 * 24 * time.Hour)},
		{ID: "old", Type: "Run", Distance: 9000, StartDate: now.Add(-8 * 24 * time.Hour)},
		{ID: "ride", Type: "Ride", Distance: 9000, StartDate: now.Add(-2 * 24 * time.Hour)},
		{ID: "nodate", Type: "Run", Distance: 9000},
	}

	got := GroupByPeriod(records, PeriodWeek, now)

	require.Len(t, got, 2)
	assert.Equal(t, "2025-03-14", got[0].Date)
	assert.Equal(t, "2025-03-19", got[1].Date)
	assert.Equal(t, 2000.0, got[0].TotalDistance)
}

func TestGroupByPeriodYearBucketsByMonth(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.Activity{
		{Type: "Run", Distance: 1000, StartDate: time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)},
		{Type: "Run", Distance: 2000, StartDate: time.Date(2025, time.May, 28, 0, 0, 0, 0, time.UTC)},
		{Type: "Run", Distance: 500, StartDate: time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)},
	}

	got := GroupByPeriod(records, PeriodYear, now)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-12", got[0].Date)
	assert.Equal(t, "2025-05", got[1].Date)
	assert.Equal(t, 3000.0, got[1].TotalDistance)
	assert.Equal(t, 2, got[1].ActivityCount)
}

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, PeriodWeek, ParsePeriod("week"))
	assert.Equal(t, PeriodYear, ParsePeriod("year"))
	assert.Equal(t, PeriodMonth, ParsePeriod(""))
	assert.Equal(t, PeriodMonth, ParsePeriod("decade"))
	assert.Equal(t, 30*24*time.Hour, ParsePeriod("nope").Window())
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0.0 km", FormatDistance(0))
	assert.Equal(t, "5.0 km", FormatDistance(5000))
	assert.Equal(t, "10.3 km", FormatDistance(10260))
}

func TestFormatTime(t *testing.T) {
	cases := map[int]string{
		0:    "0:00",
		59:   "0:59",
		605:  "10:05",
		3600: "1:00:00",
		3725: "1:02:05",
		-5:   "0:00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatTime(in), "FormatTime(%d)", in)
	}
}

func TestSummaryFormatted(t *testing.T) {
	got := Summary{TotalActivities: 2, TotalDistance: 12345, TotalTime: 4000, AverageDistance: 6172.5, AverageTime: 2000.7}.Formatted()
	assert.Equal(t, FormattedSummary{
		TotalActivities: 2,
		TotalDistance:   "12.3 km",
		TotalTime:       "1:06:40",
		AverageDistance: "6.2 km",
		AverageTime:     "33:20",
	}, got)
}
