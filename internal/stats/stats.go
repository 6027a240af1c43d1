// Package stats aggregates imported activities for the dashboard. Only
// running activities are counted.
package stats

import (
	"fmt"
	"sort"
	"time"

	"StravaFriendsDashboard/internal/domain"
)

type Summary struct {
	TotalActivities int     `json:"totalActivities"`
	TotalDistance   float64 `json:"totalDistance"`
	TotalTime       int     `json:"totalTime"`
	AverageDistance float64 `json:"averageDistance"`
	AverageTime     float64 `json:"averageTime"`
}

// FormattedSummary is the display form served to the presentation layer.
type FormattedSummary struct {
	TotalActivities int    `json:"totalActivities"`
	TotalDistance   string `json:"totalDistance"`
	TotalTime       string `json:"totalTime"`
	AverageDistance string `json:"averageDistance"`
	AverageTime     string `json:"averageTime"`
}

func Compute(records []domain.Activity) Summary {
	var s Summary
	for _, a := range records {
		if a.Type != domain.ActivityTypeRun {
			continue
		}
		s.TotalActivities++
		s.TotalDistance += a.Distance
		s.TotalTime += a.MovingTime
	}
	if s.TotalActivities > 0 {
		s.AverageDistance = s.TotalDistance / float64(s.TotalActivities)
		s.AverageTime = float64(s.TotalTime) / float64(s.TotalActivities)
	}
	return s
}

func (s Summary) Formatted() FormattedSummary {
	return FormattedSummary{
		TotalActivities: s.TotalActivities,
		TotalDistance:   FormatDistance(s.TotalDistance),
		TotalTime:       FormatTime(s.TotalTime),
		AverageDistance: FormatDistance(s.AverageDistance),
		AverageTime:     FormatTime(int(s.AverageTime)),
	}
}

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod falls back to PeriodMonth for unknown values.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s)
	default:
		return PeriodMonth
	}
}

func (p Period) Window() time.Duration {
	switch p {
	case PeriodWeek:
		return 7 * 24 * time.Hour
	case PeriodYear:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

func (p Period) Since(now time.Time) time.Time {
	return now.Add(-p.Window())
}

func (p Period) bucketKey(t time.Time) string {
	t = t.UTC()
	if p == PeriodYear {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

type Bucket struct {
	Date          string            `json:"date"`
	TotalDistance float64           `json:"totalDistance"`
	TotalTime     int               `json:"totalTime"`
	ActivityCount int               `json:"activityCount"`
	Activities    []domain.Activity `json:"activities"`
}

// GroupByPeriod buckets the Run records that started within the period window
// ending at now. Each record lands in exactly one bucket keyed by its own start
// date: a UTC day for week and month, a UTC month for year.
func GroupByPeriod(records []domain.Activity, period Period, now time.Time) []Bucket {
	since := period.Since(now)
	byKey := make(map[string]*Bucket)
	for _, a := range records {
		if a.Type != domain.ActivityTypeRun || a.StartDate.IsZero() || a.StartDate.Before(since) {
			continue
		}
		key := period.bucketKey(a.StartDate)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Date: key}
			byKey[key] = b
		}
		b.TotalDistance += a.Distance
		b.TotalTime += a.MovingTime
		b.ActivityCount++
		b.Activities = append(b.Activities, a)
	}

	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.1f km", meters/1000)
}

func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
