package domain

import "time"

const ActivityTypeRun = "Run"

// Activity is an imported workout. Rows are written once and never updated.
type Activity struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Distance   float64   `json:"distance"`
	MovingTime int       `json:"movingTime"`
	StartDate  time.Time `json:"startDate"`
}

type SyncResult struct {
	InsertedCount int        `json:"insertedCount"`
	Fetched       int        `json:"fetched"`
	Pages         int        `json:"pages"`
	Watermark     *time.Time `json:"watermark,omitempty"`
	Profile       Profile    `json:"profile"`
}
