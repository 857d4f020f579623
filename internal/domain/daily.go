package domain

import "time"

// DailySession records which insights were selected for a calendar day.
// Exactly one session exists per day; concurrent selections for the same
// day converge on a single winning row.
type DailySession struct {
	ID          string
	SessionDate string
	InsightIDs  []string
	CreatedAt   time.Time
}

// NewDailySession creates a DailySession for the given day. sessionDate
// uses the YYYY-MM-DD form.
func NewDailySession(id, sessionDate string, insightIDs []string, createdAt time.Time) *DailySession {
	return &DailySession{
		ID:          id,
		SessionDate: sessionDate,
		InsightIDs:  insightIDs,
		CreatedAt:   createdAt,
	}
}
