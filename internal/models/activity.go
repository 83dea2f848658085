package models

import (
	"errors"
	"time"
)

// ActivityStatus is the lifecycle state of a marketing activity. Only
// live activities contribute to or receive pooled attribution.
type ActivityStatus string

const (
	ActivityStatusLive     ActivityStatus = "live"
	ActivityStatusBooked   ActivityStatus = "booked"
	ActivityStatusCanceled ActivityStatus = "canceled"
)

// Activity is one discrete marketing event: a newsletter send, a
// video, a sponsored post. Its observation window opens on Date and
// runs for a channel-specific number of days. Activities are immutable
// for the duration of a computation pass.
type Activity struct {
	ID      string         `json:"id"`
	Channel string         `json:"channel"`
	Name    string         `json:"name,omitempty"`
	Date    string         `json:"date"` // YYYY-MM-DD anchor day
	Status  ActivityStatus `json:"status"`

	CostUSD float64 `json:"cost_usd,omitempty"`

	// Click counts, in fallback order: measured, then deterministic
	// tracking, then a channel-specific estimate under Metadata.
	ActualClicks        int64 `json:"actual_clicks,omitempty"`
	DeterministicClicks int64 `json:"deterministic_clicks,omitempty"`

	// Metadata is an open channel-specific bag of numbers (views,
	// open rates, estimated clicks). The engine only reads
	// MetadataEstimatedClicks from it.
	Metadata map[string]float64 `json:"metadata,omitempty"`

	// DeterministicTrackedSignups is a directly-observed attribution
	// floor. It is surfaced on reports but never enforced against the
	// pooled figure; see ActivityReport.TrackedSignupFloor.
	DeterministicTrackedSignups int64 `json:"deterministic_tracked_signups,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// MetadataEstimatedClicks is the metadata key consulted as the last
// step of the click fallback chain.
const MetadataEstimatedClicks = "estimated_clicks"

// IsLive reports whether the activity participates in attribution.
func (a *Activity) IsLive() bool {
	return a.Status == ActivityStatusLive
}

// Validate checks structural requirements before an activity enters
// storage. The engine itself assumes validated input.
func (a *Activity) Validate() error {
	if a.ID == "" {
		return errors.New("id is required")
	}
	if a.Channel == "" {
		return errors.New("channel is required")
	}
	if _, err := time.Parse("2006-01-02", a.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	switch a.Status {
	case ActivityStatusLive, ActivityStatusBooked, ActivityStatusCanceled:
	default:
		return errors.New("status must be live, booked or canceled")
	}
	return nil
}

// DailyMetric is one (date, channel) observation of downstream event
// counts. At most one record exists per (date, channel) pair; a
// missing record means "no data for that day", never zero.
type DailyMetric struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Channel     string `json:"channel"`
	Signups     int64  `json:"signups"`
	Activations int64  `json:"activations"`
}

// Validate checks structural requirements for a daily metric row.
func (m *DailyMetric) Validate() error {
	if m.Channel == "" {
		return errors.New("channel is required")
	}
	if _, err := time.Parse("2006-01-02", m.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	if m.Signups < 0 || m.Activations < 0 {
		return errors.New("counts must be non-negative")
	}
	return nil
}
