package models

import (
	"github.com/radiusdt/vector-uplift/internal/stats"
)

// BaselineStats summarizes the clean-day baseline used for one
// activity's report.
type BaselineStats struct {
	AvgSignups     float64 `json:"avg_signups"`
	AvgActivations float64 `json:"avg_activations"`
	SigmaSignups   float64 `json:"sigma_signups"`
	CleanDays      int     `json:"clean_days"`
}

// DailyAttribution is one audit row of the pooled attribution: what
// the surplus pool was on a date, how clicks split it, and how much of
// it this activity received.
type DailyAttribution struct {
	Date                  string   `json:"date"`
	PoolSignups           float64  `json:"pool_signups"`
	PoolActivations       float64  `json:"pool_activations"`
	Clicks                float64  `json:"clicks"`
	TotalClicks           float64  `json:"total_clicks"`
	Share                 float64  `json:"share"`
	AttributedSignups     float64  `json:"attributed_signups"`
	AttributedActivations float64  `json:"attributed_activations"`
	SharedWith            []string `json:"shared_with"` // ids of all activities active this date
}

// DisplayPhase tags a raw metric row on a report timeline as belonging
// to the pre-window baseline slice or the observation window.
type DisplayPhase string

const (
	PhaseBaseline DisplayPhase = "baseline"
	PhasePost     DisplayPhase = "post"
)

// DailyDisplayPoint is a raw daily metric row included on a report for
// presentation only. It carries no attribution semantics.
type DailyDisplayPoint struct {
	Date        string       `json:"date"`
	Signups     int64        `json:"signups"`
	Activations int64        `json:"activations"`
	Phase       DisplayPhase `json:"phase"`
}

// ActivityReport is the engine's output for one activity: baseline
// stats, observed vs expected totals, the attributed incremental lift
// for both event types, a confidence grade and the full day-by-day
// breakdown. Reports are built fresh on every compute pass and never
// mutated after construction.
type ActivityReport struct {
	ActivityID string         `json:"activity_id"`
	Channel    string         `json:"channel"`
	Status     ActivityStatus `json:"status"`

	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	WindowDays  int    `json:"window_days"`

	Baseline BaselineStats `json:"baseline"`

	ObservedSignups     int64   `json:"observed_signups"`
	ObservedActivations int64   `json:"observed_activations"`
	ExpectedSignups     float64 `json:"expected_signups"`
	ExpectedActivations float64 `json:"expected_activations"`

	IncrementalSignups     float64 `json:"incremental_signups"`
	IncrementalActivations float64 `json:"incremental_activations"`

	// TrackedSignupFloor mirrors the activity's directly-observed
	// signup count. Attribution is not clamped to it; whether it
	// should be is an open product decision.
	TrackedSignupFloor int64 `json:"tracked_signup_floor"`

	Confidence       stats.Tier `json:"confidence"`
	ConfidenceReason string     `json:"confidence_reason"`

	Breakdown []DailyAttribution  `json:"breakdown,omitempty"`
	Display   []DailyDisplayPoint `json:"display,omitempty"`
}
