package uplift

import (
	"github.com/radiusdt/vector-uplift/internal/calendar"
	"github.com/radiusdt/vector-uplift/internal/models"
	"github.com/radiusdt/vector-uplift/internal/stats"
)

// assembleLive builds the report for a live activity: observed totals
// across its window, expected totals from the baseline, the attributed
// incremental figures from the pooled model (canonical once overlap
// exists; never a plain observed-minus-expected), a confidence grade,
// and the audit breakdown plus a display timeline.
func (e *Engine) assembleLive(a models.Activity, metrics map[string]models.DailyMetric, baselines map[string]baseline, breakdown []models.DailyAttribution) models.ActivityReport {
	windowDays := e.cfg.WindowDays(a.Channel)
	start := a.Date
	end := calendar.AddDays(start, windowDays-1)

	var observedSignups, observedActivations int64
	for _, d := range calendar.Range(start, end) {
		if m, ok := metrics[d]; ok {
			observedSignups += m.Signups
			observedActivations += m.Activations
		}
	}

	// The first window date's baseline is the representative one for
	// the report-level stats and the confidence grade.
	b := baselines[start]

	var incSignups, incActivations float64
	for _, row := range breakdown {
		incSignups += row.AttributedSignups
		incActivations += row.AttributedActivations
	}

	tier, reason := stats.Classify(incSignups, b.SigmaSignups, windowDays, b.CleanDays)

	return models.ActivityReport{
		ActivityID:  a.ID,
		Channel:     a.Channel,
		Status:      a.Status,
		WindowStart: start,
		WindowEnd:   end,
		WindowDays:  windowDays,
		Baseline: models.BaselineStats{
			AvgSignups:     b.Signups,
			AvgActivations: b.Activations,
			SigmaSignups:   b.SigmaSignups,
			CleanDays:      b.CleanDays,
		},
		ObservedSignups:        observedSignups,
		ObservedActivations:    observedActivations,
		ExpectedSignups:        b.Signups * float64(windowDays),
		ExpectedActivations:    b.Activations * float64(windowDays),
		IncrementalSignups:     incSignups,
		IncrementalActivations: incActivations,
		TrackedSignupFloor:     a.DeterministicTrackedSignups,
		Confidence:             tier,
		ConfidenceReason:       reason,
		Breakdown:              breakdown,
		Display:                e.displayTimeline(a, metrics, windowDays),
	}
}

// assembleNonLive builds the zero-valued report for a booked or
// canceled activity. It never received pool credit, so its baseline is
// a plain pre-window average rather than the clean-day estimate.
func (e *Engine) assembleNonLive(a models.Activity, metrics map[string]models.DailyMetric) models.ActivityReport {
	windowDays := e.cfg.WindowDays(a.Channel)
	start := a.Date
	end := calendar.AddDays(start, windowDays-1)

	var signups, activations []float64
	preStart := calendar.AddDays(start, -e.cfg.BaselineWindowDays)
	for _, d := range calendar.Range(preStart, calendar.AddDays(start, -1)) {
		if m, ok := metrics[d]; ok {
			signups = append(signups, float64(m.Signups))
			activations = append(activations, float64(m.Activations))
		}
	}

	var observedSignups, observedActivations int64
	for _, d := range calendar.Range(start, end) {
		if m, ok := metrics[d]; ok {
			observedSignups += m.Signups
			observedActivations += m.Activations
		}
	}

	avgSignups := stats.Mean(signups)
	avgActivations := stats.Mean(activations)

	return models.ActivityReport{
		ActivityID:  a.ID,
		Channel:     a.Channel,
		Status:      a.Status,
		WindowStart: start,
		WindowEnd:   end,
		WindowDays:  windowDays,
		Baseline: models.BaselineStats{
			AvgSignups:     avgSignups,
			AvgActivations: avgActivations,
			SigmaSignups:   stats.StdDev(signups),
			CleanDays:      len(signups),
		},
		ObservedSignups:     observedSignups,
		ObservedActivations: observedActivations,
		ExpectedSignups:     avgSignups * float64(windowDays),
		ExpectedActivations: avgActivations * float64(windowDays),
		TrackedSignupFloor:  a.DeterministicTrackedSignups,
		Confidence:          stats.TierLow,
		ConfidenceReason:    "activity is not live",
		Display:             e.displayTimeline(a, metrics, windowDays),
	}
}

// displayTimeline collects the raw metric rows around the activity's
// anchor for presentation: a baseline-window-length slice before the
// window plus the window itself, tagged by phase. Days without a
// record are simply absent.
func (e *Engine) displayTimeline(a models.Activity, metrics map[string]models.DailyMetric, windowDays int) []models.DailyDisplayPoint {
	var points []models.DailyDisplayPoint

	preStart := calendar.AddDays(a.Date, -e.cfg.BaselineWindowDays)
	for _, d := range calendar.Range(preStart, calendar.AddDays(a.Date, -1)) {
		if m, ok := metrics[d]; ok {
			points = append(points, models.DailyDisplayPoint{
				Date:        d,
				Signups:     m.Signups,
				Activations: m.Activations,
				Phase:       models.PhaseBaseline,
			})
		}
	}

	end := calendar.AddDays(a.Date, windowDays-1)
	for _, d := range calendar.Range(a.Date, end) {
		if m, ok := metrics[d]; ok {
			points = append(points, models.DailyDisplayPoint{
				Date:        d,
				Signups:     m.Signups,
				Activations: m.Activations,
				Phase:       models.PhasePost,
			})
		}
	}

	return points
}
