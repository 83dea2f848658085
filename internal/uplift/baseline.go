package uplift

import (
	"github.com/radiusdt/vector-uplift/internal/calendar"
	"github.com/radiusdt/vector-uplift/internal/models"
	"github.com/radiusdt/vector-uplift/internal/stats"
)

// baseline is the per-date organic estimate: what signups and
// activations would plausibly have been on a date with no activity
// running. SigmaSignups feeds the confidence classifier only; the
// baseline value itself is the clean-day median.
type baseline struct {
	Signups      float64
	Activations  float64
	SigmaSignups float64
	CleanDays    int
}

// contaminatedDates returns the set of all dates that fall inside any
// live activity's observation window. A date can be contaminated by
// several activities at once; baseline collection skips all of them so
// one activity's lift never leaks into another's baseline.
func (e *Engine) contaminatedDates(live []models.Activity) map[string]struct{} {
	out := make(map[string]struct{})
	for _, a := range live {
		end := calendar.AddDays(a.Date, e.cfg.WindowDays(a.Channel)-1)
		for _, d := range calendar.Range(a.Date, end) {
			out[d] = struct{}{}
		}
	}
	return out
}

// cleanDayBaseline walks backward one day at a time from the day
// before date, skipping contaminated dates and dates without a metric
// record, until BaselineWindowDays clean days are collected or the
// lookback ceiling is exhausted. The baseline is the median of the
// collected days; median rather than mean so a single organic spike
// (a press mention, say) cannot inflate the baseline and suppress
// every later activity's measured lift.
func (e *Engine) cleanDayBaseline(date string, metrics map[string]models.DailyMetric, contaminated map[string]struct{}) baseline {
	var signups, activations []float64

	d := calendar.AddDays(date, -1)
	for step := 0; step < e.cfg.LookbackCeilingDays && len(signups) < e.cfg.BaselineWindowDays; step++ {
		if _, dirty := contaminated[d]; !dirty {
			if m, ok := metrics[d]; ok {
				signups = append(signups, float64(m.Signups))
				activations = append(activations, float64(m.Activations))
			}
		}
		d = calendar.AddDays(d, -1)
	}

	if len(signups) == 0 {
		// No clean history at all; the confidence classifier will
		// grade anything built on this as LOW.
		return baseline{}
	}

	return baseline{
		Signups:      stats.Median(signups),
		Activations:  stats.Median(activations),
		SigmaSignups: stats.StdDev(signups),
		CleanDays:    len(signups),
	}
}

// baselinesFor computes a clean-day baseline for every date inside any
// live activity's observation window.
func (e *Engine) baselinesFor(live []models.Activity, metrics map[string]models.DailyMetric, contaminated map[string]struct{}) map[string]baseline {
	out := make(map[string]baseline)
	for _, a := range live {
		end := calendar.AddDays(a.Date, e.cfg.WindowDays(a.Channel)-1)
		for _, d := range calendar.Range(a.Date, end) {
			if _, done := out[d]; done {
				continue
			}
			b := e.cleanDayBaseline(d, metrics, contaminated)
			out[d] = b
			e.emit("baseline", map[string]interface{}{
				"date":       d,
				"clean_days": b.CleanDays,
				"signups":    b.Signups,
			})
		}
	}
	return out
}
