package uplift

import (
	"sort"

	"github.com/radiusdt/vector-uplift/internal/calendar"
	"github.com/radiusdt/vector-uplift/internal/models"
)

// clickCount resolves an activity's click count via the fallback
// chain: measured clicks, then deterministic tracked clicks, then a
// channel-specific metadata estimate. ok is false when no source
// yields a positive count; such an activity cannot prove engagement
// and gets zero share whenever a co-active activity can.
func clickCount(a models.Activity) (float64, bool) {
	if a.ActualClicks > 0 {
		return float64(a.ActualClicks), true
	}
	if a.DeterministicClicks > 0 {
		return float64(a.DeterministicClicks), true
	}
	if est, ok := a.Metadata[models.MetadataEstimatedClicks]; ok && est > 0 {
		return est, true
	}
	return 0, false
}

// windowContains reports whether date falls inside the activity's
// observation window.
func (e *Engine) windowContains(a models.Activity, date string) bool {
	if date < a.Date {
		return false
	}
	return date <= calendar.AddDays(a.Date, e.cfg.WindowDays(a.Channel)-1)
}

// attribute computes the per-date pooled attribution for all live
// activities. For every date inside some observation window, the
// surplus of observed events over baseline is pooled and divided among
// the activities active that date by click-share; when no active
// activity has click data, the pool splits equally. Dates without a
// metric record contribute nothing: no data is not zero.
//
// Shares on a date sum to at most 1 and every pool is bounded by the
// observed count, so total attributed events on a channel can never
// exceed total observed events.
func (e *Engine) attribute(live []models.Activity, metrics map[string]models.DailyMetric, baselines map[string]baseline) map[string][]models.DailyAttribution {
	out := make(map[string][]models.DailyAttribution, len(live))

	dates := make([]string, 0, len(baselines))
	for d := range baselines {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, date := range dates {
		m, ok := metrics[date]
		if !ok {
			continue
		}
		b := baselines[date]

		poolSignups := float64(m.Signups) - b.Signups
		if poolSignups < 0 {
			poolSignups = 0
		}
		poolActivations := float64(m.Activations) - b.Activations
		if poolActivations < 0 {
			poolActivations = 0
		}

		var overlap []models.Activity
		for _, a := range live {
			if e.windowContains(a, date) {
				overlap = append(overlap, a)
			}
		}
		if len(overlap) == 0 {
			continue
		}

		sharedWith := make([]string, 0, len(overlap))
		for _, a := range overlap {
			sharedWith = append(sharedWith, a.ID)
		}

		var totalClicks float64
		for _, a := range overlap {
			if c, ok := clickCount(a); ok {
				totalClicks += c
			}
		}

		for _, a := range overlap {
			clicks, hasClicks := clickCount(a)

			var share float64
			if totalClicks == 0 {
				// Nobody can prove engagement: split equally.
				share = 1 / float64(len(overlap))
			} else if hasClicks {
				share = clicks / totalClicks
			}
			// else: others have click data and this activity does
			// not, so it receives nothing on this date.

			out[a.ID] = append(out[a.ID], models.DailyAttribution{
				Date:                  date,
				PoolSignups:           poolSignups,
				PoolActivations:       poolActivations,
				Clicks:                clicks,
				TotalClicks:           totalClicks,
				Share:                 share,
				AttributedSignups:     poolSignups * share,
				AttributedActivations: poolActivations * share,
				SharedWith:            sharedWith,
			})
		}

		e.emit("pool", map[string]interface{}{
			"date":         date,
			"pool_signups": poolSignups,
			"overlap":      len(overlap),
			"total_clicks": totalClicks,
		})
	}

	return out
}
