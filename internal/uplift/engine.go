// Package uplift implements the incremental attribution engine: given
// one channel's full history of marketing activities and per-day event
// counts, it estimates how many of the observed signups and
// activations each activity caused beyond organic behavior, splitting
// credit across overlapping activities by click-share.
//
// Every function here is a pure transformation of in-memory data. The
// engine does no I/O, reads no globals and never consults the clock,
// so identical inputs always produce identical reports.
package uplift

import (
	"github.com/radiusdt/vector-uplift/internal/models"
)

// Tracer receives structured trace events from the engine's phases.
// It replaces inline logging so the engine stays side-effect-free:
// the service layer installs a zap-backed tracer, tests install a
// capturing one, nil means silent.
type Tracer func(event string, fields map[string]interface{})

// Engine runs attribution passes. It is stateless between calls;
// construction just binds config and the optional tracer.
type Engine struct {
	cfg    Config
	tracer Tracer
}

// New returns an engine bound to cfg. tracer may be nil.
func New(cfg Config, tracer Tracer) *Engine {
	return &Engine{cfg: cfg, tracer: tracer}
}

func (e *Engine) emit(event string, fields map[string]interface{}) {
	if e.tracer != nil {
		e.tracer(event, fields)
	}
}

// Compute runs one full attribution pass over a single channel's
// activities and daily metrics and returns one report per input
// activity, in input order. The caller is responsible for supplying
// records of one channel only; channels never share baselines or
// pools, so a pass per channel is the natural unit of fan-out.
//
// The engine assumes well-formed config and validated records (see
// models.Activity.Validate); it is total on such input and never
// returns an error.
func (e *Engine) Compute(activities []models.Activity, metrics []models.DailyMetric) []models.ActivityReport {
	byDate := make(map[string]models.DailyMetric, len(metrics))
	for _, m := range metrics {
		byDate[m.Date] = m
	}

	var live []models.Activity
	for _, a := range activities {
		if a.IsLive() {
			live = append(live, a)
		}
	}

	contaminated := e.contaminatedDates(live)
	e.emit("pass", map[string]interface{}{
		"activities":         len(activities),
		"live":               len(live),
		"metric_days":        len(byDate),
		"contaminated_dates": len(contaminated),
	})

	baselines := e.baselinesFor(live, byDate, contaminated)
	attributed := e.attribute(live, byDate, baselines)

	reports := make([]models.ActivityReport, 0, len(activities))
	for _, a := range activities {
		if a.IsLive() {
			reports = append(reports, e.assembleLive(a, byDate, baselines, attributed[a.ID]))
		} else {
			reports = append(reports, e.assembleNonLive(a, byDate))
		}
	}
	return reports
}
