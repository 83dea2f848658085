// Package service wires the pure attribution engine to storage,
// caching and observability. The engine stays a data-in/data-out
// function; everything stateful lives here.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/radiusdt/vector-uplift/internal/metrics"
	"github.com/radiusdt/vector-uplift/internal/models"
	"github.com/radiusdt/vector-uplift/internal/storage"
	"github.com/radiusdt/vector-uplift/internal/uplift"
	"go.uber.org/zap"
)

// AttributionService runs attribution passes over stored activities
// and daily metrics and manages the computed reports' lifecycle.
type AttributionService struct {
	activities  storage.ActivityRepo
	dailyMetric storage.MetricStore
	reports     storage.ReportStore
	cache       *storage.ReportCache // nil disables caching
	engine      *uplift.Engine
	logger      *zap.Logger
	prom        *metrics.Metrics // nil disables instrumentation
}

// NewAttributionService constructs the service. cache and prom may be
// nil.
func NewAttributionService(
	activities storage.ActivityRepo,
	dailyMetric storage.MetricStore,
	reports storage.ReportStore,
	cache *storage.ReportCache,
	engineCfg uplift.Config,
	logger *zap.Logger,
	prom *metrics.Metrics,
) *AttributionService {
	return &AttributionService{
		activities:  activities,
		dailyMetric: dailyMetric,
		reports:     reports,
		cache:       cache,
		engine:      uplift.New(engineCfg, EngineTracer(logger)),
		logger:      logger,
		prom:        prom,
	}
}

// EngineTracer adapts the engine's structured trace events onto zap at
// debug level. A nil logger yields a nil tracer (silent engine).
func EngineTracer(logger *zap.Logger) uplift.Tracer {
	if logger == nil {
		return nil
	}
	return func(event string, fields map[string]interface{}) {
		zfields := make([]zap.Field, 0, len(fields))
		for k, v := range fields {
			zfields = append(zfields, zap.Any(k, v))
		}
		logger.Debug("engine: "+event, zfields...)
	}
}

// ComputeChannel runs one attribution pass for a channel, persists
// the resulting reports and refreshes the cache.
func (s *AttributionService) ComputeChannel(ctx context.Context, channel string) ([]models.ActivityReport, error) {
	start := time.Now()

	activityPtrs, err := s.activities.ListByChannel(ctx, channel)
	if err != nil {
		s.recordFailure(channel, "load_activities")
		return nil, fmt.Errorf("failed to load activities for %s: %w", channel, err)
	}
	dailyRows, err := s.dailyMetric.ListByChannel(ctx, channel)
	if err != nil {
		s.recordFailure(channel, "load_metrics")
		return nil, fmt.Errorf("failed to load daily metrics for %s: %w", channel, err)
	}

	activities := make([]models.Activity, 0, len(activityPtrs))
	for _, a := range activityPtrs {
		activities = append(activities, *a)
	}

	reports := s.engine.Compute(activities, dailyRows)

	if err := s.reports.ReplaceChannel(ctx, channel, reports); err != nil {
		s.recordFailure(channel, "persist")
		return nil, fmt.Errorf("failed to persist reports for %s: %w", channel, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, channel, reports); err != nil {
			// Cache trouble is not worth failing the pass over.
			s.logger.Warn("failed to cache reports", zap.String("channel", channel), zap.Error(err))
		}
	}

	if s.prom != nil {
		s.prom.RecordComputePass(channel, time.Since(start), len(activities), len(dailyRows))
		for _, r := range reports {
			s.prom.RecordReport(channel, string(r.Confidence))
		}
	}

	s.logger.Info("attribution pass completed",
		zap.String("channel", channel),
		zap.Int("activities", len(activities)),
		zap.Int("metric_days", len(dailyRows)),
		zap.Int("reports", len(reports)),
		zap.Duration("duration", time.Since(start)),
	)

	return reports, nil
}

// ComputeAll runs a pass for every channel that has activities.
// Channels never share baselines or pools, so each gets its own
// goroutine. The first error is returned after all passes finish.
func (s *AttributionService) ComputeAll(ctx context.Context) error {
	channels, err := s.activities.Channels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(channels))
	for i, channel := range channels {
		wg.Add(1)
		go func(i int, channel string) {
			defer wg.Done()
			if _, err := s.ComputeChannel(ctx, channel); err != nil {
				s.logger.Error("attribution pass failed",
					zap.String("channel", channel), zap.Error(err))
				errs[i] = err
			}
		}(i, channel)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Reports returns a channel's reports, serving from cache when
// possible and falling back to the report store.
func (s *AttributionService) Reports(ctx context.Context, channel string) ([]models.ActivityReport, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, channel)
		if err != nil {
			s.logger.Warn("report cache read failed", zap.String("channel", channel), zap.Error(err))
		} else {
			if s.prom != nil {
				s.prom.RecordCacheHit(channel, hit)
			}
			if hit {
				return cached, nil
			}
		}
	}
	return s.reports.ListByChannel(ctx, channel)
}

// Report returns a single activity's report from the store.
func (s *AttributionService) Report(ctx context.Context, activityID string) (*models.ActivityReport, error) {
	return s.reports.GetByActivity(ctx, activityID)
}

func (s *AttributionService) recordFailure(channel, stage string) {
	if s.prom != nil {
		s.prom.RecordComputeFailure(channel, stage)
	}
}
