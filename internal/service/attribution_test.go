package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-uplift/internal/calendar"
	"github.com/radiusdt/vector-uplift/internal/models"
	"github.com/radiusdt/vector-uplift/internal/storage"
	"github.com/radiusdt/vector-uplift/internal/uplift"
)

func seedChannel(t *testing.T, acts storage.ActivityRepo, metricStore storage.MetricStore, channel string, anchor string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, acts.Upsert(ctx, &models.Activity{
		ID:           channel + "-a1",
		Channel:      channel,
		Date:         anchor,
		Status:       models.ActivityStatusLive,
		ActualClicks: 100,
	}))

	// Two weeks of flat organic days, then a lifted window.
	for _, d := range calendar.Range(calendar.AddDays(anchor, -14), calendar.AddDays(anchor, -1)) {
		require.NoError(t, metricStore.Upsert(ctx, models.DailyMetric{Date: d, Channel: channel, Signups: 10, Activations: 5}))
	}
	for _, d := range calendar.Range(anchor, calendar.AddDays(anchor, 6)) {
		require.NoError(t, metricStore.Upsert(ctx, models.DailyMetric{Date: d, Channel: channel, Signups: 20, Activations: 8}))
	}
}

func newTestService() (*AttributionService, storage.ActivityRepo, storage.MetricStore, *storage.InMemoryReportStore) {
	acts := storage.NewInMemoryActivityRepo()
	metricStore := storage.NewInMemoryMetricStore()
	reports := storage.NewInMemoryReportStore()
	svc := NewAttributionService(acts, metricStore, reports, nil, uplift.DefaultConfig(), zap.NewNop(), nil)
	return svc, acts, metricStore, reports
}

func TestComputeChannelPersistsReports(t *testing.T) {
	ctx := context.Background()
	svc, acts, metricStore, reportStore := newTestService()
	seedChannel(t, acts, metricStore, "newsletter", "2024-03-15")

	reports, err := svc.ComputeChannel(ctx, "newsletter")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.InDelta(t, 70.0, reports[0].IncrementalSignups, 1e-9)

	stored, err := reportStore.ListByChannel(ctx, "newsletter")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, reports[0].ActivityID, stored[0].ActivityID)
}

func TestComputeChannelIsolation(t *testing.T) {
	// Metrics from one channel must never leak into another's pass.
	ctx := context.Background()
	svc, acts, metricStore, _ := newTestService()
	seedChannel(t, acts, metricStore, "newsletter", "2024-03-15")

	require.NoError(t, acts.Upsert(ctx, &models.Activity{
		ID:      "yt-1",
		Channel: "youtube",
		Date:    "2024-03-15",
		Status:  models.ActivityStatusLive,
	}))

	reports, err := svc.ComputeChannel(ctx, "youtube")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	// youtube has no metric rows at all: no baseline, no pool.
	assert.Equal(t, 0, reports[0].Baseline.CleanDays)
	assert.Equal(t, 0.0, reports[0].IncrementalSignups)
	assert.Equal(t, int64(0), reports[0].ObservedSignups)
}

func TestComputeAllCoversEveryChannel(t *testing.T) {
	ctx := context.Background()
	svc, acts, metricStore, reportStore := newTestService()
	seedChannel(t, acts, metricStore, "newsletter", "2024-03-15")
	seedChannel(t, acts, metricStore, "youtube", "2024-04-10")

	require.NoError(t, svc.ComputeAll(ctx))

	for _, ch := range []string{"newsletter", "youtube"} {
		stored, err := reportStore.ListByChannel(ctx, ch)
		require.NoError(t, err)
		assert.Len(t, stored, 1, "channel %s", ch)
	}
}

func TestReportsFallBackToStore(t *testing.T) {
	ctx := context.Background()
	svc, acts, metricStore, _ := newTestService()
	seedChannel(t, acts, metricStore, "newsletter", "2024-03-15")

	_, err := svc.ComputeChannel(ctx, "newsletter")
	require.NoError(t, err)

	// No cache configured: Reports reads the store directly.
	reports, err := svc.Reports(ctx, "newsletter")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	single, err := svc.Report(ctx, "newsletter-a1")
	require.NoError(t, err)
	require.NotNil(t, single)
	assert.Equal(t, "newsletter", single.Channel)
}
