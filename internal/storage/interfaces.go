package storage

import (
	"context"

	"github.com/radiusdt/vector-uplift/internal/models"
)

// =============================================
// ACTIVITY REPOSITORY
// =============================================

// ActivityRepo defines operations for marketing activity storage.
// Activities are produced by the ingestion side and read wholesale by
// the attribution service, one channel at a time.
type ActivityRepo interface {
	ListAll(ctx context.Context) ([]*models.Activity, error)
	ListByChannel(ctx context.Context, channel string) ([]*models.Activity, error)
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	Upsert(ctx context.Context, a *models.Activity) error
	Delete(ctx context.Context, id string) error

	// Channels lists every channel that has at least one activity.
	Channels(ctx context.Context) ([]string, error)
}

// =============================================
// DAILY METRIC STORE
// =============================================

// MetricStore defines operations for per-day event counts. At most
// one row exists per (date, channel); a missing row means no data for
// that day, never zero.
type MetricStore interface {
	ListByChannel(ctx context.Context, channel string) ([]models.DailyMetric, error)
	Upsert(ctx context.Context, m models.DailyMetric) error
}

// =============================================
// REPORT STORE
// =============================================

// ReportStore persists computed attribution reports. Reports for a
// channel are replaced wholesale on every compute pass.
type ReportStore interface {
	ReplaceChannel(ctx context.Context, channel string, reports []models.ActivityReport) error
	ListByChannel(ctx context.Context, channel string) ([]models.ActivityReport, error)
	GetByActivity(ctx context.Context, activityID string) (*models.ActivityReport, error)
}
