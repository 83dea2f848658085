package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/radiusdt/vector-uplift/internal/models"
	"github.com/redis/go-redis/v9"
)

// ReportCache keeps a channel's most recent reports in Redis so the
// read path does not hit Postgres on every request. Entries are
// replaced on recompute and expire on their own after the TTL.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a cache bound to the given client and TTL.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func reportKey(channel string) string {
	return fmt.Sprintf("reports:%s", channel)
}

// Set stores a channel's reports, overwriting any previous entry.
func (c *ReportCache) Set(ctx context.Context, channel string, reports []models.ActivityReport) error {
	body, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	if err := c.client.Set(ctx, reportKey(channel), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache reports: %w", err)
	}
	return nil
}

// Get returns a channel's cached reports, or (nil, false, nil) on a
// cache miss.
func (c *ReportCache) Get(ctx context.Context, channel string) ([]models.ActivityReport, bool, error) {
	body, err := c.client.Get(ctx, reportKey(channel)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read report cache: %w", err)
	}
	var reports []models.ActivityReport
	if err := json.Unmarshal(body, &reports); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached reports: %w", err)
	}
	return reports, true, nil
}

// Invalidate drops a channel's cached reports.
func (c *ReportCache) Invalidate(ctx context.Context, channel string) error {
	return c.client.Del(ctx, reportKey(channel)).Err()
}
