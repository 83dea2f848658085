package storage

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/radiusdt/vector-uplift/internal/models"
)

// ClickHouseMetricStore implements MetricStore on a ClickHouse
// warehouse. Daily event counts arrive from the ingestion pipeline in
// bulk; a ReplacingMergeTree on (channel, date) keeps the
// one-row-per-day invariant, with FINAL on reads to collapse
// not-yet-merged duplicates.
type ClickHouseMetricStore struct {
	conn driver.Conn
}

// NewClickHouseMetricStore opens a ClickHouse connection and verifies
// it with a ping.
func NewClickHouseMetricStore(ctx context.Context, addr, database, user, password string) (*ClickHouseMetricStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return &ClickHouseMetricStore{conn: conn}, nil
}

func (s *ClickHouseMetricStore) ListByChannel(ctx context.Context, channel string) ([]models.DailyMetric, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT toString(date), channel, signups, activations
		FROM daily_metrics FINAL
		WHERE channel = ?
		ORDER BY date
	`, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	defer rows.Close()

	var out []models.DailyMetric
	for rows.Next() {
		var m models.DailyMetric
		if err := rows.Scan(&m.Date, &m.Channel, &m.Signups, &m.Activations); err != nil {
			return nil, fmt.Errorf("failed to scan daily metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *ClickHouseMetricStore) Upsert(ctx context.Context, m models.DailyMetric) error {
	err := s.conn.Exec(ctx, `
		INSERT INTO daily_metrics (date, channel, signups, activations)
		VALUES (?, ?, ?, ?)
	`, m.Date, m.Channel, m.Signups, m.Activations)
	if err != nil {
		return fmt.Errorf("failed to insert daily metric: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *ClickHouseMetricStore) Close() error {
	return s.conn.Close()
}
