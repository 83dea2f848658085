package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/vector-uplift/internal/models"
)

// PostgresActivityRepo implements ActivityRepo using PostgreSQL.
// Metadata lives in a JSONB column since its keys are channel-specific.
type PostgresActivityRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresActivityRepo(pool *pgxpool.Pool) *PostgresActivityRepo {
	return &PostgresActivityRepo{pool: pool}
}

const activityColumns = `
	id, channel, name, date, status, cost_usd,
	actual_clicks, deterministic_clicks, metadata,
	deterministic_tracked_signups, created_at, updated_at
`

func scanActivity(row pgx.Row) (*models.Activity, error) {
	var a models.Activity
	var metadataJSON []byte
	if err := row.Scan(
		&a.ID, &a.Channel, &a.Name, &a.Date, &a.Status, &a.CostUSD,
		&a.ActualClicks, &a.DeterministicClicks, &metadataJSON,
		&a.DeterministicTrackedSignups, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
		}
	}
	return &a, nil
}

func (r *PostgresActivityRepo) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id)
	a, err := scanActivity(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

func (r *PostgresActivityRepo) ListAll(ctx context.Context) ([]*models.Activity, error) {
	return r.list(ctx, `SELECT `+activityColumns+` FROM activities ORDER BY date, id`)
}

func (r *PostgresActivityRepo) ListByChannel(ctx context.Context, channel string) ([]*models.Activity, error) {
	return r.list(ctx, `SELECT `+activityColumns+` FROM activities WHERE channel = $1 ORDER BY date, id`, channel)
}

func (r *PostgresActivityRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Activity, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var out []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresActivityRepo) Upsert(ctx context.Context, a *models.Activity) error {
	metadataJSON, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO activities (`+activityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			channel = EXCLUDED.channel,
			name = EXCLUDED.name,
			date = EXCLUDED.date,
			status = EXCLUDED.status,
			cost_usd = EXCLUDED.cost_usd,
			actual_clicks = EXCLUDED.actual_clicks,
			deterministic_clicks = EXCLUDED.deterministic_clicks,
			metadata = EXCLUDED.metadata,
			deterministic_tracked_signups = EXCLUDED.deterministic_tracked_signups,
			updated_at = EXCLUDED.updated_at
	`, a.ID, a.Channel, a.Name, a.Date, a.Status, a.CostUSD,
		a.ActualClicks, a.DeterministicClicks, metadataJSON,
		a.DeterministicTrackedSignups, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert activity: %w", err)
	}
	return nil
}

func (r *PostgresActivityRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

func (r *PostgresActivityRepo) Channels(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT channel FROM activities ORDER BY channel`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ch string
		if err := rows.Scan(&ch); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// PostgresReportStore implements ReportStore using PostgreSQL. The
// report body (breakdown, display timeline) is stored as JSONB next to
// the columns the UI filters on.
type PostgresReportStore struct {
	pool *pgxpool.Pool
}

func NewPostgresReportStore(pool *pgxpool.Pool) *PostgresReportStore {
	return &PostgresReportStore{pool: pool}
}

func (s *PostgresReportStore) ReplaceChannel(ctx context.Context, channel string, reports []models.ActivityReport) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM activity_reports WHERE channel = $1`, channel); err != nil {
		return fmt.Errorf("failed to clear channel reports: %w", err)
	}

	for i := range reports {
		r := &reports[i]
		body, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO activity_reports
				(id, activity_id, channel, confidence, incremental_signups, incremental_activations, body)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), r.ActivityID, r.Channel, string(r.Confidence),
			r.IncrementalSignups, r.IncrementalActivations, body)
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresReportStore) ListByChannel(ctx context.Context, channel string) ([]models.ActivityReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT body FROM activity_reports WHERE channel = $1 ORDER BY activity_id
	`, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityReport
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var r models.ActivityReport
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresReportStore) GetByActivity(ctx context.Context, activityID string) (*models.ActivityReport, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `
		SELECT body FROM activity_reports WHERE activity_id = $1
	`, activityID).Scan(&body)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var r models.ActivityReport
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
