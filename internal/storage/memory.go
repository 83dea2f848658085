package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/radiusdt/vector-uplift/internal/models"
)

// InMemoryActivityRepo is a thread-safe in-memory ActivityRepo. It is
// the fallback when Postgres is unavailable and the workhorse in
// tests. Stored values are copied on the way in and out so callers
// cannot mutate repository state.
type InMemoryActivityRepo struct {
	mu         sync.RWMutex
	activities map[string]*models.Activity
}

// NewInMemoryActivityRepo creates an empty in-memory activity repo.
func NewInMemoryActivityRepo() *InMemoryActivityRepo {
	return &InMemoryActivityRepo{activities: make(map[string]*models.Activity)}
}

func copyActivity(a *models.Activity) *models.Activity {
	cp := *a
	if a.Metadata != nil {
		cp.Metadata = make(map[string]float64, len(a.Metadata))
		for k, v := range a.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func (r *InMemoryActivityRepo) ListAll(ctx context.Context) ([]*models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Activity, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, copyActivity(a))
	}
	sortActivities(out)
	return out, nil
}

func (r *InMemoryActivityRepo) ListByChannel(ctx context.Context, channel string) ([]*models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Activity
	for _, a := range r.activities {
		if a.Channel == channel {
			out = append(out, copyActivity(a))
		}
	}
	sortActivities(out)
	return out, nil
}

func (r *InMemoryActivityRepo) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.activities[id]; ok {
		return copyActivity(a), nil
	}
	return nil, nil
}

func (r *InMemoryActivityRepo) Upsert(ctx context.Context, a *models.Activity) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities[a.ID] = copyActivity(a)
	return nil
}

func (r *InMemoryActivityRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activities, id)
	return nil
}

func (r *InMemoryActivityRepo) Channels(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, a := range r.activities {
		seen[a.Channel] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for ch := range seen {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out, nil
}

// sortActivities orders by anchor date then id so list results are
// deterministic regardless of map iteration order.
func sortActivities(as []*models.Activity) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Date != as[j].Date {
			return as[i].Date < as[j].Date
		}
		return as[i].ID < as[j].ID
	})
}

// InMemoryMetricStore is a thread-safe in-memory MetricStore keyed by
// (channel, date).
type InMemoryMetricStore struct {
	mu      sync.RWMutex
	metrics map[string]map[string]models.DailyMetric // channel -> date -> row
}

// NewInMemoryMetricStore creates an empty in-memory metric store.
func NewInMemoryMetricStore() *InMemoryMetricStore {
	return &InMemoryMetricStore{metrics: make(map[string]map[string]models.DailyMetric)}
}

func (s *InMemoryMetricStore) ListByChannel(ctx context.Context, channel string) ([]models.DailyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.metrics[channel]
	out := make([]models.DailyMetric, 0, len(rows))
	for _, m := range rows {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *InMemoryMetricStore) Upsert(ctx context.Context, m models.DailyMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metrics[m.Channel] == nil {
		s.metrics[m.Channel] = make(map[string]models.DailyMetric)
	}
	s.metrics[m.Channel][m.Date] = m
	return nil
}

// InMemoryReportStore is a thread-safe in-memory ReportStore.
type InMemoryReportStore struct {
	mu        sync.RWMutex
	byChannel map[string][]models.ActivityReport
}

// NewInMemoryReportStore creates an empty in-memory report store.
func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{byChannel: make(map[string][]models.ActivityReport)}
}

func (s *InMemoryReportStore) ReplaceChannel(ctx context.Context, channel string, reports []models.ActivityReport) error {
	cp := make([]models.ActivityReport, len(reports))
	copy(cp, reports)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byChannel[channel] = cp
	return nil
}

func (s *InMemoryReportStore) ListByChannel(ctx context.Context, channel string) ([]models.ActivityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.byChannel[channel]
	out := make([]models.ActivityReport, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *InMemoryReportStore) GetByActivity(ctx context.Context, activityID string) (*models.ActivityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rows := range s.byChannel {
		for _, r := range rows {
			if r.ActivityID == activityID {
				cp := r
				return &cp, nil
			}
		}
	}
	return nil, nil
}
