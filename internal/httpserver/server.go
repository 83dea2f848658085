package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/radiusdt/vector-uplift/internal/config"
	"github.com/radiusdt/vector-uplift/internal/database"
	"github.com/radiusdt/vector-uplift/internal/metrics"
	"github.com/radiusdt/vector-uplift/internal/middleware"
	"github.com/radiusdt/vector-uplift/internal/models"
	"github.com/radiusdt/vector-uplift/internal/service"
	"github.com/radiusdt/vector-uplift/internal/storage"
	"github.com/radiusdt/vector-uplift/internal/uplift"
	"go.uber.org/zap"
)

// Dependencies holds all external dependencies for the server. DB,
// Redis and Metrics may be nil; the server falls back to in-memory
// stores and skips instrumentation.
type Dependencies struct {
	DB          *database.PostgresDB
	Redis       *database.RedisDB
	MetricStore storage.MetricStore // optional override, e.g. ClickHouse
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Server wraps HTTP handlers around the attribution service.
type Server struct {
	attribution *service.AttributionService
	activities  storage.ActivityRepo
	dailyMetric storage.MetricStore
	logger      *zap.Logger
	config      *config.Config
}

// NewServer constructs an http.Handler with all routes registered and
// the middleware chain applied.
func NewServer(deps *Dependencies) http.Handler {
	var activityRepo storage.ActivityRepo
	var reportStore storage.ReportStore
	if deps.DB != nil {
		activityRepo = storage.NewPostgresActivityRepo(deps.DB.Pool)
		reportStore = storage.NewPostgresReportStore(deps.DB.Pool)
	} else {
		activityRepo = storage.NewInMemoryActivityRepo()
		reportStore = storage.NewInMemoryReportStore()
	}

	metricStore := deps.MetricStore
	if metricStore == nil {
		metricStore = storage.NewInMemoryMetricStore()
	}

	var cache *storage.ReportCache
	if deps.Redis != nil {
		cache = storage.NewReportCache(deps.Redis.Client, deps.Config.Redis.ReportTTL)
	}

	engineCfg := uplift.Config{
		BaselineWindowDays:     deps.Config.Engine.BaselineWindowDays,
		PostWindowDays:         deps.Config.Engine.PostWindowDays,
		LookbackCeilingDays:    deps.Config.Engine.LookbackCeilingDays,
		ChannelWindowOverrides: deps.Config.Engine.ChannelWindowOverrides,
	}

	attribution := service.NewAttributionService(
		activityRepo, metricStore, reportStore, cache,
		engineCfg, deps.Logger, deps.Metrics,
	)

	s := &Server{
		attribution: attribution,
		activities:  activityRepo,
		dailyMetric: metricStore,
		logger:      deps.Logger,
		config:      deps.Config,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Activity management
	mux.HandleFunc("/activities", s.handleActivities)
	mux.HandleFunc("/activities/", s.handleActivityByID)

	// Daily metric ingestion
	mux.HandleFunc("/metrics/daily", s.handleDailyMetrics)

	// Reports
	mux.HandleFunc("/reports", s.handleReports)
	mux.HandleFunc("/reports/activity/", s.handleReportByActivity)
	mux.HandleFunc("/reports/compute", s.handleCompute)

	// Middleware chain, innermost first: auth, rate limit, logging,
	// recovery.
	var handler http.Handler = mux

	auth := middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger)
	handler = auth.Handler(handler)

	ratelimit := middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger)
	ratelimit.SetMetrics(deps.Metrics)
	handler = ratelimit.Handler(handler)

	logging := middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics)
	handler = logging.Handler(handler)

	recovery := middleware.NewRecoveryMiddleware(deps.Logger)
	return recovery.Handler(handler)
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Activities ----

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		channel := r.URL.Query().Get("channel")
		var (
			activities []*models.Activity
			err        error
		)
		if channel != "" {
			activities, err = s.activities.ListByChannel(r.Context(), channel)
		} else {
			activities, err = s.activities.ListAll(r.Context())
		}
		if err != nil {
			s.logger.Error("list activities failed", zap.Error(err))
			s.errorResponse(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, activities)

	case http.MethodPost, http.MethodPut:
		var a models.Activity
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		a.UpdatedAt = time.Now().UTC()
		if err := a.Validate(); err != nil {
			s.errorResponse(w, "invalid activity: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.activities.Upsert(r.Context(), &a); err != nil {
			s.logger.Error("upsert activity failed", zap.Error(err))
			s.errorResponse(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, &a)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleActivityByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/activities/")
	if id == "" {
		s.errorResponse(w, "activity id required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a, err := s.activities.GetByID(r.Context(), id)
		if err != nil {
			s.logger.Error("get activity failed", zap.Error(err))
			s.errorResponse(w, "internal error", http.StatusInternalServerError)
			return
		}
		if a == nil {
			s.errorResponse(w, "activity not found", http.StatusNotFound)
			return
		}
		s.jsonResponse(w, a)

	case http.MethodDelete:
		if err := s.activities.Delete(r.Context(), id); err != nil {
			s.logger.Error("delete activity failed", zap.Error(err))
			s.errorResponse(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ---- Daily Metrics ----

func (s *Server) handleDailyMetrics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		channel := r.URL.Query().Get("channel")
		if channel == "" {
			s.errorResponse(w, "channel query parameter required", http.StatusBadRequest)
			return
		}
		rows, err := s.dailyMetric.ListByChannel(r.Context(), channel)
		if err != nil {
			s.logger.Error("list daily metrics failed", zap.Error(err))
			s.errorResponse(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, rows)

	case http.MethodPost, http.MethodPut:
		var rows []models.DailyMetric
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			s.errorResponse(w, "invalid json: expected an array of daily metric rows", http.StatusBadRequest)
			return
		}
		for i := range rows {
			if err := rows[i].Validate(); err != nil {
				s.errorResponse(w, "invalid daily metric: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		for i := range rows {
			if err := s.dailyMetric.Upsert(r.Context(), rows[i]); err != nil {
				s.logger.Error("upsert daily metric failed", zap.Error(err))
				s.errorResponse(w, "internal error", http.StatusInternalServerError)
				return
			}
		}
		s.jsonResponse(w, map[string]int{"upserted": len(rows)})

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ---- Reports ----

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		s.errorResponse(w, "channel query parameter required", http.StatusBadRequest)
		return
	}

	reports, err := s.attribution.Reports(r.Context(), channel)
	if err != nil {
		s.logger.Error("list reports failed", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, reports)
}

func (s *Server) handleReportByActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/reports/activity/")
	if id == "" {
		s.errorResponse(w, "activity id required", http.StatusBadRequest)
		return
	}

	report, err := s.attribution.Report(r.Context(), id)
	if err != nil {
		s.logger.Error("get report failed", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}
	if report == nil {
		s.errorResponse(w, "report not found", http.StatusNotFound)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	channel := r.URL.Query().Get("channel")
	if channel != "" {
		reports, err := s.attribution.ComputeChannel(r.Context(), channel)
		if err != nil {
			s.logger.Error("compute failed", zap.String("channel", channel), zap.Error(err))
			s.errorResponse(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, reports)
		return
	}

	if err := s.attribution.ComputeAll(r.Context()); err != nil {
		s.logger.Error("compute all failed", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, map[string]string{"status": "ok"})
}

// ---- Helpers ----

func (s *Server) jsonResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
