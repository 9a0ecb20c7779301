// Package httptransport exposes the operational HTTP surface: health and
// readiness probes, the Prometheus scrape endpoint and operator-only admin
// actions.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bloodlink/internal/compatibility"
	"bloodlink/internal/domain"
	"bloodlink/internal/escalation"
	"bloodlink/internal/inventory"
	"bloodlink/internal/platform/metrics"
	"bloodlink/internal/platform/middleware"
	id "bloodlink/pkg/domain"
)

// Operations is the escalation surface the admin endpoints drive.
type Operations interface {
	Sweep(ctx context.Context) escalation.SweepReport
	InventoryReport(ctx context.Context, bankID id.BankID) ([]inventory.Evaluation, error)
	HandleRequest(ctx context.Context, requestID id.RequestID) (*escalation.RequestOutcome, error)
}

// Matching is the matching surface the admin endpoints drive.
type Matching interface {
	RespondToMatch(ctx context.Context, matchID id.MatchID, response domain.DonorResponse) (*domain.DonorMatch, error)
	FindPendingRequestsForDonor(ctx context.Context, donorID id.DonorID) ([]*domain.BloodRequest, error)
	Scorer() *compatibility.Scorer
	ReloadScoring(ctx context.Context, cfg compatibility.Config) error
}

// Pinger is a readiness dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the ops endpoints.
type Handler struct {
	ops          Operations
	matching     Matching
	checks       map[string]Pinger
	logger       *slog.Logger
	gatherer     prometheus.Gatherer
	httpMetrics  *metrics.Metrics
	pingTimeout  time.Duration
	operatorAuth middleware.OperatorValidator
}

type Option func(*Handler)

// WithReadinessCheck adds a named dependency to /readyz.
func WithReadinessCheck(name string, p Pinger) Option {
	return func(h *Handler) {
		if p != nil {
			h.checks[name] = p
		}
	}
}

// WithOperatorAuth enables the /admin routes behind operator tokens. Without
// it the admin routes are not mounted.
func WithOperatorAuth(v middleware.OperatorValidator) Option {
	return func(h *Handler) {
		h.operatorAuth = v
	}
}

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.gatherer = g
	}
}

// WithHTTPMetrics records per-route request metrics.
func WithHTTPMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.httpMetrics = m
	}
}

func NewHandler(ops Operations, matching Matching, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		ops:         ops,
		matching:    matching,
		checks:      map[string]Pinger{},
		logger:      logger,
		gatherer:    prometheus.DefaultGatherer,
		pingTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires the ops endpoints behind the common middleware chain.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientIP)
	r.Use(chimw.Recoverer)
	if h.httpMetrics != nil {
		r.Use(middleware.Instrument(h.httpMetrics))
	}

	r.Get("/healthz", h.HandleHealth)
	r.Get("/readyz", h.HandleReady)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	if h.operatorAuth != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperator(h.operatorAuth, h.logger))
			r.Post("/admin/sweep", h.HandleSweep)
			r.Get("/admin/inventory/{bankID}", h.HandleInventory)
			r.Post("/admin/requests/{requestID}/dispatch", h.HandleDispatchRequest)
			r.Post("/admin/matches/{matchID}/response", h.HandleMatchResponse)
			r.Get("/admin/donors/{donorID}/requests", h.HandleDonorRequests)
			r.Get("/admin/scoring", h.HandleGetScoring)
			r.Post("/admin/scoring", h.HandleUpdateScoring)
		})
	}
	return r
}
