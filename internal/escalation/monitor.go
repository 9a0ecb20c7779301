// Package escalation watches critical blood requests, stock levels and the
// notification backlog, widening the response when requests go unanswered.
package escalation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bloodlink/internal/domain"
	"bloodlink/internal/escalation/metrics"
	"bloodlink/internal/inventory"
	"bloodlink/internal/matching"
	"bloodlink/internal/notify"
	"bloodlink/internal/ports"
	"bloodlink/internal/scheduler"
	id "bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/requestcontext"
)

// Store is the data store surface the monitor needs.
type Store interface {
	ports.RequestStore
	ports.MatchStore
	ports.BankStore
	ports.NotificationStore
}

// Matcher is the matching engine surface the monitor drives.
type Matcher interface {
	FindCompatibleDonors(ctx context.Context, req *domain.BloodRequest) (*matching.MatchResult, error)
	RankDonors(ctx context.Context, req *domain.BloodRequest, radiusKm float64) ([]domain.RankedDonor, error)
	FindDonorsByBloodType(ctx context.Context, bloodType id.BloodType, filters matching.DonorFilters) matching.LookupResult
}

// FollowUps schedules one-shot follow-up checks keyed by request id.
type FollowUps interface {
	Schedule(key string, delay time.Duration, task scheduler.Task) bool
	Cancel(key string) bool
}

type Monitor struct {
	store      Store
	matcher    Matcher
	dispatcher ports.Dispatcher
	followUps  FollowUps
	evaluator  *inventory.Evaluator
	cfg        Config
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer

	// sweepMu serializes sweeps so two runs never redeliver the same backlog.
	sweepMu sync.Mutex
}

type Option func(*Monitor)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) {
		m.metrics = mt
	}
}

func WithConfig(cfg Config) Option {
	return func(m *Monitor) {
		m.cfg = cfg
	}
}

func New(store Store, matcher Matcher, dispatcher ports.Dispatcher, followUps FollowUps, opts ...Option) *Monitor {
	m := &Monitor{
		store:      store,
		matcher:    matcher,
		dispatcher: dispatcher,
		followUps:  followUps,
		cfg:        DefaultConfig(),
		tracer:     otel.Tracer("bloodlink/escalation"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.evaluator = inventory.NewEvaluator(m.cfg.Thresholds)
	return m
}

// HandleCriticalRequest matches a newly critical request and notifies every
// ranked donor. With no donors the request is escalated at once. A follow-up
// check is scheduled in every case, including a failed match.
func (m *Monitor) HandleCriticalRequest(ctx context.Context, req *domain.BloodRequest) (*RequestOutcome, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "blood request is required")
	}
	ctx, span := m.tracer.Start(ctx, "escalation.HandleCriticalRequest", trace.WithAttributes(
		attribute.String("request_id", req.ID.String()),
		attribute.String("blood_type", string(req.BloodType)),
	))
	defer span.End()

	out := &RequestOutcome{}
	defer func() {
		out.FollowUpScheduled = m.ScheduleFollowUp(req.ID)
	}()

	result, err := m.matcher.FindCompatibleDonors(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, "matching failed")
		return out, err
	}
	out.Match = result

	if len(result.Donors) == 0 {
		esc, err := m.EscalateEmergencyRequest(ctx, req, domain.ReasonNoCompatibleDonors)
		out.Escalation = esc
		if err != nil {
			span.SetStatus(codes.Error, "escalation failed")
			return out, err
		}
		return out, nil
	}

	for _, d := range result.Donors {
		n := m.newNotification(ctx, &req.ID, domain.RecipientDonor, d.ID.String(), d.Contact,
			notify.DonorEmergencyMessage(req, d.DistanceKm))
		if m.send(ctx, n, ports.KindEmergencyRequest, req) {
			out.DonorsNotified++
		}
	}
	span.SetAttributes(attribute.Int("donors_notified", out.DonorsNotified))
	m.logInfo(ctx, "critical request handled",
		"request_id", req.ID.String(),
		"donors_found", len(result.Donors),
		"donors_notified", out.DonorsNotified,
	)
	return out, nil
}

// HandleRequest loads a pending request and routes it: critical requests go
// through HandleCriticalRequest, others are matched and the persisted top
// donors notified without a follow-up.
func (m *Monitor) HandleRequest(ctx context.Context, requestID id.RequestID) (*RequestOutcome, error) {
	req, err := m.store.GetBloodRequestByID(ctx, requestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood request")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "blood request not found")
	}
	if !req.IsPending() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "blood request is not pending")
	}
	if req.IsCritical() {
		return m.HandleCriticalRequest(ctx, req)
	}

	result, err := m.matcher.FindCompatibleDonors(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &RequestOutcome{Match: result}
	for _, match := range result.Persisted {
		d := donorFor(result.Donors, match.DonorID)
		if d == nil {
			continue
		}
		n := m.newNotification(ctx, &req.ID, domain.RecipientDonor, d.ID.String(), d.Contact,
			notify.DonorEmergencyMessage(req, d.DistanceKm))
		if m.send(ctx, n, ports.KindEmergencyRequest, req) {
			out.DonorsNotified++
		}
	}
	return out, nil
}

func donorFor(ranked []domain.RankedDonor, donorID id.DonorID) *domain.RankedDonor {
	for i := range ranked {
		if ranked[i].ID == donorID {
			return &ranked[i]
		}
	}
	return nil
}

// EscalateEmergencyRequest claims the escalation, re-searches donors at the
// emergency radius and alerts them, nearby blood banks and the requesting
// hospital. A request that is already escalated is left untouched.
func (m *Monitor) EscalateEmergencyRequest(ctx context.Context, req *domain.BloodRequest, reason domain.EscalationReason) (*EscalationOutcome, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "blood request is required")
	}
	ctx, span := m.tracer.Start(ctx, "escalation.EscalateEmergencyRequest", trace.WithAttributes(
		attribute.String("request_id", req.ID.String()),
		attribute.String("reason", string(reason)),
	))
	defer span.End()

	out := &EscalationOutcome{RequestID: req.ID, Reason: reason}
	now := requestcontext.Now(ctx)

	claimed, err := m.store.MarkRequestEscalated(ctx, req.ID, reason, now)
	if err != nil {
		span.SetStatus(codes.Error, "claim failed")
		return out, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark request escalated")
	}
	if !claimed {
		m.metrics.IncrementEscalationSkipped()
		m.logDebug(ctx, "request already escalated", "request_id", req.ID.String())
		return out, nil
	}
	out.Escalated = true
	req.EscalationState = domain.EscalationEscalated
	req.EscalationReason = reason
	req.EscalatedAt = &now

	donors, err := m.matcher.RankDonors(ctx, req, m.cfg.EmergencyRadiusKm)
	if err != nil {
		m.logWarn(ctx, "emergency donor search failed",
			"request_id", req.ID.String(),
			"error", err,
		)
	}
	for _, d := range donors {
		n := m.newNotification(ctx, &req.ID, domain.RecipientDonor, d.ID.String(), d.Contact,
			notify.DonorEmergencyMessage(req, d.DistanceKm))
		if m.send(ctx, n, ports.KindEscalation, req) {
			out.DonorsNotified++
		}
	}

	banks, err := m.store.GetNearbyBloodBanks(ctx, req.Location, m.cfg.EmergencyRadiusKm)
	if err != nil {
		m.logWarn(ctx, "nearby blood bank lookup failed",
			"request_id", req.ID.String(),
			"error", err,
		)
	}
	bankMsg := notify.EscalationBroadcastMessage(req, reason)
	for _, b := range banks {
		n := m.newNotification(ctx, &req.ID, domain.RecipientBloodBank, b.ID.String(), b.Contact, bankMsg)
		if m.send(ctx, n, ports.KindEscalation, req) {
			out.BanksNotified++
		}
	}

	hospital := m.newNotification(ctx, &req.ID, domain.RecipientHospital, req.HospitalID.String(), "",
		notify.HospitalEscalationMessage(req, reason, len(donors)))
	out.HospitalNotified = m.send(ctx, hospital, ports.KindEscalation, req)

	m.metrics.IncrementEscalation(string(reason))
	span.SetAttributes(
		attribute.Int("donors_notified", out.DonorsNotified),
		attribute.Int("banks_notified", out.BanksNotified),
	)
	m.logWarn(ctx, "blood request escalated",
		"request_id", req.ID.String(),
		"blood_type", req.BloodType,
		"reason", reason,
		"donors_notified", out.DonorsNotified,
		"banks_notified", out.BanksNotified,
		"hospital_notified", out.HospitalNotified,
	)
	return out, nil
}

// ScheduleFollowUp arms the one-shot follow-up for requestID after the
// critical response time, replacing any earlier one.
func (m *Monitor) ScheduleFollowUp(requestID id.RequestID) bool {
	if m.followUps == nil {
		return false
	}
	return m.followUps.Schedule(requestID.String(), m.cfg.CriticalResponseTime, func(ctx context.Context) {
		if _, err := m.CheckFollowUp(ctx, requestID); err != nil {
			m.logError(ctx, "follow-up check failed",
				"request_id", requestID.String(),
				"error", err,
			)
		}
	})
}

// CancelFollowUp drops the pending follow-up for a resolved request.
func (m *Monitor) CancelFollowUp(ctx context.Context, requestID id.RequestID) {
	if m.followUps == nil {
		return
	}
	if m.followUps.Cancel(requestID.String()) {
		m.logDebug(ctx, "follow-up cancelled", "request_id", requestID.String())
	}
}

// CheckFollowUp escalates the request with no_donor_response when it is
// still pending and no donor has responded to any of its matches. It returns
// nil when no escalation was needed.
func (m *Monitor) CheckFollowUp(ctx context.Context, requestID id.RequestID) (*EscalationOutcome, error) {
	req, err := m.store.GetBloodRequestByID(ctx, requestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood request")
	}
	if req == nil || !req.IsPending() || req.IsEscalated() {
		m.metrics.IncrementFollowUp("resolved")
		return nil, nil
	}
	matches, err := m.store.GetDonorMatches(ctx, requestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor matches")
	}
	for _, match := range matches {
		if match.HasResponse() {
			m.metrics.IncrementFollowUp("resolved")
			return nil, nil
		}
	}
	m.metrics.IncrementFollowUp("escalated")
	return m.EscalateEmergencyRequest(ctx, req, domain.ReasonNoDonorResponse)
}

func (m *Monitor) logDebug(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.DebugContext(ctx, msg, args...)
	}
}

func (m *Monitor) logInfo(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.InfoContext(ctx, msg, args...)
	}
}

func (m *Monitor) logWarn(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.WarnContext(ctx, msg, args...)
	}
}

func (m *Monitor) logError(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.ErrorContext(ctx, msg, args...)
	}
}
