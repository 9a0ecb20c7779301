// Package matching ranks candidate donors against blood requests and records
// donor responses to the resulting matches.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bloodlink/internal/compatibility"
	"bloodlink/internal/domain"
	"bloodlink/internal/matching/metrics"
	"bloodlink/internal/ports"
	id "bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

// Store is the data store surface the matching engine needs.
type Store interface {
	ports.TxRunner
	ports.DonorStore
	ports.RequestStore
	ports.MatchStore
}

// Service is the matching engine. It holds no per-request state; the scoring
// configuration is an immutable Scorer swapped atomically on reload.
type Service struct {
	store       Store
	generations ports.GenerationCounter
	scorer      atomic.Pointer[compatibility.Scorer]
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	onResolved  func(ctx context.Context, requestID id.RequestID)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithScorer replaces the default scoring configuration.
func WithScorer(scorer *compatibility.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer.Store(scorer)
		}
	}
}

// WithOnResolved registers a hook fired after a donor accepts a match and
// the request moves to matched.
func WithOnResolved(fn func(ctx context.Context, requestID id.RequestID)) Option {
	return func(s *Service) {
		s.onResolved = fn
	}
}

func New(store Store, generations ports.GenerationCounter, opts ...Option) *Service {
	s := &Service{
		store:       store,
		generations: generations,
		tracer:      otel.Tracer("bloodlink/matching"),
	}
	s.scorer.Store(compatibility.Default())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOnResolved registers the resolution hook after construction, for wiring
// that would otherwise be circular.
func (s *Service) SetOnResolved(fn func(ctx context.Context, requestID id.RequestID)) {
	s.onResolved = fn
}

// Scorer returns the scoring configuration currently in effect.
func (s *Service) Scorer() *compatibility.Scorer {
	return s.scorer.Load()
}

// ReloadScoring validates cfg and swaps it in atomically. In-flight
// invocations finish with the scorer they started with.
func (s *Service) ReloadScoring(ctx context.Context, cfg compatibility.Config) error {
	scorer, err := compatibility.NewScorer(cfg)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid scoring configuration")
	}
	s.scorer.Store(scorer)
	s.logInfo(ctx, "scoring configuration reloaded")
	return nil
}

// FindCompatibleDonors ranks every available compatible donor within the
// urgency search radius, persists the top MaxPersistedMatches as a new match
// generation and returns the full ranked list. The match rows and the
// generation advance are written in one unit of work. Store failures propagate.
func (s *Service) FindCompatibleDonors(ctx context.Context, req *domain.BloodRequest) (*MatchResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "blood request is required")
	}
	start := time.Now()
	defer func() { s.metrics.ObserveMatchLatency(time.Since(start)) }()

	ctx, span := s.tracer.Start(ctx, "matching.FindCompatibleDonors", trace.WithAttributes(
		attribute.String("request_id", req.ID.String()),
		attribute.String("blood_type", string(req.BloodType)),
		attribute.String("urgency", string(req.Urgency)),
	))
	defer span.End()

	scorer := s.scorer.Load()
	radius := scorer.SearchRadius(req.Urgency)

	ranked, err := s.rank(ctx, scorer, req, radius)
	if err != nil {
		span.SetStatus(codes.Error, "donor search failed")
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search compatible donors")
	}
	s.metrics.ObserveCandidates(len(ranked))

	gen, err := s.generations.Next(ctx, req.ID)
	if err != nil {
		span.SetStatus(codes.Error, "generation unavailable")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate match generation")
	}

	var persisted []*domain.DonorMatch
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if persisted, err = s.persistTop(ctx, req, ranked, gen); err != nil {
			return err
		}
		if err := s.store.AdvanceMatchGeneration(ctx, req.ID, gen); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, "persist matches failed")
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist donor matches")
	}
	s.metrics.AddMatchesPersisted(string(req.Urgency), len(persisted))

	span.SetAttributes(
		attribute.Int("candidates", len(ranked)),
		attribute.Int64("generation", gen),
	)
	s.logDebug(ctx, "compatible donors ranked",
		"request_id", req.ID.String(),
		"candidates", len(ranked),
		"persisted", len(persisted),
		"generation", gen,
		"radius_km", radius,
	)

	return &MatchResult{
		RequestID:         req.ID,
		Generation:        gen,
		SearchRadiusKm:    radius,
		Donors:            ranked,
		Persisted:         persisted,
		EstimatedResponse: scorer.EstimatedResponseTime(req.Urgency, len(ranked)),
	}, nil
}

// RankDonors ranks compatible donors within radiusKm without persisting
// anything. Escalation uses it to re-search at the emergency radius.
func (s *Service) RankDonors(ctx context.Context, req *domain.BloodRequest, radiusKm float64) ([]domain.RankedDonor, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "blood request is required")
	}
	ctx, span := s.tracer.Start(ctx, "matching.RankDonors", trace.WithAttributes(
		attribute.String("request_id", req.ID.String()),
		attribute.Float64("radius_km", radiusKm),
	))
	defer span.End()

	ranked, err := s.rank(ctx, s.scorer.Load(), req, radiusKm)
	if err != nil {
		span.SetStatus(codes.Error, "donor search failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search compatible donors")
	}
	return ranked, nil
}

// FindDonorsByBloodType queries one blood type directly. A store failure is
// swallowed into a degraded, empty LookupResult.
func (s *Service) FindDonorsByBloodType(ctx context.Context, bloodType id.BloodType, filters DonorFilters) LookupResult {
	radius := filters.RadiusKm
	if radius <= 0 {
		radius = s.scorer.Load().Config().DefaultRadiusKm
	}
	donors, err := s.store.GetAvailableDonors(ctx, bloodType, filters.Location, radius)
	if err != nil {
		s.metrics.IncrementDegradedLookup()
		s.logWarn(ctx, "donor lookup failed, returning empty result",
			"blood_type", bloodType,
			"radius_km", radius,
			"error", err,
		)
		return LookupResult{Donors: []domain.DonorCandidate{}, Degraded: true, Cause: err}
	}
	if filters.Limit > 0 && len(donors) > filters.Limit {
		donors = donors[:filters.Limit]
	}
	return LookupResult{Donors: donors}
}

// FindPendingRequestsForDonor lists pending, unexpired requests the donor can
// serve, most urgent first and then by deadline. An unknown donor yields an
// empty list.
func (s *Service) FindPendingRequestsForDonor(ctx context.Context, donorID id.DonorID) ([]*domain.BloodRequest, error) {
	donor, err := s.store.GetDonorByID(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor")
	}
	if donor == nil {
		return []*domain.BloodRequest{}, nil
	}

	now := requestcontext.Now(ctx)
	types := s.scorer.Load().RecipientTypes(donor.BloodType)
	perType := make([][]*domain.BloodRequest, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, bt := range types {
		g.Go(func() error {
			reqs, err := s.store.GetPendingRequestsByBloodType(gctx, bt, now)
			if err != nil {
				return fmt.Errorf("pending requests for %s: %w", bt, err)
			}
			perType[i] = reqs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending requests")
	}

	seen := make(map[id.RequestID]struct{})
	out := []*domain.BloodRequest{}
	for _, reqs := range perType {
		for _, r := range reqs {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Urgency.Rank() != b.Urgency.Rank() {
			return a.Urgency.Rank() > b.Urgency.Rank()
		}
		if !a.Deadline.Equal(b.Deadline) {
			if a.Deadline.IsZero() || b.Deadline.IsZero() {
				return b.Deadline.IsZero()
			}
			return a.Deadline.Before(b.Deadline)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

// RespondToMatch records a donor's answer once. Matches from a superseded
// generation are rejected. An acceptance moves the request to matched and
// fires the resolution hook.
func (s *Service) RespondToMatch(ctx context.Context, matchID id.MatchID, response domain.DonorResponse) (*domain.DonorMatch, error) {
	if !response.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "response must be accepted or declined")
	}
	match, err := s.store.GetDonorMatchByID(ctx, matchID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load match")
	}
	if match == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "match not found")
	}
	req, err := s.store.GetBloodRequestByID(ctx, match.RequestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood request")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "blood request not found")
	}
	if match.Generation < req.MatchGeneration {
		s.metrics.IncrementResponse("stale")
		return nil, dErrors.New(dErrors.CodeInvalidState, "match has been superseded by a newer generation")
	}
	if response == domain.ResponseAccepted && !req.IsPending() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "blood request is no longer pending")
	}

	now := requestcontext.Now(ctx)
	if err := s.store.RecordDonorResponse(ctx, matchID, response, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "donor has already responded to this match")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "match not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record donor response")
		}
	}
	match.Response = &response
	match.RespondedAt = &now
	s.metrics.IncrementResponse(string(response))

	if response == domain.ResponseAccepted {
		notes := "accepted by donor " + match.DonorID.String()
		if err := s.store.UpdateBloodRequestStatus(ctx, req.ID, domain.RequestStatusMatched, notes); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark request matched")
		}
		s.logInfo(ctx, "donor accepted match",
			"request_id", req.ID.String(),
			"donor_id", match.DonorID.String(),
			"generation", match.Generation,
		)
		if s.onResolved != nil {
			s.onResolved(ctx, req.ID)
		}
	}
	return match, nil
}

// rank queries every compatible donor type concurrently, de-duplicates by
// donor and orders by score desc, distance asc, donor id asc.
func (s *Service) rank(ctx context.Context, scorer *compatibility.Scorer, req *domain.BloodRequest, radiusKm float64) ([]domain.RankedDonor, error) {
	types := scorer.CompatibleDonorTypes(req.BloodType)
	perType := make([][]domain.DonorCandidate, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, bt := range types {
		g.Go(func() error {
			donors, err := s.store.GetAvailableDonors(gctx, bt, req.Location, radiusKm)
			if err != nil {
				return fmt.Errorf("available donors for %s: %w", bt, err)
			}
			perType[i] = donors
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	seen := make(map[id.DonorID]struct{})
	ranked := []domain.RankedDonor{}
	for _, donors := range perType {
		for _, c := range donors {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			ranked = append(ranked, domain.RankedDonor{
				DonorCandidate: c,
				Score:          scorer.Score(&c.Donor, req, c.DistanceKm, now),
			})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.ID.String() < b.ID.String()
	})
	return ranked, nil
}

func (s *Service) persistTop(ctx context.Context, req *domain.BloodRequest, ranked []domain.RankedDonor, gen int64) ([]*domain.DonorMatch, error) {
	n := min(len(ranked), MaxPersistedMatches)
	now := requestcontext.Now(ctx)
	persisted := make([]*domain.DonorMatch, 0, n)
	for _, d := range ranked[:n] {
		m := &domain.DonorMatch{
			ID:         id.MatchID(uuid.New()),
			RequestID:  req.ID,
			DonorID:    d.ID,
			Score:      d.Score,
			DistanceKm: d.DistanceKm,
			Generation: gen,
			CreatedAt:  now,
		}
		if err := s.store.CreateDonorMatch(ctx, m); err != nil {
			return nil, err
		}
		persisted = append(persisted, m)
	}
	return persisted, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}

func (s *Service) logDebug(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.DebugContext(ctx, msg, args...)
	}
}
