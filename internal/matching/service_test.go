package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bloodlink/internal/compatibility"
	"bloodlink/internal/domain"
	"bloodlink/internal/storage"
	"bloodlink/internal/storage/generation"
	id "bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/testutil"
)

// stubStore serves fixed donor candidates per blood type on top of the
// in-memory store, optionally failing every donor query or the Nth match
// insert.
type stubStore struct {
	*storage.InMemoryStore
	byType      map[id.BloodType][]domain.DonorCandidate
	donorErr    error
	useMemory   bool
	matchErr    error
	failMatchAt int
	matchCalls  int
}

func (s *stubStore) CreateDonorMatch(ctx context.Context, m *domain.DonorMatch) error {
	s.matchCalls++
	if s.matchErr != nil && s.matchCalls == s.failMatchAt {
		return s.matchErr
	}
	return s.InMemoryStore.CreateDonorMatch(ctx, m)
}

func (s *stubStore) GetAvailableDonors(ctx context.Context, bt id.BloodType, loc domain.Location, radius float64) ([]domain.DonorCandidate, error) {
	if s.donorErr != nil {
		return nil, s.donorErr
	}
	if s.useMemory {
		return s.InMemoryStore.GetAvailableDonors(ctx, bt, loc, radius)
	}
	return s.byType[bt], nil
}

type ServiceSuite struct {
	suite.Suite
	now     time.Time
	ctx     context.Context
	store   *stubStore
	service *Service
	origin  domain.Location
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = testutil.At(s.now)
	s.origin = domain.Location{Latitude: 51.5074, Longitude: -0.1278}
	s.store = &stubStore{InMemoryStore: storage.NewInMemoryStore(), byType: map[id.BloodType][]domain.DonorCandidate{}}
	s.service = New(s.store, generation.NewMemoryCounter())
}

func (s *ServiceSuite) newRequest(bt id.BloodType, urgency id.Urgency) *domain.BloodRequest {
	req := &domain.BloodRequest{
		ID:          id.RequestID(uuid.New()),
		HospitalID:  id.HospitalID(uuid.New()),
		BloodType:   bt,
		Urgency:     urgency,
		UnitsNeeded: 2,
		Location:    s.origin,
		Deadline:    s.now.Add(12 * time.Hour),
		Status:      domain.RequestStatusPending,
		CreatedAt:   s.now,
	}
	s.store.AddRequest(req)
	return req
}

func (s *ServiceSuite) candidate(bt id.BloodType, distanceKm float64, mut func(*domain.Donor)) domain.DonorCandidate {
	lastDonation := s.now.AddDate(0, 0, -60)
	d := domain.Donor{
		ID:                id.DonorID(uuid.New()),
		BloodType:         bt,
		IsAvailable:       true,
		LastDonationDate:  &lastDonation,
		EligibilityStatus: domain.EligibilityEligible,
		TotalDonations:    5,
	}
	if mut != nil {
		mut(&d)
	}
	s.store.AddDonor(&d)
	return domain.DonorCandidate{Donor: d, DistanceKm: distanceKm}
}

func (s *ServiceSuite) TestFindCompatibleDonors() {
	s.Run("scores the reference O- high urgency donor at 192", func() {
		req := s.newRequest(id.BloodTypeONeg, id.UrgencyHigh)
		s.store.byType[id.BloodTypeONeg] = []domain.DonorCandidate{s.candidate(id.BloodTypeONeg, 10, nil)}

		res, err := s.service.FindCompatibleDonors(s.ctx, req)
		s.Require().NoError(err)
		s.Require().Len(res.Donors, 1)
		s.Equal(192, res.Donors[0].Score)
		s.Equal(100.0, res.SearchRadiusKm)
	})

	s.Run("de-duplicates donors returned under several types", func() {
		req := s.newRequest(id.BloodTypeABPos, id.UrgencyCritical)
		shared := s.candidate(id.BloodTypeONeg, 5, nil)
		for _, bt := range id.AllBloodTypes {
			s.store.byType[bt] = []domain.DonorCandidate{shared}
		}

		res, err := s.service.FindCompatibleDonors(s.ctx, req)
		s.Require().NoError(err)
		s.Len(res.Donors, 1)
		s.Len(res.Persisted, 1)
	})

	s.Run("persists only the top ten but returns every candidate", func() {
		s.store.byType = map[id.BloodType][]domain.DonorCandidate{}
		req := s.newRequest(id.BloodTypeONeg, id.UrgencyCritical)
		for i := 0; i < 15; i++ {
			s.store.byType[id.BloodTypeONeg] = append(s.store.byType[id.BloodTypeONeg],
				s.candidate(id.BloodTypeONeg, float64(i), nil))
		}

		res, err := s.service.FindCompatibleDonors(s.ctx, req)
		s.Require().NoError(err)
		s.Len(res.Donors, 15)
		s.Len(res.Persisted, MaxPersistedMatches)
		for i := 1; i < len(res.Donors); i++ {
			s.GreaterOrEqual(res.Donors[i-1].Score, res.Donors[i].Score)
		}

		stored, err := s.store.GetDonorMatches(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Len(stored, MaxPersistedMatches)
		s.Equal(res.Donors[0].ID, stored[0].DonorID)
		s.Equal(21*time.Minute, res.EstimatedResponse)
	})

	s.Run("zero AB- donors on a critical request triples the response estimate", func() {
		s.store.byType = map[id.BloodType][]domain.DonorCandidate{}
		req := s.newRequest(id.BloodTypeABNeg, id.UrgencyCritical)

		res, err := s.service.FindCompatibleDonors(s.ctx, req)
		s.Require().NoError(err)
		s.Empty(res.Donors)
		s.Equal(200.0, res.SearchRadiusKm)
		s.Equal(90*time.Minute, res.EstimatedResponse)
	})

	s.Run("store failure propagates as internal error", func() {
		req := s.newRequest(id.BloodTypeONeg, id.UrgencyHigh)
		s.store.donorErr = errors.New("connection reset")
		defer func() { s.store.donorErr = nil }()

		res, err := s.service.FindCompatibleDonors(s.ctx, req)
		s.Nil(res)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.ErrorContains(err, "connection reset")
	})

	s.Run("nil request is invalid input", func() {
		_, err := s.service.FindCompatibleDonors(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestTieBreak() {
	req := s.newRequest(id.BloodTypeONeg, id.UrgencyCritical)
	far := s.candidate(id.BloodTypeONeg, 40, nil)
	near := s.candidate(id.BloodTypeONeg, 5, nil)
	// beyond 25 km the distance term is zero, so these two tie on score
	tieA := s.candidate(id.BloodTypeONeg, 30, nil)
	tieB := s.candidate(id.BloodTypeONeg, 30, nil)
	s.store.byType[id.BloodTypeONeg] = []domain.DonorCandidate{far, tieB, near, tieA}

	res, err := s.service.FindCompatibleDonors(s.ctx, req)
	s.Require().NoError(err)
	s.Require().Len(res.Donors, 4)

	s.Equal(near.ID, res.Donors[0].ID)
	s.Equal(res.Donors[1].Score, res.Donors[2].Score)
	s.Equal(res.Donors[2].Score, res.Donors[3].Score)

	ties := []id.DonorID{res.Donors[1].ID, res.Donors[2].ID}
	s.Less(ties[0].String(), ties[1].String())
	s.ElementsMatch([]id.DonorID{tieA.ID, tieB.ID}, ties)
	s.Equal(far.ID, res.Donors[3].ID)
}

func (s *ServiceSuite) TestGenerations() {
	req := s.newRequest(id.BloodTypeONeg, id.UrgencyHigh)
	s.store.byType[id.BloodTypeONeg] = []domain.DonorCandidate{s.candidate(id.BloodTypeONeg, 3, nil)}

	first, err := s.service.FindCompatibleDonors(s.ctx, req)
	s.Require().NoError(err)
	second, err := s.service.FindCompatibleDonors(s.ctx, req)
	s.Require().NoError(err)

	s.Equal(int64(1), first.Generation)
	s.Equal(int64(2), second.Generation)

	stored, err := s.store.GetDonorMatches(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Len(stored, 2, "matches are appended, never replaced")

	reloaded, err := s.store.GetBloodRequestByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), reloaded.MatchGeneration)

	s.Run("stale generation cannot be answered", func() {
		_, err := s.service.RespondToMatch(s.ctx, first.Persisted[0].ID, domain.ResponseAccepted)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *ServiceSuite) TestPersistIsAllOrNothing() {
	req := s.newRequest(id.BloodTypeONeg, id.UrgencyHigh)
	for i := range 5 {
		s.store.byType[id.BloodTypeONeg] = append(s.store.byType[id.BloodTypeONeg], s.candidate(id.BloodTypeONeg, float64(i+1), nil))
	}
	s.store.matchErr = errors.New("disk full")
	s.store.failMatchAt = 3

	_, err := s.service.FindCompatibleDonors(s.ctx, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	stored, err := s.store.GetDonorMatches(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Empty(stored, "no rows of the failed generation remain")

	reloaded, err := s.store.GetBloodRequestByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), reloaded.MatchGeneration)

	s.Run("the next invocation persists a complete generation", func() {
		s.store.matchErr = nil
		res, err := s.service.FindCompatibleDonors(s.ctx, req)
		s.Require().NoError(err)
		s.Len(res.Persisted, 5)

		stored, err := s.store.GetDonorMatches(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Len(stored, 5)
		for _, m := range stored {
			s.Equal(res.Generation, m.Generation)
		}
	})
}

func (s *ServiceSuite) TestRespondToMatch() {
	req := s.newRequest(id.BloodTypeONeg, id.UrgencyCritical)
	s.store.byType[id.BloodTypeONeg] = []domain.DonorCandidate{
		s.candidate(id.BloodTypeONeg, 3, nil),
		s.candidate(id.BloodTypeONeg, 6, nil),
	}
	var resolved []id.RequestID
	s.service.SetOnResolved(func(_ context.Context, requestID id.RequestID) {
		resolved = append(resolved, requestID)
	})

	res, err := s.service.FindCompatibleDonors(s.ctx, req)
	s.Require().NoError(err)
	s.Require().Len(res.Persisted, 2)

	s.Run("decline leaves the request pending", func() {
		m, err := s.service.RespondToMatch(s.ctx, res.Persisted[1].ID, domain.ResponseDeclined)
		s.Require().NoError(err)
		s.Equal(domain.ResponseDeclined, *m.Response)

		got, err := s.store.GetBloodRequestByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusPending, got.Status)
		s.Empty(resolved)
	})

	s.Run("accept marks the request matched and fires the hook", func() {
		m, err := s.service.RespondToMatch(s.ctx, res.Persisted[0].ID, domain.ResponseAccepted)
		s.Require().NoError(err)
		s.Equal(s.now, *m.RespondedAt)

		got, err := s.store.GetBloodRequestByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.RequestStatusMatched, got.Status)
		s.Equal([]id.RequestID{req.ID}, resolved)
	})

	s.Run("a second answer conflicts", func() {
		_, err := s.service.RespondToMatch(s.ctx, res.Persisted[1].ID, domain.ResponseAccepted)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState), "request is no longer pending")

		_, err = s.service.RespondToMatch(s.ctx, res.Persisted[1].ID, domain.ResponseDeclined)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown match and bad response", func() {
		_, err := s.service.RespondToMatch(s.ctx, id.MatchID(uuid.New()), domain.ResponseAccepted)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.RespondToMatch(s.ctx, res.Persisted[0].ID, domain.DonorResponse("maybe"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestFindDonorsByBloodType() {
	s.Run("returns donors within the filter", func() {
		c := s.candidate(id.BloodTypeBNeg, 2, nil)
		s.store.byType[id.BloodTypeBNeg] = []domain.DonorCandidate{c, s.candidate(id.BloodTypeBNeg, 4, nil)}

		res := s.service.FindDonorsByBloodType(s.ctx, id.BloodTypeBNeg, DonorFilters{Location: s.origin, Limit: 1})
		s.False(res.Degraded)
		s.Require().Len(res.Donors, 1)
		s.Equal(c.ID, res.Donors[0].ID)
	})

	s.Run("store failure is swallowed into a degraded result", func() {
		cause := errors.New("timeout")
		s.store.donorErr = cause
		defer func() { s.store.donorErr = nil }()

		res := s.service.FindDonorsByBloodType(s.ctx, id.BloodTypeBNeg, DonorFilters{Location: s.origin})
		s.True(res.Degraded)
		s.ErrorIs(res.Cause, cause)
		s.NotNil(res.Donors)
		s.Empty(res.Donors)
	})
}

func (s *ServiceSuite) TestFindPendingRequestsForDonor() {
	s.store.useMemory = true
	donor := &domain.Donor{ID: id.DonorID(uuid.New()), BloodType: id.BloodTypeONeg, IsAvailable: true}
	s.store.AddDonor(donor)

	low := s.newRequest(id.BloodTypeAPos, id.UrgencyLow)
	criticalLate := s.newRequest(id.BloodTypeBNeg, id.UrgencyCritical)
	criticalSoon := s.newRequest(id.BloodTypeABPos, id.UrgencyCritical)
	s.store.AddRequest(withDeadline(criticalSoon, s.now.Add(time.Hour)))
	expired := s.newRequest(id.BloodTypeONeg, id.UrgencyCritical)
	s.store.AddRequest(withDeadline(expired, s.now.Add(-time.Minute)))

	got, err := s.service.FindPendingRequestsForDonor(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(criticalSoon.ID, got[0].ID)
	s.Equal(criticalLate.ID, got[1].ID)
	s.Equal(low.ID, got[2].ID)

	s.Run("AB+ donor only serves AB+", func() {
		abDonor := &domain.Donor{ID: id.DonorID(uuid.New()), BloodType: id.BloodTypeABPos}
		s.store.AddDonor(abDonor)
		got, err := s.service.FindPendingRequestsForDonor(s.ctx, abDonor.ID)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(criticalSoon.ID, got[0].ID)
	})

	s.Run("unknown donor yields an empty list", func() {
		got, err := s.service.FindPendingRequestsForDonor(s.ctx, id.DonorID(uuid.New()))
		s.Require().NoError(err)
		s.Empty(got)
	})
}

func (s *ServiceSuite) TestReloadScoring() {
	req := s.newRequest(id.BloodTypeONeg, id.UrgencyHigh)
	s.store.byType[id.BloodTypeONeg] = []domain.DonorCandidate{s.candidate(id.BloodTypeONeg, 10, nil)}

	s.Run("invalid configuration is rejected and the old one kept", func() {
		bad := compatibility.DefaultConfig()
		delete(bad.DonatesTo, id.BloodTypeONeg)
		err := s.service.ReloadScoring(s.ctx, bad)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		res, err := s.service.FindCompatibleDonors(s.ctx, req)
		s.Require().NoError(err)
		s.Equal(192, res.Donors[0].Score)
	})

	s.Run("new weights apply to later invocations", func() {
		cfg := compatibility.DefaultConfig()
		cfg.UrgencyWeights[id.UrgencyHigh] = 0.5
		s.Require().NoError(s.service.ReloadScoring(s.ctx, cfg))

		res, err := s.service.FindCompatibleDonors(s.ctx, req)
		s.Require().NoError(err)
		s.Equal(120, res.Donors[0].Score, fmt.Sprintf("240 * 0.5, got %d", res.Donors[0].Score))
	})
}

func withDeadline(r *domain.BloodRequest, deadline time.Time) *domain.BloodRequest {
	r.Deadline = deadline
	return r
}
