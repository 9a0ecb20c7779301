package compatibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// staticTable is written out independently of DefaultConfig so the test
// catches a typo in either.
var staticTable = map[id.BloodType]map[id.BloodType]bool{
	id.BloodTypeONeg:  {"O-": true, "O+": true, "A-": true, "A+": true, "B-": true, "B+": true, "AB-": true, "AB+": true},
	id.BloodTypeOPos:  {"O+": true, "A+": true, "B+": true, "AB+": true},
	id.BloodTypeANeg:  {"A-": true, "A+": true, "AB-": true, "AB+": true},
	id.BloodTypeAPos:  {"A+": true, "AB+": true},
	id.BloodTypeBNeg:  {"B-": true, "B+": true, "AB-": true, "AB+": true},
	id.BloodTypeBPos:  {"B+": true, "AB+": true},
	id.BloodTypeABNeg: {"AB-": true, "AB+": true},
	id.BloodTypeABPos: {"AB+": true},
}

func TestCompatibilityTable(t *testing.T) {
	s := Default()

	for _, donor := range id.AllBloodTypes {
		for _, recipient := range id.AllBloodTypes {
			want := staticTable[donor][recipient]
			assert.Equal(t, want, s.IsBloodTypeCompatible(donor, recipient), "%s -> %s", donor, recipient)
			assert.Equal(t, want, contains(s.CompatibleDonorTypes(recipient), donor), "donors for %s include %s", recipient, donor)
			assert.Equal(t, want, contains(s.RecipientTypes(donor), recipient), "recipients of %s include %s", donor, recipient)
		}
	}

	t.Run("O- is universal donor", func(t *testing.T) {
		assert.Len(t, s.RecipientTypes(id.BloodTypeONeg), 8)
	})
	t.Run("AB+ is universal recipient", func(t *testing.T) {
		assert.Len(t, s.CompatibleDonorTypes(id.BloodTypeABPos), 8)
	})
	t.Run("AB+ donor serves only AB+", func(t *testing.T) {
		assert.Equal(t, []id.BloodType{id.BloodTypeABPos}, s.RecipientTypes(id.BloodTypeABPos))
	})
	t.Run("AB- recipient accepts negatives only", func(t *testing.T) {
		assert.Equal(t,
			[]id.BloodType{id.BloodTypeONeg, id.BloodTypeANeg, id.BloodTypeBNeg, id.BloodTypeABNeg},
			s.CompatibleDonorTypes(id.BloodTypeABNeg))
	})
}

func TestSearchRadius(t *testing.T) {
	s := Default()
	assert.Equal(t, 200.0, s.SearchRadius(id.UrgencyCritical))
	assert.Equal(t, 100.0, s.SearchRadius(id.UrgencyHigh))
	assert.Equal(t, 50.0, s.SearchRadius(id.UrgencyMedium))
	assert.Equal(t, 25.0, s.SearchRadius(id.UrgencyLow))
	assert.Equal(t, 50.0, s.SearchRadius(id.Urgency("whenever")))
}

func TestEstimatedResponseTime(t *testing.T) {
	s := Default()
	tests := []struct {
		urgency id.Urgency
		count   int
		want    time.Duration
	}{
		{id.UrgencyCritical, 0, 90 * time.Minute},
		{id.UrgencyCritical, 2, 45 * time.Minute},
		{id.UrgencyCritical, 3, 30 * time.Minute},
		{id.UrgencyCritical, 10, 30 * time.Minute},
		{id.UrgencyCritical, 11, 21 * time.Minute},
		{id.UrgencyHigh, 5, 120 * time.Minute},
		{id.UrgencyMedium, 5, 360 * time.Minute},
		{id.UrgencyLow, 0, 2160 * time.Minute},
		{id.Urgency("unknown"), 5, 360 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.EstimatedResponseTime(tt.urgency, tt.count), "%s/%d", tt.urgency, tt.count)
	}
}

func TestScore(t *testing.T) {
	s := Default()
	sixtyDaysAgo := testNow.AddDate(0, 0, -60)

	baseDonor := func() *domain.Donor {
		return &domain.Donor{
			BloodType:         id.BloodTypeONeg,
			IsAvailable:       true,
			LastDonationDate:  &sixtyDaysAgo,
			EligibilityStatus: domain.EligibilityEligible,
			TotalDonations:    5,
		}
	}

	t.Run("O- donor for O- high urgency request at 10km", func(t *testing.T) {
		req := &domain.BloodRequest{BloodType: id.BloodTypeONeg, Urgency: id.UrgencyHigh}
		// (100 + 20 + 30 + 30 + 15 + 20 + 15 + 10) * 0.8 = 192
		assert.Equal(t, 192, s.Score(baseDonor(), req, 10, testNow))
	})

	t.Run("incompatible type scores zero", func(t *testing.T) {
		d := baseDonor()
		d.BloodType = id.BloodTypeABPos
		req := &domain.BloodRequest{BloodType: id.BloodTypeONeg, Urgency: id.UrgencyCritical}
		assert.Equal(t, 0, s.Score(d, req, 0, testNow))
	})

	t.Run("availability window bonuses", func(t *testing.T) {
		req := &domain.BloodRequest{BloodType: id.BloodTypeONeg, Urgency: id.UrgencyCritical}
		open := s.Score(baseDonor(), req, 100, testNow)

		long := baseDonor()
		until := testNow.Add(48 * time.Hour)
		long.AvailableUntil = &until

		short := baseDonor()
		soon := testNow.Add(2 * time.Hour)
		short.AvailableUntil = &soon

		unavailable := baseDonor()
		unavailable.IsAvailable = false

		assert.Equal(t, open-5, s.Score(long, req, 100, testNow))
		assert.Equal(t, open-15, s.Score(short, req, 100, testNow))
		assert.Equal(t, open-45, s.Score(unavailable, req, 100, testNow))
	})

	t.Run("donation recency bonuses", func(t *testing.T) {
		req := &domain.BloodRequest{BloodType: id.BloodTypeONeg, Urgency: id.UrgencyCritical}
		recovered := s.Score(baseDonor(), req, 100, testNow)

		partial := baseDonor()
		thirtyDaysAgo := testNow.AddDate(0, 0, -30)
		partial.LastDonationDate = &thirtyDaysAgo

		recent := baseDonor()
		tenDaysAgo := testNow.AddDate(0, 0, -10)
		recent.LastDonationDate = &tenDaysAgo

		never := baseDonor()
		never.LastDonationDate = nil

		assert.Equal(t, recovered-10, s.Score(partial, req, 100, testNow))
		assert.Equal(t, recovered-20, s.Score(recent, req, 100, testNow))
		assert.Equal(t, recovered+5, s.Score(never, req, 100, testNow))
	})

	t.Run("experience bonus is capped", func(t *testing.T) {
		req := &domain.BloodRequest{BloodType: id.BloodTypeONeg, Urgency: id.UrgencyCritical}
		veteran := baseDonor()
		veteran.TotalDonations = 40
		assert.Equal(t, s.Score(baseDonor(), req, 100, testNow), s.Score(veteran, req, 100, testNow))
	})

	t.Run("non-increasing in distance and never negative", func(t *testing.T) {
		for _, u := range []id.Urgency{id.UrgencyCritical, id.UrgencyHigh, id.UrgencyMedium, id.UrgencyLow, "other"} {
			req := &domain.BloodRequest{BloodType: id.BloodTypeABPos, Urgency: u}
			prev := s.Score(baseDonor(), req, 0, testNow)
			for km := 0.5; km <= 400; km += 0.5 {
				got := s.Score(baseDonor(), req, km, testNow)
				require.GreaterOrEqual(t, got, 0)
				require.LessOrEqual(t, got, prev, "urgency %s at %.1fkm", u, km)
				prev = got
			}
		}
	})
}

func TestNewScorer_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	delete(cfg.DonatesTo, id.BloodTypeBNeg)
	_, err := NewScorer(cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.SearchRadiusKm[id.UrgencyLow] = 0
	_, err = NewScorer(cfg)
	require.Error(t, err)
}

func TestScorer_CopiesConfig(t *testing.T) {
	cfg := DefaultConfig()
	s, err := NewScorer(cfg)
	require.NoError(t, err)

	cfg.SearchRadiusKm[id.UrgencyCritical] = 1
	cfg.DonatesTo[id.BloodTypeABPos] = id.AllBloodTypes

	assert.Equal(t, 200.0, s.SearchRadius(id.UrgencyCritical))
	assert.False(t, s.IsBloodTypeCompatible(id.BloodTypeABPos, id.BloodTypeONeg))
}

func contains(types []id.BloodType, want id.BloodType) bool {
	for _, bt := range types {
		if bt == want {
			return true
		}
	}
	return false
}
