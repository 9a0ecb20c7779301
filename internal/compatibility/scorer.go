// Package compatibility holds the pure rules of donor matching: the ABO/Rh
// compatibility table, urgency-driven search radius, donor scoring, and
// response-time estimates. Nothing here performs I/O.
package compatibility

import (
	"math"
	"time"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
)

// Score components.
const (
	compatibleBase       = 100.0
	exactMatchBonus      = 20.0
	distanceCeiling      = 50.0
	distancePenaltyPerKm = 2.0
	availableBonus       = 30.0
	longWindowBonus      = 10.0
	openWindowBonus      = 15.0
	recoveredBonus       = 20.0
	partialRecoveryBonus = 10.0
	firstTimeBonus       = 25.0
	eligibleBonus        = 15.0
	perDonationBonus     = 2.0
	experienceCap        = 10.0

	longWindow          = 24 * time.Hour
	fullRecoveryDays    = 56
	partialRecoveryDays = 28
)

// Scorer applies a Config. It is safe for concurrent use; its state never
// changes after construction.
type Scorer struct {
	cfg        Config
	canDonate  map[id.BloodType]map[id.BloodType]bool
	donorTypes map[id.BloodType][]id.BloodType
}

// NewScorer validates and copies cfg.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clone()

	s := &Scorer{
		cfg:        cfg,
		canDonate:  make(map[id.BloodType]map[id.BloodType]bool, len(cfg.DonatesTo)),
		donorTypes: make(map[id.BloodType][]id.BloodType, len(id.AllBloodTypes)),
	}
	for donor, recipients := range cfg.DonatesTo {
		row := make(map[id.BloodType]bool, len(recipients))
		for _, r := range recipients {
			row[r] = true
		}
		s.canDonate[donor] = row
	}
	for _, recipient := range id.AllBloodTypes {
		for _, donor := range id.AllBloodTypes {
			if s.canDonate[donor][recipient] {
				s.donorTypes[recipient] = append(s.donorTypes[recipient], donor)
			}
		}
	}
	return s, nil
}

// Default returns a scorer over DefaultConfig.
func Default() *Scorer {
	s, err := NewScorer(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return s
}

// Config returns a copy of the scorer's configuration.
func (s *Scorer) Config() Config {
	return s.cfg.clone()
}

// IsBloodTypeCompatible reports whether donor blood may be given to recipient.
func (s *Scorer) IsBloodTypeCompatible(donor, recipient id.BloodType) bool {
	return s.canDonate[donor][recipient]
}

// CompatibleDonorTypes returns the donor types permitted to donate to
// recipient, in id.AllBloodTypes order.
func (s *Scorer) CompatibleDonorTypes(recipient id.BloodType) []id.BloodType {
	return append([]id.BloodType(nil), s.donorTypes[recipient]...)
}

// RecipientTypes returns the recipient types donor may serve, in
// id.AllBloodTypes order.
func (s *Scorer) RecipientTypes(donor id.BloodType) []id.BloodType {
	var out []id.BloodType
	for _, r := range id.AllBloodTypes {
		if s.canDonate[donor][r] {
			out = append(out, r)
		}
	}
	return out
}

// SearchRadius returns the donor search radius in km for urgency.
func (s *Scorer) SearchRadius(u id.Urgency) float64 {
	if r, ok := s.cfg.SearchRadiusKm[u]; ok {
		return r
	}
	return s.cfg.DefaultRadiusKm
}

// UrgencyWeight returns the score multiplier for urgency.
func (s *Scorer) UrgencyWeight(u id.Urgency) float64 {
	if w, ok := s.cfg.UrgencyWeights[u]; ok {
		return w
	}
	return s.cfg.DefaultWeight
}

// Score computes the compatibility score of donor for req at distanceKm.
// The result is deterministic for fixed inputs and never negative; an
// incompatible blood type scores 0.
func (s *Scorer) Score(donor *domain.Donor, req *domain.BloodRequest, distanceKm float64, now time.Time) int {
	if !s.IsBloodTypeCompatible(donor.BloodType, req.BloodType) {
		return 0
	}

	score := compatibleBase
	if donor.BloodType == req.BloodType {
		score += exactMatchBonus
	}

	score += math.Max(0, distanceCeiling-distancePenaltyPerKm*distanceKm)

	if donor.AvailableAt(now) {
		score += availableBonus
		if donor.AvailableUntil != nil {
			if donor.AvailableUntil.Sub(now) > longWindow {
				score += longWindowBonus
			}
		} else {
			score += openWindowBonus
		}
	}

	if days, donated := donor.DaysSinceLastDonation(now); !donated {
		score += firstTimeBonus
	} else if days >= fullRecoveryDays {
		score += recoveredBonus
	} else if days >= partialRecoveryDays {
		score += partialRecoveryBonus
	}

	if donor.EligibilityStatus == domain.EligibilityEligible {
		score += eligibleBonus
	}

	score += math.Min(perDonationBonus*float64(donor.TotalDonations), experienceCap)

	weighted := math.Round(score * s.UrgencyWeight(req.Urgency))
	if weighted < 0 {
		return 0
	}
	return int(weighted)
}

// EstimatedResponseTime estimates how long a request of urgency will take to
// receive a donor response given how many candidates were found.
func (s *Scorer) EstimatedResponseTime(u id.Urgency, donorCount int) time.Duration {
	base, ok := s.cfg.BaseResponseTime[u]
	if !ok {
		base = s.cfg.DefaultResponseTime
	}

	factor := 1.0
	switch {
	case donorCount == 0:
		factor = 3
	case donorCount < 3:
		factor = 1.5
	case donorCount > 10:
		factor = 0.7
	}
	return time.Duration(math.Round(float64(base) * factor))
}
