package matching

import (
	"time"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
)

// MaxPersistedMatches caps the DonorMatch rows written per invocation.
const MaxPersistedMatches = 10

// MatchResult is the outcome of one FindCompatibleDonors invocation.
type MatchResult struct {
	RequestID      id.RequestID `json:"request_id"`
	Generation     int64        `json:"generation"`
	SearchRadiusKm float64      `json:"search_radius_km"`

	// Donors is the complete ranked list, not only the persisted prefix.
	Donors []domain.RankedDonor `json:"donors"`

	// Persisted holds the DonorMatch rows written for the top candidates.
	Persisted []*domain.DonorMatch `json:"persisted"`

	EstimatedResponse time.Duration `json:"-"`
}

// DonorFilters narrows FindDonorsByBloodType.
type DonorFilters struct {
	Location domain.Location
	// RadiusKm defaults to the configured default radius when zero.
	RadiusKm float64
	// Limit caps the result; zero means unlimited.
	Limit int
}

// LookupResult is the outcome of FindDonorsByBloodType. A store failure does
// not produce an error: Donors is empty, Degraded is set and Cause holds the
// swallowed failure.
type LookupResult struct {
	Donors   []domain.DonorCandidate
	Degraded bool
	Cause    error
}
