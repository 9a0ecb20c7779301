package compatibility

import (
	"fmt"
	"time"

	id "bloodlink/pkg/domain"
)

// Config is the immutable rule set behind scoring. Build one with
// DefaultConfig, adjust it, and pass it to NewScorer; the scorer copies it.
type Config struct {
	// DonatesTo maps each donor blood type to the recipient types it may serve.
	DonatesTo map[id.BloodType][]id.BloodType

	UrgencyWeights map[id.Urgency]float64
	DefaultWeight  float64

	SearchRadiusKm  map[id.Urgency]float64
	DefaultRadiusKm float64

	BaseResponseTime    map[id.Urgency]time.Duration
	DefaultResponseTime time.Duration
}

// DefaultConfig returns the standard ABO/Rh table and urgency policy.
func DefaultConfig() Config {
	return Config{
		DonatesTo: map[id.BloodType][]id.BloodType{
			id.BloodTypeONeg:  id.AllBloodTypes,
			id.BloodTypeOPos:  {id.BloodTypeOPos, id.BloodTypeAPos, id.BloodTypeBPos, id.BloodTypeABPos},
			id.BloodTypeANeg:  {id.BloodTypeANeg, id.BloodTypeAPos, id.BloodTypeABNeg, id.BloodTypeABPos},
			id.BloodTypeAPos:  {id.BloodTypeAPos, id.BloodTypeABPos},
			id.BloodTypeBNeg:  {id.BloodTypeBNeg, id.BloodTypeBPos, id.BloodTypeABNeg, id.BloodTypeABPos},
			id.BloodTypeBPos:  {id.BloodTypeBPos, id.BloodTypeABPos},
			id.BloodTypeABNeg: {id.BloodTypeABNeg, id.BloodTypeABPos},
			id.BloodTypeABPos: {id.BloodTypeABPos},
		},
		UrgencyWeights: map[id.Urgency]float64{
			id.UrgencyCritical: 1.0,
			id.UrgencyHigh:     0.8,
			id.UrgencyMedium:   0.6,
			id.UrgencyLow:      0.4,
		},
		DefaultWeight: 0.6,
		SearchRadiusKm: map[id.Urgency]float64{
			id.UrgencyCritical: 200,
			id.UrgencyHigh:     100,
			id.UrgencyMedium:   50,
			id.UrgencyLow:      25,
		},
		DefaultRadiusKm: 50,
		BaseResponseTime: map[id.Urgency]time.Duration{
			id.UrgencyCritical: 30 * time.Minute,
			id.UrgencyHigh:     120 * time.Minute,
			id.UrgencyMedium:   360 * time.Minute,
			id.UrgencyLow:      720 * time.Minute,
		},
		DefaultResponseTime: 360 * time.Minute,
	}
}

// Validate checks that every blood type has a donor row, every recipient is a
// known type, and weights and radii are usable.
func (c Config) Validate() error {
	for _, donor := range id.AllBloodTypes {
		recipients, ok := c.DonatesTo[donor]
		if !ok {
			return fmt.Errorf("compatibility table missing donor type %s", donor)
		}
		for _, r := range recipients {
			if !r.IsValid() {
				return fmt.Errorf("compatibility table for %s lists unknown type %q", donor, r)
			}
		}
	}
	for u, w := range c.UrgencyWeights {
		if w < 0 {
			return fmt.Errorf("urgency weight for %s must not be negative", u)
		}
	}
	if c.DefaultWeight < 0 {
		return fmt.Errorf("default urgency weight must not be negative")
	}
	for u, r := range c.SearchRadiusKm {
		if r <= 0 {
			return fmt.Errorf("search radius for %s must be positive", u)
		}
	}
	if c.DefaultRadiusKm <= 0 {
		return fmt.Errorf("default search radius must be positive")
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.DonatesTo = make(map[id.BloodType][]id.BloodType, len(c.DonatesTo))
	for k, v := range c.DonatesTo {
		out.DonatesTo[k] = append([]id.BloodType(nil), v...)
	}
	out.UrgencyWeights = cloneMap(c.UrgencyWeights)
	out.SearchRadiusKm = cloneMap(c.SearchRadiusKm)
	out.BaseResponseTime = cloneMap(c.BaseResponseTime)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
