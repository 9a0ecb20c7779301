package domain

import (
	"time"

	id "bloodlink/pkg/domain"
)

// EligibilityStatus is the medical eligibility of a donor.
type EligibilityStatus string

const (
	EligibilityEligible   EligibilityStatus = "eligible"
	EligibilityDeferred   EligibilityStatus = "deferred"
	EligibilityIneligible EligibilityStatus = "ineligible"
)

// Donor is owned by the data store and read-only to the matching core.
type Donor struct {
	ID                id.DonorID        `json:"id"`
	Name              string            `json:"name"`
	Contact           string            `json:"contact"`
	BloodType         id.BloodType      `json:"blood_type"`
	Location          Location          `json:"location"`
	IsAvailable       bool              `json:"is_available"`
	AvailableUntil    *time.Time        `json:"available_until,omitempty"`
	LastDonationDate  *time.Time        `json:"last_donation_date,omitempty"`
	EligibilityStatus EligibilityStatus `json:"eligibility_status"`
	TotalDonations    int               `json:"total_donations"`
}

// AvailableAt reports whether the donor is flagged available and, when an
// availability window is set, the window has not closed at now.
func (d *Donor) AvailableAt(now time.Time) bool {
	if !d.IsAvailable {
		return false
	}
	return d.AvailableUntil == nil || d.AvailableUntil.After(now)
}

// DaysSinceLastDonation returns whole days since the last donation and false
// when the donor has never donated.
func (d *Donor) DaysSinceLastDonation(now time.Time) (int, bool) {
	if d.LastDonationDate == nil {
		return 0, false
	}
	return int(now.Sub(*d.LastDonationDate).Hours() / 24), true
}

// DonorCandidate is a donor returned by a geo query, with its distance to the
// query origin.
type DonorCandidate struct {
	Donor
	DistanceKm float64 `json:"distance_km"`
}

// RankedDonor is a scored candidate produced by the matching engine.
type RankedDonor struct {
	DonorCandidate
	Score int `json:"score"`
}
