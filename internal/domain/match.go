package domain

import (
	"time"

	id "bloodlink/pkg/domain"
)

// DonorResponse is a donor's answer to a match.
type DonorResponse string

const (
	ResponseAccepted DonorResponse = "accepted"
	ResponseDeclined DonorResponse = "declined"
)

func (r DonorResponse) IsValid() bool {
	return r == ResponseAccepted || r == ResponseDeclined
}

// DonorMatch is a persisted (request, donor) association. Rows are append-only;
// Response is set at most once.
type DonorMatch struct {
	ID          id.MatchID     `json:"id"`
	RequestID   id.RequestID   `json:"request_id"`
	DonorID     id.DonorID     `json:"donor_id"`
	Score       int            `json:"score"`
	DistanceKm  float64        `json:"distance_km"`
	Generation  int64          `json:"generation"`
	Response    *DonorResponse `json:"response,omitempty"`
	RespondedAt *time.Time     `json:"responded_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// HasResponse reports whether the donor has answered.
func (m *DonorMatch) HasResponse() bool {
	return m.Response != nil
}
