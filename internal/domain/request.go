package domain

import (
	"time"

	id "bloodlink/pkg/domain"
)

// RequestStatus is the lifecycle state of a blood request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusMatched   RequestStatus = "matched"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusExpired   RequestStatus = "expired"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// EscalationState records whether a request has been escalated. It only ever
// moves from none to escalated.
type EscalationState string

const (
	EscalationNone      EscalationState = "none"
	EscalationEscalated EscalationState = "escalated"
)

// EscalationReason explains why a request was escalated.
type EscalationReason string

const (
	ReasonNoCompatibleDonors EscalationReason = "no_compatible_donors"
	ReasonOverdueResponse    EscalationReason = "overdue_response"
	ReasonNoDonorResponse    EscalationReason = "no_donor_response"
)

// BloodRequest is a hospital's request for units of one blood type.
type BloodRequest struct {
	ID               id.RequestID     `json:"id"`
	HospitalID       id.HospitalID    `json:"hospital_id"`
	BloodType        id.BloodType     `json:"blood_type"`
	Urgency          id.Urgency       `json:"urgency"`
	UnitsNeeded      int              `json:"units_needed"`
	Location         Location         `json:"location"`
	Deadline         time.Time        `json:"deadline"`
	Status           RequestStatus    `json:"status"`
	// PriorityScore is a continuous priority metric set at intake. Matching
	// and escalation neither read nor write it.
	PriorityScore    int              `json:"priority_score"`
	EscalationState  EscalationState  `json:"escalation_state"`
	EscalationReason EscalationReason `json:"escalation_reason,omitempty"`
	EscalatedAt      *time.Time       `json:"escalated_at,omitempty"`
	MatchGeneration  int64            `json:"match_generation"`
	Notes            string           `json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// IsEscalated reports whether the request has already been escalated.
func (r *BloodRequest) IsEscalated() bool {
	return r.EscalationState == EscalationEscalated
}

// IsPending reports whether the request is still waiting for donors.
func (r *BloodRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsExpired reports whether the deadline has passed at now.
func (r *BloodRequest) IsExpired(now time.Time) bool {
	return !r.Deadline.IsZero() && !r.Deadline.After(now)
}

// IsCritical reports whether the request carries critical urgency.
func (r *BloodRequest) IsCritical() bool {
	return r.Urgency == id.UrgencyCritical
}
