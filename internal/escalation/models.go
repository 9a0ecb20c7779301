package escalation

import (
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/matching"
	id "bloodlink/pkg/domain"
)

// RequestOutcome describes what HandleCriticalRequest or HandleRequest did.
type RequestOutcome struct {
	Match             *matching.MatchResult
	DonorsNotified    int
	Escalation        *EscalationOutcome
	FollowUpScheduled bool
}

// EscalationOutcome describes one escalation attempt. Escalated is false when
// the request had already been escalated and nothing was sent.
type EscalationOutcome struct {
	RequestID        id.RequestID            `json:"request_id"`
	Reason           domain.EscalationReason `json:"reason"`
	Escalated        bool                    `json:"escalated"`
	DonorsNotified   int                     `json:"donors_notified"`
	BanksNotified    int                     `json:"banks_notified"`
	HospitalNotified bool                    `json:"hospital_notified"`
}

// Check names used in SweepReport and metrics.
const (
	CheckOverdue   = "overdue_requests"
	CheckInventory = "low_inventory"
	CheckRetry     = "notification_retry"
)

// CheckReport summarizes one sweep sub-check. Processed counts inspected
// items, Actions the escalations, alerts or deliveries it caused and Failures
// the items it could not handle. Error is set when the check itself aborted.
type CheckReport struct {
	Name      string `json:"name"`
	Processed int    `json:"processed"`
	Actions   int    `json:"actions"`
	Failures  int    `json:"failures"`
	Error     string `json:"error,omitempty"`
}

// SweepReport aggregates the three sub-checks of one sweep.
type SweepReport struct {
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Overdue    CheckReport `json:"overdue"`
	Inventory  CheckReport `json:"inventory"`
	Retry      CheckReport `json:"retry"`
}

// Failed reports whether any sub-check aborted.
func (r SweepReport) Failed() bool {
	return r.Overdue.Error != "" || r.Inventory.Error != "" || r.Retry.Error != ""
}
