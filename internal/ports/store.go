// Package ports defines the collaborator interfaces consumed by the matching
// and escalation modules. Implementations live in internal/storage and
// internal/notify; services depend only on these interfaces.
package ports

import (
	"context"
	"time"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
)

// DonorStore answers donor queries. Missing donors are (nil, nil).
type DonorStore interface {
	// GetAvailableDonors returns available donors of bloodType within radiusKm
	// of location, nearest first, each with its distance.
	GetAvailableDonors(ctx context.Context, bloodType id.BloodType, location domain.Location, radiusKm float64) ([]domain.DonorCandidate, error)

	GetDonorByID(ctx context.Context, donorID id.DonorID) (*domain.Donor, error)
}

// RequestStore reads and transitions blood requests. Missing requests are (nil, nil).
type RequestStore interface {
	GetBloodRequestByID(ctx context.Context, requestID id.RequestID) (*domain.BloodRequest, error)

	UpdateBloodRequestStatus(ctx context.Context, requestID id.RequestID, status domain.RequestStatus, notes string) error

	// GetPendingRequestsByBloodType returns pending requests of bloodType whose
	// deadline is after now.
	GetPendingRequestsByBloodType(ctx context.Context, bloodType id.BloodType, now time.Time) ([]*domain.BloodRequest, error)

	// GetOverdueCriticalRequests returns critical, pending, non-escalated
	// requests created before cutoff.
	GetOverdueCriticalRequests(ctx context.Context, cutoff time.Time) ([]*domain.BloodRequest, error)

	// MarkRequestEscalated moves the request from EscalationNone to
	// EscalationEscalated. It reports false when the request was already
	// escalated; the transition never reverses.
	MarkRequestEscalated(ctx context.Context, requestID id.RequestID, reason domain.EscalationReason, at time.Time) (bool, error)

	// AdvanceMatchGeneration raises the request's match generation to gen if
	// gen is higher than the stored value.
	AdvanceMatchGeneration(ctx context.Context, requestID id.RequestID, gen int64) error
}

// MatchStore persists donor matches. Rows are append-only.
type MatchStore interface {
	CreateDonorMatch(ctx context.Context, match *domain.DonorMatch) error

	// GetDonorMatches returns every match for the request in insertion order.
	GetDonorMatches(ctx context.Context, requestID id.RequestID) ([]*domain.DonorMatch, error)

	GetDonorMatchByID(ctx context.Context, matchID id.MatchID) (*domain.DonorMatch, error)

	// RecordDonorResponse sets the response once. Returns sentinel.ErrNotFound
	// for an unknown match and sentinel.ErrAlreadyUsed when already answered.
	RecordDonorResponse(ctx context.Context, matchID id.MatchID, response domain.DonorResponse, at time.Time) error
}

// BankStore reads blood banks and their inventory.
type BankStore interface {
	GetAllBloodBanks(ctx context.Context) ([]*domain.BloodBank, error)

	GetNearbyBloodBanks(ctx context.Context, location domain.Location, radiusKm float64) ([]*domain.BloodBank, error)

	// GetBloodInventory returns the bank's inventory rows, all types when
	// bloodType is nil.
	GetBloodInventory(ctx context.Context, bankID id.BankID, bloodType *id.BloodType) ([]domain.InventoryRecord, error)
}

// NotificationStore persists emergency notifications and their delivery state.
type NotificationStore interface {
	CreateEmergencyNotification(ctx context.Context, n *domain.EmergencyNotification) error

	// GetPendingNotifications returns up to limit pending notifications, oldest first.
	GetPendingNotifications(ctx context.Context, limit int) ([]*domain.EmergencyNotification, error)

	UpdateNotificationStatus(ctx context.Context, notificationID id.NotificationID, status domain.NotificationStatus, attempts int, lastError string) error
}

// TxRunner groups store writes into one unit of work. Store calls made with
// the context passed to fn join it; an error from fn undoes them.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DataStore is the full data store collaborator.
type DataStore interface {
	TxRunner
	DonorStore
	RequestStore
	MatchStore
	BankStore
	NotificationStore
}

// GenerationCounter issues monotonically increasing match generations per
// request.
type GenerationCounter interface {
	Next(ctx context.Context, requestID id.RequestID) (int64, error)
}
