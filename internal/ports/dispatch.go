package ports

//go:generate mockgen -source=dispatch.go -destination=mocks/dispatch_mocks.go -package=mocks

import (
	"context"
	"errors"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
)

// Payload kinds.
const (
	KindEmergencyRequest = "emergency_request"
	KindEscalation       = "escalation"
	KindLowStock         = "low_stock"
	KindLowStockAppeal   = "low_stock_appeal"
	KindRedelivery       = "redelivery"
)

// Payload is the transport-agnostic content of one notification.
type Payload struct {
	NotificationID string       `json:"notification_id,omitempty"`
	Kind           string       `json:"kind"`
	RequestID      string       `json:"request_id,omitempty"`
	BloodType      id.BloodType `json:"blood_type,omitempty"`
	Urgency        id.Urgency   `json:"urgency,omitempty"`
	Contact        string       `json:"contact,omitempty"`
	Message        string       `json:"message"`
}

// ErrNotAttempted marks a dispatch error returned without reaching the
// gateway. It does not count as a delivery attempt.
var ErrNotAttempted = errors.New("dispatch not attempted")

// Dispatcher is the notification dispatch gateway. A nil error means the
// gateway accepted the message.
type Dispatcher interface {
	SendToDonor(ctx context.Context, donorID id.DonorID, payload Payload) error

	// Broadcast sends payload to blood banks or hospital authorities.
	Broadcast(ctx context.Context, recipientType domain.RecipientType, recipientIDs []string, payload Payload) error
}
