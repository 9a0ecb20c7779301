package escalation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bloodlink/internal/domain"
	"bloodlink/internal/ports"
	id "bloodlink/pkg/domain"
	"bloodlink/pkg/requestcontext"
)

var errUnknownRecipient = errors.New("unknown recipient type")

func (m *Monitor) newNotification(ctx context.Context, requestID *id.RequestID, recipientType domain.RecipientType, recipientID, contact, message string) *domain.EmergencyNotification {
	now := requestcontext.Now(ctx)
	var reqID *id.RequestID
	if requestID != nil {
		cp := *requestID
		reqID = &cp
	}
	return &domain.EmergencyNotification{
		ID:            id.NotificationID(uuid.New()),
		RequestID:     reqID,
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Contact:       contact,
		Message:       message,
		Status:        domain.NotificationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// send attempts delivery once and then persists n with the outcome. The row
// is written only after the attempt, so the retry sweep never sees a
// notification whose first attempt is still in flight. A failed first attempt
// leaves it pending for the sweep. It reports whether the gateway accepted the
// message.
func (m *Monitor) send(ctx context.Context, n *domain.EmergencyNotification, kind string, req *domain.BloodRequest) bool {
	payload := payloadFor(n, kind)
	if req != nil {
		payload.BloodType = req.BloodType
		payload.Urgency = req.Urgency
	}
	ok := m.attempt(ctx, n, payload)
	if err := m.store.CreateEmergencyNotification(ctx, n); err != nil {
		m.logWarn(ctx, "failed to persist notification",
			"notification_id", n.ID.String(),
			"recipient_type", n.RecipientType,
			"status", n.Status,
			"error", err,
		)
	}
	return ok
}

// attempt delivers n once and applies the result to n.
func (m *Monitor) attempt(ctx context.Context, n *domain.EmergencyNotification, payload ports.Payload) bool {
	err := m.deliver(ctx, n, payload)
	now := requestcontext.Now(ctx)
	if err == nil {
		n.MarkSent(now)
		m.metrics.IncrementDelivery(string(n.RecipientType), "sent")
		m.logDebug(ctx, "notification delivered",
			"notification_id", n.ID.String(),
			"recipient_type", n.RecipientType,
			"recipient_id", n.RecipientID,
		)
		return true
	}
	if errors.Is(err, ports.ErrNotAttempted) {
		n.RecordDeferral(err, now)
		m.metrics.IncrementDelivery(string(n.RecipientType), "deferred")
		m.logDebug(ctx, "notification delivery deferred",
			"notification_id", n.ID.String(),
			"recipient_type", n.RecipientType,
			"attempts", n.Attempts,
			"error", err,
		)
		return false
	}
	n.RecordFailure(err, now)
	if n.Status == domain.NotificationFailed {
		m.metrics.IncrementDelivery(string(n.RecipientType), "failed")
		m.metrics.IncrementTerminalFailure()
		m.logError(ctx, "notification delivery failed permanently",
			"notification_id", n.ID.String(),
			"recipient_type", n.RecipientType,
			"recipient_id", n.RecipientID,
			"attempts", n.Attempts,
			"error", err,
		)
		return false
	}
	m.metrics.IncrementDelivery(string(n.RecipientType), "retry")
	m.logDebug(ctx, "notification delivery failed",
		"notification_id", n.ID.String(),
		"recipient_type", n.RecipientType,
		"attempts", n.Attempts,
		"error", err,
	)
	return false
}

func (m *Monitor) deliver(ctx context.Context, n *domain.EmergencyNotification, payload ports.Payload) error {
	switch n.RecipientType {
	case domain.RecipientDonor:
		donorID, err := id.ParseDonorID(n.RecipientID)
		if err != nil {
			return err
		}
		return m.dispatcher.SendToDonor(ctx, donorID, payload)
	case domain.RecipientBloodBank, domain.RecipientHospital:
		return m.dispatcher.Broadcast(ctx, n.RecipientType, []string{n.RecipientID}, payload)
	default:
		return fmt.Errorf("%w: %s", errUnknownRecipient, n.RecipientType)
	}
}

func (m *Monitor) saveStatus(ctx context.Context, n *domain.EmergencyNotification) {
	if err := m.store.UpdateNotificationStatus(ctx, n.ID, n.Status, n.Attempts, n.LastError); err != nil {
		m.logWarn(ctx, "failed to update notification status",
			"notification_id", n.ID.String(),
			"status", n.Status,
			"error", err,
		)
	}
}

func payloadFor(n *domain.EmergencyNotification, kind string) ports.Payload {
	p := ports.Payload{
		NotificationID: n.ID.String(),
		Kind:           kind,
		Contact:        n.Contact,
		Message:        n.Message,
	}
	if n.RequestID != nil {
		p.RequestID = n.RequestID.String()
	}
	return p
}
