package domain

import (
	"time"

	id "bloodlink/pkg/domain"
)

// MaxDeliveryAttempts caps failed deliveries before a notification is
// terminally failed.
const MaxDeliveryAttempts = 3

// RecipientType identifies who an emergency notification targets.
type RecipientType string

const (
	RecipientDonor     RecipientType = "donor"
	RecipientBloodBank RecipientType = "blood_bank"
	RecipientHospital  RecipientType = "hospital"
)

// NotificationStatus is the delivery state of a notification.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// EmergencyNotification is one message to one recipient with its delivery
// bookkeeping.
type EmergencyNotification struct {
	ID            id.NotificationID  `json:"id"`
	RequestID     *id.RequestID      `json:"request_id,omitempty"`
	RecipientType RecipientType      `json:"recipient_type"`
	RecipientID   string             `json:"recipient_id"`
	Contact       string             `json:"contact"`
	Message       string             `json:"message"`
	Status        NotificationStatus `json:"status"`
	Attempts      int                `json:"attempts"`
	LastError     string             `json:"last_error,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// MarkSent records a successful delivery.
func (n *EmergencyNotification) MarkSent(now time.Time) {
	n.Status = NotificationSent
	n.LastError = ""
	n.UpdatedAt = now
}

// RecordFailure increments the attempt count and moves the notification to
// failed once MaxDeliveryAttempts is reached.
func (n *EmergencyNotification) RecordFailure(cause error, now time.Time) {
	n.Attempts++
	if cause != nil {
		n.LastError = cause.Error()
	}
	if n.Attempts >= MaxDeliveryAttempts {
		n.Status = NotificationFailed
	} else {
		n.Status = NotificationPending
	}
	n.UpdatedAt = now
}

// RecordDeferral notes a delivery that was never handed to the gateway. The
// notification stays pending and Attempts is unchanged.
func (n *EmergencyNotification) RecordDeferral(cause error, now time.Time) {
	if cause != nil {
		n.LastError = cause.Error()
	}
	n.Status = NotificationPending
	n.UpdatedAt = now
}

// IsRetryable reports whether the notification is still eligible for retry.
func (n *EmergencyNotification) IsRetryable() bool {
	return n.Status == NotificationPending && n.Attempts < MaxDeliveryAttempts
}
