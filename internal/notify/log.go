package notify

import (
	"context"
	"log/slog"

	"bloodlink/internal/domain"
	"bloodlink/internal/ports"
	id "bloodlink/pkg/domain"
)

// LogDispatcher writes notifications to the log and always succeeds. It is
// the dispatcher when no broker is configured.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) SendToDonor(ctx context.Context, donorID id.DonorID, payload ports.Payload) error {
	d.logger.InfoContext(ctx, "notification dispatched",
		"recipient_type", domain.RecipientDonor,
		"donor_id", donorID.String(),
		"kind", payload.Kind,
		"request_id", payload.RequestID,
		"message", payload.Message,
	)
	return nil
}

func (d *LogDispatcher) Broadcast(ctx context.Context, recipientType domain.RecipientType, recipientIDs []string, payload ports.Payload) error {
	d.logger.InfoContext(ctx, "notification broadcast",
		"recipient_type", recipientType,
		"recipients", len(recipientIDs),
		"kind", payload.Kind,
		"request_id", payload.RequestID,
		"message", payload.Message,
	)
	return nil
}
