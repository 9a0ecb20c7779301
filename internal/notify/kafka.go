package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"bloodlink/internal/domain"
	"bloodlink/internal/ports"
	id "bloodlink/pkg/domain"
	"bloodlink/pkg/requestcontext"
)

// Producer is the subset of *kgo.Client used by KafkaDispatcher.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Envelope is the JSON value of every notification record. Downstream
// channel workers (SMS, push, email) consume it.
type Envelope struct {
	RecipientType domain.RecipientType `json:"recipient_type"`
	RecipientID   string               `json:"recipient_id"`
	Payload       ports.Payload        `json:"payload"`
	SentAt        time.Time            `json:"sent_at"`
}

// KafkaDispatcher publishes donor notifications to one topic and bank or
// hospital broadcasts to another, keyed by recipient so each recipient's
// messages stay ordered.
type KafkaDispatcher struct {
	producer         Producer
	donorTopic       string
	authoritiesTopic string
}

func NewKafkaDispatcher(producer Producer, donorTopic, authoritiesTopic string) *KafkaDispatcher {
	return &KafkaDispatcher{
		producer:         producer,
		donorTopic:       donorTopic,
		authoritiesTopic: authoritiesTopic,
	}
}

func (d *KafkaDispatcher) SendToDonor(ctx context.Context, donorID id.DonorID, payload ports.Payload) error {
	rec, err := d.record(ctx, d.donorTopic, domain.RecipientDonor, donorID.String(), payload)
	if err != nil {
		return err
	}
	if err := d.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce donor notification: %w", err)
	}
	return nil
}

func (d *KafkaDispatcher) Broadcast(ctx context.Context, recipientType domain.RecipientType, recipientIDs []string, payload ports.Payload) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	records := make([]*kgo.Record, 0, len(recipientIDs))
	for _, rid := range recipientIDs {
		rec, err := d.record(ctx, d.authoritiesTopic, recipientType, rid, payload)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if err := d.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce %s broadcast: %w", recipientType, err)
	}
	return nil
}

func (d *KafkaDispatcher) record(ctx context.Context, topic string, recipientType domain.RecipientType, recipientID string, payload ports.Payload) (*kgo.Record, error) {
	value, err := json.Marshal(Envelope{
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Payload:       payload,
		SentAt:        requestcontext.Now(ctx).UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(recipientID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(payload.Kind)},
			{Key: "recipient_type", Value: []byte(recipientType)},
		},
	}, nil
}
