// Package kafka builds the franz-go producer client and provisions the
// notification topics.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"bloodlink/internal/platform/config"
)

// NewClient returns a producer client that waits for all in-sync replicas.
// Returns nil if no brokers are configured.
func NewClient(cfg config.KafkaConfig) (*kgo.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.DefaultProduceTopic(cfg.DonorTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopics creates the notification topics, ignoring ones that already
// exist.
func EnsureTopics(ctx context.Context, client *kgo.Client, cfg config.KafkaConfig) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, cfg.TopicPartitions, cfg.ReplicationFactor, nil, cfg.DonorTopic, cfg.AuthoritiesTopic)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	var errs []error
	for _, t := range resp.Sorted() {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			errs = append(errs, fmt.Errorf("topic %s: %w", t.Topic, t.Err))
		}
	}
	return errors.Join(errs...)
}

// Pinger checks broker connectivity for the readiness probe.
type Pinger struct {
	Client *kgo.Client
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx)
}
