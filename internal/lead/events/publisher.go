// Package events publishes lead.captured events for downstream consumers
// such as a CRM sync or analytics pipeline.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"landing/internal/lead/models"
)

// EventType is carried in the record header so consumers can route without
// decoding the payload.
const EventType = "lead.captured"

const defaultPublishTimeout = 2 * time.Second

// Producer is the subset of *kgo.Client used for publishing.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher writes one record per captured lead, keyed by lead ID.
type KafkaPublisher struct {
	producer Producer
	topic    string
	timeout  time.Duration
}

type Option func(*KafkaPublisher)

// WithPublishTimeout bounds how long Publish waits for the broker ack.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewKafkaPublisher(producer Producer, topic string, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{producer: producer, topic: topic, timeout: defaultPublishTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish runs after the lead is stored, so it outlives a caller that hangs
// up but never waits on the broker longer than the publish timeout.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.CapturedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", EventType, err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.LeadID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(EventType)},
			{Key: "source", Value: []byte(event.Source)},
		},
		Timestamp: event.CapturedAt,
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish %s: %w", EventType, err)
	}
	return nil
}
