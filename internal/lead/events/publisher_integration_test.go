//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"landing/internal/lead/events"
	"landing/internal/lead/models"
	"landing/internal/platform/config"
	"landing/internal/platform/kafka"
	"landing/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	client   *kgo.Client
	topic    string
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
	s.topic = "landing.leads.captured." + uuid.NewString()[:8]

	client, err := kafka.NewClient(config.KafkaConfig{Brokers: s.redpanda.Brokers, LeadTopic: s.topic})
	s.Require().NoError(err)
	s.client = client

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(kafka.EnsureTopic(ctx, client, s.topic, 1, 1))
	s.Require().NoError(kafka.EnsureTopic(ctx, client, s.topic, 1, 1), "existing topic is not an error")
	s.Require().NoError(kafka.Health(ctx, client))
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	event := models.CapturedEvent{
		LeadID:     uuid.New(),
		Phone:      "0501234567",
		Email:      "buyer@example.com",
		Source:     models.SourceAPI,
		CapturedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	s.Require().NoError(events.NewKafkaPublisher(s.client, s.topic).Publish(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal(event.LeadID.String(), string(records[0].Key))

	var got models.CapturedEvent
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(event.LeadID, got.LeadID)
	s.True(event.CapturedAt.Equal(got.CapturedAt))
}
