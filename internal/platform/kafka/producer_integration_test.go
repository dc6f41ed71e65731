//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"lifeline/internal/platform/kafka"
	"lifeline/pkg/testutil/containers"
)

func TestProducerDeliversRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer, err := kafka.NewProducer([]string{broker.Broker}, "lifeline.audit.test")
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, producer.EnsureTopic(ctx, 1, 1))
	// second call must tolerate the existing topic
	require.NoError(t, producer.EnsureTopic(ctx, 1, 1))
	require.NoError(t, producer.Produce(ctx, "donor-1", []byte(`{"action":"donation_finalized"}`)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics("lifeline.audit.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)
	require.Equal(t, "donor-1", string(records[0].Key))
	require.JSONEq(t, `{"action":"donation_finalized"}`, string(records[0].Value))
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := kafka.NewProducer(nil, "topic")
	require.Error(t, err)
}
