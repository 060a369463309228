package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishOrderPlaced(context.Background(), OrderPlaced{OrderID: "1"}))
}

func TestKafkaPublisher_PublishOrderPlaced(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	defer func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}()

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	publisher := NewKafkaPublisher("storefront-orders-test", brokers...)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	event := OrderPlaced{
		OrderID:        "ord-1",
		IdempotencyKey: "key-1",
		CustomerEmail:  "a@b.lk",
		ShippingMethod: "courier",
		TotalQuantity:  3,
		FinalAmount:    decimal.RequireFromString("375.50"),
		Currency:       "LKR",
		PlacedAt:       time.Now().UTC(),
	}

	// the topic is auto-created on first write; retry until the leader is ready
	require.Eventually(t, func() bool {
		return publisher.PublishOrderPlaced(ctx, event) == nil
	}, 20*time.Second, 500*time.Millisecond)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:     brokers,
		Topic:       "storefront-orders-test",
		GroupID:     "test-consumer",
		StartOffset: kafkaGo.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, "key-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, EventTypeOrderPlaced, string(msg.Headers[0].Value))

	var got OrderPlaced
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "ord-1", got.OrderID)
	assert.True(t, got.FinalAmount.Equal(event.FinalAmount))
}
