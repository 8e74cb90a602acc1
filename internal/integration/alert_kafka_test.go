//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/bayanihan-labs/typhoon-watch/internal/adapter/alertkafka"
	"github.com/bayanihan-labs/typhoon-watch/internal/adapter/memstore"
	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/bayanihan-labs/typhoon-watch/internal/ledger"
	"github.com/bayanihan-labs/typhoon-watch/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAlertTopic = "test-storm-alerts"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.6.1",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readNotification reads and deserializes one message from the alert topic.
func readNotification(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (ledger.Notification, map[string]string) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from alert topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var notif ledger.Notification
	require.NoError(t, json.Unmarshal(msg.Value, &notif), "unmarshal notification")
	return notif, headers
}

// TestAlertNotifierRoundTrip verifies the Kafka notifier publishes
// notifications that a plain consumer can read back, headers included.
func TestAlertNotifierRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	notifier := alertkafka.NewNotifier([]string{broker}, testAlertTopic, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	sent := ledger.Notification{
		Message:     "Test alert for Manila",
		Urgency:     3,
		PlaySound:   true,
		Pulse:       ledger.PulseSustained,
		CancelAfter: 3 * time.Second,
	}
	require.NoError(t, notifier.Deliver(ctx, sent))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAlertTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got, headers := readNotification(ctx, t, consumer)
	assert.Equal(t, sent, got)
	assert.Equal(t, "3", headers["urgency"])
	_, err := time.Parse(time.RFC3339, headers["delivered_at"])
	assert.NoError(t, err, "delivered_at should be valid RFC3339")
}

// TestLedgerPublishesToKafka wires the real ledger in front of the Kafka
// notifier and verifies a storm-level reading produces a notification on
// the topic.
func TestLedgerPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	notifier := alertkafka.NewNotifier([]string{broker}, testAlertTopic, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	led := ledger.New(memstore.New(), notifier, discardLogger(),
		observability.NewMetricsForTesting(), ledger.Options{})
	t.Cleanup(led.Close)

	reading := domain.Reading{
		Timestamp:   time.Now(),
		Location:    domain.Location{Lat: 14.5995, Lon: 120.9842, Label: "Manila"},
		WindSpeedMS: 120,
	}
	history, alert := led.Process(ctx, reading, domain.Signal3, domain.DefaultSettings())
	require.NotNil(t, alert)
	require.Len(t, history, 1)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAlertTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got, headers := readNotification(ctx, t, consumer)
	assert.Equal(t, alert.Message, got.Message)
	assert.Equal(t, 3, got.Urgency)
	assert.Equal(t, ledger.PulseSustained, got.Pulse)
	assert.Equal(t, "3", headers["urgency"])
}
