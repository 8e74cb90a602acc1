// Package alertkafka publishes alert notifications to a Kafka topic so
// downstream consumers (push gateways, dashboards, archival) receive every
// raised alert.
package alertkafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bayanihan-labs/typhoon-watch/internal/ledger"
	kafkago "github.com/segmentio/kafka-go"
)

// Notifier produces notification events to a Kafka topic.
// It implements ledger.Notifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured alert topic.
func NewNotifier(brokers []string, topic string, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// Deliver serializes and publishes a notification.
func (n *Notifier) Deliver(ctx context.Context, notif ledger.Notification) error {
	data, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}
	msg := kafkago.Message{
		Value: data,
		Headers: []kafkago.Header{
			{Key: "urgency", Value: []byte(fmt.Sprintf("%d", notif.Urgency))},
			{Key: "delivered_at", Value: []byte(time.Now().Format(time.RFC3339))},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}
