// Package lognotifier delivers alert notifications to the structured log.
// It is the default notifier when no Kafka brokers are configured, and can
// be stacked in front of other channels so every notification leaves an
// operator-visible trace.
package lognotifier

import (
	"context"
	"log/slog"

	"github.com/bayanihan-labs/typhoon-watch/internal/ledger"
)

// Notifier logs notifications. It implements ledger.Notifier.
type Notifier struct {
	logger *slog.Logger
}

// New creates a log-backed notifier.
func New(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Deliver writes the notification to the log. It never fails.
func (n *Notifier) Deliver(_ context.Context, notif ledger.Notification) error {
	n.logger.Warn("storm alert notification",
		"message", notif.Message,
		"urgency", notif.Urgency,
		"pulse", string(notif.Pulse),
		"play_sound", notif.PlaySound,
		"cancel_after", notif.CancelAfter)
	return nil
}
