// Package ledger owns the alert history: it decides when a refresh cycle
// raises an alert, renders the localized message, dispatches the
// notification, and persists the updated history.
//
// The ledger is the sole writer of the history. Persistence is best-effort
// and ordered: writes are issued from a single queue goroutine so a later
// cycle's write is never issued before an earlier one's, and a failed write
// is logged without rolling back the in-memory copy, which stays
// authoritative for the running process.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/bayanihan-labs/typhoon-watch/internal/observability"
)

// Storage keys. The history is a JSON array ordered newest first; settings
// are a JSON object.
const (
	historyKey  = "alertHistory"
	settingsKey = "settings"
)

// writeTimeout bounds each queued store write.
const writeTimeout = 10 * time.Second

// Store is the external key-value store the ledger persists into. Get
// returns an empty string without error when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// PulseCategory is the vibration pattern requested from the notifier.
type PulseCategory string

const (
	// PulseShort is a single short pulse, signal 1.
	PulseShort PulseCategory = "short"
	// PulseMedium is a medium pulse, signal 2.
	PulseMedium PulseCategory = "medium"
	// PulseSustained is a repeating pulse pattern for signals 3-5,
	// auto-cancelled after CancelAfter so the device does not vibrate
	// indefinitely.
	PulseSustained PulseCategory = "sustained"
)

// sustainedCancelAfter stops a sustained pulse pattern after this timeout.
const sustainedCancelAfter = 3 * time.Second

// Notification is one dispatch request handed to the notifier.
type Notification struct {
	Message     string        `json:"message"`
	Urgency     int           `json:"urgency"` // 1..5, scales with signal level
	PlaySound   bool          `json:"play_sound"`
	Pulse       PulseCategory `json:"pulse"`
	CancelAfter time.Duration `json:"cancel_after,omitempty"` // zero for non-sustained pulses
}

// Notifier delivers a notification to the user. Fire-and-forget: the ledger
// logs delivery errors but never fails a cycle on them.
type Notifier interface {
	Deliver(ctx context.Context, n Notification) error
}

// pulseFor maps a signal level to its vibration category and auto-cancel.
func pulseFor(level domain.SignalLevel) (PulseCategory, time.Duration) {
	switch {
	case level >= domain.Signal3:
		return PulseSustained, sustainedCancelAfter
	case level == domain.Signal2:
		return PulseMedium, 0
	default:
		return PulseShort, 0
	}
}

// Options tune the optional ledger extensions. The zero value preserves the
// original behavior: an alert every qualifying cycle, unbounded history.
type Options struct {
	// DedupWindow, when positive, suppresses a new alert if the newest
	// history entry has the same signal level and is younger than the
	// window.
	DedupWindow time.Duration

	// HistoryLimit, when positive, trims the history to this many entries
	// on append.
	HistoryLimit int
}

// Ledger owns the alert history and its persistence.
type Ledger struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options

	mu      sync.RWMutex
	history domain.AlertHistory

	writes    chan writeRequest
	writeDone chan struct{}
	closeOnce sync.Once
}

// writeRequest is one queued history write. done, when non-nil, receives
// the write's outcome for callers that need it (Reset).
type writeRequest struct {
	blob string
	done chan error
}

// New creates a Ledger and starts its persistence queue. Call Close to
// drain the queue on shutdown.
func New(store Store, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Ledger {
	l := &Ledger{
		store:     store,
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
		history:   domain.AlertHistory{},
		writes:    make(chan writeRequest, 16),
		writeDone: make(chan struct{}),
	}
	go l.writeLoop()
	return l
}

// Load restores the alert history from the store. A missing key yields an
// empty history; a corrupt blob is an error so the operator can decide
// whether to reset.
func (l *Ledger) Load(ctx context.Context) error {
	blob, err := l.store.Get(ctx, historyKey)
	if err != nil {
		return fmt.Errorf("load alert history: %w", err)
	}
	history, err := domain.DecodeAlertHistory(blob)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.history = history
	l.mu.Unlock()

	l.logger.Info("alert history restored", "entries", len(history))
	return nil
}

// Process handles one refresh cycle. With signal 0, or with notifications
// disabled in the settings, the history is unchanged and nothing is
// dispatched. Otherwise an alert is constructed, prepended, persisted, and
// dispatched. Returns the updated history snapshot and the new alert, nil
// when none was raised.
//
// Single-cycle, single-call contract: Process is not re-entrant-safe for
// the same logical cycle. Callers retrying must pass state that already
// reflects the first call's effect, which they do implicitly because the
// ledger owns the history.
func (l *Ledger) Process(ctx context.Context, reading domain.Reading, level domain.SignalLevel, settings domain.Settings) (domain.AlertHistory, *domain.Alert) {
	if level <= domain.SignalNone {
		return l.History(), nil
	}

	if !settings.NotificationsEnabled {
		l.logger.Debug("alerting disabled in settings, skipping cycle", "signal", int(level))
		return l.History(), nil
	}

	if l.suppressedByDedup(level) {
		l.metrics.AlertsDeduplicated.Inc()
		l.logger.Debug("alert suppressed by dedup window",
			"signal", int(level),
			"window", l.opts.DedupWindow,
		)
		return l.History(), nil
	}

	message := Message(settings.Language, level, reading.Location.Label)
	alert := domain.NewAlert(message, level, reading.Location.Label, reading.WindSpeedMS)

	l.mu.Lock()
	l.history = l.history.Prepend(alert)
	if l.opts.HistoryLimit > 0 && len(l.history) > l.opts.HistoryLimit {
		l.history = l.history[:l.opts.HistoryLimit]
	}
	snapshot := make(domain.AlertHistory, len(l.history))
	copy(snapshot, l.history)
	l.mu.Unlock()

	l.metrics.AlertsRaised.WithLabelValues(strconv.Itoa(int(level))).Inc()
	l.logger.Info("alert raised",
		"signal", int(level),
		"location", reading.Location.Label,
		"wind_speed_ms", reading.WindSpeedMS,
	)

	l.enqueuePersist(snapshot)

	l.notify(ctx, alert, level, settings)

	return snapshot, &alert
}

// suppressedByDedup reports whether the optional dedup window swallows this
// cycle's alert: same level as the newest entry, raised within the window.
func (l *Ledger) suppressedByDedup(level domain.SignalLevel) bool {
	if l.opts.DedupWindow <= 0 {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.history) == 0 {
		return false
	}
	newest := l.history[0]
	return newest.Signal == level && domain.Clock().Now().Sub(newest.Timestamp) < l.opts.DedupWindow
}

func (l *Ledger) notify(ctx context.Context, alert domain.Alert, level domain.SignalLevel, settings domain.Settings) {
	pulse, cancelAfter := pulseFor(level)
	n := Notification{
		Message:     alert.Message,
		Urgency:     int(level),
		PlaySound:   settings.SoundEnabled,
		Pulse:       pulse,
		CancelAfter: cancelAfter,
	}
	if err := l.notifier.Deliver(ctx, n); err != nil {
		l.metrics.NotificationErrors.Inc()
		l.logger.Warn("notification delivery failed", "error", err, "signal", int(level))
		return
	}
	l.metrics.NotificationsSent.Inc()
}

// History returns a copy of the current alert history, newest first.
func (l *Ledger) History() domain.AlertHistory {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(domain.AlertHistory, len(l.history))
	copy(out, l.history)
	return out
}

// Reset clears the history in memory and in the store. This explicit bulk
// reset is the only deletion path. The store write goes through the write
// queue so it cannot be overtaken by an earlier cycle's pending write.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	l.history = domain.AlertHistory{}
	l.mu.Unlock()

	blob, err := domain.AlertHistory{}.Encode()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	select {
	case l.writes <- writeRequest{blob: blob, done: done}:
	case <-l.writeDone:
		return errors.New("ledger closed")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("reset alert history: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	l.logger.Info("alert history reset")
	return nil
}

// LoadSettings restores persisted settings, falling back to defaults when
// the key is absent or the blob is corrupt.
func (l *Ledger) LoadSettings(ctx context.Context) (domain.Settings, error) {
	blob, err := l.store.Get(ctx, settingsKey)
	if err != nil {
		return domain.DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	if blob == "" {
		return domain.DefaultSettings(), nil
	}
	var s domain.Settings
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		l.logger.Warn("corrupt settings blob, using defaults", "error", err)
		return domain.DefaultSettings(), nil
	}
	return s, nil
}

// SaveSettings persists settings synchronously, independent of the history
// write queue.
func (l *Ledger) SaveSettings(ctx context.Context, s domain.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := l.store.Set(ctx, settingsKey, string(data)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// enqueuePersist hands the serialized history to the write queue. The queue
// preserves order; a full queue blocks briefly rather than reordering or
// dropping writes.
func (l *Ledger) enqueuePersist(history domain.AlertHistory) {
	blob, err := history.Encode()
	if err != nil {
		l.metrics.PersistenceErrors.Inc()
		l.logger.Error("encode alert history failed", "error", err)
		return
	}
	select {
	case l.writes <- writeRequest{blob: blob}:
	case <-l.writeDone:
	}
}

// writeLoop issues queued history writes in order until Close.
func (l *Ledger) writeLoop() {
	for {
		select {
		case req := <-l.writes:
			l.persist(req)
		case <-l.writeDone:
			// Drain anything enqueued before Close.
			for {
				select {
				case req := <-l.writes:
					l.persist(req)
				default:
					return
				}
			}
		}
	}
}

func (l *Ledger) persist(req writeRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	err := l.store.Set(ctx, historyKey, req.blob)
	if err != nil {
		// Optimistic persistence: the in-memory history remains
		// authoritative for the running process.
		l.metrics.PersistenceErrors.Inc()
		l.logger.Error("persist alert history failed", "error", err)
	}
	if req.done != nil {
		req.done <- err
	}
}

// Close stops the write queue after draining pending writes.
func (l *Ledger) Close() {
	l.closeOnce.Do(func() { close(l.writeDone) })
}
