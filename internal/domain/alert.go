package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

// Alert is one immutable entry in the alert history, created when a refresh
// cycle classifies a signal level above 0.
type Alert struct {
	ID          string      `json:"id"`
	Message     string      `json:"message"`
	Signal      SignalLevel `json:"signal"`
	Timestamp   time.Time   `json:"timestamp"`
	Location    string      `json:"location"`
	WindSpeedMS float64     `json:"wind_speed_ms"`
}

// alertSeq disambiguates alerts created within the same clock tick, which
// happens in tests running under a frozen clock.
var alertSeq atomic.Uint64

// NewAlert constructs an alert for the given cycle. The ID is derived from
// the current clock time plus a process-local sequence number so IDs stay
// unique even when cycles land on the same millisecond.
func NewAlert(message string, signal SignalLevel, locationLabel string, windSpeedMS float64) Alert {
	now := clock.Now()
	return Alert{
		ID:          strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.FormatUint(alertSeq.Add(1), 10),
		Message:     message,
		Signal:      signal,
		Timestamp:   now,
		Location:    locationLabel,
		WindSpeedMS: windSpeedMS,
	}
}

// AlertHistory is the ordered alert log, newest first. It is persisted and
// reloaded as a whole; entries are never mutated or deleted except by an
// explicit bulk reset.
type AlertHistory []Alert

// Prepend returns a new history with the alert at the head. The receiver is
// not modified.
func (h AlertHistory) Prepend(a Alert) AlertHistory {
	out := make(AlertHistory, 0, len(h)+1)
	out = append(out, a)
	out = append(out, h...)
	return out
}

// Encode serializes the history to its storage form, a JSON array ordered
// newest first.
func (h AlertHistory) Encode() (string, error) {
	if h == nil {
		h = AlertHistory{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("encode alert history: %w", err)
	}
	return string(data), nil
}

// DecodeAlertHistory restores a history from its storage form. An empty
// blob yields an empty history.
func DecodeAlertHistory(blob string) (AlertHistory, error) {
	if blob == "" {
		return AlertHistory{}, nil
	}
	var h AlertHistory
	if err := json.Unmarshal([]byte(blob), &h); err != nil {
		return nil, fmt.Errorf("decode alert history: %w", err)
	}
	return h, nil
}
