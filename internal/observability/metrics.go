package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// threat assessment engine.
type Metrics struct {
	CyclesTotal   prometheus.Counter
	CycleDuration prometheus.Histogram
	EngineRunning prometheus.Gauge

	// Provider health.
	ProviderErrors *prometheus.CounterVec // labels: provider={location,weather,forecast}
	StalePublishes prometheus.Counter

	// Alert lifecycle.
	AlertsRaised       *prometheus.CounterVec // labels: signal=1..5
	AlertsDeduplicated prometheus.Counter
	NotificationsSent  prometheus.Counter
	NotificationErrors prometheus.Counter
	PersistenceErrors  prometheus.Counter

	// Current classified signal level, 0-5.
	SignalLevel prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.EngineRunning,
		m.ProviderErrors,
		m.StalePublishes,
		m.AlertsRaised,
		m.AlertsDeduplicated,
		m.NotificationsSent,
		m.NotificationErrors,
		m.PersistenceErrors,
		m.SignalLevel,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typhoon_watch",
			Name:      "cycles_total",
			Help:      "Total completed refresh cycles.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "typhoon_watch",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete refresh cycle, fetch through publish.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20},
		}),
		EngineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "typhoon_watch",
			Name:      "engine_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "typhoon_watch",
			Name:      "provider_errors_total",
			Help:      "Provider fetch failures and timeouts by provider.",
		}, []string{"provider"}),
		StalePublishes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typhoon_watch",
			Name:      "stale_publishes_total",
			Help:      "Cycles published with the previous reading after a provider failure.",
		}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "typhoon_watch",
			Name:      "alerts_raised_total",
			Help:      "Alerts appended to the history by signal level.",
		}, []string{"signal"}),
		AlertsDeduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typhoon_watch",
			Name:      "alerts_deduplicated_total",
			Help:      "Qualifying cycles suppressed by the optional dedup window.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typhoon_watch",
			Name:      "notifications_sent_total",
			Help:      "Notifications handed to the notifier.",
		}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typhoon_watch",
			Name:      "notification_errors_total",
			Help:      "Notifier delivery failures.",
		}),
		PersistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typhoon_watch",
			Name:      "persistence_errors_total",
			Help:      "Key-value store write failures. Non-fatal; in-memory state stays authoritative.",
		}),
		SignalLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "typhoon_watch",
			Name:      "signal_level",
			Help:      "Most recently classified public storm signal level.",
		}),
	}
}
