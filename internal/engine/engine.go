// Package engine orchestrates the refresh cycle: obtain a reading from the
// location and weather providers, classify the signal level, run the alert
// ledger, project the storm geometry, and publish the combined state to
// subscribers.
//
// One cycle runs at a time. Triggers arriving while a cycle is in flight
// coalesce into a single pending refresh, so a burst of manual refreshes
// costs at most one extra cycle. The engine prefers stale data over no
// data: a provider failure publishes the previous successful reading with
// the stale flag set rather than failing the cycle.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/bayanihan-labs/typhoon-watch/internal/observability"
	"github.com/bayanihan-labs/typhoon-watch/internal/projection"
)

// WeatherProvider fetches normalized readings for a coordinate.
type WeatherProvider interface {
	// CurrentReading returns the live conditions at the coordinate.
	CurrentReading(ctx context.Context, lat, lon float64) (domain.Reading, error)

	// Forecast returns up to five day-bucketed entries, one per calendar
	// day, preferring a midday sample when multiple exist for a day.
	Forecast(ctx context.Context, lat, lon float64) ([]domain.Reading, error)
}

// LocationProvider resolves the monitored location. Implementations fall
// back to a fixed default on denial or timeout; the engine treats the
// fallback as a normal input.
type LocationProvider interface {
	Locate(ctx context.Context) (domain.Location, error)
}

// AlertLedger is the slice of the ledger the engine drives each cycle.
type AlertLedger interface {
	Process(ctx context.Context, reading domain.Reading, level domain.SignalLevel, settings domain.Settings) (domain.AlertHistory, *domain.Alert)
	History() domain.AlertHistory
	SaveSettings(ctx context.Context, s domain.Settings) error
}

// State is the snapshot published to subscribers once per completed cycle.
// Subscribers never observe a partially updated tuple and must not mutate
// it.
type State struct {
	Reading      domain.Reading      `json:"reading"`
	Forecast     []domain.Reading    `json:"forecast"`
	SignalLevel  domain.SignalLevel  `json:"signal_level"`
	AlertHistory domain.AlertHistory `json:"alert_history"`
	Projection   projection.Result   `json:"projection"`
	Loading      bool                `json:"loading"`
	Stale        bool                `json:"stale"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// cycle phases, for logging only.
const (
	phaseFetching   = "fetching"
	phaseClassify   = "classifying"
	phaseAlerting   = "alerting"
	phaseProjecting = "projecting"
	phasePublished  = "published"
)

// Config holds the engine's tunables.
type Config struct {
	ProviderTimeout  time.Duration
	ProjectionParams projection.Params
}

// Engine coordinates refresh cycles and owns the published state.
type Engine struct {
	weather  WeatherProvider
	location LocationProvider
	ledger   AlertLedger
	logger   *slog.Logger
	metrics  *observability.Metrics
	cfg      Config

	// trigger carries at most one pending refresh; sends while a cycle is
	// in flight coalesce.
	trigger chan struct{}

	mu          sync.RWMutex
	settings    domain.Settings
	state       State
	lastReading *domain.Reading
	lastLoc     domain.Location
	subscribers []chan State

	published atomic.Bool
}

// New creates an Engine. initialLocation seeds the coordinate used for the
// first cycle's weather fetch; settings are the caller-owned preferences
// loaded at startup.
func New(weather WeatherProvider, location LocationProvider, ledger AlertLedger, logger *slog.Logger, metrics *observability.Metrics, settings domain.Settings, initialLocation domain.Location, cfg Config) *Engine {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 15 * time.Second
	}
	if cfg.ProjectionParams.NumBands == 0 {
		cfg.ProjectionParams = projection.DefaultParams()
	}
	return &Engine{
		weather:  weather,
		location: location,
		ledger:   ledger,
		logger:   logger,
		metrics:  metrics,
		cfg:      cfg,
		trigger:  make(chan struct{}, 1),
		settings: settings,
		lastLoc:  initialLocation,
		state:    State{Loading: true},
	}
}

// Run executes refresh cycles until the context is cancelled: one on start,
// then one per coalesced trigger.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine started", "provider_timeout", e.cfg.ProviderTimeout)
	e.metrics.EngineRunning.Set(1)
	defer e.metrics.EngineRunning.Set(0)

	e.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping", "reason", ctx.Err())
			return nil
		case <-e.trigger:
			e.runCycle(ctx)
		}
	}
}

// TriggerRefresh requests a refresh cycle. Non-blocking: requests arriving
// while a cycle is in flight collapse into the single pending trigger.
func (e *Engine) TriggerRefresh() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// runCycle performs one fetch-classify-alert-project-publish pass. Never
// returns an error: the engine always publishes some state.
func (e *Engine) runCycle(ctx context.Context) {
	start := time.Now()

	reading, forecast, stale := e.fetch(ctx)

	e.logger.Debug("cycle phase", "phase", phaseClassify)
	level := domain.ClassifySignal(reading.WindSpeedMS)
	e.metrics.SignalLevel.Set(float64(level))

	e.logger.Debug("cycle phase", "phase", phaseAlerting)
	settings := e.Settings()
	var history domain.AlertHistory
	if stale {
		// A stale reading reflects a cycle that already alerted; do not
		// append a duplicate entry for data the ledger has seen.
		history = e.ledger.History()
	} else {
		history, _ = e.ledger.Process(ctx, reading, level, settings)
	}

	e.logger.Debug("cycle phase", "phase", phaseProjecting)
	proj := projection.Project(reading, forecast, level, e.cfg.ProjectionParams)

	state := State{
		Reading:      reading,
		Forecast:     forecast,
		SignalLevel:  level,
		AlertHistory: history,
		Projection:   proj,
		Stale:        stale,
		UpdatedAt:    time.Now(),
	}
	e.publish(state)

	e.metrics.CyclesTotal.Inc()
	e.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("cycle complete",
		"phase", phasePublished,
		"signal", int(level),
		"stale", stale,
		"duration", time.Since(start),
	)
}

// fetch obtains the location and weather concurrently under the provider
// timeout. The weather fetch uses the location known at cycle start; the
// freshly resolved location is attached to the reading afterward, since
// conditions vary slowly over the distances involved. On weather failure
// the previous successful reading is reused and the result is marked
// stale.
func (e *Engine) fetch(ctx context.Context) (domain.Reading, []domain.Reading, bool) {
	e.logger.Debug("cycle phase", "phase", phaseFetching)

	e.mu.RLock()
	loc := e.lastLoc
	e.mu.RUnlock()

	var (
		wg          sync.WaitGroup
		newLoc      domain.Location
		locErr      error
		reading     domain.Reading
		readingErr  error
		forecast    []domain.Reading
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
		defer cancel()
		newLoc, locErr = e.location.Locate(fetchCtx)
	}()
	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
		defer cancel()
		reading, readingErr = e.weather.CurrentReading(fetchCtx, loc.Lat, loc.Lon)
		if readingErr != nil {
			return
		}
		forecast, forecastErr = e.weather.Forecast(fetchCtx, loc.Lat, loc.Lon)
	}()
	wg.Wait()

	if locErr != nil {
		// The provider's own fallback failed too; keep the last location.
		e.metrics.ProviderErrors.WithLabelValues("location").Inc()
		e.logger.Warn("location fetch failed, keeping previous", "error", locErr)
		newLoc = loc
	}

	if forecastErr != nil {
		// A missing forecast only thins the precipitation overlay.
		e.metrics.ProviderErrors.WithLabelValues("forecast").Inc()
		e.logger.Warn("forecast fetch failed", "error", forecastErr)
		forecast = nil
	}

	if readingErr != nil {
		e.metrics.ProviderErrors.WithLabelValues("weather").Inc()
		e.metrics.StalePublishes.Inc()
		e.logger.Warn("weather fetch failed, publishing last known data", "error", readingErr)

		e.mu.Lock()
		e.lastLoc = newLoc
		prev := e.lastReading
		prevForecast := e.state.Forecast
		e.mu.Unlock()

		if prev != nil {
			return *prev, prevForecast, true
		}
		// Nothing to fall back on: a zero reading at the resolved location
		// classifies as signal 0 and publishes an empty overlay.
		return domain.Reading{Timestamp: time.Now(), Location: newLoc}, nil, true
	}

	reading.Location = newLoc

	e.mu.Lock()
	e.lastLoc = newLoc
	e.lastReading = &reading
	e.mu.Unlock()

	return reading, forecast, false
}

// publish atomically replaces the current state and fans it out to
// subscribers. Slow subscribers miss intermediate snapshots rather than
// blocking the cycle.
func (e *Engine) publish(state State) {
	e.mu.Lock()
	e.state = state
	subs := make([]chan State, len(e.subscribers))
	copy(subs, e.subscribers)
	e.mu.Unlock()

	e.published.Store(true)

	for _, ch := range subs {
		select {
		case ch <- state:
		default:
			// Replace the stale pending snapshot with the current one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// Subscribe registers a listener for published states. The channel holds
// the most recent snapshot; subscribers that fall behind observe only the
// latest.
func (e *Engine) Subscribe() <-chan State {
	ch := make(chan State, 1)
	e.mu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.mu.Unlock()
	return ch
}

// Current returns the most recently published state. ok is false until the
// first cycle completes.
func (e *Engine) Current() (State, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, e.published.Load()
}

// Settings returns the caller-owned preferences consulted each cycle.
func (e *Engine) Settings() domain.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// UpdateSettings persists the new preferences and applies them to
// subsequent cycles.
func (e *Engine) UpdateSettings(ctx context.Context, s domain.Settings) error {
	if err := e.ledger.SaveSettings(ctx, s); err != nil {
		return err
	}
	e.mu.Lock()
	e.settings = s
	e.mu.Unlock()
	e.logger.Info("settings updated",
		"notifications", s.NotificationsEnabled,
		"sound", s.SoundEnabled,
		"language", s.Language,
	)
	return nil
}

// CheckReadiness reports nil once at least one cycle has published.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.published.Load() {
		return errors.New("no refresh cycle has completed yet")
	}
	return nil
}
