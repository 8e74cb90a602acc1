package engine_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/bayanihan-labs/typhoon-watch/internal/engine"
	"github.com/bayanihan-labs/typhoon-watch/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manila = domain.Location{Lat: 14.5995, Lon: 120.9842, Label: "Manila, Philippines"}

// --- mocks ---

type mockWeather struct {
	mu       sync.Mutex
	reading  domain.Reading
	forecast []domain.Reading
	err      error
	calls    atomic.Int64
	gate     chan struct{} // when non-nil, CurrentReading blocks until closed or receiving
}

func (m *mockWeather) CurrentReading(ctx context.Context, lat, lon float64) (domain.Reading, error) {
	m.calls.Add(1)
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return domain.Reading{}, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Reading{}, m.err
	}
	return m.reading, nil
}

func (m *mockWeather) Forecast(_ context.Context, lat, lon float64) ([]domain.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forecast, nil
}

func (m *mockWeather) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type mockLocation struct {
	loc domain.Location
	err error
}

func (m *mockLocation) Locate(_ context.Context) (domain.Location, error) {
	if m.err != nil {
		return domain.Location{}, m.err
	}
	return m.loc, nil
}

type mockLedger struct {
	mu      sync.Mutex
	history domain.AlertHistory
	saved   []domain.Settings
}

func (m *mockLedger) Process(_ context.Context, reading domain.Reading, level domain.SignalLevel, settings domain.Settings) (domain.AlertHistory, *domain.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level <= domain.SignalNone {
		out := make(domain.AlertHistory, len(m.history))
		copy(out, m.history)
		return out, nil
	}
	alert := domain.NewAlert("test alert", level, reading.Location.Label, reading.WindSpeedMS)
	m.history = m.history.Prepend(alert)
	out := make(domain.AlertHistory, len(m.history))
	copy(out, m.history)
	return out, &alert
}

func (m *mockLedger) History() domain.AlertHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(domain.AlertHistory, len(m.history))
	copy(out, m.history)
	return out
}

func (m *mockLedger) SaveSettings(_ context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
	return nil
}

func stormyWeather(windSpeedMS float64) *mockWeather {
	return &mockWeather{
		reading: domain.Reading{
			Timestamp:        time.Now(),
			WindSpeedMS:      windSpeedMS,
			WindDirectionDeg: 90,
			Condition:        domain.ConditionRain,
			HumidityPct:      85,
		},
	}
}

func newTestEngine(weather *mockWeather, location *mockLocation, led *mockLedger) *engine.Engine {
	return engine.New(
		weather,
		location,
		led,
		slog.Default(),
		observability.NewMetricsForTesting(),
		domain.DefaultSettings(),
		manila,
		engine.Config{ProviderTimeout: time.Second},
	)
}

// runUntilPublished starts Run in the background and waits for the first
// published state.
func runUntilPublished(t *testing.T, e *engine.Engine) (context.CancelFunc, engine.State) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	sub := e.Subscribe()
	go func() { _ = e.Run(ctx) }()

	select {
	case state := <-sub:
		return cancel, state
	case <-time.After(3 * time.Second):
		cancel()
		t.Fatal("no state published")
		return cancel, engine.State{}
	}
}

// --- tests ---

func TestEngine_EndToEndStormCycle(t *testing.T) {
	weather := stormyWeather(65)
	led := &mockLedger{}
	e := newTestEngine(weather, &mockLocation{loc: manila}, led)

	cancel, state := runUntilPublished(t, e)
	defer cancel()

	assert.Equal(t, domain.Signal2, state.SignalLevel)
	require.Len(t, state.AlertHistory, 1)
	assert.Len(t, state.Projection.VortexBands, 10)
	assert.Equal(t, manila, state.Reading.Location)
	assert.False(t, state.Stale)
	assert.False(t, state.Loading)
}

func TestEngine_CalmCycleRaisesNothing(t *testing.T) {
	weather := stormyWeather(10)
	led := &mockLedger{}
	e := newTestEngine(weather, &mockLocation{loc: manila}, led)

	cancel, state := runUntilPublished(t, e)
	defer cancel()

	assert.Equal(t, domain.SignalNone, state.SignalLevel)
	assert.Empty(t, state.AlertHistory)
	assert.Empty(t, state.Projection.VortexBands)
}

func TestEngine_PublishesStaleOnWeatherFailure(t *testing.T) {
	weather := stormyWeather(65)
	led := &mockLedger{}
	e := newTestEngine(weather, &mockLocation{loc: manila}, led)

	cancel, first := runUntilPublished(t, e)
	defer cancel()
	require.False(t, first.Stale)

	sub := e.Subscribe()
	weather.setErr(errors.New("api down"))
	e.TriggerRefresh()

	select {
	case state := <-sub:
		assert.True(t, state.Stale)
		// Previous reading carried forward, unchanged.
		assert.Equal(t, first.Reading.WindSpeedMS, state.Reading.WindSpeedMS)
		assert.Equal(t, domain.Signal2, state.SignalLevel)
		// No duplicate alert for data the ledger already saw.
		assert.Len(t, state.AlertHistory, 1)
	case <-time.After(3 * time.Second):
		t.Fatal("no stale state published")
	}
}

func TestEngine_PublishesEmptyStateWhenNothingKnown(t *testing.T) {
	weather := &mockWeather{err: errors.New("api down")}
	led := &mockLedger{}
	e := newTestEngine(weather, &mockLocation{loc: manila}, led)

	cancel, state := runUntilPublished(t, e)
	defer cancel()

	// Availability over correctness: a state is still published.
	assert.True(t, state.Stale)
	assert.Equal(t, domain.SignalNone, state.SignalLevel)
	assert.Equal(t, manila, state.Reading.Location)
}

func TestEngine_LocationFailureKeepsPrevious(t *testing.T) {
	weather := stormyWeather(40)
	led := &mockLedger{}
	e := newTestEngine(weather, &mockLocation{err: errors.New("denied")}, led)

	cancel, state := runUntilPublished(t, e)
	defer cancel()

	// The engine was seeded with Manila; a failing location provider does
	// not lose it.
	assert.Equal(t, manila, state.Reading.Location)
	assert.False(t, state.Stale)
}

func TestEngine_CoalescesTriggers(t *testing.T) {
	weather := stormyWeather(10)
	weather.gate = make(chan struct{})
	led := &mockLedger{}
	e := newTestEngine(weather, &mockLocation{loc: manila}, led)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()

	// Wait for the first cycle to be in flight, then pile on triggers.
	require.Eventually(t, func() bool { return weather.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	for i := 0; i < 10; i++ {
		e.TriggerRefresh()
	}

	close(weather.gate)

	// 10 triggers during one in-flight cycle produce exactly one extra
	// cycle: two weather calls total, and no more.
	require.Eventually(t, func() bool { return weather.calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(2), weather.calls.Load())
}

func TestEngine_CurrentAndReadiness(t *testing.T) {
	weather := stormyWeather(10)
	led := &mockLedger{}
	e := newTestEngine(weather, &mockLocation{loc: manila}, led)

	_, ok := e.Current()
	assert.False(t, ok)
	assert.Error(t, e.CheckReadiness(context.Background()))

	cancel, published := runUntilPublished(t, e)
	defer cancel()

	current, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, published.UpdatedAt, current.UpdatedAt)
	assert.NoError(t, e.CheckReadiness(context.Background()))
}

func TestEngine_UpdateSettings(t *testing.T) {
	weather := stormyWeather(10)
	led := &mockLedger{}
	e := newTestEngine(weather, &mockLocation{loc: manila}, led)

	s := domain.DefaultSettings()
	s.NotificationsEnabled = false
	s.Language = domain.LanguageEnglish
	require.NoError(t, e.UpdateSettings(context.Background(), s))

	assert.Equal(t, s, e.Settings())
	require.Len(t, led.saved, 1)
	assert.Equal(t, s, led.saved[0])
}
