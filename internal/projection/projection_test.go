package projection

import (
	"math"
	"testing"
	"time"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manila = domain.Location{Lat: 14.5995, Lon: 120.9842, Label: "Manila, Philippines"}

func stormReading(windSpeedMS, windDirDeg float64) domain.Reading {
	return domain.Reading{
		Timestamp:        time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
		Location:         manila,
		WindSpeedMS:      windSpeedMS,
		WindDirectionDeg: windDirDeg,
		Condition:        domain.ConditionClouds,
		HumidityPct:      70,
	}
}

func TestProject_NoSignal(t *testing.T) {
	reading := stormReading(10, 45)

	result := Project(reading, nil, domain.SignalNone, DefaultParams())

	assert.Empty(t, result.ForecastPositions)
	assert.Empty(t, result.VortexBands)
	assert.Empty(t, result.WindFlowLines)
	assert.Empty(t, result.PrecipitationZones)
}

func TestForecastPath_DueEast(t *testing.T) {
	// 120 km/h wind blowing due east: after 6 hours the storm has moved
	// 720 km, about 6.71 degrees of longitude at Manila's latitude, with
	// latitude unchanged to within rounding.
	reading := stormReading(120/3.6, 90)

	positions := ForecastPath(reading, domain.Signal4)
	require.Len(t, positions, 5)

	assert.Equal(t, manila.Lat, positions[0].Lat)
	assert.Equal(t, manila.Lon, positions[0].Lon)

	sixHour := positions[1]
	expectedLonOffset := 720.0 / (111 * math.Cos(manila.Lat*math.Pi/180))
	assert.InDelta(t, manila.Lon+expectedLonOffset, sixHour.Lon, 0.01)
	assert.InDelta(t, manila.Lat, sixHour.Lat, 1e-9)
	assert.Greater(t, sixHour.Lon, manila.Lon)
}

func TestForecastPath_SpacingIsLinear(t *testing.T) {
	reading := stormReading(30, 200)

	positions := ForecastPath(reading, domain.Signal1)
	require.Len(t, positions, 5)

	// Constant velocity: consecutive offsets from the origin double, triple,
	// and quadruple the 6-hour displacement.
	d1Lat := positions[1].Lat - positions[0].Lat
	d1Lon := positions[1].Lon - positions[0].Lon
	for i := 2; i <= 4; i++ {
		factor := float64(i)
		assert.InDelta(t, d1Lat*factor, positions[i].Lat-positions[0].Lat, 1e-9)
		assert.InDelta(t, d1Lon*factor, positions[i].Lon-positions[0].Lon, 1e-9)
	}
}

func TestVortexBands_Defaults(t *testing.T) {
	reading := stormReading(65, 120)

	bands := VortexBands(reading, domain.Signal2, DefaultParams())
	require.Len(t, bands, 10)

	// Outermost first: intensity climbs toward the core.
	for i := 1; i < len(bands); i++ {
		assert.Greater(t, bands[i].Intensity, bands[i-1].Intensity)
	}
	assert.InDelta(t, 0.1, bands[0].Intensity, 1e-9)
	assert.InDelta(t, 1.0, bands[len(bands)-1].Intensity, 1e-9)

	// Core renders as the most saturated palette step, rim as the calmest.
	assert.Equal(t, "rgba(147, 51, 234, 0.65)", bands[len(bands)-1].FillColor)
	assert.Equal(t, "rgba(34, 197, 94, 0.4)", bands[0].FillColor)

	// Each ring is a closed polygon.
	for _, b := range bands {
		require.NotEmpty(t, b.Ring)
		assert.Equal(t, b.Ring[0], b.Ring[len(b.Ring)-1])
		assert.Len(t, b.Ring, DefaultParams().PointsPerBand+2)
	}
}

func TestVortexBands_RadiusScalesWithSignal(t *testing.T) {
	reading := stormReading(220, 0)

	// maxRadius is level*2 km; every vertex of the outermost band must stay
	// within that extent (plus a small slack for the lon correction).
	for _, level := range []domain.SignalLevel{domain.Signal1, domain.Signal3, domain.Signal5} {
		bands := VortexBands(reading, level, DefaultParams())
		require.NotEmpty(t, bands)

		maxRadiusDegLat := float64(level) * 2 / 111
		outer := bands[0]
		for _, pt := range outer.Ring {
			dLat := pt.Lat - manila.Lat
			assert.LessOrEqual(t, math.Abs(dLat), maxRadiusDegLat*1.001,
				"level %d vertex beyond vortex extent", level)
		}
	}
}

func TestVortexBands_InnermostClampsToEye(t *testing.T) {
	reading := stormReading(120, 45)

	bands := VortexBands(reading, domain.Signal3, DefaultParams())
	require.Len(t, bands, 10)

	// The innermost band collapses to the eye wall at 10% of the vortex
	// radius: every vertex sits at that distance in latitude terms.
	eye := bands[len(bands)-1]
	eyeRadiusDegLat := float64(domain.Signal3) * 2 * 0.1 / 111
	for _, pt := range eye.Ring {
		dLat := (pt.Lat - manila.Lat) * 111
		dLon := (pt.Lon - manila.Lon) * 111 * math.Cos(manila.Lat*math.Pi/180)
		dist := math.Hypot(dLat, dLon) / 111
		assert.InDelta(t, eyeRadiusDegLat, dist, eyeRadiusDegLat*0.02)
	}
}

func TestWindFlowLines_Defaults(t *testing.T) {
	reading := stormReading(100, 270)

	lines := WindFlowLines(reading, domain.Signal3, DefaultParams())
	require.Len(t, lines, 24)

	for _, line := range lines {
		require.Len(t, line.Points, 4)

		// Lines spiral inward: each segment endpoint is closer to the
		// center than the previous one.
		prev := math.Inf(1)
		for _, pt := range line.Points {
			d := math.Hypot(pt.Lat-manila.Lat, pt.Lon-manila.Lon)
			assert.Less(t, d, prev)
			prev = d
		}
	}
}

func TestWindFlowLines_NoSignal(t *testing.T) {
	reading := stormReading(5, 90)
	assert.Empty(t, WindFlowLines(reading, domain.SignalNone, DefaultParams()))
}

func TestPrecipitationZones_Forecast(t *testing.T) {
	reading := stormReading(40, 0) // wind due north
	forecast := []domain.Reading{
		{Condition: domain.ConditionRain, PrecipitationMM: 25},
		{Condition: domain.ConditionThunderstorm, PrecipitationMM: 12},
		{Condition: domain.ConditionClear, PrecipitationMM: 8}, // not precipitating
		{Condition: domain.ConditionDrizzle, PrecipitationMM: 0},
		{Condition: domain.ConditionDrizzle, PrecipitationMM: 1.5},
	}

	zones := PrecipitationZones(reading, forecast)
	require.Len(t, zones, 3)

	severe := zones[0]
	assert.Equal(t, 150_000.0, severe.RadiusM) // capped at 150 km
	assert.Equal(t, "rgba(219, 39, 119, 0.4)", severe.FillColor)
	assert.Equal(t, manila.Lat, severe.Center.Lat) // day 0: no drift

	high := zones[1]
	assert.Equal(t, 12*15*1000.0, high.RadiusM)
	assert.Equal(t, "rgba(249, 115, 22, 0.35)", high.FillColor)
	// Day 1 drifts 0.15 degrees downwind (north).
	assert.InDelta(t, manila.Lat+0.15, high.Center.Lat, 1e-9)
	assert.InDelta(t, manila.Lon, high.Center.Lon, 1e-9)

	minimal := zones[2]
	assert.Equal(t, "rgba(59, 130, 246, 0.2)", minimal.FillColor)
	// Day 4 drifts four steps.
	assert.InDelta(t, manila.Lat+0.6, minimal.Center.Lat, 1e-9)
}

func TestPrecipitationZones_CurrentConditions(t *testing.T) {
	tests := []struct {
		name        string
		humidity    float64
		wantRadiusM float64
		wantFill    string
	}{
		{"heavy at high humidity", 85, 96_000, "rgba(219, 39, 119, 0.35)"},
		{"moderate at mid humidity", 70, 48_000, "rgba(59, 130, 246, 0.25)"},
		{"light at low humidity", 50, 24_000, "rgba(59, 130, 246, 0.25)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading := stormReading(20, 90)
			reading.Condition = domain.ConditionRain
			reading.HumidityPct = tt.humidity

			zones := PrecipitationZones(reading, nil)
			require.Len(t, zones, 1)
			assert.Equal(t, tt.wantRadiusM, zones[0].RadiusM)
			assert.Equal(t, tt.wantFill, zones[0].FillColor)
			assert.Equal(t, manila.Lat, zones[0].Center.Lat)
		})
	}
}

func TestPrecipitationZones_NoRain(t *testing.T) {
	reading := stormReading(20, 90) // Clouds, not precipitating
	assert.Empty(t, PrecipitationZones(reading, nil))
}

func TestProject_EndToEnd(t *testing.T) {
	reading := stormReading(65, 90)

	result := Project(reading, nil, domain.ClassifySignal(reading.WindSpeedMS), DefaultParams())

	assert.Len(t, result.VortexBands, 10)
	assert.Len(t, result.WindFlowLines, 24)
	assert.Len(t, result.ForecastPositions, 5)
}
