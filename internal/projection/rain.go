package projection

import (
	"math"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
)

const (
	// Forecast rain circles grow 15 km of radius per mm of rain, capped at
	// 150 km. Each successive forecast day drifts 0.15 degrees downwind,
	// simulating the rain band moving with the storm.
	rainRadiusKmPerMM  = 15
	rainRadiusCapKm    = 150
	rainDriftDegPerDay = 0.15

	rainStrokeWidth        = 1.5
	currentRainStrokeWidth = 2
)

// PrecipitationZones derives rain circles from the per-day forecast plus a
// separate zone for live conditions. Forecast entries contribute only when
// they report measurable rain under a precipitating condition. The current
// zone estimates intensity from humidity because the live reading carries
// no rain-rate figure.
func PrecipitationZones(reading domain.Reading, forecast []domain.Reading) []PrecipitationZone {
	zones := make([]PrecipitationZone, 0, len(forecast)+1)

	if z, ok := currentPrecipitationZone(reading); ok {
		zones = append(zones, z)
	}

	windRad := degToRad(reading.WindDirectionDeg)
	latRad := degToRad(reading.Location.Lat)

	for day, entry := range forecast {
		if entry.PrecipitationMM <= 0 || !entry.Condition.IsPrecipitating() {
			continue
		}

		radiusM := math.Min(entry.PrecipitationMM*rainRadiusKmPerMM, rainRadiusCapKm) * 1000
		drift := float64(day) * rainDriftDegPerDay
		fill, stroke := rainColors(entry.PrecipitationMM)

		zones = append(zones, PrecipitationZone{
			Center: Position{
				Lat: reading.Location.Lat + math.Cos(windRad)*drift,
				Lon: reading.Location.Lon + math.Sin(windRad)*drift/math.Cos(latRad),
			},
			RadiusM:         radiusM,
			FillColor:       fill,
			StrokeColor:     stroke,
			StrokeWidth:     rainStrokeWidth,
			PrecipitationMM: entry.PrecipitationMM,
		})
	}

	return zones
}

// currentPrecipitationZone builds the live rain circle when the current
// condition is itself precipitating. Humidity serves as an intensity proxy:
// above 80% reads as heavy (8), above 60% moderate (4), otherwise light (2).
func currentPrecipitationZone(reading domain.Reading) (PrecipitationZone, bool) {
	if !reading.Condition.IsPrecipitating() {
		return PrecipitationZone{}, false
	}

	intensity := 2.0
	switch {
	case reading.HumidityPct > 80:
		intensity = 8
	case reading.HumidityPct > 60:
		intensity = 4
	}

	radiusM := math.Min(intensity*12, 120) * 1000
	fill, stroke := currentRainColors(intensity)

	return PrecipitationZone{
		Center:          Position{Lat: reading.Location.Lat, Lon: reading.Location.Lon},
		RadiusM:         radiusM,
		FillColor:       fill,
		StrokeColor:     stroke,
		StrokeWidth:     currentRainStrokeWidth,
		PrecipitationMM: intensity,
	}, true
}
