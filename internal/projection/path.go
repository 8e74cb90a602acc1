package projection

import (
	"math"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
)

// ForecastPath projects the storm position at +6, +12, +18, and +24 hours
// using constant-velocity dead reckoning along the current wind vector. The
// first element is always the current position. Returns nil when there is
// no active signal.
func ForecastPath(reading domain.Reading, level domain.SignalLevel) []Position {
	if level <= domain.SignalNone {
		return nil
	}

	current := Position{Lat: reading.Location.Lat, Lon: reading.Location.Lon}
	positions := make([]Position, 0, len(forecastHours)+1)
	positions = append(positions, current)

	windRad := degToRad(reading.WindDirectionDeg)
	speedKmh := reading.WindSpeedKmh()
	latRad := degToRad(reading.Location.Lat)

	for _, hours := range forecastHours {
		distanceKm := speedKmh * hours
		latOffset := math.Cos(windRad) * distanceKm / kmPerDegreeLat
		lonOffset := math.Sin(windRad) * distanceKm / (kmPerDegreeLat * math.Cos(latRad))
		positions = append(positions, Position{
			Lat: current.Lat + latOffset,
			Lon: current.Lon + lonOffset,
		})
	}

	return positions
}
