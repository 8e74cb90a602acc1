// Package projection computes the map geometry for an active storm: a
// forecast path, spiral vortex intensity bands, decorative wind-flow lines,
// and precipitation zones.
//
// The forecast path is constant-velocity dead reckoning from the current
// wind vector. It is a straight-line extrapolation, not a meteorological
// forecast model: no Coriolis curvature, no deceleration. Positions degrade
// in usefulness the further out they project and are meant for map display
// only.
//
// All functions are pure and deterministic given their inputs. They perform
// no I/O and allocate fresh result structures on every call.
package projection

import (
	"math"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
)

// kmPerDegreeLat is the approximate length of one degree of latitude.
// Longitude offsets are additionally scaled by cos(lat) to account for
// meridian convergence.
const kmPerDegreeLat = 111.0

// forecastHours are the future offsets, in hours, at which the storm path
// is projected.
var forecastHours = [4]float64{6, 12, 18, 24}

// Position is a WGS-84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// VortexBand is one concentric spiral polygon of the storm vortex. Bands
// are ordered outermost first so inner bands paint over outer ones, and the
// fill saturation follows Intensity: the core renders most saturated, the
// rim calmest. That ordering is the contract for any palette.
type VortexBand struct {
	Ring        []Position `json:"ring"`
	Intensity   float64    `json:"intensity"`
	FillColor   string     `json:"fill_color"`
	StrokeColor string     `json:"stroke_color"`
	StrokeWidth float64    `json:"stroke_width"`
}

// WindFlowLine is a short curved polyline suggesting inflow toward the
// storm center. Purely decorative derived geometry.
type WindFlowLine struct {
	Points []Position `json:"points"`
}

// PrecipitationZone is a circle of expected rainfall for map display.
type PrecipitationZone struct {
	Center          Position `json:"center"`
	RadiusM         float64  `json:"radius_m"`
	FillColor       string   `json:"fill_color"`
	StrokeColor     string   `json:"stroke_color"`
	StrokeWidth     float64  `json:"stroke_width"`
	PrecipitationMM float64  `json:"precipitation_mm"`
}

// Result is the full set of map overlays for one refresh cycle. It is
// derived, never persisted, and recomputed every cycle.
type Result struct {
	ForecastPositions  []Position          `json:"forecast_positions"`
	VortexBands        []VortexBand        `json:"vortex_bands"`
	WindFlowLines      []WindFlowLine      `json:"wind_flow_lines"`
	PrecipitationZones []PrecipitationZone `json:"precipitation_zones"`
}

// Params tune the vortex and flow-line sampling density.
type Params struct {
	NumBands      int     // concentric intensity bands
	PointsPerBand int     // samples per band polygon
	SpiralTurns   float64 // full rotations per band
	NumFlowLines  int     // wind-flow polylines
}

// DefaultParams returns the rendering defaults: 10 bands of 120 points over
// 3 spiral turns, with 24 flow lines.
func DefaultParams() Params {
	return Params{
		NumBands:      10,
		PointsPerBand: 120,
		SpiralTurns:   3,
		NumFlowLines:  24,
	}
}

// Project computes all overlays for the given reading, per-day forecast,
// and classified signal level. With signal 0 the path, vortex, and flow
// lines come back empty; precipitation zones are still derived because rain
// display does not depend on an active storm signal.
func Project(reading domain.Reading, forecast []domain.Reading, level domain.SignalLevel, p Params) Result {
	return Result{
		ForecastPositions:  ForecastPath(reading, level),
		VortexBands:        VortexBands(reading, level, p),
		WindFlowLines:      WindFlowLines(reading, level, p),
		PrecipitationZones: PrecipitationZones(reading, forecast),
	}
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

// offset displaces a position by metric offsets expressed in meters along
// the given bearing, correcting longitude for meridian convergence at the
// origin latitude.
func offsetMeters(origin Position, angleRad, distanceM float64) Position {
	latOff := math.Cos(angleRad) * distanceM / (kmPerDegreeLat * 1000)
	lonOff := math.Sin(angleRad) * distanceM / (kmPerDegreeLat * 1000 * math.Cos(degToRad(origin.Lat)))
	return Position{Lat: origin.Lat + latOff, Lon: origin.Lon + lonOff}
}
