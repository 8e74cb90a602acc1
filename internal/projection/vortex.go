package projection

import (
	"math"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
)

const (
	// eyeRadiusFactor clamps the innermost band's inner radius, leaving a
	// storm eye at 10% of the vortex extent.
	eyeRadiusFactor = 0.1

	// spiralTwistFactor controls spiral tightness: each sample's angle is
	// offset by this fraction of its base angle.
	spiralTwistFactor = 0.25

	// flowLineExtentFactor extends the wind-flow field beyond the vortex.
	flowLineExtentFactor = 2.2

	// flowLineTurns is how far each flow line spirals inward, in half-turns
	// of pi radians.
	flowLineTurns = 1.5

	bandStrokeWidth = 1.5
)

// vortexMaxRadiusM scales the vortex extent with the signal level:
// 2 km of base radius per level, in meters.
func vortexMaxRadiusM(level domain.SignalLevel) float64 {
	return float64(level) * 2 * 1000
}

// VortexBands renders the storm as concentric spiral intensity bands,
// outermost first. Each band polygon samples the circle with the radius
// interpolating from the band's inner to outer edge as the angle advances
// through the configured spiral turns, plus a twist term and the ambient
// wind direction. The result reads as one continuous spiral rather than
// nested rings. Empty when there is no active signal.
func VortexBands(reading domain.Reading, level domain.SignalLevel, p Params) []VortexBand {
	if level <= domain.SignalNone || p.NumBands <= 0 || p.PointsPerBand <= 0 {
		return nil
	}

	center := Position{Lat: reading.Location.Lat, Lon: reading.Location.Lon}
	windRad := degToRad(reading.WindDirectionDeg)
	maxRadius := vortexMaxRadiusM(level)
	eyeRadius := maxRadius * eyeRadiusFactor

	bands := make([]VortexBand, 0, p.NumBands)
	for band := p.NumBands - 1; band >= 0; band-- {
		bandProgress := float64(band) / float64(p.NumBands)

		outerRadius := maxRadius * float64(band+1) / float64(p.NumBands)
		innerRadius := maxRadius * bandProgress
		if band == 0 {
			innerRadius = eyeRadius
		}
		// With the default 10 bands the innermost band collapses to the eye
		// wall (inner == outer) and renders as a tight circle; only truly
		// inverted ranges are dropped.
		if innerRadius > outerRadius {
			continue
		}

		ring := make([]Position, 0, p.PointsPerBand+2)
		for i := 0; i <= p.PointsPerBand; i++ {
			t := float64(i) / float64(p.PointsPerBand)
			baseAngle := t * 2 * math.Pi * p.SpiralTurns
			radius := innerRadius + (outerRadius-innerRadius)*t
			finalAngle := baseAngle + windRad + baseAngle*spiralTwistFactor
			ring = append(ring, offsetMeters(center, finalAngle, radius))
		}
		// Close the polygon.
		ring = append(ring, ring[0])

		intensity := 1 - bandProgress
		fill, stroke := bandColors(intensity)
		bands = append(bands, VortexBand{
			Ring:        ring,
			Intensity:   intensity,
			FillColor:   fill,
			StrokeColor: stroke,
			StrokeWidth: bandStrokeWidth,
		})
	}

	return bands
}

// WindFlowLines generates short 3-segment polylines radiating from the
// center and spiraling inward from 85% to 25% of the extended vortex
// radius, to visually suggest inflow. Empty when there is no active signal.
func WindFlowLines(reading domain.Reading, level domain.SignalLevel, p Params) []WindFlowLine {
	if level <= domain.SignalNone || p.NumFlowLines <= 0 {
		return nil
	}

	center := Position{Lat: reading.Location.Lat, Lon: reading.Location.Lon}
	windRad := degToRad(reading.WindDirectionDeg)
	maxRadius := vortexMaxRadiusM(level) * flowLineExtentFactor

	const segments = 3
	lines := make([]WindFlowLine, 0, p.NumFlowLines)
	for i := 0; i < p.NumFlowLines; i++ {
		startAngle := float64(i)/float64(p.NumFlowLines)*2*math.Pi + windRad

		points := make([]Position, 0, segments+1)
		for seg := 0; seg <= segments; seg++ {
			progress := float64(seg) / float64(segments)
			angle := startAngle + progress*math.Pi*flowLineTurns
			radius := maxRadius * (0.85 - progress*0.6)
			points = append(points, offsetMeters(center, angle, radius))
		}
		lines = append(lines, WindFlowLine{Points: points})
	}

	return lines
}
