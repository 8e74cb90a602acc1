package domain

import "math"

// SignalLevel is the discrete 0-5 public typhoon-intensity classification.
type SignalLevel int

const (
	SignalNone SignalLevel = iota
	Signal1
	Signal2
	Signal3
	Signal4
	Signal5
)

// Signal level thresholds in m/s, inclusive lower bounds. Checked from
// highest to lowest so exact boundary values resolve to the higher tier.
const (
	signal5ThresholdMS = 220
	signal4ThresholdMS = 185
	signal3ThresholdMS = 100
	signal2ThresholdMS = 60
	signal1ThresholdMS = 30
)

// ClassifySignal maps a sustained wind speed in m/s to a signal level.
// Pure and total: any finite non-negative speed classifies, and negative,
// NaN, or infinite speeds indicate an invalid reading and classify as 0
// rather than failing the cycle.
func ClassifySignal(windSpeedMS float64) SignalLevel {
	if math.IsNaN(windSpeedMS) || math.IsInf(windSpeedMS, 0) || windSpeedMS < 0 {
		return SignalNone
	}
	switch {
	case windSpeedMS >= signal5ThresholdMS:
		return Signal5
	case windSpeedMS >= signal4ThresholdMS:
		return Signal4
	case windSpeedMS >= signal3ThresholdMS:
		return Signal3
	case windSpeedMS >= signal2ThresholdMS:
		return Signal2
	case windSpeedMS >= signal1ThresholdMS:
		return Signal1
	}
	return SignalNone
}

var signalNames = map[Language][6]string{
	LanguageFilipino: {
		"Walang Signal",
		"Malakas na Hangin",
		"Tanda ng Bagyo",
		"Malakas na Bagyo",
		"Napakalakas na Bagyo",
		"Super Bagyo",
	},
	LanguageEnglish: {
		"No Signal",
		"Strong Wind",
		"Tropical Storm",
		"Strong Storm",
		"Very Strong Storm",
		"Super Typhoon",
	},
}

// Name returns the localized human-readable description of the signal level.
// Unknown languages fall back to English; out-of-range levels return the
// no-signal description.
func (s SignalLevel) Name(lang Language) string {
	names, ok := signalNames[lang]
	if !ok {
		names = signalNames[LanguageEnglish]
	}
	if s < SignalNone || s > Signal5 {
		return names[0]
	}
	return names[s]
}
