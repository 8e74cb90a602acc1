package domain

import (
	"math"
	"time"
)

// Condition is the normalized weather condition reported by the provider.
// Provider values outside the known set pass through unchanged; only the
// precipitating subset affects projection behavior.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
)

// IsPrecipitating reports whether the condition involves active rainfall.
func (c Condition) IsPrecipitating() bool {
	switch c {
	case ConditionRain, ConditionDrizzle, ConditionThunderstorm:
		return true
	}
	return false
}

// Location is a WGS-84 coordinate pair plus the human-readable place label
// shown in alerts, e.g. "Manila, Philippines".
type Location struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

// Reading is one immutable snapshot of location and weather conditions,
// produced once per refresh cycle.
type Reading struct {
	Timestamp        time.Time `json:"timestamp"`
	Location         Location  `json:"location"`
	WindSpeedMS      float64   `json:"wind_speed_ms"`
	WindDirectionDeg float64   `json:"wind_direction_deg"`
	Condition        Condition `json:"condition"`
	HumidityPct      float64   `json:"humidity_pct"`
	PrecipitationMM  float64   `json:"precipitation_mm"`

	TemperatureC float64 `json:"temperature_c"`
	FeelsLikeC   float64 `json:"feels_like_c"`
	PressureHPa  float64 `json:"pressure_hpa"`
	VisibilityKM float64 `json:"visibility_km"`
	CloudsPct    float64 `json:"clouds_pct"`
}

// WindSpeedKmh returns the sustained wind speed converted to km/h, the unit
// the storm projector's dead reckoning works in.
func (r Reading) WindSpeedKmh() float64 {
	return r.WindSpeedMS * 3.6
}

// Language selects the alert message language.
type Language string

const (
	LanguageFilipino Language = "fil"
	LanguageEnglish  Language = "en"
)

// Theme is carried in settings for the presentation layer; the core only
// persists it.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Settings are the user preferences consulted by the alert ledger. They are
// persisted independently of the alert history.
type Settings struct {
	NotificationsEnabled bool     `json:"notifications_enabled"`
	SoundEnabled         bool     `json:"sound_enabled"`
	Language             Language `json:"language"`
	Theme                Theme    `json:"theme"`
}

// DefaultSettings mirrors the out-of-box preferences: notifications and
// sound on, Filipino messages, dark theme.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: true,
		SoundEnabled:         true,
		Language:             LanguageFilipino,
		Theme:                ThemeDark,
	}
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint maps a bearing in degrees to its 16-wind abbreviation,
// e.g. 90 -> "E", 200 -> "SSW". Bearings outside [0, 360) wrap, so -30
// reads as 330.
func CompassPoint(degrees float64) string {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	idx := int(degrees/22.5+0.5) % 16
	return compassPoints[idx]
}
