// Package domain models the readings, public storm signals, and alerts at the
// core of the typhoon watch service.
//
// # Signal Levels
//
// The discrete 0-5 signal level is the public typhoon-intensity
// classification shown to users, in the style of the PAGASA wind signal
// system. It is a pure function of sustained wind speed alone, with no
// hysteresis and no hidden state:
//
//	>= 220 m/s  -> 5  (super typhoon)
//	>= 185 m/s  -> 4
//	>= 100 m/s  -> 3
//	>=  60 m/s  -> 2
//	>=  30 m/s  -> 1
//	<   30 m/s  -> 0  (no signal)
//
// Thresholds are evaluated from highest to lowest, so exact boundary values
// resolve to the higher tier. Negative or non-finite wind speeds indicate a
// garbage reading and classify as 0 rather than failing the cycle.
//
// # Alerts
//
// An alert is raised for every refresh cycle in which the signal level is
// above 0 and notifications are enabled in the user settings; disabling
// notifications switches alerting off entirely, history included. There is
// deliberately no cross-cycle suppression: during an
// active storm each cycle appends a new history entry, producing a
// continuous log. The ledger offers an optional dedup window for callers
// that want to limit repeat alerts at the same level; it is off by default.
// Alert IDs derive from the wall clock at creation time.
//
// Alert messages are bilingual (Filipino and English) and come from a fixed
// template table keyed by language and signal level. Levels 1-2 share a
// caution tone, 3-4 an urgent stay-indoors tone, and 5 an evacuation tone.
//
// # Readings
//
// A Reading is one normalized snapshot of location plus weather conditions,
// produced once per refresh cycle from the weather and location providers.
// Wind speed arrives in m/s from the provider; the km/h figure used by the
// storm projector is derived with the usual x3.6 conversion.
package domain
