// Command simulate drives synthetic weather readings through the real
// classification, messaging and projection code, without touching any
// provider. Useful for eyeballing geometry output and generating JSON
// fixtures for downstream consumers.
//
// Usage:
//
//	go run ./cmd/simulate -wind 120 -dir 230 -lang en
//	go run ./cmd/simulate -sweep
//	go run ./cmd/simulate -wind 65 -out fixtures/signal2.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/bayanihan-labs/typhoon-watch/internal/ledger"
	"github.com/bayanihan-labs/typhoon-watch/internal/projection"
)

var baseTime = time.Date(2026, time.September, 1, 6, 0, 0, 0, time.UTC)

// simulation is the JSON shape written for one synthetic reading.
type simulation struct {
	Reading    domain.Reading     `json:"reading"`
	Signal     domain.SignalLevel `json:"signal"`
	SignalName string             `json:"signal_name"`
	Message    string             `json:"message"`
	Projection projection.Result  `json:"projection"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	wind := flag.Float64("wind", 65, "wind speed in m/s")
	dir := flag.Float64("dir", 230, "wind direction in degrees")
	rain := flag.Float64("rain", 12, "precipitation in mm")
	humidity := flag.Float64("humidity", 85, "relative humidity percent")
	lat := flag.Float64("lat", 14.5995, "latitude")
	lon := flag.Float64("lon", 120.9842, "longitude")
	label := flag.String("label", "Manila", "location label")
	lang := flag.String("lang", "fil", "alert message language (fil or en)")
	sweep := flag.Bool("sweep", false, "print a classification table across wind speeds and exit")
	out := flag.String("out", "", "optional output path for the JSON fixture")
	flag.Parse()

	language := domain.Language(*lang)

	if *sweep {
		printSweep(language)
		return nil
	}

	// Fixed clock so repeated runs produce identical fixtures.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	reading := domain.Reading{
		Timestamp:        baseTime,
		Location:         domain.Location{Lat: *lat, Lon: *lon, Label: *label},
		WindSpeedMS:      *wind,
		WindDirectionDeg: *dir,
		Condition:        domain.ConditionRain,
		HumidityPct:      *humidity,
		PrecipitationMM:  *rain,
	}
	forecast := syntheticForecast(reading)

	level := domain.ClassifySignal(reading.WindSpeedMS)
	result := projection.Project(reading, forecast, level, projection.DefaultParams())

	sim := simulation{
		Reading:    reading,
		Signal:     level,
		SignalName: level.Name(language),
		Message:    ledger.Message(language, level, reading.Location.Label),
		Projection: result,
	}

	fmt.Printf("wind %.1f m/s (%.1f km/h) at %s: signal %d (%s)\n",
		reading.WindSpeedMS, reading.WindSpeedKmh(), reading.Location.Label, level, sim.SignalName)
	if level > domain.SignalNone {
		fmt.Printf("message: %s\n", sim.Message)
	}
	fmt.Printf("projection: %d vortex bands, %d flow lines, %d path positions, %d rain zones\n",
		len(result.VortexBands), len(result.WindFlowLines), len(result.ForecastPositions), len(result.PrecipitationZones))

	if *out != "" {
		if err := writeJSON(*out, sim); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *out)
	}
	return nil
}

// syntheticForecast fabricates a weakening five-day outlook downwind of
// the current reading.
func syntheticForecast(current domain.Reading) []domain.Reading {
	out := make([]domain.Reading, 0, 5)
	for day := 1; day <= 5; day++ {
		decay := 1 - float64(day)*0.12
		out = append(out, domain.Reading{
			Timestamp:        current.Timestamp.AddDate(0, 0, day),
			Location:         current.Location,
			WindSpeedMS:      current.WindSpeedMS * decay,
			WindDirectionDeg: current.WindDirectionDeg,
			Condition:        domain.ConditionRain,
			HumidityPct:      current.HumidityPct,
			PrecipitationMM:  current.PrecipitationMM * decay,
		})
	}
	return out
}

func printSweep(lang domain.Language) {
	speeds := []float64{0, 15, 30, 45, 60, 80, 100, 150, 185, 210, 220, 250}
	fmt.Println("wind m/s  km/h     signal  name")
	for _, ms := range speeds {
		level := domain.ClassifySignal(ms)
		fmt.Printf("%-9.1f %-8.1f %-7d %s\n", ms, ms*3.6, level, level.Name(lang))
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
