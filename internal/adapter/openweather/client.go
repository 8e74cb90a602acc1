// Package openweather implements the weather and location providers against
// the OpenWeather API: current conditions, the 5-day/3-hour forecast
// bucketed per calendar day, and reverse geocoding for location labels.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
)

const (
	defaultBaseURL    = "https://api.openweathermap.org/data/2.5"
	defaultGeoBaseURL = "https://api.openweathermap.org/geo/1.0"

	// forecastDays caps the day-bucketed forecast length.
	forecastDays = 5

	// middayHour is the preferred sample hour within each forecast day.
	middayHour = 12
)

// Client talks to the OpenWeather API. It implements
// engine.WeatherProvider.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	geoBaseURL string
	logger     *slog.Logger
}

// Option overrides client defaults.
type Option func(*Client)

// WithBaseURLs points the client at alternate endpoints, used by tests.
func WithBaseURLs(base, geoBase string) Option {
	return func(c *Client) {
		c.baseURL = base
		c.geoBaseURL = geoBase
	}
}

// NewClient creates an OpenWeather client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    defaultBaseURL,
		geoBaseURL: defaultGeoBaseURL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentReading fetches and normalizes the live conditions at the
// coordinate. The location label is left for the caller; the engine
// attaches the one resolved by the location provider.
func (c *Client) CurrentReading(ctx context.Context, lat, lon float64) (domain.Reading, error) {
	var resp currentResponse
	if err := c.get(ctx, c.baseURL+"/weather", lat, lon, &resp); err != nil {
		return domain.Reading{}, fmt.Errorf("current weather: %w", err)
	}

	condition := domain.Condition("")
	if len(resp.Weather) > 0 {
		condition = domain.Condition(resp.Weather[0].Main)
	}

	return domain.Reading{
		Timestamp:        time.Now(),
		Location:         domain.Location{Lat: lat, Lon: lon, Label: resp.Name},
		WindSpeedMS:      resp.Wind.Speed,
		WindDirectionDeg: resp.Wind.Deg,
		Condition:        condition,
		HumidityPct:      resp.Main.Humidity,
		PrecipitationMM:  resp.Rain.OneHour,
		TemperatureC:     resp.Main.Temp,
		FeelsLikeC:       resp.Main.FeelsLike,
		PressureHPa:      resp.Main.Pressure,
		VisibilityKM:     resp.Visibility / 1000,
		CloudsPct:        resp.Clouds.All,
	}, nil
}

// Forecast fetches the 3-hour forecast and buckets it into at most five
// per-day entries, preferring the midday sample when a day has several.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]domain.Reading, error) {
	var resp forecastResponse
	if err := c.get(ctx, c.baseURL+"/forecast", lat, lon, &resp); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	type bucket struct {
		reading domain.Reading
		midday  bool
	}
	byDay := make(map[string]bucket)
	var order []string

	for _, item := range resp.List {
		ts := time.Unix(item.Dt, 0).UTC()
		dayKey := ts.Format("2006-01-02")

		existing, seen := byDay[dayKey]
		isMidday := ts.Hour() == middayHour
		if seen && (existing.midday || !isMidday) {
			continue
		}
		if !seen {
			order = append(order, dayKey)
		}

		condition := domain.Condition("")
		if len(item.Weather) > 0 {
			condition = domain.Condition(item.Weather[0].Main)
		}
		byDay[dayKey] = bucket{
			midday: isMidday,
			reading: domain.Reading{
				Timestamp:        ts,
				Location:         domain.Location{Lat: lat, Lon: lon},
				WindSpeedMS:      item.Wind.Speed,
				WindDirectionDeg: item.Wind.Deg,
				Condition:        condition,
				HumidityPct:      item.Main.Humidity,
				PrecipitationMM:  item.Rain.ThreeHours,
				TemperatureC:     item.Main.Temp,
				FeelsLikeC:       item.Main.FeelsLike,
			},
		}
	}

	sort.Strings(order)
	if len(order) > forecastDays {
		order = order[:forecastDays]
	}

	out := make([]domain.Reading, 0, len(order))
	for _, day := range order {
		out = append(out, byDay[day].reading)
	}
	return out, nil
}

// ReverseGeocode resolves a coordinate to a place name, e.g. "Manila". An
// empty result with nil error means the provider had no match.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', 6, 64)},
		"limit": {"1"},
		"appid": {c.apiKey},
	}

	var resp []geoEntry
	if err := c.doJSON(ctx, c.geoBaseURL+"/reverse?"+params.Encode(), &resp); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if len(resp) == 0 {
		return "", nil
	}
	return resp[0].Name, nil
}

// get performs a coordinate-keyed metric-units API request.
func (c *Client) get(ctx context.Context, endpoint string, lat, lon float64, out any) error {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', 6, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	return c.doJSON(ctx, endpoint+"?"+params.Encode(), out)
}

func (c *Client) doJSON(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// OpenWeather API response types, reduced to the consumed fields.

type currentResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Visibility float64 `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Rain struct {
		ThreeHours float64 `json:"3h"`
	} `json:"rain"`
}

type geoEntry struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Country string `json:"country"`
}
