// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// OpenWeather provider.
	OpenWeatherAPIKey  string
	OpenWeatherTimeout time.Duration

	// Monitored location. Used verbatim when reverse geocoding is
	// unavailable.
	DefaultLat   float64
	DefaultLon   float64
	DefaultLabel string

	// Refresh orchestration.
	RefreshInterval time.Duration
	ProviderTimeout time.Duration

	// Alert ledger tuning. Zero disables the corresponding behavior.
	AlertDedupWindow  time.Duration
	AlertHistoryLimit int

	// Redis persistence. Empty addr selects the in-memory store.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Kafka notification publishing. No brokers selects the log notifier.
	KafkaBrokers    []string
	KafkaAlertTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is merged in first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := parseDuration("OPENWEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	providerTimeout, err := parseDuration("PROVIDER_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	dedupWindow, err := parseOptionalDuration("ALERT_DEDUP_WINDOW")
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("DEFAULT_LAT", 14.5995)
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("DEFAULT_LON", 120.9842)
	if err != nil {
		return nil, err
	}
	historyLimit, err := parseInt("ALERT_HISTORY_LIMIT", 0)
	if err != nil {
		return nil, err
	}
	redisDB, err := parseInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherTimeout: timeout,

		DefaultLat:   lat,
		DefaultLon:   lon,
		DefaultLabel: envOrDefault("DEFAULT_LABEL", "Manila"),

		RefreshInterval: refreshInterval,
		ProviderTimeout: providerTimeout,

		AlertDedupWindow:  dedupWindow,
		AlertHistoryLimit: historyLimit,

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		RedisKeyPrefix: envOrDefault("REDIS_KEY_PREFIX", "typhoon-watch:"),

		KafkaBrokers:    parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "storm-alerts"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}
	if cfg.DefaultLat < -90 || cfg.DefaultLat > 90 {
		return nil, errors.New("DEFAULT_LAT must be within [-90, 90]")
	}
	if cfg.DefaultLon < -180 || cfg.DefaultLon > 180 {
		return nil, errors.New("DEFAULT_LON must be within [-180, 180]")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_ALERT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.AlertHistoryLimit < 0 {
		return nil, errors.New("ALERT_HISTORY_LIMIT must not be negative")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty
// entries. An empty input yields nil.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseOptionalDuration reads a duration where unset or zero means
// disabled.
func parseOptionalDuration(key string) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
