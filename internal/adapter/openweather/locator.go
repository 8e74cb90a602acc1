package openweather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
)

// geocodeCacheSize bounds the reverse-geocode label cache. The service
// watches a fixed coordinate, so a handful of entries is plenty.
const geocodeCacheSize = 32

// Locator resolves the monitored coordinate to a labeled location. The
// coordinate itself is fixed by configuration; only the human-readable
// label comes from the reverse geocoding API, cached so repeated refresh
// cycles do not re-query it.
type Locator struct {
	client   *Client
	fallback domain.Location
	cache    *lruCache
	logger   *slog.Logger
}

// NewLocator creates a location provider anchored at the given fallback.
func NewLocator(client *Client, fallback domain.Location, logger *slog.Logger) *Locator {
	return &Locator{
		client:   client,
		fallback: fallback,
		cache:    newLRUCache(geocodeCacheSize),
		logger:   logger,
	}
}

// Locate returns the monitored location. Reverse geocoding failures fall
// back to the configured label rather than failing the refresh cycle.
func (l *Locator) Locate(ctx context.Context) (domain.Location, error) {
	loc := l.fallback

	key := fmt.Sprintf("rev:%.6f,%.6f", loc.Lat, loc.Lon)
	if label, ok := l.cache.get(key); ok {
		loc.Label = label
		return loc, nil
	}

	label, err := l.client.ReverseGeocode(ctx, loc.Lat, loc.Lon)
	if err != nil {
		l.logger.Warn("reverse geocode failed, using fallback label",
			"error", err,
			"label", loc.Label)
		return loc, nil
	}
	if label == "" {
		return loc, nil
	}

	loc.Label = label
	// Only cache non-empty results so transient misses can be retried.
	l.cache.put(key, label)
	return loc, nil
}
