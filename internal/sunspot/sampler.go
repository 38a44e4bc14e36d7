package sunspot

import (
	"context"
	"errors"
	"fmt"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/store"
)

// weatherCachePrecision quantizes weather lookups to ~1-2 km cells.
const weatherCachePrecision = 2

// Sampler maps points to weather samples through a read-through cache and a
// bounded-concurrency gate on the underlying forecast provider.
type Sampler struct {
	provider ForecastProvider
	cache    *store.GeoCache[WeatherSample]
	sem      chan struct{}
}

// NewSampler creates a sampler allowing at most maxInFlight concurrent
// provider calls. The cache lives for the session; entries never expire on
// their own.
func NewSampler(provider ForecastProvider, cache *store.GeoCache[WeatherSample], maxInFlight int) *Sampler {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Sampler{
		provider: provider,
		cache:    cache,
		sem:      make(chan struct{}, maxInFlight),
	}
}

// NewWeatherCache returns a cache with the sampler's cell precision.
func NewWeatherCache() *store.GeoCache[WeatherSample] {
	return store.NewGeoCache[WeatherSample](weatherCachePrecision)
}

// Sample returns the weather for the cell containing p, fetching on miss.
// Failures surface as ErrWeatherUnavailable; the orchestrator drops the
// candidate and continues.
func (s *Sampler) Sample(ctx context.Context, p geo.Point) (WeatherSample, error) {
	if cached, err := s.cache.Get(p); err == nil {
		return cached, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return WeatherSample{}, err
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return WeatherSample{}, ctx.Err()
	}
	defer func() { <-s.sem }()

	sample, err := s.provider.Forecast(ctx, p)
	if err != nil {
		if errors.Is(err, ErrWeatherUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return WeatherSample{}, err
		}
		return WeatherSample{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}

	s.cache.Put(p, sample)
	return sample, nil
}
