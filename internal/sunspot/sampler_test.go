package sunspot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/sunspotter/internal/geo"
)

func TestSamplerCachesByCell(t *testing.T) {
	forecast := alwaysSunny()
	s := NewSampler(forecast, NewWeatherCache(), 4)

	p := geo.Point{Lat: 55.9533, Lon: -3.1883}
	if _, err := s.Sample(context.Background(), p); err != nil {
		t.Fatalf("sample: %v", err)
	}

	// Same ~1 km cell: served from cache, no second provider call.
	q := geo.Point{Lat: 55.9529, Lon: -3.1881}
	if _, err := s.Sample(context.Background(), q); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if got := forecast.calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}

	// Different cell: one more call.
	r := geo.Point{Lat: 56.1, Lon: -3.1883}
	if _, err := s.Sample(context.Background(), r); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if got := forecast.calls.Load(); got != 2 {
		t.Fatalf("provider called %d times, want 2", got)
	}
}

func TestSamplerFailureNotCached(t *testing.T) {
	var failFirst sync.Once
	forecast := &fakeForecast{}
	forecast.fn = func(_ context.Context, _ geo.Point) (WeatherSample, error) {
		var failed bool
		failFirst.Do(func() { failed = true })
		if failed {
			return WeatherSample{}, ErrWeatherUnavailable
		}
		return sunnySample(), nil
	}
	s := NewSampler(forecast, NewWeatherCache(), 4)

	p := geo.Point{Lat: 55.9533, Lon: -3.1883}
	if _, err := s.Sample(context.Background(), p); !errors.Is(err, ErrWeatherUnavailable) {
		t.Fatalf("expected ErrWeatherUnavailable, got %v", err)
	}

	// The failure must not poison the cell.
	if _, err := s.Sample(context.Background(), p); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestSamplerBoundsConcurrency(t *testing.T) {
	const maxInFlight = 3

	var mu sync.Mutex
	inFlight, peak := 0, 0

	forecast := &fakeForecast{}
	forecast.fn = func(_ context.Context, _ geo.Point) (WeatherSample, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return sunnySample(), nil
	}
	s := NewSampler(forecast, NewWeatherCache(), maxInFlight)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := geo.Point{Lat: 50 + float64(i), Lon: 0}
			s.Sample(context.Background(), p)
		}()
	}
	wg.Wait()

	if peak > maxInFlight {
		t.Fatalf("peak concurrency %d exceeds limit %d", peak, maxInFlight)
	}
}

func TestSamplerHonorsCancellation(t *testing.T) {
	forecast := &fakeForecast{}
	forecast.fn = func(ctx context.Context, _ geo.Point) (WeatherSample, error) {
		<-ctx.Done()
		return WeatherSample{}, ctx.Err()
	}
	s := NewSampler(forecast, NewWeatherCache(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Sample(ctx, geo.Point{Lat: 1, Lon: 1})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
