package sunspot

import (
	"context"

	"github.com/i474232898/sunspotter/internal/geo"
)

// ForecastProvider abstracts a point-forecast source (e.g. Open-Meteo).
type ForecastProvider interface {
	Name() string
	Forecast(ctx context.Context, p geo.Point) (WeatherSample, error)
}

// PlaceProvider abstracts a reverse-geocoding source. A (nil, nil) return
// means the source answered but found no usable settlement name; the caller
// must skip the candidate rather than substitute a placeholder.
type PlaceProvider interface {
	Name() string
	ReverseGeocode(ctx context.Context, p geo.Point) (*PlaceLabel, error)
}

// Snapper is an optional PlaceProvider extension: forward-geocode a
// settlement name within a small bounding box around the query point to
// find its canonical coordinate.
type Snapper interface {
	Snap(ctx context.Context, name string, near geo.Point) (geo.Point, error)
}

// POIProvider abstracts a point-of-interest source. An empty slice means no
// results; failures are returned as errors and the caller falls back to the
// grid strategy.
type POIProvider interface {
	Name() string
	FindPOIs(ctx context.Context, origin geo.Point, radiusKm float64, category Interest) ([]Candidate, error)
}

// OriginProvider supplies the searcher's position for embedding callers that
// have a device location source. The HTTP API bypasses it with explicit
// coordinates.
type OriginProvider interface {
	Origin(ctx context.Context) (geo.Point, error)
}
