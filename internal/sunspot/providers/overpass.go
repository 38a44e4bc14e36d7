package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/sunspot"
)

// OverpassProvider implements sunspot.POIProvider against the Overpass API.
// Way/relation results carry a computed center, so a single "out center"
// query covers all element types.
type OverpassProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOverpassProvider(client *http.Client) *OverpassProvider {
	return &OverpassProvider{
		name:    "overpass",
		baseURL: "https://overpass-api.de/api/interpreter",
		httpCfg: HTTPClientConfig{
			Client: client,
			// Overpass queries are expensive server-side; one retry only.
			Retry: RetryPolicy{
				MaxAttempts: 2,
				BaseDelay:   800 * time.Millisecond,
				Multiplier:  1.6,
				MaxDelay:    3 * time.Second,
			},
		},
		circuit: newBreaker("overpass"),
	}
}

func (p *OverpassProvider) Name() string {
	return p.name
}

// FindPOIs queries points of interest for the category inside a bounding box
// approximating the search radius around origin.
func (p *OverpassProvider) FindPOIs(ctx context.Context, origin geo.Point, radiusKm float64, category sunspot.Interest) ([]sunspot.Candidate, error) {
	filter := category.OverpassFilter()
	if filter == "" {
		return nil, nil
	}

	south, west, north, east := bboxAround(origin, radiusKm)
	query := fmt.Sprintf("[out:json][timeout:12];((%s)(%.5f,%.5f,%.5f,%.5f););out center;",
		filter, south, west, north, east)

	buildRequest := func() (*http.Request, error) {
		body := "data=" + url.QueryEscape(query)
		req, err := http.NewRequest(http.MethodPost, p.baseURL, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Elements []struct {
			Lat    float64 `json:"lat"`
			Lon    float64 `json:"lon"`
			Center *struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"center"`
			Tags map[string]string `json:"tags"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("overpass decode failed: %w", err)
	}

	out := make([]sunspot.Candidate, 0, len(payload.Elements))
	for _, e := range payload.Elements {
		lat, lon := e.Lat, e.Lon
		if lat == 0 && lon == 0 && e.Center != nil {
			lat, lon = e.Center.Lat, e.Center.Lon
		}
		if lat == 0 && lon == 0 {
			continue
		}
		out = append(out, sunspot.Candidate{
			Point:       geo.Point{Lat: lat, Lon: lon},
			SourceLabel: e.Tags["name"],
		})
	}
	return out, nil
}

// bboxAround returns a (south, west, north, east) box spanning radiusKm
// around the center, widened in longitude by the latitude cosine.
func bboxAround(center geo.Point, radiusKm float64) (s, w, n, e float64) {
	latDelta := radiusKm / 111.0
	lonDelta := latDelta / math.Cos(center.Lat*math.Pi/180)
	return center.Lat - latDelta, center.Lon - lonDelta,
		center.Lat + latDelta, center.Lon + lonDelta
}
