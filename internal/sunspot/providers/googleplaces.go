package providers

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/sunspot"
)

// GooglePlaceProvider implements sunspot.PlaceProvider on the Google
// Geocoding API. Used instead of Nominatim when an API key is configured;
// the underlying client has no rate expectations beyond the billed quota,
// but the resolver paces it the same way.
type GooglePlaceProvider struct {
	name string
}

// NewGooglePlaceProvider configures the package-level geocoder key and
// returns the provider.
func NewGooglePlaceProvider(apiKey string) *GooglePlaceProvider {
	geocoder.ApiKey = apiKey
	return &GooglePlaceProvider{name: "google"}
}

func (p *GooglePlaceProvider) Name() string {
	return p.name
}

// ReverseGeocode resolves a settlement label via Google reverse geocoding.
// The client library is synchronous; honor cancellation before dialing.
func (p *GooglePlaceProvider) ReverseGeocode(ctx context.Context, pt geo.Point) (*sunspot.PlaceLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  pt.Lat,
		Longitude: pt.Lon,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sunspot.ErrNamingUnavailable, err)
	}

	for _, addr := range addresses {
		name := addr.City
		if name == "" {
			name = addr.District
		}
		if name == "" {
			name = addr.Neighborhood
		}
		if name == "" {
			continue
		}

		admin := addr.State
		if admin == "" {
			admin = addr.County
		}
		if admin == "" {
			admin = addr.Country
		}

		text := name
		if admin != "" && admin != name {
			text = name + ", " + admin
		}
		return &sunspot.PlaceLabel{Text: text, Point: pt}, nil
	}

	return nil, nil
}
