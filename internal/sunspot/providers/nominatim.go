package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/sunspot"
)

// reverseZooms are the Nominatim specificity levels tried in order: street
// scale first, then town, then region. The first usable settlement field
// wins.
var reverseZooms = []int{14, 12, 10}

// addressFields is the priority order for picking a settlement name out of a
// Nominatim address block.
var addressFields = []string{"city", "town", "village", "hamlet", "suburb", "neighbourhood"}

// NominatimProvider implements sunspot.PlaceProvider (and sunspot.Snapper)
// against the OSM Nominatim API. Callers are responsible for pacing; the
// service expects roughly one request per second and this client does not
// queue on its own.
type NominatimProvider struct {
	name      string
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

func NewNominatimProvider(client *http.Client, userAgent string) *NominatimProvider {
	return &NominatimProvider{
		name:      "nominatim",
		baseURL:   "https://nominatim.openstreetmap.org",
		userAgent: userAgent,
		httpCfg: HTTPClientConfig{
			Client: client,
			Retry:  DefaultRetryPolicy(),
		},
		circuit: newBreaker("nominatim"),
	}
}

func (p *NominatimProvider) Name() string {
	return p.name
}

type nominatimAddress map[string]string

// ReverseGeocode resolves a settlement label for the point, trying each zoom
// level until an address with a usable settlement field appears. Returns
// (nil, nil) when every level comes back empty.
func (p *NominatimProvider) ReverseGeocode(ctx context.Context, pt geo.Point) (*sunspot.PlaceLabel, error) {
	for _, zoom := range reverseZooms {
		addr, err := p.reverse(ctx, pt, zoom)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sunspot.ErrNamingUnavailable, err)
		}
		if addr == nil {
			continue
		}

		name := ""
		for _, f := range addressFields {
			if v := addr[f]; v != "" {
				name = v
				break
			}
		}
		if name == "" {
			continue
		}

		// "Name, Admin" when a distinct admin area is known.
		admin := addr["state"]
		if admin == "" {
			admin = addr["county"]
		}
		if admin == "" {
			admin = addr["country"]
		}

		text := name
		if admin != "" && admin != name {
			text = name + ", " + admin
		}

		return &sunspot.PlaceLabel{Text: text, Point: pt}, nil
	}

	return nil, nil
}

func (p *NominatimProvider) reverse(ctx context.Context, pt geo.Point, zoom int) (nominatimAddress, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(pt.Lat, 'f', 6, 64))
		values.Set("lon", strconv.FormatFloat(pt.Lon, 'f', 6, 64))
		values.Set("format", "jsonv2")
		values.Set("zoom", strconv.Itoa(zoom))
		values.Set("addressdetails", "1")

		u := fmt.Sprintf("%s/reverse?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", p.userAgent)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Address nominatimAddress `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.Address) == 0 {
		return nil, nil
	}
	return payload.Address, nil
}

// snapBoxDeg is the half-width of the bounded forward-geocode search used
// for snapping, in degrees (~10 km of latitude).
const snapBoxDeg = 0.1

// Snap forward-geocodes the settlement name inside a small bounding box
// around the query point, returning the canonical coordinate so markers do
// not land off-center from the named town.
func (p *NominatimProvider) Snap(ctx context.Context, name string, near geo.Point) (geo.Point, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", name)
		values.Set("format", "jsonv2")
		values.Set("limit", "1")
		values.Set("bounded", "1")
		values.Set("viewbox", fmt.Sprintf("%.5f,%.5f,%.5f,%.5f",
			near.Lon-snapBoxDeg, near.Lat+snapBoxDeg,
			near.Lon+snapBoxDeg, near.Lat-snapBoxDeg))

		u := fmt.Sprintf("%s/search?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", p.userAgent)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return geo.Point{}, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return geo.Point{}, err
	}
	if len(payload) == 0 {
		return geo.Point{}, fmt.Errorf("no match for %q", name)
	}

	lat, err := strconv.ParseFloat(payload[0].Lat, 64)
	if err != nil {
		return geo.Point{}, err
	}
	lon, err := strconv.ParseFloat(payload[0].Lon, 64)
	if err != nil {
		return geo.Point{}, err
	}
	return geo.Point{Lat: lat, Lon: lon}, nil
}
