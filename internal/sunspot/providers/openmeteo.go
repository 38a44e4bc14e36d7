package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/sunspot"
)

// forwardHours is the length of the hourly window fetched for sunny-duration
// estimation.
const forwardHours = 12

// openMeteoLayout is the local-time format Open-Meteo uses with timezone=auto.
const openMeteoLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements sunspot.ForecastProvider against the
// Open-Meteo forecast API. No API key required.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client: client,
			Retry:  DefaultRetryPolicy(),
		},
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Forecast fetches current conditions plus the next forwardHours hourly
// samples for the point, in the point's local timezone.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, pt geo.Point) (sunspot.WeatherSample, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.3f", pt.Lat))
		values.Set("longitude", fmt.Sprintf("%.3f", pt.Lon))
		values.Set("current", "temperature_2m,weather_code,precipitation,cloud_cover,shortwave_radiation,is_day")
		values.Set("hourly", "cloud_cover,shortwave_radiation,precipitation,temperature_2m")
		values.Set("forecast_days", "2")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return sunspot.WeatherSample{}, fmt.Errorf("%w: %v", sunspot.ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	var payload struct {
		UTCOffsetSeconds int `json:"utc_offset_seconds"`
		Current          struct {
			Time               string  `json:"time"`
			Temperature        float64 `json:"temperature_2m"`
			Precipitation      float64 `json:"precipitation"`
			CloudCover         float64 `json:"cloud_cover"`
			ShortwaveRadiation float64 `json:"shortwave_radiation"`
			IsDay              int     `json:"is_day"`
		} `json:"current"`
		Hourly struct {
			Time               []string  `json:"time"`
			CloudCover         []float64 `json:"cloud_cover"`
			ShortwaveRadiation []float64 `json:"shortwave_radiation"`
			Precipitation      []float64 `json:"precipitation"`
			Temperature        []float64 `json:"temperature_2m"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return sunspot.WeatherSample{}, fmt.Errorf("%w: decode: %v", sunspot.ErrWeatherUnavailable, err)
	}

	zone := time.FixedZone("local", payload.UTCOffsetSeconds)

	ts, err := time.ParseInLocation(openMeteoLayout, payload.Current.Time, zone)
	if err != nil {
		ts = time.Now().UTC()
	}

	// The forward window starts at the hour after the reported "now". The
	// current timestamp carries minute precision, so match on the hour; if
	// the hour is missing from the series, start at the beginning.
	from := 0
	nowHour := ts.Format("2006-01-02T15")
	for i, t := range payload.Hourly.Time {
		if len(t) >= len(nowHour) && t[:len(nowHour)] == nowHour {
			from = i + 1
			break
		}
	}

	// Guard against a malformed payload with ragged series lengths.
	n := len(payload.Hourly.Time)
	for _, l := range []int{
		len(payload.Hourly.CloudCover),
		len(payload.Hourly.ShortwaveRadiation),
		len(payload.Hourly.Precipitation),
		len(payload.Hourly.Temperature),
	} {
		if l < n {
			n = l
		}
	}

	to := from + forwardHours
	if to > n {
		to = n
	}
	if from > to {
		from = to
	}

	hourly := sunspot.HourlySeries{
		Time:      make([]time.Time, 0, to-from),
		Cloud:     payload.Hourly.CloudCover[from:to],
		Shortwave: payload.Hourly.ShortwaveRadiation[from:to],
		Precip:    payload.Hourly.Precipitation[from:to],
		Temp:      payload.Hourly.Temperature[from:to],
	}
	for _, s := range payload.Hourly.Time[from:to] {
		ht, err := time.ParseInLocation(openMeteoLayout, s, zone)
		if err != nil {
			return sunspot.WeatherSample{}, fmt.Errorf("%w: bad hourly time %q", sunspot.ErrWeatherUnavailable, s)
		}
		hourly.Time = append(hourly.Time, ht)
	}

	return sunspot.WeatherSample{
		TemperatureC:       payload.Current.Temperature,
		CloudCoverPct:      payload.Current.CloudCover,
		PrecipitationMm:    payload.Current.Precipitation,
		ShortwaveRadiation: payload.Current.ShortwaveRadiation,
		IsDay:              payload.Current.IsDay == 1,
		Timestamp:          ts,
		Hourly:             hourly,
	}, nil
}
