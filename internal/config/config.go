package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/sunspotter/internal/log"
	"github.com/i474232898/sunspotter/internal/sunspot"
)

type AppConfig struct {
	Port  string
	Debug bool

	// Outbound HTTP client timeout for provider calls.
	HTTPTimeout time.Duration

	// Overall wall-clock budget for one search.
	SearchTimeout time.Duration

	// Max concurrent in-flight forecast requests.
	WeatherConcurrency int

	// Search shape.
	MaxRadiusMi     float64
	DefaultLimit    int
	MinSeparationKm float64
	FirstWave       int
	MinDesired      int

	// SunnyNowGate drops candidates that are not sunny at this instant
	// instead of only ranking them lower.
	SunnyNowGate bool

	SunnyLike sunspot.Thresholds
	SunnyNow  sunspot.Thresholds

	// Place resolution.
	PlaceSnap          bool
	PlacePacing        time.Duration
	NominatimUserAgent string
	GoogleAPIKey       string

	// Cache housekeeping. Zero values leave the session caches unbounded.
	CacheMaxEntries      int
	CacheMaxAge          time.Duration
	HousekeepingInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Debug = getenvBool("DEBUG", false)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 6*time.Second); err != nil {
		return nil, err
	}
	if cfg.SearchTimeout, err = getenvDuration("SEARCH_TIMEOUT", 9*time.Second); err != nil {
		return nil, err
	}

	cfg.WeatherConcurrency = getenvInt("WEATHER_CONCURRENCY", 6)
	cfg.MaxRadiusMi = getenvFloat("MAX_RADIUS_MI", 60)
	cfg.DefaultLimit = getenvInt("DEFAULT_LIMIT", 8)
	cfg.MinSeparationKm = getenvFloat("MIN_SEPARATION_KM", sunspot.DefaultMinSeparationKm)
	cfg.FirstWave = getenvInt("FIRST_WAVE", 25)
	cfg.MinDesired = getenvInt("MIN_DESIRED", 10)
	cfg.SunnyNowGate = getenvBool("SUNNY_NOW_GATE", false)

	like := sunspot.DefaultSunnyLike()
	like.MaxCloudPct = getenvFloat("SUNNY_CLOUD_MAX", like.MaxCloudPct)
	like.MaxPrecipMm = getenvFloat("SUNNY_PRECIP_MAX", like.MaxPrecipMm)
	like.MinShortwaveWm2 = getenvFloat("SUNNY_SHORTWAVE_MIN", like.MinShortwaveWm2)
	cfg.SunnyLike = like

	now := sunspot.DefaultSunnyNow()
	now.MaxCloudPct = getenvFloat("NOW_CLOUD_MAX", now.MaxCloudPct)
	now.MaxPrecipMm = getenvFloat("NOW_PRECIP_MAX", now.MaxPrecipMm)
	now.MinShortwaveWm2 = getenvFloat("NOW_SHORTWAVE_MIN", now.MinShortwaveWm2)
	cfg.SunnyNow = now

	cfg.PlaceSnap = getenvBool("PLACE_SNAP", false)
	if cfg.PlacePacing, err = getenvDuration("PLACE_PACING", 120*time.Millisecond); err != nil {
		return nil, err
	}
	cfg.NominatimUserAgent = getenvDefault("NOMINATIM_USER_AGENT", "sunspotter/1.0")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	cfg.CacheMaxEntries = getenvInt("CACHE_MAX_ENTRIES", 0)
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", 0); err != nil {
		return nil, err
	}
	if cfg.HousekeepingInterval, err = getenvDuration("HOUSEKEEPING_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
