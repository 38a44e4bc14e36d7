package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/sunspotter/internal/api/http"
	"github.com/i474232898/sunspotter/internal/config"
	"github.com/i474232898/sunspotter/internal/log"
	"github.com/i474232898/sunspotter/internal/scheduler"
	"github.com/i474232898/sunspotter/internal/sunspot"
	"github.com/i474232898/sunspotter/internal/sunspot/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := log.Init(cfg.Debug); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer log.Sync()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Session caches: weather on ~1 km cells, places on ~100 m cells.
	weatherCache := sunspot.NewWeatherCache()
	placeCache := sunspot.NewPlaceCache()

	// Providers. Nominatim is the default place source; Google takes over
	// when an API key is configured.
	forecast := providers.NewOpenMeteoProvider(httpClient)
	poi := providers.NewOverpassProvider(httpClient)

	var place sunspot.PlaceProvider
	if cfg.GoogleAPIKey != "" {
		place = providers.NewGooglePlaceProvider(cfg.GoogleAPIKey)
		log.Info("using Google reverse geocoding")
	} else {
		place = providers.NewNominatimProvider(httpClient, cfg.NominatimUserAgent)
	}

	sampler := sunspot.NewSampler(forecast, weatherCache, cfg.WeatherConcurrency)
	resolver := sunspot.NewResolver(place, placeCache, cfg.PlacePacing, cfg.PlaceSnap)
	candidates := sunspot.NewCandidateSource(poi, cfg.MaxRadiusMi)

	service := sunspot.NewService(candidates, sampler, resolver, nil, sunspot.SearchConfig{
		OverallTimeout:  cfg.SearchTimeout,
		FirstWave:       cfg.FirstWave,
		MinDesired:      cfg.MinDesired,
		DefaultLimit:    cfg.DefaultLimit,
		MinSeparationKm: cfg.MinSeparationKm,
		SunnyNowGate:    cfg.SunnyNowGate,
		SunnyLike:       cfg.SunnyLike,
		SunnyNow:        cfg.SunnyNow,
	})

	// Periodic cache trimming, active only when bounds are configured.
	keeper := scheduler.New(weatherCache, placeCache, cfg.CacheMaxEntries, cfg.CacheMaxAge, cfg.HousekeepingInterval)
	if err := keeper.Start(); err != nil {
		log.Fatalf("failed to start housekeeping: %v", err)
	}
	defer keeper.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "sunspotter",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "sunspotter",
		})
	})

	httpapi.RegisterRoutes(app, service, httpapi.Defaults{
		RadiusMi: 30,
		Limit:    cfg.DefaultLimit,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()
	log.Infof("listening on :%s", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
