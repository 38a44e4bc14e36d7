// Package scheduler runs periodic housekeeping on the session caches.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/sunspotter/internal/log"
	"github.com/i474232898/sunspotter/internal/store"
	"github.com/i474232898/sunspotter/internal/sunspot"
)

// Housekeeper periodically trims the weather and place caches to the
// configured bounds. With no bounds set the caches are left session-unbounded
// and the job is never scheduled.
type Housekeeper struct {
	scheduler *gocron.Scheduler
	weather   *store.GeoCache[sunspot.WeatherSample]
	places    *store.GeoCache[*sunspot.PlaceLabel]

	maxEntries int
	maxAge     time.Duration
	interval   time.Duration
}

// New creates a Housekeeper.
func New(weather *store.GeoCache[sunspot.WeatherSample], places *store.GeoCache[*sunspot.PlaceLabel], maxEntries int, maxAge, interval time.Duration) *Housekeeper {
	return &Housekeeper{
		scheduler:  gocron.NewScheduler(time.UTC),
		weather:    weather,
		places:     places,
		maxEntries: maxEntries,
		maxAge:     maxAge,
		interval:   interval,
	}
}

// Start schedules the trim job and starts the underlying scheduler.
func (h *Housekeeper) Start() error {
	if h.maxEntries <= 0 && h.maxAge <= 0 {
		log.Debug("cache housekeeping disabled; caches are session-unbounded")
		return nil
	}

	minutes := int(h.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := h.scheduler.Every(minutes).Minutes().Do(func() {
		evictedW := h.weather.Trim(h.maxEntries, h.maxAge)
		evictedP := h.places.Trim(h.maxEntries, h.maxAge)
		log.Debugf("cache housekeeping: weather %d cells (-%d), places %d cells (-%d)",
			h.weather.Len(), evictedW, h.places.Len(), evictedP)
	})
	if err != nil {
		return err
	}

	h.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (h *Housekeeper) Stop() {
	if h.scheduler != nil {
		h.scheduler.Stop()
	}
}
