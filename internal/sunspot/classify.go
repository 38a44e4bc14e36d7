package sunspot

import "time"

// Thresholds classifies an hour as acceptably sunny. Two instances are in
// play: the forgiving "sunny-like" bounds used for duration estimation, and
// the stricter "sunny now" bounds behind the current-moment badge.
type Thresholds struct {
	MaxCloudPct     float64
	MaxPrecipMm     float64
	MinShortwaveWm2 float64
}

// DefaultSunnyLike are the duration-estimation bounds.
func DefaultSunnyLike() Thresholds {
	return Thresholds{MaxCloudPct: 45, MaxPrecipMm: 0.2, MinShortwaveWm2: 80}
}

// DefaultSunnyNow are the stricter current-moment bounds.
func DefaultSunnyNow() Thresholds {
	return Thresholds{MaxCloudPct: 30, MaxPrecipMm: 0.1, MinShortwaveWm2: 100}
}

// Classify reports whether the given cloud/shortwave/precipitation reading
// passes the thresholds.
func (t Thresholds) Classify(cloudPct, shortwave, precipMm float64) bool {
	return cloudPct <= t.MaxCloudPct && precipMm < t.MaxPrecipMm && shortwave >= t.MinShortwaveWm2
}

// SunnyNow applies the thresholds to the sample's current conditions.
func (t Thresholds) SunnyNow(s WeatherSample) bool {
	return t.Classify(s.CloudCoverPct, s.ShortwaveRadiation, s.PrecipitationMm)
}

// SunnyWindow walks the forward hourly series and returns the length in
// minutes of the contiguous sunny-like stretch starting now, plus the
// timestamp of the last counted hour. A leading non-sunny hour ends the
// walk immediately: the window measures sun beginning now, not sun anywhere
// in the next 12 hours.
func SunnyWindow(s WeatherSample, like Thresholds) (minutes int, until *time.Time) {
	for i := 0; i < s.Hourly.Len(); i++ {
		if !like.Classify(s.Hourly.Cloud[i], s.Hourly.Shortwave[i], s.Hourly.Precip[i]) {
			break
		}
		minutes += 60
		ts := s.Hourly.Time[i]
		until = &ts
	}
	return minutes, until
}

// CompositeScore is the instantaneous brightness score carried on each
// result: shortwave radiation penalized by cloud cover and precipitation,
// with a flat bonus when the strict sunny-now predicate holds. It feeds the
// badge and the JSON payload; ordering is duration-first (see Engine).
func CompositeScore(s WeatherSample, now Thresholds) float64 {
	base := s.ShortwaveRadiation - 1.4*s.CloudCoverPct - 180*s.PrecipitationMm
	if now.SunnyNow(s) {
		base += 100
	}
	return base
}
