package sunspot

import (
	"time"

	"github.com/i474232898/sunspotter/internal/geo"
)

// OriginLabel is the fixed display label for the searcher's own position.
const OriginLabel = "Your location"

// Candidate is a point under consideration before weather and name
// resolution. Produced fresh per search; never persisted.
type Candidate struct {
	Point       geo.Point
	IsOrigin    bool
	SourceLabel string // optional name hint from the POI source
}

// HourlySeries is the forward-looking slice of hourly forecast values,
// chronologically ordered starting at the first full hour after "now".
// All slices have equal length (up to 12 entries).
type HourlySeries struct {
	Time      []time.Time
	Cloud     []float64
	Shortwave []float64
	Precip    []float64
	Temp      []float64
}

// Len returns the number of forward hours in the series.
func (h HourlySeries) Len() int { return len(h.Time) }

// WeatherSample is the current conditions at a point plus the forward
// hourly window used for sunny-duration estimation.
type WeatherSample struct {
	TemperatureC       float64
	CloudCoverPct      float64
	PrecipitationMm    float64
	ShortwaveRadiation float64
	IsDay              bool
	Timestamp          time.Time
	Hourly             HourlySeries
}

// PlaceLabel is a resolved settlement name. Point may differ from the query
// point when the resolver snapped to the settlement's canonical coordinate.
type PlaceLabel struct {
	Text  string
	Point geo.Point
}

// ResultRecord is one entry in the final ranked list. Created during
// ranking, immutable thereafter.
type ResultRecord struct {
	Place        string     `json:"place"`
	Point        geo.Point  `json:"point"`
	IsOrigin     bool       `json:"is_origin"`
	SourceLabel  string     `json:"source_label,omitempty"`
	DistanceKm   float64    `json:"distance_km"`
	DistanceMi   float64    `json:"distance_mi"`
	BearingDeg   float64    `json:"bearing_deg"`
	Cardinal     string     `json:"cardinal"`
	TemperatureC float64    `json:"temperature_c"`
	SunnyNow     bool       `json:"sunny_now"`
	SunnyMinutes int        `json:"sunny_minutes"`
	SunnyUntil   *time.Time `json:"sunny_until,omitempty"`
	Score        float64    `json:"score"`

	normName string // normalized place name, set at acceptance time
}

// SearchStatus is the orchestrator state exposed on snapshots.
type SearchStatus string

const (
	StatusIdle                 SearchStatus = "idle"
	StatusLocatingOrigin       SearchStatus = "locating_origin"
	StatusGeneratingCandidates SearchStatus = "generating_candidates"
	StatusSampling             SearchStatus = "sampling"
	StatusDone                 SearchStatus = "done"
	StatusFailed               SearchStatus = "failed"
)

// Snapshot is one progressive view of a running search. Results are a
// sorted, truncated copy safe for the consumer to retain.
type Snapshot struct {
	SearchID string         `json:"search_id"`
	Status   SearchStatus   `json:"status"`
	Notice   string         `json:"notice,omitempty"`
	Results  []ResultRecord `json:"results"`
	Err      string         `json:"error,omitempty"`
}
