package sunspot

import (
	"sort"

	"github.com/i474232898/sunspotter/internal/geo"
)

// DefaultMinSeparationKm is the minimum distance between two accepted
// results. The origin is exempt.
const DefaultMinSeparationKm = 1.0

// Engine accepts annotated candidates incrementally and maintains the
// deduplicated, ranked result list. Acceptance order is deterministic given
// the order candidates are offered; the final sort is deterministic
// regardless of arrival order. An accepted record is never evicted by a
// later arrival.
type Engine struct {
	origin          geo.Point
	limit           int
	minSeparationKm float64

	accepted  []ResultRecord
	seenNames map[string]struct{}
}

// NewEngine creates an engine for one search.
func NewEngine(origin geo.Point, limit int, minSeparationKm float64) *Engine {
	if limit < 1 {
		limit = 1
	}
	if minSeparationKm <= 0 {
		minSeparationKm = DefaultMinSeparationKm
	}
	return &Engine{
		origin:          origin,
		limit:           limit,
		minSeparationKm: minSeparationKm,
		seenNames:       make(map[string]struct{}),
	}
}

// Offer applies the acceptance rules to one candidate record and reports
// whether it was accepted. A record is rejected when its normalized place
// name was already accepted, or when it sits closer than the minimum
// separation to any accepted record (origin pairs exempt). First accepted
// wins for a given name or cluster.
func (e *Engine) Offer(rec ResultRecord) bool {
	if rec.Place == "" {
		return false
	}

	rec.normName = NormalizeName(rec.Place)
	if _, dup := e.seenNames[rec.normName]; dup {
		return false
	}

	if !rec.IsOrigin {
		for _, a := range e.accepted {
			if a.IsOrigin {
				continue
			}
			if geo.DistanceKm(a.Point, rec.Point) < e.minSeparationKm {
				return false
			}
		}
	}

	e.seenNames[rec.normName] = struct{}{}
	e.accepted = append(e.accepted, rec)
	return true
}

// Accepted returns the number of accepted records so far.
func (e *Engine) Accepted() int {
	return len(e.accepted)
}

// Snapshot returns the current ranked list: a sorted copy truncated to the
// configured limit. Ordering is duration-first — sunny minutes descending,
// then distance from origin ascending, then normalized place name ascending
// for a strict total order.
func (e *Engine) Snapshot() []ResultRecord {
	out := make([]ResultRecord, len(e.accepted))
	copy(out, e.accepted)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SunnyMinutes != out[j].SunnyMinutes {
			return out[i].SunnyMinutes > out[j].SunnyMinutes
		}
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].normName < out[j].normName
	})

	if len(out) > e.limit {
		out = out[:e.limit]
	}
	return out
}

// BuildRecord assembles an immutable result record from a candidate, its
// weather sample, and its resolved label. Distance and bearing are measured
// from the search origin to the label's display point.
func BuildRecord(origin geo.Point, c Candidate, sample WeatherSample, label PlaceLabel, like, now Thresholds) ResultRecord {
	minutes, until := SunnyWindow(sample, like)
	distKm := geo.DistanceKm(origin, label.Point)
	bearing := geo.BearingDeg(origin, label.Point)

	return ResultRecord{
		Place:        label.Text,
		Point:        label.Point,
		IsOrigin:     c.IsOrigin,
		SourceLabel:  c.SourceLabel,
		DistanceKm:   distKm,
		DistanceMi:   distKm * geo.KmToMiles,
		BearingDeg:   bearing,
		Cardinal:     geo.Cardinal(bearing),
		TemperatureC: sample.TemperatureC,
		SunnyNow:     now.SunnyNow(sample),
		SunnyMinutes: minutes,
		SunnyUntil:   until,
		Score:        CompositeScore(sample, now),
	}
}
