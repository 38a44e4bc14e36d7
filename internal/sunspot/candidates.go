package sunspot

import (
	"context"
	"fmt"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/log"
)

const (
	// maxGridPoints bounds downstream fan-out; the origin rides on top.
	maxGridPoints = 36

	// gridBearingStepDeg samples each ring every 30 degrees.
	gridBearingStepDeg = 30

	// Ring spacing bounds in km. Spacing adapts to radius/3 inside these.
	minRingSpacingKm = 10
	maxRingSpacingKm = 16
)

// CandidateSource produces the bounded candidate set for a search: either a
// polar grid around the origin or POIs for an interest category, with a
// mandatory grid fallback when the POI source fails or comes back empty.
type CandidateSource struct {
	poi         POIProvider
	maxRadiusMi float64
}

// NewCandidateSource creates a source. poi may be nil; interest searches then
// always use the grid.
func NewCandidateSource(poi POIProvider, maxRadiusMi float64) *CandidateSource {
	return &CandidateSource{poi: poi, maxRadiusMi: maxRadiusMi}
}

// Generate returns the ordered, deduplicated candidate sequence with the
// origin always first. The returned notice is non-empty when the requested
// radius was clamped to the configured cap.
func (s *CandidateSource) Generate(ctx context.Context, origin geo.Point, radiusMi float64, category Interest) (candidates []Candidate, notice string, err error) {
	if radiusMi > s.maxRadiusMi {
		notice = fmt.Sprintf("search radius reduced from %.0f to %.0f miles", radiusMi, s.maxRadiusMi)
		radiusMi = s.maxRadiusMi
	}

	candidates = []Candidate{{Point: origin, IsOrigin: true}}
	if radiusMi <= 0 {
		return candidates, notice, nil
	}

	radiusKm := radiusMi * geo.MilesToKm

	if category != InterestNone && s.poi != nil {
		pois, poiErr := s.poi.FindPOIs(ctx, origin, radiusKm, category)
		if poiErr != nil {
			if ctx.Err() != nil {
				return nil, notice, ctx.Err()
			}
			log.Warnf("poi lookup failed for %s, falling back to grid: %v", category, poiErr)
		}
		if len(pois) > 0 {
			candidates = append(candidates, dedupCandidates(pois)...)
			return capCandidates(candidates), notice, nil
		}
		log.Debugf("no %s POIs within %.0f km, scanning general area", category, radiusKm)
	}

	candidates = append(candidates, gridCandidates(origin, radiusKm)...)
	return capCandidates(candidates), notice, nil
}

// gridCandidates builds concentric rings of sample points around the origin.
// Spacing adapts so ring-count x bearing-count stays within the point budget.
func gridCandidates(origin geo.Point, radiusKm float64) []Candidate {
	spacing := radiusKm / 3
	if spacing < minRingSpacingKm {
		spacing = minRingSpacingKm
	}
	if spacing > maxRingSpacingKm {
		spacing = maxRingSpacingKm
	}

	var pts []Candidate
	seen := make(map[string]struct{})
	for d := spacing; d <= radiusKm; d += spacing {
		for b := 0.0; b < 360; b += gridBearingStepDeg {
			p := geo.Destination(origin, b, d)
			key := geo.CellKey(p, 2)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			pts = append(pts, Candidate{Point: p})
		}
	}
	return pts
}

// dedupCandidates removes POIs whose rounded coordinates collide, keeping
// the first occurrence.
func dedupCandidates(in []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		key := geo.CellKey(c.Point, 2)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func capCandidates(in []Candidate) []Candidate {
	if len(in) > maxGridPoints+1 {
		return in[:maxGridPoints+1]
	}
	return in
}
