package sunspot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/log"
	"github.com/i474232898/sunspotter/internal/store"
)

// placeCachePrecision quantizes place lookups to ~100 m cells.
const placeCachePrecision = 3

// Resolver maps points to settlement labels through a read-through cache, a
// politeness limiter on the upstream geocoder, and the exclusion rules.
// A nil label with a nil error means the point has no usable name and the
// candidate must be skipped.
type Resolver struct {
	provider PlaceProvider
	cache    *store.GeoCache[*PlaceLabel]
	limiter  *rate.Limiter
	snap     bool
}

// NewResolver creates a resolver. pacing is the minimum interval between
// upstream requests; Nominatim expects roughly one per second from bulk
// users, the reference uses ~120ms for interactive searches.
func NewResolver(provider PlaceProvider, cache *store.GeoCache[*PlaceLabel], pacing time.Duration, snap bool) *Resolver {
	if pacing <= 0 {
		pacing = 120 * time.Millisecond
	}
	return &Resolver{
		provider: provider,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Every(pacing), 1),
		snap:     snap,
	}
}

// NewPlaceCache returns a cache with the resolver's cell precision.
func NewPlaceCache() *store.GeoCache[*PlaceLabel] {
	return store.NewGeoCache[*PlaceLabel](placeCachePrecision)
}

// Resolve returns the label for the cell containing p. Negative outcomes
// (no name, excluded name) are cached as nil so repeat searches skip the
// lookup; transport failures are not cached.
func (r *Resolver) Resolve(ctx context.Context, p geo.Point) (*PlaceLabel, error) {
	if cached, err := r.cache.Get(p); err == nil {
		return cached, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	label, err := r.provider.ReverseGeocode(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNamingUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNamingUnavailable, err)
	}

	if label == nil || label.Text == "" || ExcludedLabel(label.Text) {
		r.cache.Put(p, nil)
		return nil, nil
	}

	if r.snap {
		r.trySnap(ctx, label, p)
	}

	r.cache.Put(p, label)
	return label, nil
}

// snapMaxDriftKm rejects snapped coordinates that land implausibly far from
// the query point.
const snapMaxDriftKm = 15

// trySnap moves the label's display point to the settlement's canonical
// coordinate when the provider supports bounded forward geocoding. Snap
// failures are cosmetic and never fail the resolution.
func (r *Resolver) trySnap(ctx context.Context, label *PlaceLabel, query geo.Point) {
	snapper, ok := r.provider.(Snapper)
	if !ok {
		return
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return
	}

	// Search on the bare settlement name, not the "Name, Admin" label.
	name := label.Text
	if i := strings.Index(name, ","); i > 0 {
		name = name[:i]
	}

	snapped, err := snapper.Snap(ctx, name, query)
	if err != nil {
		log.Debugf("snap failed for %q: %v", name, err)
		return
	}
	if geo.DistanceKm(query, snapped) > snapMaxDriftKm {
		return
	}
	label.Point = snapped
}
