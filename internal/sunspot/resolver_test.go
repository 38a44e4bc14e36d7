package sunspot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/sunspotter/internal/geo"
)

type countingPlace struct {
	fn    func(context.Context, geo.Point) (*PlaceLabel, error)
	calls atomic.Int64
}

func (c *countingPlace) Name() string { return "counting-place" }

func (c *countingPlace) ReverseGeocode(ctx context.Context, p geo.Point) (*PlaceLabel, error) {
	c.calls.Add(1)
	return c.fn(ctx, p)
}

func TestResolverCachesLabels(t *testing.T) {
	place := &countingPlace{fn: func(_ context.Context, p geo.Point) (*PlaceLabel, error) {
		return &PlaceLabel{Text: "Dunbar, Scotland", Point: p}, nil
	}}
	r := NewResolver(place, NewPlaceCache(), time.Millisecond, false)

	p := geo.Point{Lat: 55.9991, Lon: -2.5201}
	for i := 0; i < 3; i++ {
		label, err := r.Resolve(context.Background(), p)
		if err != nil || label == nil {
			t.Fatalf("resolve: %v, %v", label, err)
		}
	}
	if got := place.calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
}

func TestResolverCachesNegativeOutcome(t *testing.T) {
	place := &countingPlace{fn: func(_ context.Context, _ geo.Point) (*PlaceLabel, error) {
		return nil, nil
	}}
	r := NewResolver(place, NewPlaceCache(), time.Millisecond, false)

	p := geo.Point{Lat: 56.2, Lon: -2.4}
	for i := 0; i < 2; i++ {
		label, err := r.Resolve(context.Background(), p)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if label != nil {
			t.Fatalf("expected nil label, got %+v", label)
		}
	}
	if got := place.calls.Load(); got != 1 {
		t.Fatalf("nil outcome was not cached: %d calls", got)
	}
}

func TestResolverExcludesWaterAndInstitutions(t *testing.T) {
	names := []string{"Firth of Forth", "Waverley Station"}
	idx := 0
	place := &countingPlace{fn: func(_ context.Context, p geo.Point) (*PlaceLabel, error) {
		n := names[idx%len(names)]
		idx++
		return &PlaceLabel{Text: n, Point: p}, nil
	}}
	r := NewResolver(place, NewPlaceCache(), time.Millisecond, false)

	for i, pt := range []geo.Point{{Lat: 56.05, Lon: -3.0}, {Lat: 55.95, Lon: -3.19}} {
		label, err := r.Resolve(context.Background(), pt)
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if label != nil {
			t.Fatalf("excluded label leaked through: %+v", label)
		}
	}
}

func TestResolverErrorNotCached(t *testing.T) {
	var n atomic.Int64
	place := &countingPlace{fn: func(_ context.Context, p geo.Point) (*PlaceLabel, error) {
		if n.Add(1) == 1 {
			return nil, ErrNamingUnavailable
		}
		return &PlaceLabel{Text: "Peebles", Point: p}, nil
	}}
	r := NewResolver(place, NewPlaceCache(), time.Millisecond, false)

	p := geo.Point{Lat: 55.65, Lon: -3.19}
	if _, err := r.Resolve(context.Background(), p); !errors.Is(err, ErrNamingUnavailable) {
		t.Fatalf("expected ErrNamingUnavailable, got %v", err)
	}

	label, err := r.Resolve(context.Background(), p)
	if err != nil || label == nil || label.Text != "Peebles" {
		t.Fatalf("transient failure was cached: %v, %v", label, err)
	}
}

type snappingPlace struct {
	countingPlace
	snapped geo.Point
	snapErr error
}

func (s *snappingPlace) Snap(_ context.Context, _ string, _ geo.Point) (geo.Point, error) {
	return s.snapped, s.snapErr
}

func TestResolverSnapsDisplayPoint(t *testing.T) {
	canonical := geo.Point{Lat: 56.0027, Lon: -2.5169}
	place := &snappingPlace{snapped: canonical}
	place.fn = func(_ context.Context, p geo.Point) (*PlaceLabel, error) {
		return &PlaceLabel{Text: "Dunbar, Scotland", Point: p}, nil
	}
	r := NewResolver(place, NewPlaceCache(), time.Millisecond, true)

	query := geo.Point{Lat: 55.995, Lon: -2.53}
	label, err := r.Resolve(context.Background(), query)
	if err != nil || label == nil {
		t.Fatalf("resolve: %v, %v", label, err)
	}
	if label.Point != canonical {
		t.Fatalf("display point not snapped: %+v", label.Point)
	}
}

func TestResolverSnapRejectsFarDrift(t *testing.T) {
	place := &snappingPlace{snapped: geo.Point{Lat: 51.5, Lon: -0.12}} // London, ~600 km off
	place.fn = func(_ context.Context, p geo.Point) (*PlaceLabel, error) {
		return &PlaceLabel{Text: "Dunbar", Point: p}, nil
	}
	r := NewResolver(place, NewPlaceCache(), time.Millisecond, true)

	query := geo.Point{Lat: 55.995, Lon: -2.53}
	label, err := r.Resolve(context.Background(), query)
	if err != nil || label == nil {
		t.Fatalf("resolve: %v, %v", label, err)
	}
	if label.Point != query {
		t.Fatalf("implausible snap accepted: %+v", label.Point)
	}
}
