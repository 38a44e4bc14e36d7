package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/sunspotter/internal/geo"
)

func TestGetMiss(t *testing.T) {
	c := NewGeoCache[string](2)
	_, err := c.Get(geo.Point{Lat: 1, Lon: 2})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutGetQuantized(t *testing.T) {
	c := NewGeoCache[string](2)
	c.Put(geo.Point{Lat: 55.9533, Lon: -3.1883}, "edinburgh")

	// A point in the same ~1 km cell must hit.
	got, err := c.Get(geo.Point{Lat: 55.9529, Lon: -3.1881})
	if err != nil {
		t.Fatalf("expected hit for same cell: %v", err)
	}
	if got != "edinburgh" {
		t.Fatalf("got %q", got)
	}

	// A point in a different cell must miss.
	if _, err := c.Get(geo.Point{Lat: 55.99, Lon: -3.1883}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected miss for different cell, got %v", err)
	}
}

func TestPutOverwrites(t *testing.T) {
	c := NewGeoCache[int](3)
	p := geo.Point{Lat: 10, Lon: 10}
	c.Put(p, 1)
	c.Put(p, 2)

	got, err := c.Get(p)
	if err != nil || got != 2 {
		t.Fatalf("got %d, %v", got, err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestTrimByCount(t *testing.T) {
	c := NewGeoCache[int](2)
	for i := 0; i < 10; i++ {
		c.Put(geo.Point{Lat: float64(i), Lon: 0}, i)
	}

	evicted := c.Trim(4, 0)
	if evicted != 6 {
		t.Fatalf("evicted %d, want 6", evicted)
	}
	if c.Len() != 4 {
		t.Fatalf("Len = %d, want 4", c.Len())
	}
}

func TestTrimByAge(t *testing.T) {
	c := NewGeoCache[int](2)
	c.Put(geo.Point{Lat: 1, Lon: 1}, 1)

	if evicted := c.Trim(0, time.Hour); evicted != 0 {
		t.Fatalf("fresh entry evicted")
	}
	if evicted := c.Trim(0, time.Nanosecond); evicted != 1 {
		t.Fatalf("stale entry survived")
	}
}

func TestTrimDisabled(t *testing.T) {
	c := NewGeoCache[int](2)
	for i := 0; i < 5; i++ {
		c.Put(geo.Point{Lat: float64(i), Lon: 0}, i)
	}
	if evicted := c.Trim(0, 0); evicted != 0 {
		t.Fatalf("Trim(0,0) evicted %d entries", evicted)
	}
}
