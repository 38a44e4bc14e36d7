package sunspot

import (
	"reflect"
	"testing"

	"github.com/i474232898/sunspotter/internal/geo"
)

func record(place string, p geo.Point, sunnyMin int, distKm float64) ResultRecord {
	return ResultRecord{
		Place:        place,
		Point:        p,
		SunnyMinutes: sunnyMin,
		DistanceKm:   distKm,
	}
}

func TestNameDedup(t *testing.T) {
	e := NewEngine(edinburgh, 8, 1.0)

	a := geo.Point{Lat: 55.98, Lon: -3.40}
	b := geo.Destination(a, 90, 0.2) // 200 m away, same resolved name

	if !e.Offer(record("Dunbar, Scotland", a, 120, 10)) {
		t.Fatal("first offer rejected")
	}
	if e.Offer(record("Dunbar", b, 300, 12)) {
		t.Fatal("normalized-equal name accepted twice")
	}
	if got := len(e.Snapshot()); got != 1 {
		t.Fatalf("snapshot has %d records, want 1", got)
	}
}

func TestSeparationRejectsCluster(t *testing.T) {
	e := NewEngine(edinburgh, 8, 1.0)

	a := geo.Point{Lat: 55.98, Lon: -3.40}
	near := geo.Destination(a, 45, 0.5)
	far := geo.Destination(a, 45, 5)

	if !e.Offer(record("Aberlady", a, 60, 8)) {
		t.Fatal("first offer rejected")
	}
	if e.Offer(record("Longniddry", near, 60, 8)) {
		t.Fatal("candidate 500 m from an accepted record must be rejected")
	}
	if !e.Offer(record("Gullane", far, 60, 9)) {
		t.Fatal("candidate 5 km away with a different name must be accepted")
	}
}

func TestOriginExemptFromSeparation(t *testing.T) {
	e := NewEngine(edinburgh, 8, 1.0)

	originRec := record(OriginLabel, edinburgh, 60, 0)
	originRec.IsOrigin = true
	if !e.Offer(originRec) {
		t.Fatal("origin rejected")
	}

	// A candidate 300 m from the origin is still acceptable.
	nearby := geo.Destination(edinburgh, 10, 0.3)
	if !e.Offer(record("Leith", nearby, 60, 0.3)) {
		t.Fatal("origin must be exempt from the separation rule")
	}
}

func TestFirstAcceptedWins(t *testing.T) {
	e := NewEngine(edinburgh, 8, 1.0)

	a := record("North Berwick", geo.Point{Lat: 56.06, Lon: -2.72}, 60, 30)
	if !e.Offer(a) {
		t.Fatal("first offer rejected")
	}

	// A later, sunnier arrival under the same key never evicts the earlier one.
	better := record("North Berwick", geo.Point{Lat: 56.07, Lon: -2.73}, 600, 31)
	if e.Offer(better) {
		t.Fatal("later arrival evicted an accepted record")
	}
	snap := e.Snapshot()
	if snap[0].SunnyMinutes != 60 {
		t.Fatalf("accepted record was replaced: %+v", snap[0])
	}
}

func TestSnapshotOrdering(t *testing.T) {
	e := NewEngine(edinburgh, 8, 1.0)

	e.Offer(record("Peebles", geo.Point{Lat: 55.65, Lon: -3.19}, 120, 34))
	e.Offer(record("Dunbar", geo.Point{Lat: 56.00, Lon: -2.52}, 300, 45))
	e.Offer(record("Biggar", geo.Point{Lat: 55.62, Lon: -3.52}, 120, 40))
	e.Offer(record("Melrose", geo.Point{Lat: 55.60, Lon: -2.73}, 300, 45))

	snap := e.Snapshot()
	want := []string{"Dunbar", "Melrose", "Peebles", "Biggar"}
	for i, w := range want {
		if snap[i].Place != w {
			t.Fatalf("position %d = %q, want %q (full: %v)", i, snap[i].Place, w, places(snap))
		}
	}
}

func TestSnapshotTruncates(t *testing.T) {
	e := NewEngine(edinburgh, 3, 1.0)

	pts := []geo.Point{
		{Lat: 55.0, Lon: -3.0}, {Lat: 55.2, Lon: -3.0}, {Lat: 55.4, Lon: -3.0},
		{Lat: 55.6, Lon: -3.0}, {Lat: 55.8, Lon: -3.0},
	}
	names := []string{"A", "B", "C", "D", "E"}
	for i, p := range pts {
		e.Offer(record(names[i], p, 60*(i+1), float64(i)))
	}

	snap := e.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length %d, want 3", len(snap))
	}
	if snap[0].Place != "E" {
		t.Fatalf("best record is %q", snap[0].Place)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	e := NewEngine(edinburgh, 8, 1.0)
	e.Offer(record("Dunbar", geo.Point{Lat: 56.00, Lon: -2.52}, 300, 45))
	e.Offer(record("Peebles", geo.Point{Lat: 55.65, Lon: -3.19}, 120, 34))

	first := e.Snapshot()
	second := e.Snapshot()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated snapshots differ")
	}

	// Mutating a snapshot must not affect the engine.
	first[0].Place = "mutated"
	if e.Snapshot()[0].Place == "mutated" {
		t.Fatal("snapshot aliases engine state")
	}
}

func TestTieBreakByName(t *testing.T) {
	e := NewEngine(edinburgh, 8, 1.0)

	// Identical duration and distance: lexicographic name order decides.
	e.Offer(record("Zeta", geo.Point{Lat: 55.0, Lon: -3.0}, 60, 10))
	e.Offer(record("Alpha", geo.Point{Lat: 55.5, Lon: -3.5}, 60, 10))

	snap := e.Snapshot()
	if snap[0].Place != "Alpha" || snap[1].Place != "Zeta" {
		t.Fatalf("tie-break wrong: %v", places(snap))
	}
}

func places(recs []ResultRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Place
	}
	return out
}
