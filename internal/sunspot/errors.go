package sunspot

import (
	"errors"
	"fmt"
)

var (
	// ErrWeatherUnavailable marks a per-candidate forecast failure. The
	// candidate is dropped; the search continues.
	ErrWeatherUnavailable = errors.New("weather unavailable")

	// ErrNamingUnavailable marks a per-candidate reverse-geocode failure.
	// Treated identically to a nil label: skip the candidate.
	ErrNamingUnavailable = errors.New("place naming unavailable")

	// ErrNoLabel means the resolver found no usable, non-excluded settlement
	// name for the point.
	ErrNoLabel = errors.New("no usable place label")

	// ErrSearchSuperseded is reported on a search cancelled because a newer
	// one started.
	ErrSearchSuperseded = errors.New("search superseded by a newer search")
)

// LocationReason classifies origin-acquisition failures.
type LocationReason string

const (
	LocationDenied      LocationReason = "denied"
	LocationUnavailable LocationReason = "unavailable"
	LocationTimeout     LocationReason = "timeout"
)

// LocationError is fatal to a search: without an origin there is nothing to
// rank.
type LocationError struct {
	Reason LocationReason
	Err    error
}

func (e *LocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location unavailable (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("location unavailable (%s)", e.Reason)
}

func (e *LocationError) Unwrap() error { return e.Err }
