package sunspot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/log"
)

// SearchConfig shapes orchestration for all searches on a Service.
type SearchConfig struct {
	// OverallTimeout is the wall-clock budget for one search.
	OverallTimeout time.Duration

	// FirstWave is how many candidates are processed before checking whether
	// enough results were accepted; the remainder runs only when the count is
	// below MinDesired.
	FirstWave  int
	MinDesired int

	// DefaultLimit applies when the request does not set a limit.
	DefaultLimit    int
	MinSeparationKm float64

	// SunnyNowGate drops candidates that fail the strict sunny-now predicate
	// instead of merely ranking them below sunnier spots.
	SunnyNowGate bool

	SunnyLike Thresholds
	SunnyNow  Thresholds
}

// DefaultSearchConfig returns the reference orchestration parameters.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		OverallTimeout:  9 * time.Second,
		FirstWave:       25,
		MinDesired:      10,
		DefaultLimit:    8,
		MinSeparationKm: DefaultMinSeparationKm,
		SunnyLike:       DefaultSunnyLike(),
		SunnyNow:        DefaultSunnyNow(),
	}
}

// SearchRequest describes one search. Origin, when set, bypasses the
// OriginProvider (the manual-override path).
type SearchRequest struct {
	Origin   *geo.Point
	RadiusMi float64
	Limit    int
	Category Interest
}

// Service runs the candidate -> weather -> place -> ranking pipeline under a
// single cancellation signal. At most one search is active at a time; a new
// search cancels any in-flight predecessor.
type Service struct {
	candidates *CandidateSource
	sampler    *Sampler
	resolver   *Resolver
	origin     OriginProvider
	cfg        SearchConfig

	mu     sync.Mutex
	active *activeSearch
}

type activeSearch struct {
	cancel context.CancelCauseFunc
}

// NewService wires the pipeline. origin may be nil when every caller
// supplies coordinates explicitly.
func NewService(candidates *CandidateSource, sampler *Sampler, resolver *Resolver, origin OriginProvider, cfg SearchConfig) *Service {
	if cfg.OverallTimeout <= 0 {
		cfg.OverallTimeout = DefaultSearchConfig().OverallTimeout
	}
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = 8
	}
	if cfg.FirstWave < 1 {
		cfg.FirstWave = 25
	}
	return &Service{
		candidates: candidates,
		sampler:    sampler,
		resolver:   resolver,
		origin:     origin,
		cfg:        cfg,
	}
}

// Search runs the full pipeline and returns the final snapshot. A fatal
// failure (no origin) returns an error; per-candidate failures only shrink
// the result list.
func (s *Service) Search(ctx context.Context, req SearchRequest) (Snapshot, error) {
	return s.run(ctx, req, nil)
}

// SearchProgressive runs the pipeline and emits a snapshot after every
// accepted candidate, then a terminal snapshot with status done or failed.
// The channel is closed when the search ends. Cancellation preserves
// already-accepted results in the terminal snapshot.
func (s *Service) SearchProgressive(ctx context.Context, req SearchRequest) <-chan Snapshot {
	out := make(chan Snapshot, 64)
	go func() {
		defer close(out)
		emit := func(snap Snapshot) {
			// The buffer comfortably exceeds the bounded number of frames a
			// search can emit, so this never blocks an abandoned consumer.
			select {
			case out <- snap:
			default:
			}
		}
		s.run(ctx, req, emit)
	}()
	return out
}

type annotated struct {
	cand   Candidate
	sample WeatherSample
	label  *PlaceLabel
	ok     bool
}

func (s *Service) run(parent context.Context, req SearchRequest, emit func(Snapshot)) (Snapshot, error) {
	searchID := uuid.NewString()
	snap := Snapshot{SearchID: searchID, Status: StatusIdle, Results: []ResultRecord{}}
	if emit == nil {
		emit = func(Snapshot) {}
	}

	ctx, cancel := context.WithCancelCause(parent)
	ctx, cancelTimeout := context.WithTimeoutCause(ctx, s.cfg.OverallTimeout, context.DeadlineExceeded)
	defer cancelTimeout()
	defer cancel(nil)

	// A new search outright cancels any in-flight previous one.
	handle := &activeSearch{cancel: cancel}
	s.mu.Lock()
	if s.active != nil {
		s.active.cancel(ErrSearchSuperseded)
	}
	s.active = handle
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.active == handle {
			s.active = nil
		}
		s.mu.Unlock()
	}()

	// Origin acquisition. Failure here is fatal: nothing can be ranked.
	var origin geo.Point
	if req.Origin != nil {
		origin = *req.Origin
	} else {
		if s.origin == nil {
			snap.Status = StatusFailed
			err := &LocationError{Reason: LocationUnavailable}
			snap.Err = err.Error()
			emit(snap)
			return snap, err
		}
		snap.Status = StatusLocatingOrigin
		emit(snap)

		got, err := s.origin.Origin(ctx)
		if err != nil {
			locErr := asLocationError(err)
			snap.Status = StatusFailed
			snap.Err = locErr.Error()
			emit(snap)
			return snap, locErr
		}
		origin = got
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.DefaultLimit
	}

	snap.Status = StatusGeneratingCandidates
	emit(snap)

	cands, notice, err := s.candidates.Generate(ctx, origin, req.RadiusMi, req.Category)
	if err != nil {
		// Candidate generation only errors on cancellation; preserve the
		// (empty) committed results rather than failing the search.
		snap.Status = StatusDone
		snap.Notice = joinNotice(notice, cancelNotice(ctx))
		emit(snap)
		return snap, nil
	}
	snap.Notice = notice
	log.Debugf("search %s: %d candidates, radius %.0f mi, category %q", searchID, len(cands), req.RadiusMi, req.Category)

	engine := NewEngine(origin, limit, s.cfg.MinSeparationKm)
	snap.Status = StatusSampling
	emit(snap)

	wave := s.cfg.FirstWave
	if wave > len(cands) {
		wave = len(cands)
	}

	s.runBatch(ctx, origin, cands[:wave], engine, &snap, emit)

	// Fetch the remainder only when the fast path came up short.
	if engine.Accepted() < s.cfg.MinDesired && wave < len(cands) && ctx.Err() == nil {
		s.runBatch(ctx, origin, cands[wave:], engine, &snap, emit)
	}

	snap.Status = StatusDone
	snap.Notice = joinNotice(snap.Notice, cancelNotice(ctx))
	snap.Results = engine.Snapshot()
	emit(snap)
	return snap, nil
}

// runBatch fans candidates out through weather sampling and place resolution
// with bounded concurrency, feeding completions to the ranking engine in
// arrival order and emitting a snapshot after each acceptance.
func (s *Service) runBatch(ctx context.Context, origin geo.Point, batch []Candidate, engine *Engine, snap *Snapshot, emit func(Snapshot)) {
	results := make(chan annotated)
	var wg sync.WaitGroup

	for _, c := range batch {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.annotate(ctx, c)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for a := range results {
		if !a.ok {
			continue
		}
		rec := BuildRecord(origin, a.cand, a.sample, *a.label, s.cfg.SunnyLike, s.cfg.SunnyNow)
		if engine.Offer(rec) {
			snap.Results = engine.Snapshot()
			emit(*snap)
		}
	}
}

// annotate resolves weather and place for one candidate. Any failure yields
// ok=false: the candidate is dropped and the batch continues.
func (s *Service) annotate(ctx context.Context, c Candidate) annotated {
	sample, err := s.sampler.Sample(ctx, c.Point)
	if err != nil {
		if ctx.Err() == nil {
			log.Debugf("dropping candidate %.3f,%.3f: %v", c.Point.Lat, c.Point.Lon, err)
		}
		return annotated{cand: c}
	}

	if s.cfg.SunnyNowGate && !s.cfg.SunnyNow.SunnyNow(sample) {
		return annotated{cand: c}
	}

	// The origin is always labeled as the searcher's own position and never
	// reverse-geocoded.
	if c.IsOrigin {
		return annotated{
			cand:   c,
			sample: sample,
			label:  &PlaceLabel{Text: OriginLabel, Point: c.Point},
			ok:     true,
		}
	}

	label, err := s.resolver.Resolve(ctx, c.Point)
	if err != nil {
		if ctx.Err() == nil {
			log.Debugf("dropping candidate %.3f,%.3f: %v", c.Point.Lat, c.Point.Lon, err)
		}
		return annotated{cand: c}
	}
	if label == nil {
		return annotated{cand: c}
	}

	return annotated{cand: c, sample: sample, label: label, ok: true}
}

func asLocationError(err error) *LocationError {
	var locErr *LocationError
	if errors.As(err, &locErr) {
		return locErr
	}
	reason := LocationUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		reason = LocationTimeout
	}
	return &LocationError{Reason: reason, Err: err}
}

func cancelNotice(ctx context.Context) string {
	if ctx.Err() == nil {
		return ""
	}
	switch cause := context.Cause(ctx); {
	case errors.Is(cause, ErrSearchSuperseded):
		return "search superseded"
	case errors.Is(cause, context.DeadlineExceeded):
		return "search timed out; showing partial results"
	default:
		return "search cancelled"
	}
}

func joinNotice(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "; " + b
	}
}
