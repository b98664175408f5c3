package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/google/uuid"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
	"water-route-service/internal/ports"
)

// DefaultTimeouts are the per-attempt budgets of the remote strategies.
var DefaultTimeouts = map[domain.Method]time.Duration{
	domain.MethodGenetic:       30 * time.Second,
	domain.MethodStandard:      30 * time.Second,
	domain.MethodNearestLookup: 15 * time.Second,
}

const archiveTimeout = 5 * time.Second

// Fallback computes candidates without the remote optimizer.
type Fallback interface {
	Compute(ctx context.Context, req domain.OptimizationRequest) ([]domain.RouteCandidate, error)
}

// ResolutionObserver is told which method won each resolution ("" when none did).
type ResolutionObserver interface {
	ObserveResolution(method domain.Method)
}

// Resolver finds the nearest usable supply point for a request.
//
// It probes the optimizer, tries GENETIC, STANDARD and NEAREST_LOOKUP in
// that order, one at a time, and returns the first non-empty result. When
// all of them fail it ranks the fallback dataset locally. A Resolver holds
// no per-call state and is safe for concurrent use.
type Resolver struct {
	Prober     ports.Prober
	Strategies []ports.Strategy
	Fallback   Fallback

	// Timeouts overrides DefaultTimeouts per method.
	Timeouts map[domain.Method]time.Duration

	Sink     ports.AttemptSink
	Archive  ports.TrailArchive
	Observer ResolutionObserver

	Now   func() time.Time
	NewID func() string
}

// Resolve runs the state machine for one request.
//
// Only *domain.InvalidRequestError and *domain.AllStrategiesExhaustedError
// are returned for a finished resolution. If ctx is cancelled no further
// strategies are tried and the context error is returned.
func (r *Resolver) Resolve(ctx context.Context, req domain.OptimizationRequest) (_ *domain.RouteResult, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reqID := obs.RequestID(ctx)
	if reqID == "" {
		reqID = r.newID()
		ctx = obs.WithRequestID(ctx, reqID)
	}
	defer obs.Time(ctx, "resolver.Resolve")(&err)

	run := &resolution{r: r, reqID: reqID, req: req}

	st := stateProbing
	for !st.terminal() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolve %s: abandoned in %s: %w", reqID, st, err)
		}

		var ok bool
		switch st {
		case stateProbing:
			run.probe(ctx)
		case stateLocalFallback:
			ok = run.fallback(ctx)
		default:
			m, _ := methodOf(st)
			ok = run.remote(ctx, m)
		}
		st = nextState(st, ok)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve %s: abandoned: %w", reqID, err)
	}

	if st == stateFailed {
		trail := &domain.AllStrategiesExhaustedError{
			RequestID: reqID,
			Attempts:  run.attempts,
			Probe:     run.probeReport,
		}
		r.archive(ctx, trail)
		r.observe("")
		return nil, trail
	}

	r.observe(run.method)
	return &domain.RouteResult{
		RequestID:        reqID,
		Candidates:       run.candidates,
		Method:           run.method,
		AttemptedMethods: run.attempts,
		Probe:            run.probeReport,
		CreatedAt:        r.now().UTC(),
	}, nil
}

// resolution is the state of a single Resolve call.
type resolution struct {
	r     *Resolver
	reqID string
	req   domain.OptimizationRequest

	probeReport domain.ProbeReport
	attempts    []domain.Attempt
	candidates  []domain.RouteCandidate
	method      domain.Method
}

func (s *resolution) probe(ctx context.Context) {
	if s.r.Prober == nil {
		s.probeReport = domain.ProbeReport{Reason: "no prober configured"}
		return
	}

	s.probeReport = s.r.Prober.Probe(ctx)

	outcome := domain.OutcomeSuccess
	if !s.probeReport.Reachable {
		outcome = domain.OutcomeSoftFailure
	}
	s.emit(ctx, domain.MethodProbe, outcome, s.probeReport.Reason, s.probeReport.Duration)
}

func (s *resolution) remote(ctx context.Context, m domain.Method) bool {
	start := time.Now()

	strat := s.r.strategy(m)
	if strat == nil {
		s.record(ctx, m, domain.OutcomeSoftFailure, "strategy not configured", 0)
		return false
	}

	attemptCtx, cancel := context.WithTimeout(ctx, s.r.timeout(m))
	defer cancel()

	cands, err := func() ([]domain.RouteCandidate, error) {
		raw, err := strat.Fetch(attemptCtx, s.req)
		if err != nil {
			return nil, err
		}
		return Normalize(raw, m, s.req)
	}()
	dur := time.Since(start)

	if err != nil {
		s.record(ctx, m, classify(attemptCtx, err), err.Error(), dur)
		return false
	}

	s.record(ctx, m, domain.OutcomeSuccess, "", dur)
	s.candidates, s.method = cands, m
	return true
}

func (s *resolution) fallback(ctx context.Context) bool {
	const m = domain.MethodLocalFallback
	start := time.Now()

	if s.r.Fallback == nil {
		s.record(ctx, m, domain.OutcomeNoData, "fallback not configured", 0)
		return false
	}

	cands, err := s.r.Fallback.Compute(ctx, s.req)
	dur := time.Since(start)
	if err != nil {
		outcome := classify(ctx, err)
		if errors.Is(err, domain.ErrNoData) {
			outcome = domain.OutcomeNoData
		}
		s.record(ctx, m, outcome, err.Error(), dur)
		return false
	}
	if len(cands) == 0 {
		s.record(ctx, m, domain.OutcomeNoData, domain.ErrNoData.Error(), dur)
		return false
	}

	s.record(ctx, m, domain.OutcomeSuccess, "", dur)
	s.candidates, s.method = cands, m
	return true
}

func (s *resolution) record(ctx context.Context, m domain.Method, outcome domain.Outcome, reason string, dur time.Duration) {
	s.attempts = append(s.attempts, domain.Attempt{Method: m, Outcome: outcome, Reason: reason, Duration: dur})
	s.emit(ctx, m, outcome, reason, dur)
}

func (s *resolution) emit(ctx context.Context, m domain.Method, outcome domain.Outcome, reason string, dur time.Duration) {
	if s.r.Sink == nil {
		return
	}
	s.r.Sink.RecordAttempt(ctx, domain.AttemptEvent{
		RequestID:  s.reqID,
		Method:     m,
		Outcome:    outcome,
		Reason:     reason,
		Duration:   dur,
		OccurredAt: s.r.now().UTC(),
	})
}

// classify maps an attempt error onto the diagnostic outcome. Control flow
// treats every outcome the same; only the trail differs.
func classify(attemptCtx context.Context, err error) domain.Outcome {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, domain.ErrTimeout),
		errors.Is(attemptCtx.Err(), context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return domain.OutcomeTimeout
	case errors.Is(err, domain.ErrMalformedResponse):
		return domain.OutcomeMalformed
	default:
		return domain.OutcomeSoftFailure
	}
}

func (r *Resolver) strategy(m domain.Method) ports.Strategy {
	for _, s := range r.Strategies {
		if s != nil && s.Method() == m {
			return s
		}
	}
	return nil
}

func (r *Resolver) timeout(m domain.Method) time.Duration {
	if d, ok := r.Timeouts[m]; ok && d > 0 {
		return d
	}
	return DefaultTimeouts[m]
}

func (r *Resolver) archive(ctx context.Context, trail *domain.AllStrategiesExhaustedError) {
	if r.Archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if err := r.Archive.Archive(ctx, trail); err != nil {
		log.Printf("req_id=%s archive trail failed: %v", trail.RequestID, err)
	}
}

func (r *Resolver) observe(m domain.Method) {
	if r.Observer != nil {
		r.Observer.ObserveResolution(m)
	}
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}
