package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"water-route-service/internal/adapters/optimizer"
	"water-route-service/internal/domain"
	"water-route-service/internal/ports"
)

func newTestResolver(t *testing.T, baseURL string, dataset []domain.SupplyPoint) (*Resolver, *recordingSink, *recordingArchive) {
	t.Helper()

	client, err := optimizer.New(baseURL, optimizer.WithProbeTimeouts(time.Second, time.Second))
	if err != nil {
		t.Fatalf("optimizer.New: %v", err)
	}

	sink := &recordingSink{}
	archive := &recordingArchive{}
	r := &Resolver{
		Prober:     client,
		Strategies: client.Strategies(),
		Fallback:   &LocalFallback{Source: &staticSource{points: dataset}},
		Timeouts: map[domain.Method]time.Duration{
			domain.MethodGenetic:       2 * time.Second,
			domain.MethodStandard:      2 * time.Second,
			domain.MethodNearestLookup: 2 * time.Second,
		},
		Sink:    sink,
		Archive: archive,
		Now:     func() time.Time { return time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC) },
		NewID:   func() string { return "req-1" },
	}
	return r, sink, archive
}

func attemptMethods(attempts []domain.Attempt) []domain.Method {
	out := make([]domain.Method, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, a.Method)
	}
	return out
}

func TestResolveFallsThroughToNearestLookup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/optimize-route-genetic", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "genetic exploded", http.StatusInternalServerError)
	})
	mux.HandleFunc("/optimize-route-advanced", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "advanced exploded", http.StatusInternalServerError)
	})
	mux.HandleFunc("/find-nearest-points", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "nearest_points": [
			{"latitude": 1.01, "longitude": 103.81, "address": "Depot", "name": "Tap", "distance_km": 1.4}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r, sink, _ := newTestResolver(t, srv.URL, nil)

	res, err := r.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Method != domain.MethodNearestLookup {
		t.Fatalf("method = %s, want NEAREST_LOOKUP", res.Method)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(res.Candidates))
	}
	if c := res.Candidates[0]; !c.IsShortest || c.DistanceKm != 1.4 {
		t.Fatalf("candidate = %+v, want shortest at 1.4 km", c)
	}
	checkRanked(t, testOrigin, res.Candidates)

	if !res.Probe.Reachable {
		t.Fatalf("probe = %+v, want reachable", res.Probe)
	}
	want := []domain.Outcome{domain.OutcomeSoftFailure, domain.OutcomeSoftFailure, domain.OutcomeSuccess}
	if len(res.AttemptedMethods) != len(want) {
		t.Fatalf("attempts = %+v", res.AttemptedMethods)
	}
	for i, a := range res.AttemptedMethods {
		if a.Outcome != want[i] {
			t.Fatalf("attempt %d (%s) outcome = %s, want %s", i, a.Method, a.Outcome, want[i])
		}
	}
	if res.RequestID != "req-1" {
		t.Fatalf("request id = %q", res.RequestID)
	}

	// probe + three strategies
	if len(sink.events) != 4 || sink.events[0].Method != domain.MethodProbe {
		t.Fatalf("events = %+v", sink.events)
	}
}

func TestResolveFailingHealthDoesNotGateStrategies(t *testing.T) {
	rootCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unhealthy", http.StatusInternalServerError)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		rootCalls++
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/optimize-route-genetic", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "routes": [
			{"total_distance": 2.2, "destination_point": {"latitude": 1.02, "longitude": 103.8, "name": "Tap"}}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r, sink, _ := newTestResolver(t, srv.URL, nil)

	res, err := r.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != domain.MethodGenetic {
		t.Fatalf("method = %s, want GENETIC", res.Method)
	}
	if res.Probe.Reachable || res.Probe.Endpoint != "/health" {
		t.Fatalf("probe = %+v, want unreachable on /health", res.Probe)
	}
	if rootCalls != 0 {
		t.Fatalf("root probed %d times after a 500 on /health", rootCalls)
	}
	checkRanked(t, testOrigin, res.Candidates)

	if len(sink.events) != 2 {
		t.Fatalf("events = %+v, want probe and genetic", sink.events)
	}
	if ev := sink.events[0]; ev.Method != domain.MethodProbe || ev.Outcome != domain.OutcomeSoftFailure {
		t.Fatalf("first event = %+v, want PROBE soft_failure", ev)
	}
	if len(res.AttemptedMethods) != 1 || res.AttemptedMethods[0].Outcome != domain.OutcomeSuccess {
		t.Fatalf("attempts = %+v", res.AttemptedMethods)
	}
}

func TestResolveHangingOptimizerFallsBackToMirror(t *testing.T) {
	srv := hangingServer(t)

	client, err := optimizer.New(srv.URL,
		optimizer.WithProbeTimeouts(100*time.Millisecond, 100*time.Millisecond),
		optimizer.WithRetry(3, 10*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("optimizer.New: %v", err)
	}
	mirror := &staticSource{points: threePointDataset()}

	r := &Resolver{
		Prober:     client,
		Strategies: client.Strategies(),
		Fallback: &LocalFallback{
			Source:  SourceChain{Sources: []ports.SupplyPointSource{client, mirror}},
			Timeout: 300 * time.Millisecond,
		},
		Timeouts: map[domain.Method]time.Duration{
			domain.MethodGenetic:       200 * time.Millisecond,
			domain.MethodStandard:      200 * time.Millisecond,
			domain.MethodNearestLookup: 200 * time.Millisecond,
		},
	}

	res, err := r.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != domain.MethodLocalFallback {
		t.Fatalf("method = %s, want LOCAL_FALLBACK", res.Method)
	}
	for _, a := range res.AttemptedMethods[:3] {
		if a.Outcome != domain.OutcomeTimeout {
			t.Fatalf("%s outcome = %s, want timeout", a.Method, a.Outcome)
		}
	}
	if mirror.calls != 1 || len(res.Candidates) != 3 {
		t.Fatalf("mirror calls = %d, candidates = %+v", mirror.calls, res.Candidates)
	}
}

func TestResolveUnreachableUsesLocalFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, _, archive := newTestResolver(t, url, threePointDataset())

	res, err := r.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Method != domain.MethodLocalFallback {
		t.Fatalf("method = %s, want LOCAL_FALLBACK", res.Method)
	}
	if res.Probe.Reachable {
		t.Fatalf("probe reported reachable for a closed server")
	}
	checkRanked(t, testOrigin, res.Candidates)

	wantIDs := []string{"local-b", "local-a", "local-c"}
	for i, c := range res.Candidates {
		if c.ID != wantIDs[i] {
			t.Fatalf("candidate %d = %q, want %q", i, c.ID, wantIDs[i])
		}
		if c.PriorityRank != i+1 {
			t.Fatalf("candidate %d rank = %d", i, c.PriorityRank)
		}
		if c.IsShortest != (i == 0) {
			t.Fatalf("candidate %d shortest = %v", i, c.IsShortest)
		}
	}
	if len(res.AttemptedMethods) != 4 {
		t.Fatalf("attempts = %+v, want 4", res.AttemptedMethods)
	}
	if len(archive.trails) != 0 {
		t.Fatalf("trail archived for a successful resolution")
	}
}

func TestResolveEmptyGeneticIsSoftFailure(t *testing.T) {
	genetic := &fakeStrategy{method: domain.MethodGenetic, body: []byte(`{"success": true, "routes": []}`)}
	standard := &fakeStrategy{method: domain.MethodStandard, body: []byte(`{"success": true, "routes": [
		{"total_distance": 3.2, "points": [{"latitude": 1.0, "longitude": 103.8}, {"latitude": 1.02, "longitude": 103.81}]}
	]}`)}
	nearest := &fakeStrategy{method: domain.MethodNearestLookup}

	r := &Resolver{Strategies: []ports.Strategy{genetic, standard, nearest}}

	res, err := r.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != domain.MethodStandard {
		t.Fatalf("method = %s, want STANDARD", res.Method)
	}
	if res.AttemptedMethods[0].Outcome != domain.OutcomeSoftFailure {
		t.Fatalf("genetic outcome = %s, want soft_failure", res.AttemptedMethods[0].Outcome)
	}
	if nearest.calls != 0 {
		t.Fatalf("nearest lookup called after STANDARD succeeded")
	}
	checkRanked(t, testOrigin, res.Candidates)
}

func TestResolveEmptyDatasetExhausts(t *testing.T) {
	failing := func(m domain.Method) *fakeStrategy {
		return &fakeStrategy{method: m, body: []byte(`{"success": false}`)}
	}
	archive := &recordingArchive{}
	r := &Resolver{
		Strategies: []ports.Strategy{
			failing(domain.MethodGenetic), failing(domain.MethodStandard), failing(domain.MethodNearestLookup),
		},
		Fallback: &LocalFallback{Source: &staticSource{}},
		Archive:  archive,
		NewID:    func() string { return "req-x" },
	}

	res, err := r.Resolve(context.Background(), testRequest())
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}

	var exhausted *domain.AllStrategiesExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want AllStrategiesExhaustedError", err)
	}
	if len(exhausted.Attempts) != 4 {
		t.Fatalf("attempts = %+v, want 4", exhausted.Attempts)
	}
	want := []domain.Method{
		domain.MethodGenetic, domain.MethodStandard, domain.MethodNearestLookup, domain.MethodLocalFallback,
	}
	got := attemptMethods(exhausted.Attempts)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("attempt order = %v, want %v", got, want)
		}
	}
	if exhausted.Attempts[3].Outcome != domain.OutcomeNoData {
		t.Fatalf("fallback outcome = %s, want no_data", exhausted.Attempts[3].Outcome)
	}
	if len(archive.trails) != 1 || archive.trails[0].RequestID != "req-x" {
		t.Fatalf("archived trails = %+v", archive.trails)
	}
}

func TestResolveInvalidRequestDoesNoIO(t *testing.T) {
	genetic := &fakeStrategy{method: domain.MethodGenetic}
	r := &Resolver{Strategies: []ports.Strategy{genetic}}

	req := testRequest()
	req.MaxRoutes = 0

	_, err := r.Resolve(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if genetic.calls != 0 {
		t.Fatalf("strategy called for an invalid request")
	}
}

func TestResolveClassifiesTimeouts(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	r, _, _ := newTestResolver(t, srv.URL, threePointDataset())
	r.Prober = nil
	r.Timeouts = map[domain.Method]time.Duration{
		domain.MethodGenetic:       50 * time.Millisecond,
		domain.MethodStandard:      50 * time.Millisecond,
		domain.MethodNearestLookup: 50 * time.Millisecond,
	}

	res, err := r.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != domain.MethodLocalFallback {
		t.Fatalf("method = %s, want LOCAL_FALLBACK", res.Method)
	}
	for _, a := range res.AttemptedMethods[:3] {
		if a.Outcome != domain.OutcomeTimeout {
			t.Fatalf("%s outcome = %s, want timeout", a.Method, a.Outcome)
		}
	}
}

func TestResolveCancelledStopsAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	genetic := &fakeStrategy{method: domain.MethodGenetic, err: errors.New("unreachable")}
	standard := &fakeStrategy{method: domain.MethodStandard}
	r := &Resolver{
		Strategies: []ports.Strategy{genetic, standard},
		Sink:       cancelOnFirstAttempt{cancel: cancel},
	}

	_, err := r.Resolve(ctx, testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if standard.calls != 0 {
		t.Fatalf("strategy attempted after cancellation")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	body := []byte(`{"success": true, "routes": [
		{"total_distance": 4, "destination_point": {"latitude": 1.04, "longitude": 103.8}},
		{"total_distance": 2, "destination_point": {"latitude": 1.02, "longitude": 103.8}},
		{"total_distance": 2, "destination_point": {"latitude": 1.03, "longitude": 103.8}}
	]}`)

	var first []string
	for i := 0; i < 3; i++ {
		r := &Resolver{Strategies: []ports.Strategy{&fakeStrategy{method: domain.MethodGenetic, body: body}}}
		res, err := r.Resolve(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var ids []string
		for _, c := range res.Candidates {
			ids = append(ids, c.ID)
		}
		if first == nil {
			first = ids
			continue
		}
		for j := range ids {
			if ids[j] != first[j] {
				t.Fatalf("run %d order %v differs from %v", i, ids, first)
			}
		}
	}
	if first[0] != "genetic-002" || first[1] != "genetic-003" {
		t.Fatalf("order = %v", first)
	}
}

type cancelOnFirstAttempt struct {
	cancel context.CancelFunc
}

func (c cancelOnFirstAttempt) RecordAttempt(context.Context, domain.AttemptEvent) { c.cancel() }
