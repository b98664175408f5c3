package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"water-route-service/internal/domain"
	"water-route-service/internal/geo"
)

// Normalize converts one strategy's raw payload into ranked candidates.
//
// Missing optional fields get defaults (distance is derived from the
// coordinates, strings get placeholder text, polylines are synthesized).
// Missing destination coordinates make the whole payload malformed.
// success != true and an empty route list are reported as
// domain.ErrUnsuccessfulResponse and domain.ErrEmptyResult.
func Normalize(raw []byte, method domain.Method, req domain.OptimizationRequest) ([]domain.RouteCandidate, error) {
	if !req.Origin.Valid() {
		return nil, &domain.MalformedResponseError{Method: method, Reason: "request origin has no valid coordinates"}
	}

	var (
		cands []domain.RouteCandidate
		err   error
	)
	switch method {
	case domain.MethodGenetic:
		cands, err = normalizeGenetic(raw, req.Origin)
	case domain.MethodStandard:
		cands, err = normalizeAdvanced(raw, req.Origin)
	case domain.MethodNearestLookup:
		cands, err = normalizeNearest(raw, req.Origin)
	default:
		return nil, fmt.Errorf("normalize: unsupported method %q", method)
	}
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("%s: %w", method, domain.ErrEmptyResult)
	}
	return rankCandidates(cands, req.MaxRoutes), nil
}

func decodeEnvelope(raw []byte, method domain.Method, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &domain.MalformedResponseError{Method: method, Reason: "decode: " + err.Error()}
	}
	return nil
}

func checkSuccess(method domain.Method, success *bool) error {
	if success == nil || !*success {
		return fmt.Errorf("%s: %w", method, domain.ErrUnsuccessfulResponse)
	}
	return nil
}

func normalizeGenetic(raw []byte, origin domain.GeoPoint) ([]domain.RouteCandidate, error) {
	const method = domain.MethodGenetic

	var env geneticEnvelope
	if err := decodeEnvelope(raw, method, &env); err != nil {
		return nil, err
	}
	if err := checkSuccess(method, env.Success); err != nil {
		return nil, err
	}

	out := make([]domain.RouteCandidate, 0, len(env.Routes))
	for i, r := range env.Routes {
		if r.DestinationPoint == nil {
			return nil, malformed(method, i, "destination_point missing")
		}
		dest, ok := r.DestinationPoint.point()
		if !ok {
			return nil, malformed(method, i, "destination_point has no valid coordinates")
		}

		sp := supplyPointAt(*r.DestinationPoint, dest)
		if r.FitnessScore != nil {
			sp.Metadata = map[string]string{"fitness_score": fmt.Sprintf("%.4f", *r.FitnessScore)}
		}

		km, ok := r.km()
		if !ok {
			km = geo.Haversine(origin, dest)
		}

		out = append(out, domain.RouteCandidate{
			ID:          candidateID(method, i),
			Destination: sp,
			DistanceKm:  km,
			TravelTime:  geo.FormatTravelTime(geo.EstimateTravelTime(km, geo.ModeCar)),
			Polyline:    buildPolyline(r.Polyline.points(), origin, dest, km),
		})
	}
	return out, nil
}

func normalizeAdvanced(raw []byte, origin domain.GeoPoint) ([]domain.RouteCandidate, error) {
	const method = domain.MethodStandard

	var env advancedEnvelope
	if err := decodeEnvelope(raw, method, &env); err != nil {
		return nil, err
	}
	if err := checkSuccess(method, env.Success); err != nil {
		return nil, err
	}

	out := make([]domain.RouteCandidate, 0, len(env.Routes))
	for i, r := range env.Routes {
		destLoc, dest, ok := r.destination()
		if !ok {
			return nil, malformed(method, i, "route has no destination coordinates")
		}

		km, ok := r.km()
		if !ok {
			km, ok = r.segmentKm()
		}
		if !ok {
			km = geo.Haversine(origin, dest)
		}

		line := r.segmentPolyline()
		if len(line) < 2 {
			line = wirePolyline(r.Points).points()
		}

		out = append(out, domain.RouteCandidate{
			ID:          candidateID(method, i),
			Destination: supplyPointAt(destLoc, dest),
			DistanceKm:  km,
			TravelTime:  geo.FormatTravelTime(r.travelTime(km)),
			Polyline:    buildPolyline(line, origin, dest, km),
		})
	}
	return out, nil
}

func normalizeNearest(raw []byte, origin domain.GeoPoint) ([]domain.RouteCandidate, error) {
	const method = domain.MethodNearestLookup

	var env nearestEnvelope
	if err := decodeEnvelope(raw, method, &env); err != nil {
		return nil, err
	}
	if err := checkSuccess(method, env.Success); err != nil {
		return nil, err
	}

	out := make([]domain.RouteCandidate, 0, len(env.NearestPoints))
	for i, p := range env.NearestPoints {
		dest, ok := p.Location.point()
		if !ok {
			return nil, malformed(method, i, "point has no valid coordinates")
		}

		km, ok := p.Distance.km()
		if !ok {
			km = geo.Haversine(origin, dest)
		}

		out = append(out, domain.RouteCandidate{
			ID:          candidateID(method, i),
			Destination: supplyPointAt(p.Location, dest),
			DistanceKm:  km,
			TravelTime:  geo.FormatTravelTime(geo.EstimateTravelTime(km, geo.ModeCar)),
			Polyline:    buildPolyline(nil, origin, dest, km),
		})
	}
	return out, nil
}

func malformed(method domain.Method, idx int, reason string) error {
	return &domain.MalformedResponseError{Method: method, Reason: fmt.Sprintf("route %d: %s", idx, reason)}
}

// candidateID is stable for a given payload, so ties sort the same way on
// every run.
func candidateID(method domain.Method, idx int) string {
	return fmt.Sprintf("%s-%03d", strings.ToLower(string(method)), idx+1)
}

// buildPolyline anchors a backend polyline to origin and dest, or
// synthesizes a straight line when the backend sent none.
func buildPolyline(line []domain.GeoPoint, origin, dest domain.GeoPoint, km float64) []domain.GeoPoint {
	if len(line) == 0 {
		return geo.Interpolate(origin, dest, geo.PolylineSegments(km))
	}
	return anchorPolyline(line, origin, dest)
}

func supplyPointAt(loc wireLocation, p domain.GeoPoint) domain.SupplyPoint {
	return domain.SupplyPoint{
		ID:       fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude),
		Name:     firstNonEmpty(loc.Name, loc.StreetName, domain.DefaultSupplyPointName),
		Address:  firstNonEmpty(loc.Address, loc.StreetName, domain.DefaultAddress),
		Location: p,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func (l wireLocation) point() (domain.GeoPoint, bool) {
	if l.Lat == nil || l.Lng == nil {
		return domain.GeoPoint{}, false
	}
	p := domain.GeoPoint{Latitude: *l.Lat, Longitude: *l.Lng}
	return p, p.Valid()
}

// points keeps the vertices that carry valid coordinates.
func (p wirePolyline) points() []domain.GeoPoint {
	out := make([]domain.GeoPoint, 0, len(p))
	for _, l := range p {
		if pt, ok := l.point(); ok {
			out = append(out, pt)
		}
	}
	return out
}

// destination is the last point of the route, falling back to the last
// segment's end.
func (r advancedRoute) destination() (wireLocation, domain.GeoPoint, bool) {
	for i := len(r.Points) - 1; i >= 0; i-- {
		if p, ok := r.Points[i].point(); ok {
			return r.Points[i], p, true
		}
	}
	for i := len(r.Segments) - 1; i >= 0; i-- {
		if to := r.Segments[i].To; to != nil {
			if p, ok := to.point(); ok {
				return *to, p, true
			}
		}
	}
	return wireLocation{}, domain.GeoPoint{}, false
}

func (r advancedRoute) segmentKm() (float64, bool) {
	var total float64
	var seen bool
	for _, s := range r.Segments {
		if s.Distance != nil && *s.Distance >= 0 {
			total += *s.Distance
			seen = true
		}
	}
	return total, seen
}

// segmentPolyline concatenates per-segment polylines, using the segment
// endpoints for segments that carry none.
func (r advancedRoute) segmentPolyline() []domain.GeoPoint {
	var out []domain.GeoPoint
	for _, s := range r.Segments {
		if pts := s.Polyline.points(); len(pts) > 0 {
			out = append(out, pts...)
			continue
		}
		for _, l := range []*wireLocation{s.From, s.To} {
			if l == nil {
				continue
			}
			if p, ok := l.point(); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

// travelTime sums per-segment estimates at each segment's mode when the
// segments carry distances, otherwise estimates the whole route by car.
func (r advancedRoute) travelTime(km float64) time.Duration {
	var total time.Duration
	var seen bool
	for _, s := range r.Segments {
		if s.Distance == nil || *s.Distance < 0 {
			continue
		}
		total += geo.EstimateTravelTime(*s.Distance, segmentMode(s.Mode))
		seen = true
	}
	if !seen {
		return geo.EstimateTravelTime(km, geo.ModeCar)
	}
	return total
}

func segmentMode(mode string) geo.TravelMode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "walking", "walk", "foot":
		return geo.ModeWalking
	case "bicycle", "bike", "cycling":
		return geo.ModeBicycle
	case "public_transport", "transit", "bus":
		return geo.ModePublicTransport
	case "emergency":
		return geo.ModeEmergency
	default:
		return geo.ModeCar
	}
}
