package services

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"water-route-service/internal/domain"
)

// Map colors by rank; the shortest route is always green.
var colorPalette = []string{"#2E7D32", "#1565C0", "#EF6C00", "#6A1B9A", "#C62828"}

// coordTolerance is how far a polyline endpoint may sit from its anchor and
// still be snapped onto it instead of getting an extra vertex.
const coordTolerance = 1e-6

// rankCandidates sorts by ascending distance, then applies the cap and
// assigns rank, shortest flag and color tag.
// Truncation happens after the full sort so the true nearest point is never
// cut by the cap. Ties are broken by candidate ID for deterministic output.
func rankCandidates(cands []domain.RouteCandidate, maxRoutes int) []domain.RouteCandidate {
	slices.SortStableFunc(cands, func(a, b domain.RouteCandidate) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if maxRoutes > 0 && len(cands) > maxRoutes {
		cands = cands[:maxRoutes]
	}

	for i := range cands {
		cands[i].PriorityRank = i + 1
		cands[i].IsShortest = i == 0
		cands[i].ColorTag = colorPalette[i%len(colorPalette)]
	}
	return cands
}

// anchorPolyline makes line start exactly at origin and end exactly at dest.
// Endpoints within coordTolerance are snapped; others get a new vertex.
func anchorPolyline(line []domain.GeoPoint, origin, dest domain.GeoPoint) []domain.GeoPoint {
	out := make([]domain.GeoPoint, 0, len(line)+2)
	for _, p := range line {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}

	if len(out) == 0 || !near(out[0], origin) {
		out = append([]domain.GeoPoint{origin}, out...)
	} else {
		out[0] = origin
	}

	if last := len(out) - 1; last > 0 && near(out[last], dest) {
		out[last] = dest
	} else {
		out = append(out, dest)
	}
	return out
}

func near(a, b domain.GeoPoint) bool {
	return math.Abs(a.Latitude-b.Latitude) <= coordTolerance &&
		math.Abs(a.Longitude-b.Longitude) <= coordTolerance
}
