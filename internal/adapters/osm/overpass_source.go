package osm

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/serjvanilla/go-overpass"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
)

const (
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"
	DefaultRadiusM  = 25000
)

// OverpassSource lists public drinking water taps (amenity=drinking_water)
// around a point using the Overpass API.
type OverpassSource struct {
	endpoint  string
	radiusM   int
	timeout   time.Duration
	transport http.RoundTripper
}

func NewOverpassSource(endpoint string, radiusM int, timeout time.Duration) *OverpassSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}
	return &OverpassSource{
		endpoint:  endpoint,
		radiusM:   radiusM,
		timeout:   timeout,
		transport: http.DefaultTransport,
	}
}

func (s *OverpassSource) ListSupplyPoints(
	ctx context.Context,
	near domain.GeoPoint,
	limit int,
) (_ []domain.SupplyPoint, err error) {
	defer obs.Time(ctx, "osm.ListSupplyPoints")(&err)

	if !near.Valid() || near.IsZero() {
		return nil, fmt.Errorf("overpass: no usable search point")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// go-overpass builds its requests without a context, so the context is
	// attached by the transport of a per-call client.
	hc := &http.Client{Transport: contextTransport{ctx: ctx, base: s.transport}}
	client := overpass.NewWithSettings(s.endpoint, 1, hc)

	result, err := client.Query(s.query(near, limit))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("overpass query: %w", ctxErr)
		}
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	return convertNodes(result, limit), nil
}

func (s *OverpassSource) query(near domain.GeoPoint, limit int) string {
	out := "out body;"
	if limit > 0 {
		out = fmt.Sprintf("out body %d;", limit)
	}
	return fmt.Sprintf(
		`[out:json][timeout:25];node["amenity"="drinking_water"](around:%d,%s,%s);%s`,
		s.radiusM,
		strconv.FormatFloat(near.Latitude, 'f', 6, 64),
		strconv.FormatFloat(near.Longitude, 'f', 6, 64),
		out,
	)
}

// convertNodes maps OSM nodes to supply points ordered by node ID.
func convertNodes(result overpass.Result, limit int) []domain.SupplyPoint {
	ids := make([]int64, 0, len(result.Nodes))
	for id := range result.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.SupplyPoint, 0, len(ids))
	for _, id := range ids {
		node := result.Nodes[id]
		if node == nil {
			continue
		}

		tags := node.Tags
		meta := map[string]string{"data_source": "openstreetmap"}
		for _, k := range []string{"operator", "opening_hours", "access", "fee"} {
			if v := tags[k]; v != "" {
				meta[k] = v
			}
		}

		out = append(out, domain.SupplyPoint{
			ID:       "osm-" + strconv.FormatInt(node.ID, 10),
			Name:     firstNonEmpty(tags["name"], tags["description"], domain.DefaultSupplyPointName),
			Address:  firstNonEmpty(address(tags), domain.DefaultAddress),
			Location: domain.GeoPoint{Latitude: node.Lat, Longitude: node.Lon},
			Metadata: meta,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func address(tags map[string]string) string {
	street := strings.TrimSpace(strings.Join([]string{tags["addr:housenumber"], tags["addr:street"]}, " "))
	parts := make([]string, 0, 2)
	for _, p := range []string{street, tags["addr:city"]} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
