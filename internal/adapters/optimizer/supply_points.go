package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
)

const pathSupplyPoints = "/water-supply-points"

// The dataset endpoint is loosely typed: ids and coordinates arrive either as
// JSON numbers or as numeric strings depending on the backing store.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

type flexFloat struct {
	Value float64
	Set   bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", raw, err)
	}
	f.Value, f.Set = v, true
	return nil
}

type supplyPointsResponse struct {
	Success    bool              `json:"success"`
	Points     []wireSupplyPoint `json:"points"`
	DataSource string            `json:"data_source"`
}

type wireSupplyPoint struct {
	ID              flexString `json:"id"`
	Latitude        flexFloat  `json:"latitude"`
	Longitude       flexFloat  `json:"longitude"`
	StreetName      string     `json:"street_name"`
	Address         string     `json:"address"`
	PointOfInterest string     `json:"point_of_interest"`
}

// ListSupplyPoints fetches the full supply-point dataset from GET /water-supply-points.
// Points without both coordinates are dropped here; range checks are left to
// the fallback calculator. near is ignored: the endpoint has no spatial filter.
func (c *Client) ListSupplyPoints(
	ctx context.Context,
	_ domain.GeoPoint,
	limit int,
) (_ []domain.SupplyPoint, err error) {
	defer obs.Time(ctx, "optimizer.ListSupplyPoints")(&err)

	endpoint := c.baseURL + pathSupplyPoints

	body, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if limit > 0 {
			q := req.URL.Query()
			q.Set("limit", strconv.Itoa(limit))
			req.URL.RawQuery = q.Encode()
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list supply points: %w", err)
	}

	var decoded supplyPointsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("list supply points: decode response: %w", err)
	}
	if !decoded.Success {
		return nil, fmt.Errorf("list supply points: %w", domain.ErrUnsuccessfulResponse)
	}

	out := make([]domain.SupplyPoint, 0, len(decoded.Points))
	for i, p := range decoded.Points {
		if !p.Latitude.Set || !p.Longitude.Set {
			continue
		}

		id := strings.TrimSpace(string(p.ID))
		if id == "" {
			id = fmt.Sprintf("remote-%d", i+1)
		}

		meta := map[string]string{}
		if decoded.DataSource != "" {
			meta["data_source"] = decoded.DataSource
		}
		if p.StreetName != "" {
			meta["street_name"] = p.StreetName
		}
		if p.PointOfInterest != "" {
			meta["point_of_interest"] = p.PointOfInterest
		}

		out = append(out, domain.SupplyPoint{
			ID:       id,
			Name:     firstNonEmpty(p.PointOfInterest, p.StreetName, domain.DefaultSupplyPointName),
			Address:  firstNonEmpty(p.Address, p.StreetName, domain.DefaultAddress),
			Location: domain.GeoPoint{Latitude: p.Latitude.Value, Longitude: p.Longitude.Value},
			Metadata: meta,
		})
	}

	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
