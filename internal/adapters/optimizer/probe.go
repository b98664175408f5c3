package optimizer

import (
	"context"
	"net/http"
	"time"

	"water-route-service/internal/domain"
)

const (
	pathHealth = "/health"
	pathRoot   = "/"
)

// Probe checks whether the optimizer answers at all.
//
// The primary check is GET /health. Some deployments do not mount that route,
// so a 404 there falls through to GET / as a secondary check. Any other
// failure is final. Probe never returns an error.
func (c *Client) Probe(ctx context.Context) domain.ProbeReport {
	start := time.Now()

	code, err := c.probeOnce(ctx, pathHealth, c.probePrimaryTimeout)
	if err == nil && code != http.StatusNotFound {
		return probeReport(pathHealth, code, nil, start)
	}
	if err != nil {
		return probeReport(pathHealth, 0, err, start)
	}

	code, err = c.probeOnce(ctx, pathRoot, c.probeSecondaryTimeout)
	return probeReport(pathRoot, code, err, start)
}

func (c *Client) probeOnce(ctx context.Context, path string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return resp.StatusCode, nil
}

func probeReport(endpoint string, code int, err error, start time.Time) domain.ProbeReport {
	r := domain.ProbeReport{
		Endpoint: endpoint,
		Duration: time.Since(start),
	}
	switch {
	case err != nil:
		r.Reason = err.Error()
	case code >= 200 && code <= 299:
		r.Reachable = true
	default:
		r.Reason = http.StatusText(code)
		if r.Reason == "" {
			r.Reason = "unexpected status"
		}
	}
	return r
}
