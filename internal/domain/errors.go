package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrNetwork                = errors.New("network error")
	ErrTimeout                = errors.New("timeout")
	ErrMalformedResponse      = errors.New("malformed response")
	ErrUnsuccessfulResponse   = errors.New("backend reported success=false")
	ErrEmptyResult            = errors.New("backend returned no candidates")
	ErrNoData                 = errors.New("no supply points with valid coordinates")
	ErrAllStrategiesExhausted = errors.New("all strategies exhausted")
)

// UserMessage is the single actionable message shown when no route can be resolved.
const UserMessage = "no route found: check connection and retry"

// InvalidRequestError is returned before any I/O when the request itself is unusable.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

func (e *InvalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

// MalformedResponseError reports a backend payload missing required geometry.
type MalformedResponseError struct {
	Method Method
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Method, e.Reason)
}

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// AllStrategiesExhaustedError carries the full attempt trail for diagnostics.
type AllStrategiesExhaustedError struct {
	RequestID string
	Attempts  []Attempt
	Probe     ProbeReport
}

func (e *AllStrategiesExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Method, a.Outcome))
	}
	return fmt.Sprintf("all strategies exhausted: req_id=%s attempts=[%s]", e.RequestID, strings.Join(parts, " "))
}

func (e *AllStrategiesExhaustedError) Is(target error) bool {
	return target == ErrAllStrategiesExhausted
}
