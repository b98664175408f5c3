package domain

import "time"

// Outcome classifies how a single strategy attempt ended.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeSoftFailure Outcome = "soft_failure"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeMalformed   Outcome = "malformed"
	OutcomeNoData      Outcome = "no_data"
)

// Attempt is one entry in the diagnostic trail of a resolution.
type Attempt struct {
	Method   Method        `json:"method"`
	Outcome  Outcome       `json:"outcome"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// ProbeReport is the advisory connectivity check run before any strategy.
type ProbeReport struct {
	Reachable bool          `json:"reachable"`
	Endpoint  string        `json:"endpoint,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// MethodProbe tags probe events in the attempt event stream.
// It never appears in RouteResult.AttemptedMethods.
const MethodProbe Method = "PROBE"

// AttemptEvent is the structured record emitted to attempt sinks.
type AttemptEvent struct {
	RequestID  string
	Method     Method
	Outcome    Outcome
	Reason     string
	Duration   time.Duration
	OccurredAt time.Time
}
