package services

import "water-route-service/internal/domain"

// state is a step of the resolution state machine.
//
//	probing -> genetic -> standard -> nearest -> local fallback -> failed
//	               \          \           \             \
//	                +----------+-----------+-------------+--> success
//
// The probe is advisory and always advances to the first strategy.
type state int

const (
	stateProbing state = iota
	stateAttemptGenetic
	stateAttemptStandard
	stateAttemptNearest
	stateLocalFallback
	stateSuccess
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateProbing:
		return "PROBING"
	case stateAttemptGenetic:
		return "ATTEMPT_GENETIC"
	case stateAttemptStandard:
		return "ATTEMPT_STANDARD"
	case stateAttemptNearest:
		return "ATTEMPT_NEAREST"
	case stateLocalFallback:
		return "LOCAL_FALLBACK"
	case stateSuccess:
		return "SUCCESS"
	case stateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

func (s state) terminal() bool { return s == stateSuccess || s == stateFailed }

// nextState is the transition function. succeeded is the outcome of the step
// just run in s; it is ignored for the probe.
func nextState(s state, succeeded bool) state {
	switch s {
	case stateProbing:
		return stateAttemptGenetic
	case stateAttemptGenetic, stateAttemptStandard, stateAttemptNearest, stateLocalFallback:
		if succeeded {
			return stateSuccess
		}
		if s == stateLocalFallback {
			return stateFailed
		}
		return s + 1
	default:
		return s
	}
}

// methodOf maps an attempt state to the method it runs.
func methodOf(s state) (domain.Method, bool) {
	switch s {
	case stateAttemptGenetic:
		return domain.MethodGenetic, true
	case stateAttemptStandard:
		return domain.MethodStandard, true
	case stateAttemptNearest:
		return domain.MethodNearestLookup, true
	case stateLocalFallback:
		return domain.MethodLocalFallback, true
	default:
		return "", false
	}
}
