package core

// Reason is the machine-readable outcome code of a run.
type Reason string

const (
	ReasonSuccess           Reason = "SUCCESS"
	ReasonNoGoals           Reason = "NO_GOALS"
	ReasonGoalsNotLit       Reason = "GOALS_NOT_LIT"
	ReasonTimeLimitExceeded Reason = "TIME_LIMIT_EXCEEDED"
)

// Verdict is the pass/fail record consumed by callers.
type Verdict struct {
	Success bool   `json:"success"`
	Reason  Reason `json:"reason"`
}

// State is the execution engine's state.
type State uint8

const (
	StateRunning State = iota
	StateSucceeded
	StateExhausted
	StateTimedOut
	// StateNoGoals marks a level rejected before any instruction ran.
	StateNoGoals
)

// String returns the string representation of a state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateSucceeded:
		return "Succeeded"
	case StateExhausted:
		return "Exhausted"
	case StateTimedOut:
		return "TimedOut"
	case StateNoGoals:
		return "NoGoals"
	default:
		return "Unknown"
	}
}

// Terminal reports whether execution has finished.
func (s State) Terminal() bool {
	return s != StateRunning
}

// Verdict maps a terminal state to its verdict. A running state has no verdict.
func (s State) Verdict() (Verdict, bool) {
	switch s {
	case StateSucceeded:
		return Verdict{Success: true, Reason: ReasonSuccess}, true
	case StateExhausted:
		return Verdict{Success: false, Reason: ReasonGoalsNotLit}, true
	case StateTimedOut:
		return Verdict{Success: false, Reason: ReasonTimeLimitExceeded}, true
	case StateNoGoals:
		return Verdict{Success: false, Reason: ReasonNoGoals}, true
	}
	return Verdict{}, false
}
