package stream

// State is a position in the stream lifecycle.
// A stream starts Opening and ends in exactly one of Completed, Failed or Canceled.
type State int32

// Stream states.
const (
	StateOpening State = iota
	StateStreaming
	StateCompleted
	StateFailed
	StateCanceled
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions can happen from s.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCanceled
}
