package triage

// State is a step of the sweep-then-poll lifecycle.
type State int

const (
	StateStartup State = iota
	StateBulkSweep
	StatePollIdle
	StatePollActive
	StateReconnectBackoff
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateStartup:
		return "STARTUP"
	case StateBulkSweep:
		return "BULK_SWEEP"
	case StatePollIdle:
		return "POLL_IDLE"
	case StatePollActive:
		return "POLL_ACTIVE"
	case StateReconnectBackoff:
		return "RECONNECT_BACKOFF"
	case StateShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}
