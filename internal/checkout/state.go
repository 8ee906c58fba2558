package checkout

// State tracks the composer through one checkout attempt.
type State string

const (
	StateIdle       State = "IDLE"
	StateCollecting State = "COLLECTING"
	StateValidating State = "VALIDATING"
	StateSubmitted  State = "SUBMITTED"
	StateRejected   State = "REJECTED"
)

// String representation (for logging)
func (s State) String() string {
	return string(s)
}
