package pipeline

// State is the phase a run is in. Runs only move forward: any failure in
// Validating, BackingUp, Scanning, Analyzing, Mutating, or Verifying lands in
// StateFailed and the run stops there. There is no retry and no partial
// continuation; recovery from a failed mutation is the backup ref.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateBackingUp
	StateScanning
	StateAnalyzing
	// StatePreviewing is terminal: a dry run ends here without mutating.
	StatePreviewing
	StateMutating
	StateVerifying
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateBackingUp:
		return "backing_up"
	case StateScanning:
		return "scanning"
	case StateAnalyzing:
		return "analyzing"
	case StatePreviewing:
		return "previewing"
	case StateMutating:
		return "mutating"
	case StateVerifying:
		return "verifying"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
