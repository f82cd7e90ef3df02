package monitor

import "github.com/slok/plotmon/internal/model"

// State is a monitoring session state.
type State int

const (
	// StatePolling is the regular state, the last poll succeeded.
	StatePolling State = iota
	// StateRetrying means the last polls failed with recoverable errors.
	StateRetrying
	// StateCompleted means the plot is complete, terminal.
	StateCompleted
	// StateFatalStop means the retry budget was exhausted or an unexpected error happened, terminal.
	StateFatalStop
	// StateStopped means the session was canceled, terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateRetrying:
		return "retrying"
	case StateCompleted:
		return "completed"
	case StateFatalStop:
		return "fatal-stop"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal returns true when no more polls should happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFatalStop || s == StateStopped
}

// machine holds the poll loop transitions, it has no timers so it can be driven step by step.
type machine struct {
	state      State
	retries    int
	maxRetries int
}

func newMachine(maxRetries int) *machine {
	return &machine{state: StatePolling, maxRetries: maxRetries}
}

// next moves the machine with the result of a poll. Terminal states don't move.
func (m *machine) next(snapshot *model.Snapshot, err error) State {
	if m.state.Terminal() {
		return m.state
	}

	switch {
	case err == nil && snapshot.Done():
		m.state = StateCompleted
	case err == nil:
		m.retries = 0
		m.state = StatePolling
	case model.IsRecoverable(err):
		m.retries++
		m.state = StateRetrying
		if m.retries >= m.maxRetries {
			m.state = StateFatalStop
		}
	default:
		m.state = StateFatalStop
	}

	return m.state
}
