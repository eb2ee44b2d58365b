package availability

import "sync"

// State is what the UI observes while an availability check is in flight.
type State string

const (
	StateIdle        State = "idle"
	StateChecking    State = "checking"
	StateAvailable   State = "available"
	StateUnavailable State = "unavailable"
	StateError       State = "error"
)

// Tracker serializes concurrent availability checks: every Begin hands out a
// monotonically increasing token and only the completion carrying the current
// token may move the state. A stale completion is dropped, which gives
// "last write wins" without aborting in-flight calls.
type Tracker struct {
	mu    sync.Mutex
	seq   uint64
	state State
}

func NewTracker() *Tracker {
	return &Tracker{state: StateIdle}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Begin marks a new check and returns its token. Callers invoke it once a
// complete date range and at least one dress are present.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.state = StateChecking
	return t.seq
}

// Resolve applies a completed check. Returns the state after the call; a
// stale token leaves the state untouched.
func (t *Tracker) Resolve(token uint64, result Result, err error) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.seq {
		return t.state
	}
	switch {
	case err != nil:
		t.state = StateError
	case result.AllAvailable():
		t.state = StateAvailable
	default:
		t.state = StateUnavailable
	}
	return t.state
}

// Reset returns to idle, invalidating any in-flight check.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.state = StateIdle
}
