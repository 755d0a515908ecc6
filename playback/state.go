package playback

// State is the lifecycle state of a Machine. Exactly one is active.
type State int

const (
	Idle State = iota
	SourceSet
	Preparing
	Buffering
	Ready
	Ended
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SourceSet:
		return "source-set"
	case Preparing:
		return "preparing"
	case Buffering:
		return "buffering"
	case Ready:
		return "ready"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// PendingFlags track episodes that are waiting for an engine signal. Several
// may be set at once; each is cleared by its own signal.
type PendingFlags struct {
	Preparing         bool
	Seeking           bool
	Buffering         bool
	CompletionHandled bool
}

// acceptsSource reports whether a new source may be set in state s.
func (s State) acceptsSource() bool {
	switch s {
	case Idle, SourceSet, Ended, Error:
		return true
	default:
		return false
	}
}

// seekable reports whether seeks are forwarded in state s.
func (s State) seekable() bool {
	switch s {
	case Preparing, Buffering, Ready, Ended:
		return true
	default:
		return false
	}
}
