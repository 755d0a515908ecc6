package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSource is returned when a locator cannot be turned into a source.
	ErrInvalidSource = errors.New("invalid source")
	// ErrIllegalState is returned for operations not allowed in the current state.
	ErrIllegalState = errors.New("illegal state")
	// ErrEngineFailure is wrapped by every PlaybackError.
	ErrEngineFailure = errors.New("engine failure")
	// ErrPostReleaseUse is returned by every operation after Release.
	ErrPostReleaseUse = errors.New("machine released")
)

// PlaybackError is an engine failure delivered through EventPlaybackError.
type PlaybackError struct {
	Code  int
	Cause error
}

func (e *PlaybackError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("playback error %d", e.Code)
	}
	return fmt.Sprintf("playback error %d: %v", e.Code, e.Cause)
}

// Unwrap exposes both ErrEngineFailure and the cause.
func (e *PlaybackError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrEngineFailure}
	}
	return []error{ErrEngineFailure, e.Cause}
}

func illegal(op string, s State) error {
	return fmt.Errorf("%w: %s in %s", ErrIllegalState, op, s)
}
