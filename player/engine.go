// Package player defines the media engine port the playback core drives, and
// its mpv implementation speaking JSON-IPC.
package player

import (
	"fmt"
	"math"

	"github.com/kplay-cli/kplay/source"
	"github.com/kplay-cli/kplay/util"
)

// TimeUnset marks an unknown position or duration.
const TimeUnset int64 = math.MinInt64 + 1

// Playback parameter bounds.
const (
	DefaultSpeed = 1.0
	MinSpeed     = 0.25
	MaxSpeed     = 4.0
	MaxVolume    = 100
)

// ClampSpeed limits speed to [MinSpeed, MaxSpeed].
func ClampSpeed(speed float64) float64 {
	return util.Clamp(speed, MinSpeed, MaxSpeed)
}

// ClampVolume limits volume to [0, MaxVolume].
func ClampVolume(volume int) int {
	return util.Clamp(volume, 0, MaxVolume)
}

// State is the playback state reported by an engine.
type State int

const (
	StateIdle State = iota + 1
	StateBuffering
	StateReady
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffering:
		return "buffering"
	case StateReady:
		return "ready"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Window is one entry of the engine timeline.
type Window struct {
	// DurationMs is TimeUnset while unknown.
	DurationMs int64
	Seekable   bool
	// Dynamic windows may still change, such as live streams.
	Dynamic bool
}

// Timeline is the ordered list of windows the engine is playing.
type Timeline struct {
	Windows []Window
}

// Empty reports whether the timeline has no windows.
func (t Timeline) Empty() bool {
	return len(t.Windows) == 0
}

// Window returns the window at index.
func (t Timeline) Window(index int) (Window, bool) {
	if index < 0 || index >= len(t.Windows) {
		return Window{}, false
	}
	return t.Windows[index], true
}

// EventKind enumerates engine notifications.
type EventKind int

const (
	EventStateChanged EventKind = iota + 1
	EventPositionDiscontinuity
	EventTimelineChanged
	EventError
	EventVideoSizeChanged
	EventParametersChanged
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state-changed"
	case EventPositionDiscontinuity:
		return "position-discontinuity"
	case EventTimelineChanged:
		return "timeline-changed"
	case EventError:
		return "error"
	case EventVideoSizeChanged:
		return "video-size-changed"
	case EventParametersChanged:
		return "parameters-changed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers on the playback timeline.
type Event struct {
	Kind EventKind

	// EventStateChanged
	State         State
	PlayWhenReady bool

	// EventVideoSizeChanged
	Width, Height int

	// EventParametersChanged
	Speed  float64
	Volume int

	// EventError
	Err *Error
}

// Error codes reported by engines.
const (
	CodeSource  = 1
	CodeProcess = 2
	CodeIPC     = 3
)

// Error is an engine failure.
type Error struct {
	Code   int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Reason)
}

// Engine is the media engine the playback core drives.
//
// All methods must be called on the playback timeline, and subscribers are
// invoked on it too. Implementations never block on I/O inside these calls.
type Engine interface {
	CurrentPosition() int64
	BufferedPosition() int64
	// Duration returns TimeUnset while unknown.
	Duration() int64
	BufferedPercentage() int
	PlaybackState() State
	PlayWhenReady() bool
	SetPlayWhenReady(play bool)
	// SeekTo moves to position in window. TimeUnset selects the window's default position.
	SeekTo(window int, position int64)
	Prepare(sources []*source.Source)
	Stop()
	Release()
	CurrentWindow() int
	Timeline() Timeline
	// Speed is the playback rate, 1 being normal.
	Speed() float64
	// SetSpeed clamps speed with ClampSpeed.
	SetSpeed(speed float64)
	// Volume is a percentage in [0, MaxVolume].
	Volume() int
	SetVolume(volume int)
	// Subscribe registers fn and returns a function removing it.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Subscribers is an ordered subscriber list usable by Engine implementations.
type Subscribers struct {
	next int
	fns  []subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

// Add registers fn.
func (s *Subscribers) Add(fn func(Event)) func() {
	s.next++
	id := s.next
	s.fns = append(s.fns, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.fns {
			if sub.id == id {
				s.fns = append(s.fns[:i:i], s.fns[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers e to every subscriber in registration order.
func (s *Subscribers) Emit(e Event) {
	for _, sub := range append([]subscriber(nil), s.fns...) {
		sub.fn(e)
	}
}

// Clear drops all subscribers.
func (s *Subscribers) Clear() {
	s.fns = nil
}

// Len returns the number of subscribers.
func (s *Subscribers) Len() int {
	return len(s.fns)
}
