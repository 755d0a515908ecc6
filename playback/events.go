package playback

import "github.com/kplay-cli/kplay/player"

// EventKind enumerates machine notifications.
type EventKind int

const (
	EventPrepared EventKind = iota + 1
	EventBufferingStart
	EventBufferingEnd
	EventSeekComplete
	EventCompletion
	EventPlaybackError
	EventStateChanged
	EventPositionDiscontinuity
	EventTimelineChanged
	EventVideoSizeChanged
	EventParametersChanged
)

func (k EventKind) String() string {
	switch k {
	case EventPrepared:
		return "prepared"
	case EventBufferingStart:
		return "buffering-start"
	case EventBufferingEnd:
		return "buffering-end"
	case EventSeekComplete:
		return "seek-complete"
	case EventCompletion:
		return "completion"
	case EventPlaybackError:
		return "playback-error"
	case EventStateChanged:
		return "state-changed"
	case EventPositionDiscontinuity:
		return "position-discontinuity"
	case EventTimelineChanged:
		return "timeline-changed"
	case EventVideoSizeChanged:
		return "video-size-changed"
	case EventParametersChanged:
		return "parameters-changed"
	default:
		return "unknown"
	}
}

// Event is a machine notification, passed by value.
type Event struct {
	Kind EventKind

	// EventStateChanged
	State         State
	EngineState   player.State
	PlayWhenReady bool

	// EventVideoSizeChanged
	Width, Height int

	// EventParametersChanged
	Speed  float64
	Volume int

	// EventPlaybackError
	Err *PlaybackError
}

type listener struct {
	id int
	fn func(Event)
}

// dispatcher delivers events to listeners in registration order.
type dispatcher struct {
	next      int
	listeners []listener
}

func (d *dispatcher) add(fn func(Event)) func() {
	d.next++
	id := d.next
	d.listeners = append(d.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range d.listeners {
			if l.id == id {
				d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

func (d *dispatcher) emit(e Event) {
	for _, l := range append([]listener(nil), d.listeners...) {
		l.fn(e)
	}
}
