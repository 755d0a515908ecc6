// Package playertest provides a scripted player.Engine for timeline tests.
package playertest

import (
	"github.com/kplay-cli/kplay/player"
	"github.com/kplay-cli/kplay/source"
)

// Seek records one SeekTo call.
type Seek struct {
	Window   int
	Position int64
}

// Engine is a fake engine. Tests set its fields directly and call Emit or
// Report to simulate engine callbacks.
type Engine struct {
	Position int64
	Buffered int64
	Length   int64
	State    player.State
	Play     bool
	Window   int
	Windows  []player.Window
	Percent  int
	Rate     float64
	Level    int

	// PrepareError, when set, is reported from inside Prepare.
	PrepareError *player.Error

	Seeks     []Seek
	Prepared  [][]*source.Source
	Stops     int
	Released  bool
	PlayCalls []bool

	subscribers player.Subscribers
}

// New returns an idle engine with play-when-ready set.
func New() *Engine {
	return &Engine{
		State:  player.StateIdle,
		Play:   true,
		Length: player.TimeUnset,
		Rate:   player.DefaultSpeed,
		Level:  player.MaxVolume,
	}
}

func (e *Engine) CurrentPosition() int64 {
	return e.Position
}

func (e *Engine) BufferedPosition() int64 {
	return e.Buffered
}

func (e *Engine) Duration() int64 {
	return e.Length
}

func (e *Engine) BufferedPercentage() int {
	return e.Percent
}

func (e *Engine) PlaybackState() player.State {
	return e.State
}

func (e *Engine) PlayWhenReady() bool {
	return e.Play
}

func (e *Engine) CurrentWindow() int {
	return e.Window
}

func (e *Engine) Timeline() player.Timeline {
	return player.Timeline{Windows: e.Windows}
}

func (e *Engine) Subscribe(fn func(player.Event)) func() {
	return e.subscribers.Add(fn)
}

func (e *Engine) Speed() float64 {
	return e.Rate
}

func (e *Engine) SetSpeed(speed float64) {
	if speed = player.ClampSpeed(speed); speed != e.Rate {
		e.Rate = speed
		e.parametersChanged()
	}
}

func (e *Engine) Volume() int {
	return e.Level
}

func (e *Engine) SetVolume(volume int) {
	if volume = player.ClampVolume(volume); volume != e.Level {
		e.Level = volume
		e.parametersChanged()
	}
}

func (e *Engine) parametersChanged() {
	e.Emit(player.Event{Kind: player.EventParametersChanged, Speed: e.Rate, Volume: e.Level})
}

func (e *Engine) SetPlayWhenReady(play bool) {
	e.PlayCalls = append(e.PlayCalls, play)
	if e.Play == play {
		return
	}
	e.Play = play
	e.Report(e.State)
}

func (e *Engine) SeekTo(window int, position int64) {
	e.Seeks = append(e.Seeks, Seek{Window: window, Position: position})
}

func (e *Engine) Prepare(sources []*source.Source) {
	e.Prepared = append(e.Prepared, sources)
	e.Windows = make([]player.Window, len(sources))
	for i := range e.Windows {
		e.Windows[i] = player.Window{DurationMs: player.TimeUnset}
	}
	if e.PrepareError != nil {
		e.Emit(player.Event{Kind: player.EventError, Err: e.PrepareError})
	}
}

func (e *Engine) Stop() {
	e.Stops++
	e.State = player.StateIdle
	e.Windows = nil
}

func (e *Engine) Release() {
	e.Released = true
	e.subscribers.Clear()
}

// Emit delivers ev to subscribers.
func (e *Engine) Emit(ev player.Event) {
	e.subscribers.Emit(ev)
}

// Report moves the engine to state and emits the state change.
func (e *Engine) Report(state player.State) {
	e.State = state
	e.Emit(player.Event{Kind: player.EventStateChanged, State: state, PlayWhenReady: e.Play})
}

// Fail emits an engine error.
func (e *Engine) Fail(code int, reason string) {
	e.Emit(player.Event{Kind: player.EventError, Err: &player.Error{Code: code, Reason: reason}})
}

// LastSeek returns the most recent seek.
func (e *Engine) LastSeek() (Seek, bool) {
	if len(e.Seeks) == 0 {
		return Seek{}, false
	}
	return e.Seeks[len(e.Seeks)-1], true
}

// Subscribers returns the number of registered subscribers.
func (e *Engine) Subscribers() int {
	return e.subscribers.Len()
}

var _ player.Engine = (*Engine)(nil)
