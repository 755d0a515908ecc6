// Package playback implements the playback lifecycle state machine. It owns
// the engine handle, turns engine state reports into debounced lifecycle
// events and sequences user commands onto the engine.
//
// A Machine is not safe for concurrent use; all calls and engine callbacks
// must happen on the same timeline.
package playback

import (
	"fmt"

	"github.com/kplay-cli/kplay/format"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/player"
	"github.com/kplay-cli/kplay/source"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Machine is the playback state machine.
type Machine struct {
	engine  player.Engine
	factory *source.Factory
	logger  *logrus.Entry

	state   State
	flags   PendingFlags
	sources []*source.Source
	looping bool
	hint    string

	width, height int

	dispatcher  dispatcher
	unsubscribe func()
	released    bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithLooping restarts the current window instead of completing.
func WithLooping(looping bool) Option {
	return func(m *Machine) {
		m.looping = looping
	}
}

// WithFormatHint forces the content type of every source, e.g. "m3u8".
func WithFormatHint(hint string) Option {
	return func(m *Machine) {
		m.hint = hint
	}
}

// WithFactory replaces the default source factory.
func WithFactory(factory *source.Factory) Option {
	return func(m *Machine) {
		m.factory = factory
	}
}

// New creates an idle machine driving engine.
func New(engine player.Engine, options ...Option) *Machine {
	m := &Machine{
		engine:  engine,
		factory: source.NewFactory(),
		logger:  log.For("playback"),
		state:   Idle,
	}

	for _, option := range options {
		option(m)
	}

	m.unsubscribe = engine.Subscribe(m.onEngineEvent)
	return m
}

// Subscribe registers fn for machine events and returns a function removing it.
func (m *Machine) Subscribe(fn func(Event)) func() {
	return m.dispatcher.add(fn)
}

// SetSource sets a single-window source.
func (m *Machine) SetSource(locator string) error {
	return m.SetPlaylist(locator)
}

// SetPlaylist sets one timeline window per locator. Allowed from Idle,
// SourceSet, Ended and Error.
func (m *Machine) SetPlaylist(locators ...string) error {
	if m.released {
		return ErrPostReleaseUse
	}
	if !m.state.acceptsSource() {
		return illegal("set source", m.state)
	}
	if len(locators) == 0 {
		return fmt.Errorf("%w: no locators", ErrInvalidSource)
	}

	sources := make([]*source.Source, 0, len(locators))
	for _, locator := range locators {
		src, err := m.factory.Resolve(locator, m.hint)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidSource, locator, err)
		}
		sources = append(sources, src)
	}

	if m.state == Ended || m.state == Error {
		m.engine.Stop()
	}

	m.sources = sources
	m.flags = PendingFlags{}
	m.transition(SourceSet)
	return nil
}

// Prepare asks the engine to load the sources. Allowed only from SourceSet.
func (m *Machine) Prepare() error {
	if m.released {
		return ErrPostReleaseUse
	}
	if m.state != SourceSet {
		return illegal("prepare", m.state)
	}

	m.flags.Preparing = true
	m.transition(Preparing)
	m.engine.Prepare(m.sources)
	return nil
}

// Start resumes playback, restarting from the beginning once ended. A failed
// source must be set again first.
func (m *Machine) Start() error {
	if m.released {
		return ErrPostReleaseUse
	}
	if m.state == Error {
		return illegal("start", m.state)
	}

	if m.engine.PlaybackState() == player.StateEnded {
		return m.Seek(0)
	}

	m.engine.SetPlayWhenReady(true)
	return nil
}

// Pause suspends playback.
func (m *Machine) Pause() error {
	if m.released {
		return ErrPostReleaseUse
	}

	m.engine.SetPlayWhenReady(false)
	return nil
}

// TogglePlay flips between Start and Pause.
func (m *Machine) TogglePlay() error {
	if m.released {
		return ErrPostReleaseUse
	}

	if m.engine.PlayWhenReady() && m.engine.PlaybackState() != player.StateEnded {
		return m.Pause()
	}
	return m.Start()
}

// Seek moves to position in the current window.
func (m *Machine) Seek(position int64) error {
	if m.released {
		return ErrPostReleaseUse
	}
	return m.SeekTo(m.engine.CurrentWindow(), position)
}

// SeekTo moves to position in window. player.TimeUnset selects the window's default position.
func (m *Machine) SeekTo(window int, position int64) error {
	if m.released {
		return ErrPostReleaseUse
	}
	if !m.state.seekable() {
		return illegal("seek", m.state)
	}

	m.flags.Seeking = true
	m.logger.WithFields(logrus.Fields{"window": window, "position": position}).Debug("seek")
	m.engine.SeekTo(window, position)
	return nil
}

// Stop halts the engine and clears pending flags. A set source stays set and
// can be prepared again.
func (m *Machine) Stop() error {
	if m.released {
		return ErrPostReleaseUse
	}

	m.engine.Stop()
	m.flags = PendingFlags{}
	m.transition(lo.Ternary(len(m.sources) > 0, SourceSet, Idle))
	return nil
}

// Reset stops and forgets the source.
func (m *Machine) Reset() error {
	if m.released {
		return ErrPostReleaseUse
	}

	m.engine.Stop()
	m.flags = PendingFlags{}
	m.sources = nil
	m.width, m.height = 0, 0
	m.transition(Idle)
	return nil
}

// Release detaches from the engine and releases it. Every later call fails
// with ErrPostReleaseUse.
func (m *Machine) Release() error {
	if m.released {
		return ErrPostReleaseUse
	}

	m.released = true
	m.unsubscribe()
	m.engine.Release()
	m.dispatcher = dispatcher{}
	m.flags = PendingFlags{}
	m.logger.Debug("released")
	return nil
}

// SetLooping changes the looping mode.
func (m *Machine) SetLooping(looping bool) {
	m.looping = looping
}

// SetSpeed changes the playback rate, clamped to [player.MinSpeed, player.MaxSpeed].
func (m *Machine) SetSpeed(speed float64) error {
	if m.released {
		return ErrPostReleaseUse
	}

	m.logger.WithField("speed", speed).Debug("set speed")
	m.engine.SetSpeed(speed)
	return nil
}

// SetVolume changes the output volume, clamped to [0, player.MaxVolume].
func (m *Machine) SetVolume(volume int) error {
	if m.released {
		return ErrPostReleaseUse
	}

	m.logger.WithField("volume", volume).Debug("set volume")
	m.engine.SetVolume(volume)
	return nil
}

// State returns the lifecycle state.
func (m *Machine) State() State { return m.state }

// Flags returns the pending sub-operations.
func (m *Machine) Flags() PendingFlags { return m.flags }

// Looping reports whether ended windows restart.
func (m *Machine) Looping() bool { return m.looping }

// Released reports whether Release was called.
func (m *Machine) Released() bool { return m.released }

// VideoSize returns the last reported video dimensions.
func (m *Machine) VideoSize() (width, height int) { return m.width, m.height }

// The engine accessors below report an idle, empty engine once released.

// EngineState returns the state last reported by the engine.
func (m *Machine) EngineState() player.State {
	if m.released {
		return player.StateIdle
	}
	return m.engine.PlaybackState()
}

// PlayWhenReady reports whether playback proceeds once the engine is ready.
func (m *Machine) PlayWhenReady() bool {
	return !m.released && m.engine.PlayWhenReady()
}

// CurrentPosition returns the position in the current window, in milliseconds.
func (m *Machine) CurrentPosition() int64 {
	if m.released {
		return 0
	}
	return m.engine.CurrentPosition()
}

// BufferedPosition returns how far the current window is buffered, in milliseconds.
func (m *Machine) BufferedPosition() int64 {
	if m.released {
		return 0
	}
	return m.engine.BufferedPosition()
}

// Duration returns the current window duration in milliseconds, or player.TimeUnset.
func (m *Machine) Duration() int64 {
	if m.released {
		return player.TimeUnset
	}
	return m.engine.Duration()
}

// BufferedPercentage returns the buffered share of the duration, 0 to 100.
func (m *Machine) BufferedPercentage() int {
	if m.released {
		return 0
	}
	return m.engine.BufferedPercentage()
}

// CurrentWindow returns the index of the window being played.
func (m *Machine) CurrentWindow() int {
	if m.released {
		return 0
	}
	return m.engine.CurrentWindow()
}

// Timeline returns the engine timeline.
func (m *Machine) Timeline() player.Timeline {
	if m.released {
		return player.Timeline{}
	}
	return m.engine.Timeline()
}

// Speed returns the playback rate.
func (m *Machine) Speed() float64 {
	if m.released {
		return player.DefaultSpeed
	}
	return m.engine.Speed()
}

// Volume returns the output volume.
func (m *Machine) Volume() int {
	if m.released {
		return 0
	}
	return m.engine.Volume()
}

// Sources returns the sources set on the machine.
func (m *Machine) Sources() []*source.Source {
	return m.sources
}

// Kind returns the pipeline kind of the current window.
func (m *Machine) Kind() (format.Kind, bool) {
	if len(m.sources) == 0 {
		return 0, false
	}
	index := min(max(0, m.CurrentWindow()), len(m.sources)-1)
	return m.sources[index].Kind, true
}

// Playing reports whether media is actually advancing.
func (m *Machine) Playing() bool {
	return m.EngineState() == player.StateReady && m.PlayWhenReady()
}

// Playable reports whether the engine has media loaded, that is neither idle
// nor buffering.
func (m *Machine) Playable() bool {
	switch m.EngineState() {
	case player.StateReady, player.StateEnded:
		return m.state != Error
	default:
		return false
	}
}

func (m *Machine) onEngineEvent(e player.Event) {
	if m.released {
		return
	}

	switch e.Kind {
	case player.EventStateChanged:
		m.onEngineState(e.State, e.PlayWhenReady)
	case player.EventPositionDiscontinuity:
		m.emit(Event{Kind: EventPositionDiscontinuity})
	case player.EventTimelineChanged:
		m.emit(Event{Kind: EventTimelineChanged})
	case player.EventVideoSizeChanged:
		m.width, m.height = e.Width, e.Height
		m.emit(Event{Kind: EventVideoSizeChanged, Width: e.Width, Height: e.Height})
	case player.EventParametersChanged:
		m.emit(Event{Kind: EventParametersChanged, Speed: e.Speed, Volume: e.Volume})
	case player.EventError:
		m.onEngineError(e.Err)
	}
}

// onEngineState settles pending episodes in a fixed order: buffering end,
// prepared, seek complete, then the state specific handling.
func (m *Machine) onEngineState(s player.State, playWhenReady bool) {
	if m.state == Error {
		return
	}

	settled := s == player.StateReady || s == player.StateEnded
	if m.flags.Buffering && settled {
		m.flags.Buffering = false
		m.emit(Event{Kind: EventBufferingEnd})
	}

	if m.flags.Preparing && s == player.StateReady {
		m.flags.Preparing = false
		m.emit(Event{Kind: EventPrepared})
	}

	if m.flags.Seeking && s == player.StateReady {
		m.flags.Seeking = false
		m.emit(Event{Kind: EventSeekComplete})
	}

	switch s {
	case player.StateBuffering:
		if !m.flags.Buffering {
			m.flags.Buffering = true
			m.emit(Event{Kind: EventBufferingStart})
		}
	case player.StateReady:
		m.flags.CompletionHandled = false
	case player.StateEnded:
		if !m.flags.CompletionHandled {
			m.flags.CompletionHandled = true
			if m.looping {
				// restart without a seek episode
				m.engine.SeekTo(m.engine.CurrentWindow(), 0)
			} else {
				m.emit(Event{Kind: EventCompletion})
			}
		}
	}

	m.state = m.stateFor(s)
	m.emit(Event{
		Kind:          EventStateChanged,
		State:         m.state,
		EngineState:   s,
		PlayWhenReady: playWhenReady,
	})
}

func (m *Machine) stateFor(s player.State) State {
	switch {
	case m.flags.Preparing && s != player.StateEnded:
		return Preparing
	case s == player.StateBuffering:
		return Buffering
	case s == player.StateReady:
		return Ready
	case s == player.StateEnded:
		return Ended
	case len(m.sources) > 0:
		return SourceSet
	default:
		return Idle
	}
}

func (m *Machine) onEngineError(cause *player.Error) {
	perr := &PlaybackError{}
	if cause != nil {
		perr.Code, perr.Cause = cause.Code, cause
	}

	m.logger.WithError(perr).Warn("engine failure")
	m.flags = PendingFlags{}
	m.state = Error
	m.emit(Event{Kind: EventPlaybackError, Err: perr})
	m.emit(m.stateEvent())
}

func (m *Machine) transition(s State) {
	if m.state == s {
		return
	}

	m.logger.WithFields(logrus.Fields{"from": m.state, "to": s}).Debug("transition")
	m.state = s
	m.emit(m.stateEvent())
}

func (m *Machine) stateEvent() Event {
	return Event{
		Kind:          EventStateChanged,
		State:         m.state,
		EngineState:   m.engine.PlaybackState(),
		PlayWhenReady: m.engine.PlayWhenReady(),
	}
}

func (m *Machine) emit(e Event) {
	m.dispatcher.emit(e)
}
