// Package control is the playback facade: it wires the engine, the playback
// machine, progress, seek and visibility components to a Presenter, and
// exposes the user gestures of the control surface.
//
// Every method must be called on the timeline passed to New.
package control

import (
	"github.com/kplay-cli/kplay/clock"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/playback"
	"github.com/kplay-cli/kplay/player"
	"github.com/kplay-cli/kplay/progress"
	"github.com/kplay-cli/kplay/seek"
	"github.com/kplay-cli/kplay/visibility"
	"github.com/sirupsen/logrus"
)

// Controller connects one engine to one presenter.
type Controller struct {
	machine    *playback.Machine
	progress   *progress.Synchronizer
	seek       *seek.Coordinator
	visibility *visibility.Timer
	presenter  Presenter
	options    Options
	logger     *logrus.Entry

	buttons   Buttons
	sent      bool
	playing   bool
	buffering bool
	closed    bool

	speed  float64
	volume int
}

// New wires a controller. It fails only for an unknown seek strategy.
func New(timeline clock.Scheduler, engine player.Engine, presenter Presenter, options Options) (*Controller, error) {
	strategy, err := seek.StrategyByName(options.SeekStrategy)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		presenter: presenter,
		options:   options,
		logger:    log.For("control"),
	}

	c.machine = playback.New(engine,
		playback.WithLooping(options.Looping),
		playback.WithFormatHint(options.FormatHint),
	)
	c.progress = progress.New(timeline, c.machine, c.onSnapshot)
	c.visibility = visibility.New(timeline, c.machine, options.ShowTimeout, c.onVisibilityChanged)
	c.seek = seek.New(c.machine, c.progress, c.visibility,
		seek.WithStrategy(strategy),
		seek.WithIncrements(options.RewindIncrement.Milliseconds(), options.FastForwardIncrement.Milliseconds()),
		seek.WithDispatchHook(c.onSeekDispatched),
	)

	c.machine.Subscribe(c.onEvent)
	return c, nil
}

// Machine exposes the underlying playback machine for read access.
func (c *Controller) Machine() *playback.Machine {
	return c.machine
}

// Visible reports whether the control surface is shown.
func (c *Controller) Visible() bool {
	return c.visibility.Visible()
}

// Open sets locators as the playlist, prepares it and starts playback when autoplay is on.
func (c *Controller) Open(locators ...string) error {
	if c.closed {
		return playback.ErrPostReleaseUse
	}

	if err := c.machine.SetPlaylist(locators...); err != nil {
		return err
	}
	if err := c.machine.Prepare(); err != nil {
		return err
	}

	if c.options.Speed > 0 {
		if err := c.machine.SetSpeed(c.options.Speed); err != nil {
			return err
		}
	}
	if err := c.machine.SetVolume(c.options.Volume); err != nil {
		return err
	}

	start := c.machine.Pause
	if c.options.Autoplay {
		start = c.machine.Start
	}
	if err := start(); err != nil {
		return err
	}

	c.updateParameters()
	c.visibility.Show(true)
	return nil
}

// TogglePlay flips play and pause.
func (c *Controller) TogglePlay() error {
	if c.closed {
		return playback.ErrPostReleaseUse
	}
	defer c.visibility.Show(true)
	return c.machine.TogglePlay()
}

// Play starts or resumes playback.
func (c *Controller) Play() error {
	if c.closed {
		return playback.ErrPostReleaseUse
	}
	return c.machine.Start()
}

// Pause pauses playback.
func (c *Controller) Pause() error {
	if c.closed {
		return playback.ErrPostReleaseUse
	}
	return c.machine.Pause()
}

// Previous, Next, Rewind and FastForward are the navigation gestures.
func (c *Controller) Previous() {
	c.navigate(c.seek.Previous, c.buttons.Previous)
}

func (c *Controller) Next() {
	c.navigate(c.seek.Next, c.buttons.Next)
}

func (c *Controller) Rewind() {
	c.navigate(c.seek.Rewind, c.buttons.Rewind)
}

func (c *Controller) FastForward() {
	c.navigate(c.seek.FastForward, c.buttons.FastForward)
}

func (c *Controller) navigate(gesture func(), enabled bool) {
	if c.closed {
		return
	}

	c.visibility.Show(true)
	if !enabled {
		return
	}
	gesture()
}

// ChangeSpeed adds delta to the playback rate.
func (c *Controller) ChangeSpeed(delta float64) {
	if c.closed {
		return
	}

	c.visibility.Show(true)
	c.logErr(c.machine.SetSpeed(c.machine.Speed()+delta), "change speed")
}

// ResetSpeed restores normal speed.
func (c *Controller) ResetSpeed() {
	if c.closed {
		return
	}

	c.visibility.Show(true)
	c.logErr(c.machine.SetSpeed(player.DefaultSpeed), "reset speed")
}

// ChangeVolume adds delta percentage points to the volume.
func (c *Controller) ChangeVolume(delta int) {
	if c.closed {
		return
	}

	c.visibility.Show(true)
	c.logErr(c.machine.SetVolume(c.machine.Volume()+delta), "change volume")
}

func (c *Controller) logErr(err error, gesture string) {
	if err != nil {
		c.logger.WithError(err).Warn(gesture)
	}
}

// ScrubStart begins a drag on the scrub bar.
func (c *Controller) ScrubStart() {
	if c.closed || !c.buttons.Scrub {
		return
	}

	c.visibility.Show(true)
	c.seek.DragStart()
}

// ScrubMove moves the drag to a scrub bar value in [0, progress.Scale].
func (c *Controller) ScrubMove(value int) {
	if c.closed || !c.scrubbing() {
		return
	}

	position := progress.PositionValue(value, c.duration())
	c.seek.DragProgress(position)
	c.presenter.OnScrubPosition(position)
}

// ScrubEnd releases the drag at a scrub bar value, seeking once.
func (c *Controller) ScrubEnd(value int) {
	if c.closed || !c.scrubbing() {
		return
	}

	c.seek.DragEnd(progress.PositionValue(value, c.duration()))
}

// ScrubCancel abandons the drag without seeking.
func (c *Controller) ScrubCancel() {
	if c.closed || !c.scrubbing() {
		return
	}

	c.progress.CancelDrag()
	c.progress.Sync()
	c.visibility.HideAfterTimeout()
}

// Scrubbing reports whether a drag is in progress, and its bar value.
func (c *Controller) Scrubbing() (int, bool) {
	drag, ok := c.progress.Drag()
	if !ok {
		return 0, false
	}
	return progress.ProgressValue(drag.LastUserProgress, c.duration()), true
}

func (c *Controller) scrubbing() bool {
	_, ok := c.progress.Drag()
	return ok
}

// Tap toggles the control surface.
func (c *Controller) Tap() {
	if c.closed {
		return
	}
	c.visibility.Toggle()
}

// Touch reports user activity, showing the surface and restarting its timeout.
func (c *Controller) Touch() {
	if c.closed {
		return
	}
	c.visibility.Show(true)
}

// Stop stops playback, keeping the playlist.
func (c *Controller) Stop() error {
	if c.closed {
		return playback.ErrPostReleaseUse
	}
	return c.machine.Stop()
}

// Close releases the engine and cancels every pending timer.
func (c *Controller) Close() error {
	if c.closed {
		return playback.ErrPostReleaseUse
	}

	c.closed = true
	c.progress.CancelDrag()
	c.progress.Detach()
	c.visibility.Hold()
	return c.machine.Release()
}

func (c *Controller) duration() int64 {
	return max(0, c.machine.Duration())
}

func (c *Controller) onEvent(e playback.Event) {
	switch e.Kind {
	case playback.EventStateChanged:
		if e.EngineState != player.StateBuffering {
			c.setBuffering(false)
		}
		c.updatePlaying()
		c.updateButtons()
		c.progress.OnStateChanged()
		c.visibility.OnStateChanged()
	case playback.EventBufferingStart:
		c.setBuffering(true)
	case playback.EventBufferingEnd:
		c.setBuffering(false)
	case playback.EventTimelineChanged, playback.EventPositionDiscontinuity:
		c.updateButtons()
		c.progress.Sync()
	case playback.EventParametersChanged:
		c.updateParameters()
	case playback.EventCompletion:
		c.logger.Info("playback completed")
	case playback.EventPlaybackError:
		c.logger.WithError(e.Err).Error("playback failed")
		c.setBuffering(false)
		var cause error
		if e.Err != nil {
			cause = e.Err.Cause
		}
		c.presenter.OnError(errorCode(e.Err), cause)
		c.visibility.Show(true)
	}
}

func errorCode(err *playback.PlaybackError) int {
	if err == nil {
		return 0
	}
	return err.Code
}

func (c *Controller) onSnapshot(s progress.Snapshot) {
	c.presenter.OnProgress(s.Position, s.Buffered, s.Duration)
}

// onSeekDispatched shows the buffering indicator until the engine is ready.
func (c *Controller) onSeekDispatched(seek.Request) {
	c.setBuffering(true)
}

func (c *Controller) onVisibilityChanged(visible bool) {
	c.presenter.OnVisibilityChanged(visible)
	if !visible {
		c.progress.CancelDrag()
		c.progress.Detach()
		return
	}

	c.sent = false
	c.updateButtons()
	c.presenter.OnPlayingChanged(c.playing)
	c.progress.Attach()
}

func (c *Controller) setBuffering(buffering bool) {
	if c.buffering == buffering {
		return
	}
	c.buffering = buffering
	c.presenter.OnBufferingChanged(buffering)
}

func (c *Controller) updatePlaying() {
	playing := c.machine.PlayWhenReady() && c.machine.EngineState() != player.StateEnded
	if playing == c.playing {
		return
	}
	c.playing = playing
	c.presenter.OnPlayingChanged(playing)
}

func (c *Controller) updateParameters() {
	speed, volume := c.machine.Speed(), c.machine.Volume()
	if speed == c.speed && volume == c.volume {
		return
	}
	c.speed, c.volume = speed, volume
	c.presenter.OnParametersChanged(speed, volume)
}

func (c *Controller) updateButtons() {
	buttons := c.computeButtons()
	if c.sent && buttons == c.buttons {
		return
	}
	c.buttons, c.sent = buttons, true
	c.presenter.OnButtonsEnabled(buttons)
}

// computeButtons enables navigation from the current window of the timeline.
func (c *Controller) computeButtons() Buttons {
	timeline := c.machine.Timeline()
	index := c.machine.CurrentWindow()
	window, ok := timeline.Window(index)
	if c.machine.Released() || !ok {
		return Buttons{}
	}

	return Buttons{
		Previous:    index > 0 || window.Seekable || !window.Dynamic,
		Next:        index < len(timeline.Windows)-1 || window.Dynamic,
		Rewind:      c.options.RewindIncrement > 0 && window.Seekable,
		FastForward: c.options.FastForwardIncrement > 0 && window.Seekable,
		Scrub:       window.Seekable,
	}
}
