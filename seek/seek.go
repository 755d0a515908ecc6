// Package seek turns navigation and scrub gestures into engine seeks.
package seek

import (
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/player"
	"github.com/sirupsen/logrus"
)

// maxPositionForPrevious is how far into a window Previous still moves to the
// previous window instead of restarting the current one.
const maxPositionForPrevious = 3000

// Request is a seek target. Position may be player.TimeUnset.
type Request struct {
	Window   int
	Position int64
}

// Target is what seeks are dispatched to.
type Target interface {
	SeekTo(window int, position int64) error
	CurrentWindow() int
	CurrentPosition() int64
	Duration() int64
	Timeline() player.Timeline
}

// Progress is the progress display driven during drags.
type Progress interface {
	Sync()
	BeginDrag()
	UpdateDrag(position int64)
	EndDrag() (int64, bool)
}

// AutoHide is the control surface timeout.
type AutoHide interface {
	Hold()
	HideAfterTimeout()
}

// Coordinator sequences seeks. Increments are in milliseconds; zero or
// negative disables the gesture.
type Coordinator struct {
	target   Target
	progress Progress
	autoHide AutoHide
	logger   *logrus.Entry

	strategy    Strategy
	rewind      int64
	fastForward int64
	dispatched  func(Request)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStrategy replaces the Forward strategy.
func WithStrategy(strategy Strategy) Option {
	return func(c *Coordinator) {
		if strategy != nil {
			c.strategy = strategy
		}
	}
}

// WithIncrements sets the rewind and fast forward steps.
func WithIncrements(rewind, fastForward int64) Option {
	return func(c *Coordinator) {
		c.rewind, c.fastForward = rewind, fastForward
	}
}

// WithDispatchHook is called after every dispatched request.
func WithDispatchHook(fn func(Request)) Option {
	return func(c *Coordinator) {
		c.dispatched = fn
	}
}

// New creates a coordinator.
func New(target Target, progress Progress, autoHide AutoHide, options ...Option) *Coordinator {
	c := &Coordinator{
		target:   target,
		progress: progress,
		autoHide: autoHide,
		logger:   log.For("seek"),
		strategy: Forward,
	}

	for _, option := range options {
		option(c)
	}
	return c
}

// RewindIncrement returns the rewind step in milliseconds.
func (c *Coordinator) RewindIncrement() int64 {
	return c.rewind
}

// FastForwardIncrement returns the fast forward step in milliseconds.
func (c *Coordinator) FastForwardIncrement() int64 {
	return c.fastForward
}

// RequestSeek dispatches a seek through the strategy, re-syncing progress when
// it was not dispatched.
func (c *Coordinator) RequestSeek(window int, position int64) bool {
	req := Request{Window: window, Position: position}
	if !c.strategy(c.target, req) {
		c.logger.WithFields(logrus.Fields{"window": window, "position": position}).Debug("seek not dispatched")
		c.progress.Sync()
		return false
	}

	if c.dispatched != nil {
		c.dispatched(req)
	}
	return true
}

// Previous moves to the previous window near the start of the current one, or
// restarts the current window otherwise.
func (c *Coordinator) Previous() {
	timeline := c.target.Timeline()
	if timeline.Empty() {
		return
	}

	index := c.target.CurrentWindow()
	window, _ := timeline.Window(index)
	if index > 0 && (c.target.CurrentPosition() <= maxPositionForPrevious || (window.Dynamic && !window.Seekable)) {
		c.RequestSeek(index-1, player.TimeUnset)
		return
	}
	c.RequestSeek(index, 0)
}

// Next moves to the next window, or to the live edge of a dynamic last window.
func (c *Coordinator) Next() {
	timeline := c.target.Timeline()
	if timeline.Empty() {
		return
	}

	index := c.target.CurrentWindow()
	if index+1 < len(timeline.Windows) {
		c.RequestSeek(index+1, player.TimeUnset)
		return
	}

	if window, ok := timeline.Window(index); ok && window.Dynamic {
		c.RequestSeek(index, player.TimeUnset)
	}
}

// Rewind seeks back by the rewind increment, not before zero.
func (c *Coordinator) Rewind() {
	if c.rewind <= 0 {
		return
	}
	c.seekBy(-c.rewind)
}

// FastForward seeks ahead by the fast forward increment, not past the duration.
func (c *Coordinator) FastForward() {
	if c.fastForward <= 0 {
		return
	}
	c.seekBy(c.fastForward)
}

func (c *Coordinator) seekBy(delta int64) {
	position := max(0, c.target.CurrentPosition()+delta)
	if duration := c.target.Duration(); duration != player.TimeUnset {
		position = min(position, duration)
	}
	c.RequestSeek(c.target.CurrentWindow(), position)
}

// DragStart holds the auto-hide timer and suspends the position display.
func (c *Coordinator) DragStart() {
	c.autoHide.Hold()
	c.progress.BeginDrag()
}

// DragProgress updates the scrubbed position only.
func (c *Coordinator) DragProgress(position int64) {
	c.progress.UpdateDrag(position)
}

// DragEnd issues a single seek to position, resumes the progress display and
// restarts the auto-hide timer.
func (c *Coordinator) DragEnd(position int64) {
	c.progress.EndDrag()
	if c.RequestSeek(c.target.CurrentWindow(), position) {
		c.progress.Sync()
	}
	c.autoHide.HideAfterTimeout()
}
