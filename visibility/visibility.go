// Package visibility decides when the control surface is shown and hides it
// after a period of inactivity.
package visibility

import (
	"time"

	"github.com/kplay-cli/kplay/clock"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/player"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the auto-hide delay used when none is configured.
const DefaultTimeout = 5 * time.Second

// State of the control surface. A Timeout of zero or less means shown indefinitely.
type State struct {
	Visible     bool
	Timeout     time.Duration
	LastShownAt time.Time
}

// Source is the read side of the playback machine.
type Source interface {
	EngineState() player.State
	PlayWhenReady() bool
}

// Timer owns the visibility state.
type Timer struct {
	scheduler clock.Scheduler
	source    Source
	listener  func(visible bool)
	timeout   time.Duration
	logger    *logrus.Entry

	state      State
	hide       clock.Timer
	generation uint64
}

// New creates a hidden timer. timeout <= 0 keeps the surface shown once shown.
func New(scheduler clock.Scheduler, source Source, timeout time.Duration, listener func(visible bool)) *Timer {
	return &Timer{
		scheduler: scheduler,
		source:    source,
		listener:  listener,
		timeout:   timeout,
		logger:    log.For("visibility"),
	}
}

// State returns the current visibility state.
func (t *Timer) State() State {
	return t.state
}

// Visible reports whether the surface is shown.
func (t *Timer) Visible() bool {
	return t.state.Visible
}

// Pending reports whether an auto-hide is armed.
func (t *Timer) Pending() bool {
	return t.hide != nil
}

// Show shows the surface when forced, when playback calls for an indefinite
// display (idle, ended or paused), or when it was already shown indefinitely.
func (t *Timer) Show(force bool) {
	indefinite := t.indefinite()
	wasIndefinite := t.state.Visible && t.state.Timeout <= 0

	if indefinite {
		t.state.Timeout = 0
	} else {
		t.state.Timeout = t.timeout
	}

	if force || indefinite || wasIndefinite {
		t.show()
	}
}

// OnStateChanged re-evaluates visibility after an engine state report.
func (t *Timer) OnStateChanged() {
	t.Show(false)
}

// Toggle hides a shown surface and force-shows a hidden one.
func (t *Timer) Toggle() {
	if t.state.Visible {
		t.Hide()
		return
	}
	t.Show(true)
}

// Hide hides the surface and cancels any pending auto-hide.
func (t *Timer) Hide() {
	t.cancel()
	if !t.state.Visible {
		return
	}

	t.state.Visible = false
	t.logger.Debug("hidden")
	t.listener(false)
}

// Hold cancels the pending auto-hide, keeping the surface shown.
func (t *Timer) Hold() {
	t.cancel()
}

// HideAfterTimeout (re)arms the auto-hide when the timeout is positive.
func (t *Timer) HideAfterTimeout() {
	t.cancel()
	if !t.state.Visible || t.state.Timeout <= 0 {
		return
	}

	t.generation++
	generation := t.generation
	t.hide = t.scheduler.AfterFunc(t.state.Timeout, func() {
		if generation != t.generation {
			return
		}
		t.hide = nil
		t.Hide()
	})
}

func (t *Timer) show() {
	if !t.state.Visible {
		t.state.Visible = true
		t.state.LastShownAt = t.scheduler.Now()
		t.logger.WithField("timeout", t.state.Timeout).Debug("shown")
		t.listener(true)
	}
	t.HideAfterTimeout()
}

func (t *Timer) indefinite() bool {
	if t.timeout <= 0 {
		return true
	}

	switch t.source.EngineState() {
	case player.StateIdle, player.StateEnded:
		return true
	default:
		return !t.source.PlayWhenReady()
	}
}

func (t *Timer) cancel() {
	if t.hide != nil {
		t.hide.Stop()
		t.hide = nil
	}
	t.generation++
}
