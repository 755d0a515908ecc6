// Package progress keeps the presented position, buffered position and
// duration in step with the engine using a self-rescheduling poll.
package progress

import (
	"time"

	"github.com/kplay-cli/kplay/clock"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/player"
	"github.com/sirupsen/logrus"
)

const (
	// Scale is the resolution of the scrub bar.
	Scale = 1000

	interval = 1000
	minDelay = 200
)

// Snapshot is an immutable reading of the engine's progress.
type Snapshot struct {
	Position   int64
	Buffered   int64
	Duration   int64
	CapturedAt time.Time
}

// DragSession exists only while the user holds the scrub control.
type DragSession struct {
	Active           bool
	LastUserProgress int64
}

// Source is the read side of the playback machine.
type Source interface {
	EngineState() player.State
	PlayWhenReady() bool
	CurrentPosition() int64
	BufferedPosition() int64
	Duration() int64
}

// Synchronizer polls Source and forwards snapshots to its sink.
type Synchronizer struct {
	scheduler clock.Scheduler
	source    Source
	sink      func(Snapshot)
	logger    *logrus.Entry

	timer      clock.Timer
	generation uint64
	attached   bool
	drag       *DragSession
	last       Snapshot
}

// New creates a detached synchronizer.
func New(scheduler clock.Scheduler, source Source, sink func(Snapshot)) *Synchronizer {
	return &Synchronizer{
		scheduler: scheduler,
		source:    source,
		sink:      sink,
		logger:    log.For("progress"),
	}
}

// NextDelay returns the delay until the next tick: aligned to the next whole
// second of playback while playing, a flat second otherwise. Delays shorter
// than 200ms skip to the following second.
func NextDelay(playing bool, position int64) time.Duration {
	if !playing {
		return interval * time.Millisecond
	}

	delay := interval - max(0, position)%interval
	if delay < minDelay {
		delay += interval
	}
	return time.Duration(delay) * time.Millisecond
}

// ProgressValue converts a position into a scrub bar value in [0, Scale].
func ProgressValue(position, duration int64) int {
	if duration <= 0 || position <= 0 {
		return 0
	}
	return int(min(Scale, position*Scale/duration))
}

// PositionValue converts a scrub bar value back into a position.
func PositionValue(progress int, duration int64) int64 {
	if duration <= 0 {
		return 0
	}
	return duration * int64(min(Scale, max(0, progress))) / Scale
}

// Attach enables forwarding and polling, and syncs immediately.
func (s *Synchronizer) Attach() {
	s.attached = true
	s.Sync()
}

// Detach stops forwarding and cancels the pending tick.
func (s *Synchronizer) Detach() {
	s.attached = false
	s.cancel()
}

// Attached reports whether snapshots are forwarded.
func (s *Synchronizer) Attached() bool {
	return s.attached
}

// OnStateChanged reacts to an engine state report.
func (s *Synchronizer) OnStateChanged() {
	s.Sync()
}

// Tick is the timer callback.
func (s *Synchronizer) Tick() {
	s.Sync()
}

// Sync captures and forwards a snapshot now, then reschedules.
func (s *Synchronizer) Sync() {
	s.cancel()
	if !s.attached {
		return
	}

	s.last = s.capture()
	s.sink(s.last)
	s.reschedule()
}

// Last returns the most recently forwarded snapshot.
func (s *Synchronizer) Last() Snapshot {
	return s.last
}

// Pending reports whether a tick is scheduled.
func (s *Synchronizer) Pending() bool {
	return s.timer != nil
}

// BeginDrag starts a drag session at the current position.
func (s *Synchronizer) BeginDrag() {
	s.drag = &DragSession{Active: true, LastUserProgress: s.source.CurrentPosition()}
}

// UpdateDrag records the scrubbed position and forwards it as the presented position.
func (s *Synchronizer) UpdateDrag(position int64) {
	if s.drag == nil {
		return
	}
	s.drag.LastUserProgress = position
	if s.attached {
		s.last = s.capture()
		s.sink(s.last)
	}
}

// EndDrag ends the session, returning the last scrubbed position.
func (s *Synchronizer) EndDrag() (int64, bool) {
	if s.drag == nil {
		return 0, false
	}
	position := s.drag.LastUserProgress
	s.drag = nil
	return position, true
}

// CancelDrag drops the session without a result.
func (s *Synchronizer) CancelDrag() {
	s.drag = nil
}

// Drag returns the active drag session, if any.
func (s *Synchronizer) Drag() (DragSession, bool) {
	if s.drag == nil {
		return DragSession{}, false
	}
	return *s.drag, true
}

func (s *Synchronizer) capture() Snapshot {
	duration := s.source.Duration()
	if duration == player.TimeUnset || duration < 0 {
		duration = 0
	}

	position := s.source.CurrentPosition()
	if s.drag != nil {
		position = s.drag.LastUserProgress
	}

	return Snapshot{
		Position:   max(0, position),
		Buffered:   max(0, s.source.BufferedPosition()),
		Duration:   duration,
		CapturedAt: s.scheduler.Now(),
	}
}

func (s *Synchronizer) reschedule() {
	state := s.source.EngineState()
	if state == player.StateIdle || state == player.StateEnded {
		return
	}

	playing := state == player.StateReady && s.source.PlayWhenReady()
	delay := NextDelay(playing, s.source.CurrentPosition())

	s.generation++
	generation := s.generation
	s.timer = s.scheduler.AfterFunc(delay, func() {
		if generation != s.generation {
			return
		}
		s.timer = nil
		s.Tick()
	})

	s.logger.WithField("delay", delay).Trace("tick scheduled")
}

func (s *Synchronizer) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}
