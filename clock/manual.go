package clock

import (
	"sort"
	"time"
)

// Manual is a deterministic Timeline for tests. Posted work runs immediately and
// timers only fire from Advance.
type Manual struct {
	now    time.Time
	seq    int
	timers []*manualTimer
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) Post(fn func()) {
	fn()
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{owner: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves time forward by d, firing due timers in deadline order.
// Timers scheduled by fired callbacks also fire if they fall within d.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		next := m.earliest()
		if next == nil || next.at.After(target) {
			break
		}
		m.remove(next)
		m.now = next.at
		next.fn()
	}
	m.now = target
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	return len(m.timers)
}

// NextDeadline returns the delay until the earliest pending timer.
func (m *Manual) NextDeadline() (time.Duration, bool) {
	next := m.earliest()
	if next == nil {
		return 0, false
	}
	return next.at.Sub(m.now), true
}

func (m *Manual) earliest() *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sorted := append([]*manualTimer(nil), m.timers...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].at.Equal(sorted[j].at) {
			return sorted[i].seq < sorted[j].seq
		}
		return sorted[i].at.Before(sorted[j].at)
	})
	return sorted[0]
}

func (m *Manual) remove(t *manualTimer) bool {
	for i, candidate := range m.timers {
		if candidate == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	owner *Manual
	at    time.Time
	seq   int
	fn    func()
}

func (t *manualTimer) Stop() bool {
	return t.owner.remove(t)
}
