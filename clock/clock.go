// Package clock abstracts the single logical timeline the playback core runs on.
//
// Every engine callback, timer expiry and user gesture is executed by one
// Executor, so core components never lock. Timers are one-shot and
// cancellable; a stopped timer never runs its callback, even if it had
// already expired and was waiting in the queue.
package clock

import "time"

// Timer is a cancellable one-shot callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the callback was still pending.
	Stop() bool
}

// Scheduler schedules delayed callbacks on the timeline.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Executor runs fn on the timeline.
type Executor interface {
	Post(fn func())
}

// Timeline is a Scheduler that can also accept posted work.
type Timeline interface {
	Scheduler
	Executor
}
