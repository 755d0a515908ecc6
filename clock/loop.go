package clock

import (
	"context"
	"sync"
	"time"
)

const queueSize = 256

// Loop is the production Timeline: a single goroutine draining a queue of closures.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Run executes posted work until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.queue:
			select {
			case <-l.done:
				return nil
			default:
			}
			fn()
		}
	}
}

// Close stops the loop. Work posted afterwards is dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// Done is closed once the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post enqueues fn. It is safe to call from any goroutine; after Close it is a no-op.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}

	select {
	case <-l.done:
	case l.queue <- fn:
	}
}

// Do posts fn and waits for it to finish. It must not be called from the loop itself.
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})

	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc arranges for fn to run on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped {
				return
			}
			t.stopped = true
			fn()
		})
	})
	return t
}

// loopTimer's flag is only touched on the loop goroutine.
type loopTimer struct {
	timer   *time.Timer
	stopped bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}
