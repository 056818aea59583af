// Package loop runs a function repeatedly on a fixed interval.
//
//	l := loop.New(loop.WithInterval(5*time.Second), loop.WithContext(ctx))
//	_ = l.Do(func() (bool, error) {
//		return false, poll()
//	})
package loop

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Loop executes a function until it aborts, the context ends or maxTimes is reached.
type Loop struct {
	maxTimes     uint64
	interval     time.Duration
	jitter       time.Duration
	declineRatio float64
	declineLimit time.Duration
	immediate    bool
	ctx          context.Context

	lastSleep time.Duration
}

// Option configures a Loop.
type Option func(*Loop)

// New creates a Loop. Defaults: one second interval, unlimited runs, no backoff.
func New(options ...Option) *Loop {
	l := &Loop{
		interval:     time.Second,
		maxTimes:     math.MaxUint64,
		declineRatio: 1,
		immediate:    true,
		ctx:          context.Background(),
	}
	for _, op := range options {
		op(l)
	}
	l.lastSleep = l.interval
	return l
}

// Do calls f until f returns abort=true, the context is done or maxTimes runs
// have happened. Errors from f slow the loop down by the decline ratio; a
// successful run resets the delay to the interval.
func (l *Loop) Do(f func() (abort bool, err error)) error {
	if l.ctx.Err() != nil {
		return nil
	}
	if !l.immediate && l.sleep(l.next()) {
		return nil
	}

	var err error
	for i := uint64(0); i < l.maxTimes; i++ {
		var abort bool
		abort, err = f()
		if abort {
			return err
		}

		if err != nil {
			l.lastSleep = time.Duration(float64(l.lastSleep) * l.declineRatio)
			if l.declineLimit > 0 && l.lastSleep > l.declineLimit {
				l.lastSleep = l.declineLimit
			}
		} else {
			l.lastSleep = l.interval
		}

		if i+1 == l.maxTimes {
			break
		}
		if l.sleep(l.next()) {
			return nil
		}
	}
	return err
}

func (l *Loop) next() time.Duration {
	d := l.lastSleep
	if l.jitter > 0 {
		d += rand.N(l.jitter)
	}
	return d
}

// sleep waits d and reports whether the context ended first.
func (l *Loop) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return false
	case <-l.ctx.Done():
		return true
	}
}

// WithMaxTimes limits the number of executions, default is unlimited.
func WithMaxTimes(n uint64) Option {
	return func(l *Loop) {
		l.maxTimes = n
	}
}

// WithInterval sets the delay between executions, ignored below one millisecond.
func WithInterval(t time.Duration) Option {
	return func(l *Loop) {
		if t < time.Millisecond {
			return
		}
		l.interval = t
	}
}

// WithJitter adds a random delay in [0, t) to every wait.
func WithJitter(t time.Duration) Option {
	return func(l *Loop) {
		if t > 0 {
			l.jitter = t
		}
	}
}

// WithDeclineRatio multiplies the delay after each failed run, default 1.
func WithDeclineRatio(n float64) Option {
	return func(l *Loop) {
		if n < 1 {
			return
		}
		l.declineRatio = n
	}
}

// WithDeclineLimit caps the delay reached through the decline ratio.
func WithDeclineLimit(t time.Duration) Option {
	return func(l *Loop) {
		if t < 0 {
			return
		}
		l.declineLimit = t
	}
}

// WithDelayedStart waits one interval before the first execution.
func WithDelayedStart() Option {
	return func(l *Loop) {
		l.immediate = false
	}
}

// WithContext stops the loop when ctx is done.
func WithContext(ctx context.Context) Option {
	return func(l *Loop) {
		if ctx != nil {
			l.ctx = ctx
		}
	}
}
