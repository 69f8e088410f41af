package session

import (
	"context"
	"sync"
	"time"
)

// Runner drives a session's clock: one Tick per wall-clock second for as
// long as the session is active. The ticker is torn down as soon as the
// session deactivates or the context is cancelled, so an ended or reset
// session can never be mutated by a leftover timer.
type Runner struct {
	session  *Session
	interval time.Duration

	// onExpire fires when the clock reaches zero. Guarded to run at most
	// once even if the zero state is observed across multiple ticks.
	onExpire   func()
	expireOnce sync.Once

	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}
}

// NewRunner binds a runner to a session. onExpire may be nil.
func NewRunner(s *Session, onExpire func()) *Runner {
	return &Runner{
		session:  s,
		interval: time.Second,
		onExpire: onExpire,
		done:     make(chan struct{}),
	}
}

// newRunnerWithInterval is test-only for fast clocks.
func newRunnerWithInterval(s *Session, onExpire func(), interval time.Duration) *Runner {
	r := NewRunner(s, onExpire)
	r.interval = interval
	return r
}

// Start launches the tick loop in its own goroutine. Call once.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !r.session.Tick() {
					// Fired off-goroutine so an expiry handler that stops
					// this runner cannot deadlock waiting for the loop.
					go r.expireOnce.Do(func() {
						if r.onExpire != nil {
							r.onExpire()
						}
					})
					return
				}
			}
		}
	}()
}

// Stop cancels the tick loop without firing the expiry callback and waits
// for the goroutine to exit. Idempotent and safe to call concurrently.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		// Disarm expiry first: a tick racing with Stop must not auto-submit
		// a session the caller is already tearing down.
		r.expireOnce.Do(func() {})
		if r.cancel != nil {
			r.cancel()
		}
	})
	<-r.done
}
