package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RepeatingTask handle of a running periodic schedule
type RepeatingTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every runs fn on each tick of interval until ctx ends or Stop is called.
// fn never runs concurrently with itself.
func Every(ctx context.Context, clock clockwork.Clock, interval time.Duration, fn func(now time.Time)) *RepeatingTask {
	ctx, cancel := context.WithCancel(ctx)
	t := &RepeatingTask{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ticker := clock.NewTicker(interval)
	go func() {
		defer close(t.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.Chan():
				// a tick racing with Stop is dropped
				if ctx.Err() != nil {
					return
				}
				fn(now)
			}
		}
	}()

	return t
}

// Stop cancels the schedule without waiting; safe to call more than once
// and from within fn.
func (t *RepeatingTask) Stop() {
	t.once.Do(t.cancel)
}

// Done is closed once the schedule goroutine has exited
func (t *RepeatingTask) Done() <-chan struct{} {
	return t.done
}
