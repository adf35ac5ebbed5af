package ticker

import (
	"context"
	"sync"
	"time"
)

// Ticker calls a function at a fixed interval until stopped.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start calls fn(interval) every interval on a new goroutine until ctx is
// done or Stop is called. fn runs on that goroutine, one call at a time.
func Start(ctx context.Context, interval time.Duration, fn func(elapsed time.Duration)) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				fn(interval)
			}
		}
	}()
	return t
}

// Stop ends the ticker and waits for a running fn to return. It is safe to
// call more than once.
func (t *Ticker) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}
