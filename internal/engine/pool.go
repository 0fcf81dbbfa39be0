package engine

import "context"

// Pool is the bounded offload boundary for blocking engine calls. Request
// handling stays non-blocking; every synchronous RPC is pushed through here
// so a slow or hung engine call degrades only its own request, never
// system-wide throughput. The concurrency limit is a tunable (ENGINE_POOL_SIZE).
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool allowing at most size concurrent calls.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Do runs fn on the pool. It blocks until a slot frees up or ctx expires.
// fn runs in its own goroutine: when the caller's deadline passes, Do returns
// ctx.Err() and the in-flight call is abandoned, releasing its slot whenever
// it eventually finishes.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-p.slots }()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InFlight reports the number of calls currently holding a slot.
func (p *Pool) InFlight() int {
	return len(p.slots)
}
