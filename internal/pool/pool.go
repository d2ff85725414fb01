// Package pool implements the bounded worker pool the file probe
// stage fans out on: an errgroup-backed executor with an explicit
// Submit/Join protocol and a terminal joined state. The pool carries
// no cancellable context of its own — a failing task never aborts
// its siblings; every submitted task runs to completion and the
// first captured error surfaces at Join.
package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// state is the pool's lifecycle.
type state int

const (
	running state = iota
	draining
	joined
)

// Pool runs bounded-concurrency tasks and captures the first error
// any task returns, surfacing it at Join.
type Pool struct {
	mu    sync.Mutex
	state state

	group errgroup.Group
	ctx   context.Context
}

// New creates a Pool bounded to size concurrent tasks. size <= 0 means
// unbounded. ctx is handed to every task as-is; the pool never
// cancels it.
func New(ctx context.Context, size int) *Pool {
	p := &Pool{ctx: ctx, state: running}
	if size > 0 {
		p.group.SetLimit(size)
	}
	return p
}

// Submit schedules fn to run, blocking only if the pool is at its
// concurrency limit. Submit after Join panics: the caller programmed
// a task-after-drain race.
func (p *Pool) Submit(fn func(ctx context.Context) error) {
	p.mu.Lock()
	if p.state != running {
		p.mu.Unlock()
		panic("pool: Submit called after Join")
	}
	p.mu.Unlock()

	p.group.Go(func() error {
		return fn(p.ctx)
	})
}

// Join drains all in-flight and queued tasks and returns the first
// captured error, if any. A second Join panics.
func (p *Pool) Join() error {
	p.mu.Lock()
	if p.state == joined {
		p.mu.Unlock()
		panic("pool: Join called twice")
	}
	p.state = draining
	p.mu.Unlock()

	err := p.group.Wait()

	p.mu.Lock()
	p.state = joined
	p.mu.Unlock()

	return err
}
