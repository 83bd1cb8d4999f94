package threads

import (
	"context"
	"sync"
)

// Promise adapts the worker's multi-shot event stream into a single
// settlement: it resolves with the first message payload or rejects with
// the first error, whichever arrives first. Later events are ignored.
type Promise struct {
	once   sync.Once
	done   chan struct{}
	values []any
	err    error
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

func (p *Promise) resolve(values []any) {
	p.once.Do(func() {
		p.values = values
		close(p.done)
	})
}

func (p *Promise) reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise) Await(ctx context.Context) ([]any, error) {
	select {
	case <-p.done:
		return p.values, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled reports whether the promise has resolved or rejected.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
