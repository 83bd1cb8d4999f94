package thread

import (
	"context"
	"sync"

	"github.com/koineramitranjan/threads/pkg/domain"
)

// taskContext is the per-invocation implementation of domain.TaskContext.
// The terminal flag latches on the first Done call so one invocation can
// never emit two terminal envelopes.
type taskContext struct {
	transport *Transport

	mu       sync.Mutex
	terminal bool
}

func (tc *taskContext) Context() context.Context {
	return tc.transport.ctx
}

func (tc *taskContext) Done(values ...any) {
	tc.finish(nil, values)
}

func (tc *taskContext) DoneTransfer(transfer []*domain.Buffer, values ...any) {
	tc.finish(transfer, values)
}

func (tc *taskContext) Progress(fraction float64) {
	if tc.settled() {
		return
	}
	tc.transport.dispatch(domain.Envelope{Kind: domain.KindProgress, Progress: fraction})
}

func (tc *taskContext) finish(transfer []*domain.Buffer, values []any) {
	tc.mu.Lock()
	if tc.terminal {
		tc.mu.Unlock()
		return
	}
	tc.terminal = true
	tc.mu.Unlock()

	if len(values) == 0 && len(transfer) == 0 {
		tc.transport.dispatch(domain.Envelope{Kind: domain.KindDone})
		return
	}
	tc.transport.dispatch(domain.Envelope{
		Kind:     domain.KindMessage,
		Payload:  values,
		Transfer: transfer,
	})
}

func (tc *taskContext) settled() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.terminal
}

var _ domain.TaskContext = (*taskContext)(nil)
