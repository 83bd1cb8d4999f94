// Package thread implements the in-process transport: the background
// execution context is a goroutine fed through a FIFO envelope channel,
// and transfer lists move buffer ownership instead of copying.
package thread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/koineramitranjan/threads/internal/logging"
	"github.com/koineramitranjan/threads/pkg/domain"
	"github.com/koineramitranjan/threads/pkg/ports"
)

// DefaultQueueSize is the default outbound envelope buffer.
const DefaultQueueSize = 64

// Option configures the transport.
type Option func(*Transport)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithRegistry sets the script registry used to resolve run-script
// envelopes.
func WithRegistry(reg *Registry) Option {
	return func(t *Transport) {
		t.registry = reg
	}
}

// WithQueueSize overrides the outbound envelope buffer size.
func WithQueueSize(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.queueSize = n
		}
	}
}

// Transport runs tasks on a background goroutine. Envelopes flow through a
// buffered channel, so delivery and processing follow send order.
type Transport struct {
	logger    *slog.Logger
	registry  *Registry
	queueSize int

	deliver   func(domain.Envelope)
	deliverMu sync.Mutex

	mu         sync.Mutex
	started    bool
	terminated bool
	outbound   chan domain.Envelope
	ctx        context.Context
	cancel     context.CancelFunc

	exitOnce sync.Once
}

// New creates an unstarted thread transport.
func New(opts ...Option) *Transport {
	t := &Transport{
		logger:    logging.NewNop(),
		registry:  NewRegistry(),
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())
	return t
}

// Name implements ports.Transport.
func (t *Transport) Name() string { return "thread" }

// Subscribe implements ports.Transport.
func (t *Transport) Subscribe(fn func(domain.Envelope)) {
	t.deliver = fn
}

// Start launches the background context goroutine.
func (t *Transport) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.terminated {
		return domain.ErrTerminated
	}
	if t.started {
		return errors.New("thread transport already started")
	}
	t.started = true
	t.outbound = make(chan domain.Envelope, t.queueSize)
	go t.loop()
	return nil
}

// Send queues an outbound envelope. Buffers named in the transfer list are
// detached from the caller before delivery.
func (t *Transport) Send(env domain.Envelope) error {
	t.mu.Lock()
	if t.terminated {
		t.mu.Unlock()
		return domain.ErrTerminated
	}
	if !t.started {
		t.mu.Unlock()
		return errors.New("thread transport not started")
	}
	outbound := t.outbound
	t.mu.Unlock()

	if len(env.Transfer) > 0 {
		env = moveTransfers(env)
	}

	select {
	case outbound <- env:
		return nil
	case <-t.ctx.Done():
		return domain.ErrTerminated
	}
}

// Terminate stops the background context immediately. In-flight envelopes
// are discarded; exactly one exit envelope is delivered.
func (t *Transport) Terminate() error {
	t.mu.Lock()
	if t.terminated {
		t.mu.Unlock()
		return nil
	}
	t.terminated = true
	t.mu.Unlock()

	t.cancel()
	t.exitOnce.Do(func() {
		t.dispatch(domain.Envelope{Kind: domain.KindExit})
	})
	return nil
}

func (t *Transport) loop() {
	var task domain.Task
	for {
		select {
		case <-t.ctx.Done():
			return
		case env := <-t.outbound:
			switch env.Kind {
			case domain.KindRunCode:
				task = env.Task
			case domain.KindRunScript, domain.KindRunScriptImports:
				resolved, err := t.resolve(env)
				if err != nil {
					task = nil
					t.dispatch(errorEnvelope(err.Error(), ""))
					continue
				}
				task = resolved
			case domain.KindData:
				t.invoke(task, env.Payload)
			default:
				t.dispatch(errorEnvelope(fmt.Sprintf("%v: %q", domain.ErrUnknownKind, env.Kind), ""))
			}
		}
	}
}

// resolve looks up the script body and loads its imports, in declaration
// order, before the task becomes runnable.
func (t *Transport) resolve(env domain.Envelope) (domain.Task, error) {
	task, ok := t.registry.Task(env.Script)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrScriptNotFound, env.Script)
	}
	for _, name := range env.Imports {
		lib, ok := t.registry.Library(name)
		if !ok {
			return nil, fmt.Errorf("%w: import %q", domain.ErrScriptNotFound, name)
		}
		if err := lib(t.ctx); err != nil {
			return nil, fmt.Errorf("load import %q: %w", name, err)
		}
	}
	return task, nil
}

func (t *Transport) invoke(task domain.Task, args []any) {
	if task == nil {
		t.dispatch(errorEnvelope(domain.ErrNoTask.Error(), ""))
		return
	}

	tc := &taskContext{transport: t}
	err, stack := runTask(task, tc, args)
	if tc.settled() {
		// A terminal envelope already went out; a late failure must not
		// produce a second terminal event for this invocation.
		return
	}
	if err != nil {
		t.dispatch(errorEnvelope(err.Error(), stack))
		return
	}
	t.dispatch(domain.Envelope{Kind: domain.KindDone})
}

// runTask executes one invocation, converting a panic into an error with
// the uncaught-error marker.
func runTask(task domain.Task, tc *taskContext, args []any) (err error, stack string) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Uncaught Error: %v", r)
			stack = string(debug.Stack())
		}
	}()
	return task(tc, args...), ""
}

// dispatch hands an envelope to the subscriber. Non-exit envelopes are
// discarded once the transport is terminated.
func (t *Transport) dispatch(env domain.Envelope) {
	t.deliverMu.Lock()
	defer t.deliverMu.Unlock()
	if env.Kind != domain.KindExit && t.ctx.Err() != nil {
		t.logger.Debug("discarding envelope after terminate", "kind", env.Kind)
		return
	}
	if t.deliver != nil {
		t.deliver(env)
	}
}

func errorEnvelope(msg, stack string) domain.Envelope {
	return domain.Envelope{
		Kind: domain.KindError,
		Err:  &domain.ErrorInfo{Message: msg, Stack: stack},
	}
}

// moveTransfers detaches every buffer in the transfer list from the sender
// and rewires payload references to the moved copies.
func moveTransfers(env domain.Envelope) domain.Envelope {
	out := env
	moved := make(map[*domain.Buffer]*domain.Buffer, len(env.Transfer))
	out.Transfer = make([]*domain.Buffer, len(env.Transfer))
	for i, buf := range env.Transfer {
		clone := domain.NewBuffer(buf.Detach())
		moved[buf] = clone
		out.Transfer[i] = clone
	}
	out.Payload = slices.Clone(env.Payload)
	for i, v := range out.Payload {
		if buf, ok := v.(*domain.Buffer); ok {
			if clone, ok := moved[buf]; ok {
				out.Payload[i] = clone
			}
		}
	}
	return out
}

var _ ports.Transport = (*Transport)(nil)
