package threads

import (
	"log/slog"
	"sync"

	"github.com/koineramitranjan/threads/pkg/adapters/process"
	"github.com/koineramitranjan/threads/pkg/adapters/thread"
	"github.com/koineramitranjan/threads/pkg/config"
	"github.com/koineramitranjan/threads/pkg/domain"
	"github.com/koineramitranjan/threads/pkg/ports"
)

// State is the lifecycle phase of a worker handle.
type State int

const (
	// StateIdle means the transport is running but no code is assigned.
	StateIdle State = iota
	// StateRunning means code has been assigned to the transport.
	StateRunning
	// StateTerminated means the transport has exited. Terminal.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Worker is the caller-facing handle for one background execution context.
// It owns exactly one transport for its whole life: Run reassigns code on
// that transport, it never constructs a new one.
type Worker struct {
	id        string
	logger    *slog.Logger
	transport ports.Transport
	hooks     []domain.LifecycleHooks
	tracker   *Tracker
	cfg       *config.Config

	// Spawn-time configuration, consumed while assembling the transport.
	useProcess     bool
	processCmd     string
	processOpts    []process.Option
	args           []string
	execArgv       []string
	execArgvSet    bool
	initialTask    domain.Task
	initialScript  string
	initialImports []string
	registry       *thread.Registry

	mu      sync.Mutex
	state   State
	killed  bool
	exited  bool
	bridges []*Promise

	subMu      sync.Mutex
	onMessage  []func(values ...any)
	onError    []func(err error)
	onProgress []func(fraction float64)
	onDone     []func()
	onExit     []func()

	emitMu sync.Mutex
}

// ID returns the worker's unique identity.
func (w *Worker) ID() string {
	return w.id
}

// State returns the current lifecycle phase.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Transport exposes the owned transport for introspection. Callers must
// not send through it directly.
func (w *Worker) Transport() ports.Transport {
	return w.transport
}

// Run assigns a task function to the existing transport. The background
// context is reused; reassignment may happen any number of times. Each
// subsequent Send triggers one invocation of the task.
func (w *Worker) Run(task domain.Task) *Worker {
	w.markRunning()
	w.post(domain.Envelope{Kind: domain.KindRunCode, Task: task})
	return w
}

// RunScript assigns an external script to the existing transport,
// optionally with named imports loaded before the script body runs.
// Resolution of the name is the transport's concern: process workers map
// it to a path via the configured script dirs, thread workers look it up
// in their registry.
func (w *Worker) RunScript(script string, imports ...string) *Worker {
	w.markRunning()

	env := domain.Envelope{Kind: domain.KindRunScript, Script: script}
	if len(imports) > 0 {
		env.Kind = domain.KindRunScriptImports
		env.Imports = imports
	}
	w.post(env)
	return w
}

// Send serializes positional arguments as a data envelope. Each data
// envelope triggers one invocation of the assigned task. Sending to a
// terminated worker fails locally with an error event; nothing is
// forwarded.
func (w *Worker) Send(args ...any) *Worker {
	w.post(domain.Envelope{Kind: domain.KindData, Payload: args})
	return w
}

// SendTransfer is Send with an explicit transfer list: ownership of the
// listed buffers moves to the background context. Honored by the thread
// transport only; the process transport always copies.
func (w *Worker) SendTransfer(transfer []*domain.Buffer, args ...any) *Worker {
	w.post(domain.Envelope{Kind: domain.KindData, Payload: args, Transfer: transfer})
	return w
}

// Kill terminates the owned transport exactly once. The exit event fires
// on confirmed termination. Killing an already-terminated worker is a
// no-op and never produces a second exit event.
func (w *Worker) Kill() {
	w.mu.Lock()
	if w.killed {
		w.mu.Unlock()
		return
	}
	w.killed = true
	w.mu.Unlock()

	if err := w.transport.Terminate(); err != nil {
		w.logger.Warn("terminate transport", "worker", w.id, "err", err)
	}
}

// Promise returns a future over the worker's event stream. It resolves
// with the first message payload or rejects with the first error, and
// settles exactly once no matter how many envelopes arrive afterward.
func (w *Worker) Promise() *Promise {
	p := newPromise()
	w.mu.Lock()
	w.bridges = append(w.bridges, p)
	w.mu.Unlock()
	return p
}

func (w *Worker) markRunning() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateIdle {
		w.state = StateRunning
	}
}

// post forwards an envelope to the transport, converting local failures
// into error events so they surface on the same channel as remote ones.
func (w *Worker) post(env domain.Envelope) {
	w.mu.Lock()
	terminated := w.state == StateTerminated
	w.mu.Unlock()
	if terminated {
		w.emitError(domain.ErrTerminated)
		return
	}
	if err := w.transport.Send(env); err != nil {
		w.emitError(err)
	}
}

// dispatch translates inbound envelopes into handle events. The transports
// call it from a single goroutine each, in delivery order.
func (w *Worker) dispatch(env domain.Envelope) {
	switch env.Kind {
	case domain.KindMessage:
		w.emitMessage(env.Payload)
	case domain.KindDone:
		w.emitMessage(nil)
	case domain.KindProgress:
		w.emitProgress(env.Progress)
	case domain.KindError:
		info := env.Err
		if info == nil {
			info = &domain.ErrorInfo{Message: "unknown task failure"}
		}
		w.emitError(&domain.TaskError{Message: info.Message, Stack: info.Stack})
	case domain.KindExit:
		w.emitExit()
	default:
		w.logger.Warn("discarding envelope with unknown kind", "worker", w.id, "kind", env.Kind)
	}
}
