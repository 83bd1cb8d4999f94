package threads

import (
	"log/slog"

	"github.com/koineramitranjan/threads/pkg/adapters/process"
	"github.com/koineramitranjan/threads/pkg/adapters/thread"
	"github.com/koineramitranjan/threads/pkg/config"
	"github.com/koineramitranjan/threads/pkg/domain"
	"github.com/koineramitranjan/threads/pkg/ports"
)

// Option defines a functional option for configuring a spawn.
type Option func(*Worker)

// WithLogger sets the structured logger for the handle and its transport.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithTransport injects a pre-built transport, bypassing the default
// construction. The worker takes exclusive ownership.
func WithTransport(tr ports.Transport) Option {
	return func(w *Worker) {
		w.transport = tr
	}
}

// WithTask assigns an initial task, run as soon as the transport starts.
func WithTask(task domain.Task) Option {
	return func(w *Worker) {
		w.initialTask = task
	}
}

// WithScript assigns an initial script, with optional imports loaded
// before the script body runs.
func WithScript(script string, imports ...string) Option {
	return func(w *Worker) {
		w.initialScript = script
		w.initialImports = imports
	}
}

// WithArgs sets bootstrap-time script arguments. Process transports only.
func WithArgs(args ...string) Option {
	return func(w *Worker) {
		w.args = args
	}
}

// WithExecArgv sets explicit execution flags for process spawns. They
// fully replace any inherited flags; no merging, no inspector rewriting.
func WithExecArgv(argv ...string) Option {
	return func(w *Worker) {
		w.execArgv = argv
		w.execArgvSet = true
	}
}

// WithProcess selects the process transport running the given bootstrap
// command. An empty command falls back to the configured runtime.
func WithProcess(command string, opts ...process.Option) Option {
	return func(w *Worker) {
		w.useProcess = true
		w.processCmd = command
		w.processOpts = opts
	}
}

// WithRegistry sets the script registry for thread workers.
func WithRegistry(reg *thread.Registry) Option {
	return func(w *Worker) {
		w.registry = reg
	}
}

// WithConfig injects the configuration provider used to resolve script
// names and supply the process runtime and inherited exec flags.
func WithConfig(cfg *config.Config) Option {
	return func(w *Worker) {
		w.cfg = cfg
	}
}

// WithHooks attaches lifecycle hooks for observability. May be given more
// than once.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Worker) {
		w.hooks = append(w.hooks, hooks)
	}
}

// WithTracker registers the worker with a tracker for the lifetime of its
// transport.
func WithTracker(tracker *Tracker) Option {
	return func(w *Worker) {
		w.tracker = tracker
	}
}
