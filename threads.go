package threads

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/koineramitranjan/threads/internal/logging"
	"github.com/koineramitranjan/threads/pkg/adapters/process"
	"github.com/koineramitranjan/threads/pkg/adapters/thread"
	"github.com/koineramitranjan/threads/pkg/config"
	"github.com/koineramitranjan/threads/pkg/ports"
)

// Spawn constructs a worker handle and starts its transport immediately,
// even when no task is assigned yet. The default transport runs tasks on a
// background goroutine; WithProcess selects a child process instead.
func Spawn(opts ...Option) (*Worker, error) {
	w := &Worker{
		id:     uuid.NewString(),
		logger: logging.NewNop(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.cfg == nil {
		w.cfg = config.Default()
	}

	if w.transport == nil {
		tr, err := w.buildTransport()
		if err != nil {
			return nil, err
		}
		w.transport = tr
	}

	w.transport.Subscribe(w.dispatch)
	if err := w.transport.Start(); err != nil {
		return nil, fmt.Errorf("start %s transport: %w", w.transport.Name(), err)
	}

	for _, h := range w.hooks {
		if h.OnSpawn != nil {
			h.OnSpawn(w.id, w.transport.Name())
		}
	}
	if w.tracker != nil {
		w.tracker.add(w)
	}

	switch {
	case w.initialTask != nil:
		w.Run(w.initialTask)
	case w.initialScript != "":
		w.RunScript(w.initialScript, w.initialImports...)
	}
	return w, nil
}

// buildTransport assembles the default transport from spawn options and
// config: a child process when one was requested, a background goroutine
// otherwise.
func (w *Worker) buildTransport() (ports.Transport, error) {
	if !w.useProcess {
		topts := []thread.Option{thread.WithLogger(w.logger)}
		if w.registry != nil {
			topts = append(topts, thread.WithRegistry(w.registry))
		}
		return thread.New(topts...), nil
	}

	command := w.processCmd
	if command == "" {
		command = w.cfg.Runtime
	}
	if command == "" {
		return nil, errors.New("no process runtime configured")
	}

	popts := []process.Option{
		process.WithLogger(w.logger),
		process.WithAllocator(w.cfg.PortAllocator()),
		process.WithScriptResolver(w.cfg.ResolveScript),
	}
	if len(w.cfg.ExecArgv) > 0 {
		popts = append(popts, process.WithInheritedArgv(w.cfg.ExecArgv...))
	}
	if w.execArgvSet {
		popts = append(popts, process.WithExecArgv(w.execArgv...))
	}
	if len(w.args) > 0 {
		popts = append(popts, process.WithArgs(w.args...))
	}
	popts = append(popts, w.processOpts...)
	return process.New(command, popts...), nil
}
