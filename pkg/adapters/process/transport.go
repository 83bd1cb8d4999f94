// Package process implements the OS-process transport: the background
// execution context is a child process running a bootstrap entry point,
// and envelopes travel as protocol frames over its stdin/stdout.
//
// The package also owns inspector-port allocation for debug spawns: before
// spawning, inherited execution flags are scanned for --inspect /
// --inspect-brk and rewritten to a collision-free port.
package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/koineramitranjan/threads/internal/logging"
	"github.com/koineramitranjan/threads/pkg/domain"
	"github.com/koineramitranjan/threads/pkg/ports"
	"github.com/koineramitranjan/threads/pkg/protocol"
)

// Option configures the transport.
type Option func(*Transport)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithAllocator injects the shared inspector-port allocator. Defaults to
// SharedAllocator.
func WithAllocator(alloc ports.PortAllocator) Option {
	return func(t *Transport) {
		t.alloc = alloc
	}
}

// WithScriptResolver sets how script names in run-script envelopes map to
// paths on the host. A name the resolver cannot map passes through
// unchanged; the bootstrap may resolve it its own way.
func WithScriptResolver(resolve func(name string) (string, error)) Option {
	return func(t *Transport) {
		t.resolveScript = resolve
	}
}

// WithInheritedArgv sets the execution flags the spawn inherits. Inspector
// flags among them are rewritten to fresh ports.
func WithInheritedArgv(argv ...string) Option {
	return func(t *Transport) {
		t.inherited = argv
	}
}

// WithExecArgv sets explicit execution flags. They fully replace the
// inherited ones and skip all rewriting.
func WithExecArgv(argv ...string) Option {
	return func(t *Transport) {
		t.execArgv = argv
		t.execArgvSet = true
	}
}

// WithArgs sets bootstrap-time script arguments, appended after the
// execution flags.
func WithArgs(args ...string) Option {
	return func(t *Transport) {
		t.args = args
	}
}

// WithEnv appends environment entries ("KEY=value") to the inherited
// environment of the child.
func WithEnv(env ...string) Option {
	return func(t *Transport) {
		t.env = env
	}
}

// WithDir sets the working directory of the child.
func WithDir(dir string) Option {
	return func(t *Transport) {
		t.dir = dir
	}
}

// WithStderr redirects the child's stderr. Defaults to the host's stderr.
func WithStderr(w io.Writer) Option {
	return func(t *Transport) {
		t.stderr = w
	}
}

// Transport spawns a child process executing a bootstrap entry point and
// exchanges protocol frames with it over stdio.
type Transport struct {
	logger        *slog.Logger
	alloc         ports.PortAllocator
	resolveScript func(name string) (string, error)

	command     string
	inherited   []string
	execArgv    []string
	execArgvSet bool
	args        []string
	env         []string
	dir         string
	stderr      io.Writer

	deliver   func(domain.Envelope)
	deliverMu sync.Mutex

	mu         sync.Mutex
	cmd        *exec.Cmd
	writer     *protocol.Writer
	stdout     io.ReadCloser
	terminated bool

	exitOnce sync.Once
}

// New creates an unstarted process transport running the given bootstrap
// command.
func New(command string, opts ...Option) *Transport {
	t := &Transport{
		logger:  logging.NewNop(),
		alloc:   SharedAllocator,
		command: command,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements ports.Transport.
func (t *Transport) Name() string { return "process" }

// Subscribe implements ports.Transport.
func (t *Transport) Subscribe(fn func(domain.Envelope)) {
	t.deliver = fn
}

// Start computes the spawn flags, launches the child, and begins reading
// inbound frames.
func (t *Transport) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.terminated {
		return domain.ErrTerminated
	}
	if t.cmd != nil {
		return errors.New("process transport already started")
	}

	var explicit []string
	if t.execArgvSet {
		explicit = t.execArgv
		if explicit == nil {
			explicit = []string{}
		}
	}
	argv := BuildExecArgv(explicit, t.inherited, t.alloc)

	cmd := exec.Command(t.command, append(argv, t.args...)...)
	cmd.Dir = t.dir
	cmd.Stderr = t.stderr
	if len(t.env) > 0 {
		cmd.Env = append(cmd.Environ(), t.env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn worker process: %w", err)
	}

	t.cmd = cmd
	t.writer = protocol.NewWriter(stdin)
	t.stdout = stdout
	t.logger.Debug("worker process started", "pid", cmd.Process.Pid, "argv", argv)

	go t.readLoop()
	return nil
}

// Send frames an outbound envelope onto the child's stdin. Task functions
// cannot cross the process boundary; assign scripts instead. Transfer lists
// are a thread-transport capability: payloads here are always copied.
func (t *Transport) Send(env domain.Envelope) error {
	t.mu.Lock()
	if t.terminated {
		t.mu.Unlock()
		return domain.ErrTerminated
	}
	writer := t.writer
	t.mu.Unlock()

	if writer == nil {
		return errors.New("process transport not started")
	}
	if env.Task != nil {
		return errors.New("process transport cannot run task functions; use a script path")
	}
	if t.resolveScript != nil && (env.Kind == domain.KindRunScript || env.Kind == domain.KindRunScriptImports) {
		if resolved, err := t.resolveScript(env.Script); err == nil {
			env.Script = resolved
		} else {
			t.logger.Debug("script not found locally, passing name through", "script", env.Script)
		}
	}
	return writer.Write(env)
}

// Terminate kills the child process exactly once. The exit envelope is
// delivered after the process has been reaped.
func (t *Transport) Terminate() error {
	t.mu.Lock()
	if t.terminated {
		t.mu.Unlock()
		return nil
	}
	t.terminated = true
	cmd := t.cmd
	t.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		t.emitExit()
		return nil
	}
	if err := cmd.Process.Kill(); err != nil {
		// The process may have exited on its own already.
		t.logger.Debug("kill worker process", "err", err)
	}
	return nil
}

// Cmd exposes the underlying command for introspection (pid, process
// state). It is nil before Start.
func (t *Transport) Cmd() *exec.Cmd {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cmd
}

// readLoop decodes inbound frames until the stream ends, then reaps the
// child and delivers the exit envelope.
func (t *Transport) readLoop() {
	reader := protocol.NewReader(t.stdout)
	for {
		env, err := reader.Read()
		if err != nil {
			if errors.Is(err, protocol.ErrMalformed) {
				// Frame boundary is intact; skip the bad envelope.
				t.logger.Warn("discarding malformed envelope", "err", err)
				continue
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, os.ErrClosed) {
				t.logger.Warn("worker stream read failed", "err", err)
			}
			break
		}

		switch env.Kind {
		case domain.KindMessage, domain.KindProgress, domain.KindError, domain.KindDone:
			t.dispatch(env)
		case domain.KindExit:
			// The bootstrap acknowledged termination; the authoritative
			// exit still follows the reap below.
		default:
			t.logger.Warn("discarding envelope with unknown kind", "kind", env.Kind)
		}
	}

	waitErr := t.cmd.Wait()

	t.mu.Lock()
	expected := t.terminated
	t.terminated = true
	t.mu.Unlock()

	if !expected {
		msg := "worker process exited unexpectedly"
		if waitErr != nil {
			msg = fmt.Sprintf("worker process crashed: %v", waitErr)
		}
		t.dispatch(domain.Envelope{
			Kind: domain.KindError,
			Err:  &domain.ErrorInfo{Message: msg},
		})
	}
	t.emitExit()
}

func (t *Transport) dispatch(env domain.Envelope) {
	t.deliverMu.Lock()
	defer t.deliverMu.Unlock()
	if t.deliver != nil {
		t.deliver(env)
	}
}

func (t *Transport) emitExit() {
	t.exitOnce.Do(func() {
		t.dispatch(domain.Envelope{Kind: domain.KindExit})
	})
}

var _ ports.Transport = (*Transport)(nil)
