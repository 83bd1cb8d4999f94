package threads

// Event subscriptions. Channels are typed and fixed-arity; subscribers on
// one channel are invoked in registration order, and events of one
// invocation are delivered in emission order: all progress strictly before
// the terminal message/done pair.

// OnMessage subscribes to terminal results. A terminal call with N values
// delivers all N values in order; a zero-value terminal delivers message()
// followed by done().
func (w *Worker) OnMessage(fn func(values ...any)) *Worker {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	w.onMessage = append(w.onMessage, fn)
	return w
}

// OnError subscribes to task and transport failures. A failing invocation
// produces exactly one error event, never an error and a message both.
func (w *Worker) OnError(fn func(err error)) *Worker {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	w.onError = append(w.onError, fn)
	return w
}

// OnProgress subscribes to progress fractions. One invocation may emit any
// number of progress events before its terminal event.
func (w *Worker) OnProgress(fn func(fraction float64)) *Worker {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	w.onProgress = append(w.onProgress, fn)
	return w
}

// OnDone subscribes to zero-value terminal completions.
func (w *Worker) OnDone(fn func()) *Worker {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	w.onDone = append(w.onDone, fn)
	return w
}

// OnExit subscribes to transport termination. It fires exactly once per
// worker.
func (w *Worker) OnExit(fn func()) *Worker {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	w.onExit = append(w.onExit, fn)
	return w
}

// emitMessage delivers a terminal result: promise bridges settle first,
// then subscribers. nil values means the zero-value terminal.
func (w *Worker) emitMessage(values []any) {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	w.settle(func(p *Promise) { p.resolve(values) })
	for _, h := range w.hooks {
		if h.OnMessage != nil {
			h.OnMessage(w.id)
		}
	}

	w.subMu.Lock()
	messageFns := append(([]func(values ...any))(nil), w.onMessage...)
	doneFns := append(([]func())(nil), w.onDone...)
	w.subMu.Unlock()

	for _, fn := range messageFns {
		fn(values...)
	}
	if len(values) == 0 {
		for _, fn := range doneFns {
			fn()
		}
	}
}

func (w *Worker) emitProgress(fraction float64) {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	w.subMu.Lock()
	fns := append(([]func(fraction float64))(nil), w.onProgress...)
	w.subMu.Unlock()

	for _, fn := range fns {
		fn(fraction)
	}
}

func (w *Worker) emitError(err error) {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	w.settle(func(p *Promise) { p.reject(err) })
	for _, h := range w.hooks {
		if h.OnError != nil {
			h.OnError(w.id, err)
		}
	}

	w.subMu.Lock()
	fns := append(([]func(err error))(nil), w.onError...)
	w.subMu.Unlock()

	for _, fn := range fns {
		fn(err)
	}
}

// emitExit marks the handle terminated. Guarded so a worker can never be
// observed exiting twice.
func (w *Worker) emitExit() {
	w.mu.Lock()
	if w.exited {
		w.mu.Unlock()
		return
	}
	w.exited = true
	w.state = StateTerminated
	w.mu.Unlock()

	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	for _, h := range w.hooks {
		if h.OnExit != nil {
			h.OnExit(w.id)
		}
	}
	if w.tracker != nil {
		w.tracker.remove(w.id)
	}

	w.subMu.Lock()
	fns := append(([]func())(nil), w.onExit...)
	w.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// settle applies fn to every outstanding bridge; each bridge latches on
// its own first settlement.
func (w *Worker) settle(fn func(*Promise)) {
	w.mu.Lock()
	bridges := append([]*Promise(nil), w.bridges...)
	w.mu.Unlock()
	for _, p := range bridges {
		fn(p)
	}
}
