package threads

import "sync"

// Tracker keeps a registry of live workers for introspection surfaces.
// Workers spawned with WithTracker register themselves at spawn and
// deregister on exit.
type Tracker struct {
	mu      sync.RWMutex
	workers map[string]*Worker
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{workers: make(map[string]*Worker)}
}

func (t *Tracker) add(w *Worker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workers[w.id] = w
}

func (t *Tracker) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.workers, id)
}

// Workers returns a snapshot of the currently tracked workers.
func (t *Tracker) Workers() []*Worker {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Worker, 0, len(t.workers))
	for _, w := range t.workers {
		out = append(out, w)
	}
	return out
}
