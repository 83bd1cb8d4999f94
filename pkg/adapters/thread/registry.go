package thread

import (
	"sync"

	"github.com/koineramitranjan/threads/pkg/domain"
)

// Registry maps script names to task functions and import names to library
// initializers. It plays the role the script loader plays for process
// workers: run-script envelopes resolve against it inside the background
// context.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]domain.Task
	libs  map[string]domain.Library
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]domain.Task),
		libs:  make(map[string]domain.Library),
	}
}

// RegisterTask registers a named script body.
func (r *Registry) RegisterTask(name string, task domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = task
}

// RegisterLibrary registers a named import loaded before a task body runs.
func (r *Registry) RegisterLibrary(name string, lib domain.Library) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.libs[name] = lib
}

// Task looks up a registered script body.
func (r *Registry) Task(name string) (domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[name]
	return task, ok
}

// Library looks up a registered import.
func (r *Registry) Library(name string) (domain.Library, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lib, ok := r.libs[name]
	return lib, ok
}
