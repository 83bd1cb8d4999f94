package process

import (
	"sync"

	"github.com/koineramitranjan/threads/pkg/ports"
)

// DefaultBasePort is the first inspector port handed out when an inspector
// flag carries no explicit port.
const DefaultBasePort = 9230

// CounterAllocator assigns inspector ports from a monotonically increasing
// counter so that repeatedly spawned debug processes never collide within
// one host process. The counter is process-scoped shared state: inject the
// same instance into every process transport.
type CounterAllocator struct {
	mu   sync.Mutex
	base int
	next int
}

// NewCounterAllocator creates an allocator starting at base. A non-positive
// base falls back to DefaultBasePort.
func NewCounterAllocator(base int) *CounterAllocator {
	if base <= 0 {
		base = DefaultBasePort
	}
	return &CounterAllocator{base: base, next: base}
}

// Next returns the next free port and advances the counter.
func (a *CounterAllocator) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	port := a.next
	a.next++
	return port
}

// Reset restores the counter to its base value. Test isolation only.
func (a *CounterAllocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next = a.base
}

// SharedAllocator is the allocator used by transports constructed without
// an explicit one. It lives for the whole host process.
var SharedAllocator = NewCounterAllocator(DefaultBasePort)

var _ ports.PortAllocator = (*CounterAllocator)(nil)
