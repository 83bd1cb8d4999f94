package ports

import "github.com/koineramitranjan/threads/pkg/domain"

// Transport carries envelopes between the host and exactly one background
// execution context. A transport is owned by a single worker handle and is
// never shared.
//
// Subscribe must be called before Start. The callback receives inbound
// envelopes in delivery order from a single goroutine; implementations must
// not invoke it concurrently with itself.
type Transport interface {
	// Name identifies the transport variant ("thread", "process").
	Name() string

	// Start brings up the background execution context.
	Start() error

	// Send queues an outbound envelope. Envelopes are delivered in send
	// order. Sending to a terminated transport fails with
	// domain.ErrTerminated; nothing is forwarded.
	Send(env domain.Envelope) error

	// Subscribe registers the inbound-envelope callback.
	Subscribe(fn func(domain.Envelope))

	// Terminate stops the background context. It is idempotent: the first
	// call tears down the context and causes exactly one exit envelope to
	// be delivered; later calls are no-ops.
	Terminate() error
}

// PortAllocator hands out inspector ports so that repeatedly spawned debug
// processes never collide.
type PortAllocator interface {
	// Next returns the next free port and advances the allocator.
	Next() int

	// Reset restores the allocator to its base value. Test isolation only;
	// never call it during normal operation.
	Reset()
}
