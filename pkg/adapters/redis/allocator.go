// Package redis provides a Redis-backed inspector-port allocator for hosts
// that spawn debuggable workers from more than one process. A shared INCR
// counter keeps the allocated ports unique across the whole fleet.
package redis

import (
	"context"
	"log/slog"
	"sync"

	backend "github.com/redis/go-redis/v9"

	"github.com/koineramitranjan/threads/internal/logging"
	"github.com/koineramitranjan/threads/pkg/adapters/process"
	"github.com/koineramitranjan/threads/pkg/ports"
)

// DefaultKey is the counter key used when none is configured.
const DefaultKey = "threads:inspector:next"

// Option configures the allocator.
type Option func(*Allocator)

// WithKey overrides the Redis counter key.
func WithKey(key string) Option {
	return func(a *Allocator) {
		a.key = key
	}
}

// WithBase overrides the first port handed out.
func WithBase(base int) Option {
	return func(a *Allocator) {
		if base > 0 {
			a.base = base
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) {
		a.logger = logger
	}
}

// Allocator implements ports.PortAllocator on a shared Redis counter.
// When Redis is unreachable it falls back to a local counter so a spawn
// never fails on port allocation; uniqueness then only holds within this
// host process.
type Allocator struct {
	client *backend.Client
	logger *slog.Logger
	key    string
	base   int

	mu    sync.Mutex
	local int
}

// NewAllocator creates an allocator on the given client.
func NewAllocator(client *backend.Client, opts ...Option) *Allocator {
	a := &Allocator{
		client: client,
		logger: logging.NewNop(),
		key:    DefaultKey,
		base:   process.DefaultBasePort,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.local = a.base
	return a
}

// Next returns the next fleet-wide free port.
func (a *Allocator) Next() int {
	n, err := a.client.Incr(context.Background(), a.key).Result()
	if err != nil {
		a.logger.Warn("redis allocator unavailable, falling back to local counter", "err", err)
		a.mu.Lock()
		defer a.mu.Unlock()
		port := a.local
		a.local++
		return port
	}
	return a.base + int(n) - 1
}

// Reset deletes the shared counter and restores the local fallback.
// Test isolation only.
func (a *Allocator) Reset() {
	if err := a.client.Del(context.Background(), a.key).Err(); err != nil {
		a.logger.Warn("reset redis allocator", "err", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.local = a.base
}

var _ ports.PortAllocator = (*Allocator)(nil)
